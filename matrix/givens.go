package matrix

import (
	"math"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// MakeGivens returns the cosine and sine of a Givens rotation which zeroes
// out b when applied to the pair (a, b): c*a + s*b = r, -s*a + c*b = 0.
func MakeGivens(a, b float64) (c, s float64) {
	if b == 0 {
		return 1, 0
	}
	r := math.Hypot(a, b)

	return a / r, b / r
}

// GivensTriangularize reduces hL to upper triangular form in place by a
// sequence of Givens rotations and applies the same rotations to the rows
// of hR and to the entries of res.
// hL, hR and res must have the same number of rows.
func GivensTriangularize(hL, hR *mat.Dense, res *mat.VecDense) {
	rows, cols := hL.Dims()
	for n := 0; n < cols; n++ {
		for m := rows - 1; m > n; m-- {
			c, s := MakeGivens(hL.At(m-1, n), hL.At(m, n))
			rotRows(hL, m-1, m, n, c, s)
			rotRows(hR, m-1, m, 0, c, s)
			rotVec(res, m-1, m, c, s)
		}
	}
}

// rotRows applies the rotation (c, s) to rows i and j of m starting at
// column from.
func rotRows(m *mat.Dense, i, j, from int, c, s float64) {
	_, cols := m.Dims()
	n := cols - from
	if n <= 0 {
		return
	}
	xi := m.RawRowView(i)[from:]
	xj := m.RawRowView(j)[from:]
	blas64.Rot(
		blas64.Vector{N: n, Inc: 1, Data: xi},
		blas64.Vector{N: n, Inc: 1, Data: xj},
		c, s)
}

// rotVec applies the rotation (c, s) to entries i and j of v.
func rotVec(v *mat.VecDense, i, j int, c, s float64) {
	vi, vj := v.AtVec(i), v.AtVec(j)
	v.SetVec(i, c*vi+s*vj)
	v.SetVec(j, -s*vi+c*vj)
}
