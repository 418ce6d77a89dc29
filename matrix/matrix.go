package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// IsSymmetric returns true if m is square and equal to its transpose within
// the absolute tolerance tol.
// It panics if m is nil.
func IsSymmetric(m mat.Matrix, tol float64) bool {
	r, c := m.Dims()
	if r != c {
		return false
	}

	for i := 0; i < r; i++ {
		for j := i + 1; j < c; j++ {
			if math.Abs(m.At(i, j)-m.At(j, i)) > tol {
				return false
			}
		}
	}

	return true
}

// MinEigenvalue returns the smallest eigenvalue of s.
// It returns error if the eigendecomposition fails to converge.
func MinEigenvalue(s mat.Symmetric) (float64, error) {
	var es mat.EigenSym
	if ok := es.Factorize(s, false); !ok {
		return 0, fmt.Errorf("eigendecomposition failed")
	}

	return floats.Min(es.Values(nil)), nil
}
