package matrix

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestMakeGivens(t *testing.T) {
	assert := assert.New(t)

	delta := 1e-12

	c, s := MakeGivens(3.0, 4.0)
	assert.InDelta(0.6, c, delta)
	assert.InDelta(0.8, s, delta)
	// rotation zeroes out the second entry
	assert.InDelta(5.0, c*3.0+s*4.0, delta)
	assert.InDelta(0.0, -s*3.0+c*4.0, delta)

	c, s = MakeGivens(1.5, 0.0)
	assert.InDelta(1.0, c, delta)
	assert.InDelta(0.0, s, delta)

	c, s = MakeGivens(0.0, 2.0)
	assert.InDelta(0.0, c, delta)
	assert.InDelta(1.0, s, delta)
}

func TestGivensTriangularize(t *testing.T) {
	assert := assert.New(t)

	delta := 1e-10

	hL := mat.NewDense(4, 2, []float64{
		1.0, 2.0,
		3.0, 4.0,
		5.0, 6.0,
		7.0, 8.0,
	})
	hR := mat.NewDense(4, 3, []float64{
		0.1, 0.2, 0.3,
		0.4, 0.5, 0.6,
		0.7, 0.8, 0.9,
		1.0, 1.1, 1.2,
	})
	res := mat.NewVecDense(4, []float64{1.0, -1.0, 2.0, -2.0})

	var wantL, wantR mat.Dense
	wantL.CloneFrom(hL)
	wantR.CloneFrom(hR)
	wantRes := mat.NewVecDense(4, nil)
	wantRes.CloneFromVec(res)

	GivensTriangularize(hL, hR, res)

	// hL is upper triangular
	rows, cols := hL.Dims()
	for i := 1; i < rows; i++ {
		for j := 0; j < cols && j < i; j++ {
			assert.InDelta(0.0, hL.At(i, j), delta)
		}
	}

	// rotations are orthogonal: norms of each column are preserved
	for j := 0; j < cols; j++ {
		assert.InDelta(
			mat.Norm(wantL.ColView(j), 2),
			mat.Norm(hL.ColView(j), 2), delta)
	}
	_, rCols := hR.Dims()
	for j := 0; j < rCols; j++ {
		assert.InDelta(
			mat.Norm(wantR.ColView(j), 2),
			mat.Norm(hR.ColView(j), 2), delta)
	}
	assert.InDelta(mat.Norm(wantRes, 2), mat.Norm(res, 2), delta)

	// solutions of the triangularized system match the original least
	// squares solution: hL^T hL stays invariant under orthogonal rotations
	var gramWant, gramGot mat.Dense
	gramWant.Mul(wantL.T(), &wantL)
	gramGot.Mul(hL.T(), hL)
	assert.True(mat.EqualApprox(&gramWant, &gramGot, delta))

	var crossWant, crossGot mat.Dense
	crossWant.Mul(wantL.T(), &wantR)
	crossGot.Mul(hL.T(), hR)
	assert.True(mat.EqualApprox(&crossWant, &crossGot, delta))

	projWant := mat.NewVecDense(cols, nil)
	projGot := mat.NewVecDense(cols, nil)
	projWant.MulVec(wantL.T(), wantRes)
	projGot.MulVec(hL.T(), res)
	assert.True(mat.EqualApprox(projWant, projGot, delta))
}

func TestGivensTriangularizeTall(t *testing.T) {
	assert := assert.New(t)

	delta := 1e-10

	// single column: all rows below the first must vanish
	hL := mat.NewDense(3, 1, []float64{2.0, 3.0, 6.0})
	hR := mat.NewDense(3, 2, []float64{1, 0, 0, 1, 1, 1})
	res := mat.NewVecDense(3, []float64{1.0, 2.0, 3.0})

	GivensTriangularize(hL, hR, res)

	assert.InDelta(7.0, math.Abs(hL.At(0, 0)), delta)
	assert.InDelta(0.0, hL.At(1, 0), delta)
	assert.InDelta(0.0, hL.At(2, 0), delta)
}
