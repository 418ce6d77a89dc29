package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestIsSymmetric(t *testing.T) {
	assert := assert.New(t)

	sym := mat.NewDense(2, 2, []float64{2.0, 0.5, 0.5, 1.0})
	assert.True(IsSymmetric(sym, 1e-12))

	skewed := mat.NewDense(2, 2, []float64{2.0, 0.5, 0.5 + 1e-6, 1.0})
	assert.False(IsSymmetric(skewed, 1e-12))
	assert.True(IsSymmetric(skewed, 1e-3))

	rect := mat.NewDense(2, 3, nil)
	assert.False(IsSymmetric(rect, 1e-12))

	// should panic
	assert.Panics(func() { IsSymmetric(nil, 1e-12) })
}

func TestMinEigenvalue(t *testing.T) {
	assert := assert.New(t)

	delta := 1e-10

	s := mat.NewSymDense(2, []float64{4.0, 0.0, 0.0, 9.0})
	min, err := MinEigenvalue(s)
	assert.NoError(err)
	assert.InDelta(4.0, min, delta)

	indef := mat.NewSymDense(2, []float64{1.0, 2.0, 2.0, 1.0})
	min, err = MinEigenvalue(indef)
	assert.NoError(err)
	assert.InDelta(-1.0, min, delta)
}
