package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestNewBase(t *testing.T) {
	assert := assert.New(t)

	val := mat.NewVecDense(2, []float64{1.0, 1.0})

	b, err := NewBase(val)
	assert.NotNil(b)
	assert.NoError(err)
	assert.Equal(2, b.Val().Len())
	// the covariance defaults to zero at the value dimension
	assert.Equal(2, b.Cov().SymmetricDim())
	assert.Equal(0.0, b.Cov().At(0, 0))

	// invalid value
	b, err = NewBase(nil)
	assert.Nil(b)
	assert.Error(err)

	b, err = NewBase(&mat.VecDense{})
	assert.Nil(b)
	assert.Error(err)
}

func TestNewBaseWithCov(t *testing.T) {
	assert := assert.New(t)

	// a pose estimate: 7 dimensional value, 6 dimensional error state
	val := mat.NewVecDense(7, []float64{0, 0, 0, 1, 1, 2, 3})
	cov := mat.NewSymDense(6, nil)
	for i := 0; i < 6; i++ {
		cov.SetSym(i, i, 0.1)
	}

	b, err := NewBaseWithCov(val, cov)
	assert.NotNil(b)
	assert.NoError(err)
	assert.Equal(7, b.Val().Len())
	assert.Equal(6, b.Cov().SymmetricDim())

	// invalid covariance
	b, err = NewBaseWithCov(val, nil)
	assert.Nil(b)
	assert.Error(err)
}

func TestBaseValCov(t *testing.T) {
	assert := assert.New(t)

	val := mat.NewVecDense(2, []float64{1.0, 2.0})
	cov := mat.NewSymDense(2, []float64{1.0, 0.5, 0.5, 4.0})

	b, err := NewBaseWithCov(val, cov)
	assert.NotNil(b)
	assert.NoError(err)

	// accessors return copies
	v := b.Val().(*mat.VecDense)
	v.SetVec(0, 99.0)
	assert.Equal(1.0, b.Val().AtVec(0))

	c := b.Cov()
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.Equal(cov.At(i, j), c.At(i, j))
		}
	}
}
