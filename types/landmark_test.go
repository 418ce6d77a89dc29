package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	vins "github.com/StevenCui/open-vins"
)

func TestNewLandmark(t *testing.T) {
	assert := assert.New(t)

	l := NewLandmark(7)
	assert.NotNil(l)
	assert.Equal(3, l.Size())
	assert.Equal(-1, l.Offset())
	assert.Equal(uint32(7), l.FeatureID)
}

func TestLandmarkMatch(t *testing.T) {
	assert := assert.New(t)

	l := NewLandmark(7)
	other := NewLandmark(7)

	assert.Equal(vins.Variable(l), l.Match(l))
	// landmarks with the same feature id are still distinct variables
	assert.Nil(l.Match(other))
	// the embedded vector does not leak the landmark identity
	assert.Nil(l.Match(&l.Vec))
}

func TestLandmarkClone(t *testing.T) {
	assert := assert.New(t)

	l := NewLandmark(7)
	l.SetOffset(9)
	assert.NoError(l.SetValue(mat.NewVecDense(3, []float64{1, 2, 3})))

	c := l.Clone()
	cl, ok := c.(*Landmark)
	assert.True(ok)
	assert.Equal(uint32(7), cl.FeatureID)
	assert.Equal(-1, cl.Offset())
	assert.InDelta(2.0, cl.Value().AtVec(1), 1e-12)

	// the clone does not track the source
	assert.NoError(l.SetValue(mat.NewVecDense(3, []float64{9, 9, 9})))
	assert.InDelta(2.0, cl.Value().AtVec(1), 1e-12)

	// corrections behave like a plain vector variable
	assert.NoError(cl.Correct(mat.NewVecDense(3, []float64{0.5, 0.5, 0.5})))
	assert.InDelta(2.5, cl.Value().AtVec(1), 1e-12)
}
