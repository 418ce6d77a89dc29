package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	vins "github.com/StevenCui/open-vins"
)

func TestNewJPLQuat(t *testing.T) {
	assert := assert.New(t)

	q := NewJPLQuat()
	assert.NotNil(q)
	assert.Equal(3, q.Size())
	assert.Equal(-1, q.Offset())

	// identity rotation stored as [x y z w]
	val := q.Value()
	assert.Equal(4, val.Len())
	assert.Equal(0.0, val.AtVec(0))
	assert.Equal(0.0, val.AtVec(1))
	assert.Equal(0.0, val.AtVec(2))
	assert.Equal(1.0, val.AtVec(3))
}

func TestJPLQuatCorrect(t *testing.T) {
	assert := assert.New(t)

	q := NewJPLQuat()

	// zero correction keeps the identity
	assert.NoError(q.Correct(mat.NewVecDense(3, nil)))
	assert.InDelta(1.0, q.Value().AtVec(3), 1e-12)

	// small angle correction stays unit norm with a positive scalar part
	assert.NoError(q.Correct(mat.NewVecDense(3, []float64{0.2, -0.1, 0.3})))
	val := q.Value()
	norm := 0.0
	for i := 0; i < 4; i++ {
		norm += val.AtVec(i) * val.AtVec(i)
	}
	assert.InDelta(1.0, math.Sqrt(norm), 1e-12)
	assert.True(val.AtVec(3) > 0)

	// invalid correction dimension
	assert.Error(q.Correct(mat.NewVecDense(2, nil)))
}

func TestJPLQuatCorrectAngle(t *testing.T) {
	assert := assert.New(t)

	q := NewJPLQuat()
	theta := 0.3
	assert.NoError(q.Correct(mat.NewVecDense(3, []float64{theta, 0, 0})))

	// correcting the identity by [theta 0 0] yields [theta/2 0 0 1]
	// normalized
	n := math.Sqrt(1 + theta*theta/4)
	assert.InDelta(theta/2/n, q.Value().AtVec(0), 1e-12)
	assert.InDelta(0.0, q.Value().AtVec(1), 1e-12)
	assert.InDelta(0.0, q.Value().AtVec(2), 1e-12)
	assert.InDelta(1/n, q.Value().AtVec(3), 1e-12)
}

func TestJPLQuatRot(t *testing.T) {
	assert := assert.New(t)

	q := NewJPLQuat()
	assert.True(mat.EqualApprox(q.Rot(), eye3scaled(1.0), 1e-12))

	// rotation matrices are orthogonal with unit determinant
	assert.NoError(q.Correct(mat.NewVecDense(3, []float64{0.4, 0.2, -0.3})))
	rot := q.Rot()
	var rrt mat.Dense
	rrt.Mul(rot, rot.T())
	assert.True(mat.EqualApprox(&rrt, eye3scaled(1.0), 1e-12))
	assert.InDelta(1.0, mat.Det(rot), 1e-12)

	// a z angle correction rotates in the JPL sense
	qz := NewJPLQuat()
	theta := 0.2
	assert.NoError(qz.Correct(mat.NewVecDense(3, []float64{0, 0, theta})))
	rz := qz.Rot()
	assert.InDelta(theta/(1+theta*theta/4), rz.At(0, 1), 1e-12)
	assert.InDelta(-theta/(1+theta*theta/4), rz.At(1, 0), 1e-12)
}

func TestJPLQuatClone(t *testing.T) {
	assert := assert.New(t)

	q := NewJPLQuat()
	assert.NoError(q.SetValue(mat.NewVecDense(4, []float64{0, 0, 0.6, 0.8})))

	c := q.Clone()
	assert.Equal(3, c.Size())
	assert.Equal(-1, c.Offset())
	assert.InDelta(0.6, c.Value().AtVec(2), 1e-12)

	// mutations do not propagate
	assert.NoError(q.SetValue(mat.NewVecDense(4, []float64{0, 0, 0, 1})))
	assert.InDelta(0.6, c.Value().AtVec(2), 1e-12)
}

func TestJPLQuatMatch(t *testing.T) {
	assert := assert.New(t)

	q := NewJPLQuat()
	w := NewJPLQuat()

	assert.Equal(vins.Variable(q), q.Match(q))
	assert.Nil(q.Match(w))
}

func TestQuatNorm(t *testing.T) {
	assert := assert.New(t)

	// the scalar part is kept positive
	q := quatNorm(mat.NewVecDense(4, []float64{0, 0, 0.6, -0.8}))
	assert.InDelta(0.8, q.AtVec(3), 1e-12)
	assert.InDelta(-0.6, q.AtVec(2), 1e-12)

	// normalization
	q = quatNorm(mat.NewVecDense(4, []float64{0, 0, 3, 4}))
	assert.InDelta(0.6, q.AtVec(2), 1e-12)
	assert.InDelta(0.8, q.AtVec(3), 1e-12)
}

func TestQuatMultiply(t *testing.T) {
	assert := assert.New(t)

	id := mat.NewVecDense(4, []float64{0, 0, 0, 1})
	q90 := mat.NewVecDense(4, []float64{0, 0, math.Sqrt2 / 2, math.Sqrt2 / 2})

	// identity is the neutral element
	out := quatMultiply(q90, id)
	for i := 0; i < 4; i++ {
		assert.InDelta(q90.AtVec(i), out.AtVec(i), 1e-12)
	}

	// same axis rotations compose by adding angles
	out = quatMultiply(q90, q90)
	assert.InDelta(0.0, out.AtVec(0), 1e-12)
	assert.InDelta(0.0, out.AtVec(1), 1e-12)
	assert.InDelta(1.0, out.AtVec(2), 1e-12)
	assert.InDelta(0.0, out.AtVec(3), 1e-12)
}
