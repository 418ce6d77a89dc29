package types

import (
	"fmt"

	vins "github.com/StevenCui/open-vins"
	"gonum.org/v1/gonum/mat"
)

// Vec is a vector state variable with additive correction
type Vec struct {
	// off is the variable location in the covariance matrix
	off int
	// val is the current estimate
	val *mat.VecDense
	// fej is the first-estimate value used by Jacobian linearization
	fej *mat.VecDense
}

// NewVec creates new Vec of the given error state dimension.
// It panics if size is not positive.
func NewVec(size int) *Vec {
	return &Vec{
		off: -1,
		val: mat.NewVecDense(size, nil),
		fej: mat.NewVecDense(size, nil),
	}
}

// Size returns the error state dimension
func (v *Vec) Size() int {
	return v.val.Len()
}

// Offset returns the variable location in the covariance matrix
func (v *Vec) Offset() int {
	return v.off
}

// SetOffset sets the variable location in the covariance matrix
func (v *Vec) SetOffset(off int) {
	v.off = off
}

// Value returns a copy of the current estimate
func (v *Vec) Value() mat.Vector {
	val := &mat.VecDense{}
	val.CloneFromVec(v.val)

	return val
}

// SetValue sets the current estimate to val.
// It returns error if the dimension of val is invalid.
func (v *Vec) SetValue(val mat.Vector) error {
	if val.Len() != v.val.Len() {
		return fmt.Errorf("invalid value dimension: %d", val.Len())
	}
	v.val.CloneFromVec(val)

	return nil
}

// Fej returns a copy of the first-estimate value
func (v *Vec) Fej() mat.Vector {
	fej := &mat.VecDense{}
	fej.CloneFromVec(v.fej)

	return fej
}

// SetFej sets the first-estimate value to fej.
// It returns error if the dimension of fej is invalid.
func (v *Vec) SetFej(fej mat.Vector) error {
	if fej.Len() != v.fej.Len() {
		return fmt.Errorf("invalid first-estimate dimension: %d", fej.Len())
	}
	v.fej.CloneFromVec(fej)

	return nil
}

// Clone returns an independent copy of the variable
func (v *Vec) Clone() vins.Variable {
	c := NewVec(v.val.Len())
	c.val.CloneFromVec(v.val)
	c.fej.CloneFromVec(v.fej)

	return c
}

// Match returns v if other is this very variable and nil otherwise
func (v *Vec) Match(other vins.Variable) vins.Variable {
	if v == other {
		return v
	}

	return nil
}

// Correct adds the correction dx to the current estimate.
// It returns error if the dimension of dx is invalid.
func (v *Vec) Correct(dx mat.Vector) error {
	if dx.Len() != v.val.Len() {
		return fmt.Errorf("invalid correction dimension: %d", dx.Len())
	}
	for i := 0; i < v.val.Len(); i++ {
		v.val.SetVec(i, v.val.AtVec(i)+dx.AtVec(i))
	}

	return nil
}

// segment copies n entries of v starting at from into a new vector
func segment(v mat.Vector, from, n int) *mat.VecDense {
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		out.SetVec(i, v.AtVec(from+i))
	}

	return out
}
