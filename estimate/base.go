package estimate

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Base is a snapshot of a state variable estimate: the variable value and the
// marginal covariance of its error state. The two dimensions differ for
// manifold variables, e.g. a unit quaternion has a 4 dimensional value and a
// 3 dimensional error state.
type Base struct {
	// val is the estimated value
	val *mat.VecDense
	// cov is the error state covariance
	cov *mat.SymDense
}

// NewBase returns an estimate of val with a zero covariance of matching
// dimension.
func NewBase(val mat.Vector) (*Base, error) {
	if val == nil || val.Len() == 0 {
		return nil, fmt.Errorf("invalid estimate value: %v", val)
	}

	v := &mat.VecDense{}
	v.CloneFromVec(val)

	return &Base{
		val: v,
		cov: mat.NewSymDense(v.Len(), nil),
	}, nil
}

// NewBaseWithCov returns an estimate of val with the given error state
// covariance.
func NewBaseWithCov(val mat.Vector, cov mat.Symmetric) (*Base, error) {
	if val == nil || val.Len() == 0 {
		return nil, fmt.Errorf("invalid estimate value: %v", val)
	}
	if cov == nil || cov.SymmetricDim() == 0 {
		return nil, fmt.Errorf("invalid estimate covariance: %v", cov)
	}

	v := &mat.VecDense{}
	v.CloneFromVec(val)

	c := mat.NewSymDense(cov.SymmetricDim(), nil)
	c.CopySym(cov)

	return &Base{
		val: v,
		cov: c,
	}, nil
}

// Val returns the estimated value
func (b *Base) Val() mat.Vector {
	v := &mat.VecDense{}
	v.CloneFromVec(b.val)

	return v
}

// Cov returns the error state covariance
func (b *Base) Cov() mat.Symmetric {
	cov := mat.NewSymDense(b.cov.SymmetricDim(), nil)
	cov.CopySym(b.cov)

	return cov
}
