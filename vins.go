package vins

import "gonum.org/v1/gonum/mat"

// Variable is one named, sized component of the estimated state.
// Its error state occupies a contiguous block of the covariance matrix
// starting at Offset() and spanning Size() rows and columns.
type Variable interface {
	// Size returns the dimension of the variable error state
	Size() int
	// Offset returns the variable location in the covariance matrix
	Offset() int
	// SetOffset sets the variable location in the covariance matrix
	SetOffset(off int)
	// Value returns a copy of the current variable estimate
	Value() mat.Vector
	// Clone returns an independent copy of the variable
	Clone() Variable
	// Match returns the variable itself, one of its sub-variables if v is
	// identical to it, or nil when v is neither
	Match(v Variable) Variable
	// Correct composes the correction dx with the current estimate
	Correct(dx mat.Vector) error
}

// Inertial is the primary pose+velocity+biases variable of the filter
type Inertial interface {
	// Variable is the full inertial error state
	Variable
	// Pose returns the 6-DoF pose sub-variable
	Pose() Variable
	// Vel returns the current linear velocity estimate
	Vel() mat.Vector
}

// Estimate is a state variable estimate
type Estimate interface {
	// Val returns estimate value
	Val() mat.Vector
	// Cov returns estimate covariance
	Cov() mat.Symmetric
}

// Noise is measurement or process noise
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Reset resets the noise
	Reset()
}
