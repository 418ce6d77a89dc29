package state

import "errors"

var (
	// ErrVariableNotFound is returned when a referenced variable is not part
	// of the live state
	ErrVariableNotFound = errors.New("variable not found in state")

	// ErrDimensionMismatch is returned when Jacobian, residual and noise
	// shapes disagree with each other or with the state
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrNumericalInstability is returned when the innovation covariance is
	// not positive definite or an update would produce a negative variance
	ErrNumericalInstability = errors.New("numerical instability")

	// ErrTypeMismatch is returned when a cloned variable is not of the
	// expected concrete type
	ErrTypeMismatch = errors.New("unexpected variable type")
)
