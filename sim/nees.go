package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// NEES returns the normalized estimation error squared of the error e under
// the covariance cov.
// It returns error if the dimensions disagree or cov is not positive definite.
func NEES(e mat.Vector, cov mat.Symmetric) (float64, error) {
	if e == nil || cov == nil || e.Len() != cov.SymmetricDim() {
		return 0, fmt.Errorf("invalid consistency inputs")
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return 0, fmt.Errorf("covariance not positive definite")
	}

	sol := mat.NewVecDense(e.Len(), nil)
	if err := chol.SolveVecTo(sol, e); err != nil {
		return 0, fmt.Errorf("failed to solve covariance system: %v", err)
	}

	return mat.Dot(e, sol), nil
}

// ChiSquareBounds returns the lower and upper chi square quantiles which
// enclose conf probability mass for the given degrees of freedom.
// It returns error if dof is not positive or conf is not inside (0, 1).
func ChiSquareBounds(dof int, conf float64) (float64, float64, error) {
	if dof <= 0 || conf <= 0 || conf >= 1 {
		return 0, 0, fmt.Errorf("invalid bound parameters: dof %d, confidence %v", dof, conf)
	}

	dist := distuv.ChiSquared{K: float64(dof)}
	alpha := (1 - conf) / 2

	return dist.Quantile(alpha), dist.Quantile(1 - alpha), nil
}

// RMSE returns the root mean square norm of the error series.
// It returns error if the series is empty or contains nil errors.
func RMSE(series []mat.Vector) (float64, error) {
	if len(series) == 0 {
		return 0, fmt.Errorf("empty error series")
	}

	sq := make([]float64, len(series))
	for i, e := range series {
		if e == nil {
			return 0, fmt.Errorf("invalid error at step %d", i)
		}
		raw := mat.VecDenseCopyOf(e).RawVector().Data
		sq[i] = floats.Dot(raw, raw)
	}

	return math.Sqrt(floats.Sum(sq) / float64(len(sq))), nil
}
