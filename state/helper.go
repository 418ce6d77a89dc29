package state

import (
	"fmt"

	vins "github.com/StevenCui/open-vins"
	"github.com/StevenCui/open-vins/matrix"
	"github.com/StevenCui/open-vins/types"
	mx "github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"
)

// Clone duplicates a live variable together with its uncertainty. The new
// variable is appended at the end of the covariance with the source self
// covariance on its diagonal block and the source cross covariance against
// every live variable. The variable to clone may be a constituent of a
// composite live variable, e.g. the pose inside the inertial variable.
// When no live variable matches the state is left untouched.
func Clone(s *State, variableToClone vins.Variable) (vins.Variable, error) {
	src := s.FindVariable(variableToClone)
	if src == nil {
		return nil, fmt.Errorf("cloning: %w", ErrVariableNotFound)
	}

	size := src.Size()
	oldDim := s.cov.Dim()
	oldLoc := src.Offset()
	newLoc := oldDim

	s.cov.Grow(size)
	s.cov.CopyBlock(newLoc, newLoc, oldLoc, oldLoc, size, size)
	s.cov.CopyBlock(0, newLoc, 0, oldLoc, oldDim, size)
	s.cov.CopyBlock(newLoc, 0, oldLoc, 0, size, oldDim)

	clone := src.Clone()
	clone.SetOffset(newLoc)
	s.InsertVariable(clone)

	return clone, nil
}

// EKFUpdate applies a Kalman update to the whole state from a measurement
// linearized against the variables in hOrder: res = h*dx_order + n with
// n ~ N(0, r). The Jacobian columns follow the order and sizes of hOrder,
// not the variable offsets. Corrections are dispatched to every live
// variable through its own Correct.
// A non positive definite innovation covariance or a negative posterior
// variance surfaces as ErrNumericalInstability before the state is touched.
func EKFUpdate(s *State, hOrder []vins.Variable, h *mat.Dense, res mat.Vector, r mat.Symmetric) error {
	if h == nil || res == nil || r == nil {
		return fmt.Errorf("invalid update inputs: %w", ErrDimensionMismatch)
	}

	m := res.Len()
	hRows, hCols := h.Dims()
	if hRows != m || r.SymmetricDim() != m {
		return fmt.Errorf("jacobian rows %d, residual %d, noise %d: %w", hRows, m, r.SymmetricDim(), ErrDimensionMismatch)
	}
	small := 0
	for _, v := range hOrder {
		small += v.Size()
	}
	if hCols != small {
		return fmt.Errorf("jacobian cols %d, measured size %d: %w", hCols, small, ErrDimensionMismatch)
	}

	// marginal covariance of the measured variables, also validates that
	// every hOrder entry is live
	pSmall, err := s.MarginalCovariance(hOrder)
	if err != nil {
		return err
	}

	bigM := crossCovariance(s, hOrder, h)

	sInnov := innovation(h, pSmall, r)

	var chol mat.Cholesky
	if ok := chol.Factorize(sInnov); !ok {
		return fmt.Errorf("innovation covariance not positive definite: %w", ErrNumericalInstability)
	}

	eye, err := mx.NewDenseValIdentity(m, 1.0)
	if err != nil {
		return err
	}
	sInv := mat.NewDense(m, m, nil)
	if err := chol.SolveTo(sInv, eye); err != nil {
		return fmt.Errorf("solving innovation covariance: %w", ErrNumericalInstability)
	}

	// Kalman gain K = M*S^-1
	dim := s.cov.Dim()
	k := mat.NewDense(dim, m, nil)
	k.Mul(bigM, sInv)

	var corr mat.Dense
	corr.Mul(k, bigM.T())

	// a negative posterior variance means the update is inconsistent
	for i := 0; i < dim; i++ {
		if s.cov.At(i, i)-corr.At(i, i) < 0 {
			return fmt.Errorf("negative posterior variance at %d: %w", i, ErrNumericalInstability)
		}
	}

	// subtract on the upper triangle and mirror to keep exact symmetry
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			s.cov.Set(i, j, s.cov.At(i, j)-corr.At(i, j))
		}
	}
	s.cov.MirrorUpper()

	dx := mat.NewVecDense(dim, nil)
	dx.MulVec(k, res)

	return s.ApplyCorrection(dx)
}

// InvertibleInitialize introduces newVar into the state from a measurement
// whose Jacobian hL with respect to newVar is square and invertible:
// res = hR*dx_order + hL*dx_new + n with n ~ N(0, r). The covariance grows
// by newVar.Size(); existing variables gain only cross terms with the new
// one. On any failure the state is left untouched.
func InvertibleInitialize(s *State, newVar vins.Variable, hOrder []vins.Variable, hR, hL *mat.Dense, r mat.Symmetric, res mat.Vector) error {
	if hR == nil || hL == nil || res == nil || r == nil {
		return fmt.Errorf("invalid initialization inputs: %w", ErrDimensionMismatch)
	}
	if newVar == nil || newVar.Size() <= 0 {
		return fmt.Errorf("invalid new variable: %v", newVar)
	}
	if s.FindVariable(newVar) != nil {
		return fmt.Errorf("variable already initialized in state")
	}

	n := newVar.Size()
	m := res.Len()
	lRows, lCols := hL.Dims()
	rRows, rCols := hR.Dims()
	if lRows != n || lCols != n {
		return fmt.Errorf("new variable jacobian %dx%d, variable size %d: %w", lRows, lCols, n, ErrDimensionMismatch)
	}
	if m != n || rRows != m || r.SymmetricDim() != m {
		return fmt.Errorf("jacobian rows %d, residual %d, noise %d: %w", rRows, m, r.SymmetricDim(), ErrDimensionMismatch)
	}
	small := 0
	for _, v := range hOrder {
		small += v.Size()
	}
	if rCols != small {
		return fmt.Errorf("jacobian cols %d, measured size %d: %w", rCols, small, ErrDimensionMismatch)
	}

	pSmall, err := s.MarginalCovariance(hOrder)
	if err != nil {
		return err
	}

	hLInv := mat.NewDense(n, n, nil)
	if err := hLInv.Inverse(hL); err != nil {
		return fmt.Errorf("new variable jacobian not invertible: %w", ErrNumericalInstability)
	}

	// P_LL = H_L^-1 * (H_R*P*H_R^T + R) * H_L^-T
	innov := innovation(hR, pSmall, r)
	var tmp, pLL mat.Dense
	tmp.Mul(hLInv, innov)
	pLL.Mul(&tmp, hLInv.T())

	bigM := crossCovariance(s, hOrder, hR)

	// cross covariance of the existing state with the new variable
	var cross mat.Dense
	cross.Mul(bigM, hLInv.T())
	cross.Scale(-1, &cross)

	dx := mat.NewVecDense(n, nil)
	dx.MulVec(hLInv, res)
	if err := newVar.Correct(dx); err != nil {
		return err
	}

	oldDim := s.cov.Dim()
	s.cov.Grow(n)
	s.cov.SetBlock(0, oldDim, &cross)
	s.cov.Block(oldDim, 0, n, oldDim).Copy(cross.T())
	s.cov.SetBlock(oldDim, oldDim, &pLL)
	s.cov.MirrorUpper()

	newVar.SetOffset(oldDim)
	s.InsertVariable(newVar)

	return nil
}

// Initialize introduces newVar into the state from a measurement whose
// Jacobian with respect to newVar need not be invertible:
// res = hR*dx_order + hL*dx_new + n with n ~ N(0, r). Givens rotations
// separate the system into an invertible part carrying all information about
// newVar and a pure update on the existing variables, applied when present.
// The rotations require isotropic measurement noise, which is a caller
// precondition: whiten the system first when r is not a scaled identity.
// Caller inputs are not modified.
func Initialize(s *State, newVar vins.Variable, hOrder []vins.Variable, hR, hL *mat.Dense, r mat.Symmetric, res mat.Vector) error {
	if hR == nil || hL == nil || res == nil || r == nil {
		return fmt.Errorf("invalid initialization inputs: %w", ErrDimensionMismatch)
	}
	if newVar == nil || newVar.Size() <= 0 {
		return fmt.Errorf("invalid new variable: %v", newVar)
	}
	if s.FindVariable(newVar) != nil {
		return fmt.Errorf("variable already initialized in state")
	}

	n := newVar.Size()
	m := res.Len()
	lRows, lCols := hL.Dims()
	rRows, rCols := hR.Dims()
	if lCols != n {
		return fmt.Errorf("new variable jacobian cols %d, variable size %d: %w", lCols, n, ErrDimensionMismatch)
	}
	if lRows != m || rRows != m || r.SymmetricDim() != m {
		return fmt.Errorf("jacobian rows %d/%d, residual %d, noise %d: %w", lRows, rRows, m, r.SymmetricDim(), ErrDimensionMismatch)
	}
	if m < n {
		return fmt.Errorf("%d measurement rows cannot determine a %d dimensional variable: %w", m, n, ErrDimensionMismatch)
	}

	// rotate copies so the caller system stays intact
	var lWork, rWork mat.Dense
	lWork.CloneFrom(hL)
	rWork.CloneFrom(hR)
	resWork := mat.NewVecDense(m, nil)
	resWork.CloneFromVec(res)

	matrix.GivensTriangularize(&lWork, &rWork, resWork)

	// the top rows now carry all information about the new variable
	hLInit := lWork.Slice(0, n, 0, n).(*mat.Dense)
	hRInit := rWork.Slice(0, n, 0, rCols).(*mat.Dense)
	resInit := resWork.SliceVec(0, n)
	rInit := symBlock(r, 0, n)

	if err := InvertibleInitialize(s, newVar, hOrder, hRInit, hLInit, rInit, resInit); err != nil {
		return err
	}

	// the remaining rows no longer reference the new variable: plain update
	if m > n {
		hUp := rWork.Slice(n, m, 0, rCols).(*mat.Dense)
		resUp := resWork.SliceVec(n, m)
		rUp := symBlock(r, n, m-n)
		if err := EKFUpdate(s, hOrder, hUp, resUp, rUp); err != nil {
			return err
		}
	}

	return nil
}

// AugmentClone clones the inertial pose into the sliding window under the
// current state timestamp. When camera to IMU time offset calibration is
// active the clone covariance is augmented with the first order effect of
// the offset: the clone pose moves with [lastW; v] per unit of offset,
// lastW being the body angular velocity at clone time.
func AugmentClone(s *State, lastW mat.Vector) (*types.PoseJPL, error) {
	if lastW == nil || lastW.Len() != 3 {
		return nil, fmt.Errorf("invalid angular velocity: %v", lastW)
	}
	if s.imu == nil {
		return nil, fmt.Errorf("cloning inertial pose: %w", ErrVariableNotFound)
	}

	imuPose := s.imu.Pose()
	src := s.FindVariable(imuPose)
	if src == nil {
		return nil, fmt.Errorf("cloning inertial pose: %w", ErrVariableNotFound)
	}
	// reject a non pose clone before the covariance is touched
	if _, ok := src.Clone().(*types.PoseJPL); !ok {
		return nil, fmt.Errorf("cloning inertial pose: %w", ErrTypeMismatch)
	}

	var vel mat.Vector
	if s.opts.DoCalibCameraTimeOffset {
		if s.calibDt == nil {
			return nil, fmt.Errorf("time offset variable: %w", ErrVariableNotFound)
		}
		vel = s.imu.Vel()
		if vel == nil || vel.Len() != 3 {
			return nil, fmt.Errorf("invalid inertial velocity: %v", vel)
		}
	}

	cloned, err := Clone(s, imuPose)
	if err != nil {
		return nil, err
	}
	pose, ok := cloned.(*types.PoseJPL)
	if !ok {
		return nil, fmt.Errorf("cloning inertial pose: %w", ErrTypeMismatch)
	}

	s.InsertClone(s.timestamp, pose)

	if s.opts.DoCalibCameraTimeOffset {
		// pose sensitivity to the time offset
		dnc := mat.NewVecDense(6, nil)
		for i := 0; i < 3; i++ {
			dnc.SetVec(i, lastW.AtVec(i))
			dnc.SetVec(i+3, vel.AtVec(i))
		}

		dim := s.cov.Dim()
		poseOff := pose.Offset()
		dtOff := s.calibDt.Offset()

		// Cov(:, pose) += Cov(:, dt) * dnc^T
		var add mat.Dense
		add.Mul(s.cov.Block(0, dtOff, dim, 1), dnc.T())
		colBlock := s.cov.Block(0, poseOff, dim, pose.Size())
		colBlock.Add(colBlock, &add)

		// Cov(pose, :) += dnc * Cov(dt, :), reading the dt row after the
		// column pass so the pose self block receives the quadratic term
		var addT mat.Dense
		addT.Mul(dnc, s.cov.Block(dtOff, 0, 1, dim))
		rowBlock := s.cov.Block(poseOff, 0, pose.Size(), dim)
		rowBlock.Add(rowBlock, &addT)
	}

	return pose, nil
}

// crossCovariance assembles M = Cov * H^T, one row block per live variable,
// summing the contribution of every measured variable.
func crossCovariance(s *State, hOrder []vins.Variable, h *mat.Dense) *mat.Dense {
	dim := s.cov.Dim()
	hRows, _ := h.Dims()

	// column offset of every measured variable inside h
	hID := make([]int, len(hOrder))
	it := 0
	for i, v := range hOrder {
		hID[i] = it
		it += v.Size()
	}

	bigM := mat.NewDense(dim, hRows, nil)
	for _, v := range s.vars {
		mi := mat.NewDense(v.Size(), hRows, nil)
		var tmp mat.Dense
		for i, mv := range hOrder {
			hBlock := h.Slice(0, hRows, hID[i], hID[i]+mv.Size())
			tmp.Mul(s.cov.Block(v.Offset(), mv.Offset(), v.Size(), mv.Size()), hBlock.T())
			mi.Add(mi, &tmp)
		}
		bigM.Slice(v.Offset(), v.Offset()+v.Size(), 0, hRows).(*mat.Dense).Copy(mi)
	}

	return bigM
}

// innovation returns H*P*H^T + R assembled from the upper triangles.
func innovation(h *mat.Dense, p *mat.Dense, r mat.Symmetric) *mat.SymDense {
	var hp, hph mat.Dense
	hp.Mul(h, p)
	hph.Mul(&hp, h.T())

	m := r.SymmetricDim()
	innov := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			innov.SetSym(i, j, hph.At(i, j)+r.At(i, j))
		}
	}

	return innov
}

// symBlock copies the n x n diagonal block of r rooted at (off, off).
func symBlock(r mat.Symmetric, off, n int) *mat.SymDense {
	b := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			b.SetSym(i, j, r.At(off+i, off+j))
		}
	}

	return b
}
