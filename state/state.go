package state

import (
	"fmt"
	"sync"

	vins "github.com/StevenCui/open-vins"
	"github.com/StevenCui/open-vins/estimate"
	"github.com/StevenCui/open-vins/types"
	"gonum.org/v1/gonum/mat"
)

// Options configures the estimated state
type Options struct {
	// DoCalibCameraTimeOffset enables estimation of the camera to IMU time offset
	DoCalibCameraTimeOffset bool
	// MaxClones is the sliding window length consumed by the external
	// marginalizer
	MaxClones int
}

// State is the estimated navigation state: an ordered collection of variables
// together with the joint covariance of their error states. Every operation
// which reads or mutates the state assumes a consistent offset layout for its
// whole duration, so concurrent callers must serialize through Lock and
// Unlock.
type State struct {
	mu sync.Mutex
	// timestamp is the time the state estimate refers to
	timestamp float64
	// cov is the joint error state covariance
	cov *Covariance
	// vars are the live variables in covariance block order
	vars []vins.Variable
	// imu is the primary inertial variable
	imu vins.Inertial
	// calibDt is the camera to IMU time offset, nil when not estimated
	calibDt *types.Vec
	// clones is the sliding window of historical poses keyed by timestamp
	clones map[float64]*types.PoseJPL
	opts   Options
}

// New creates a new state holding the given inertial variable at offset 0.
// When opts.DoCalibCameraTimeOffset is set a scalar time offset variable is
// appended after the inertial variable. The covariance starts out zeroed;
// the caller seeds the prior through the Cov handle.
func New(imu vins.Inertial, opts Options) (*State, error) {
	if imu == nil || imu.Size() <= 0 {
		return nil, fmt.Errorf("invalid inertial variable: %v", imu)
	}

	s := &State{
		cov:    NewCovariance(0),
		imu:    imu,
		clones: make(map[float64]*types.PoseJPL),
		opts:   opts,
	}

	imu.SetOffset(0)
	s.vars = append(s.vars, imu)
	dim := imu.Size()

	if opts.DoCalibCameraTimeOffset {
		dt := types.NewVec(1)
		dt.SetOffset(dim)
		s.vars = append(s.vars, dt)
		s.calibDt = dt
		dim++
	}

	s.cov.Grow(dim)

	return s, nil
}

// NewEmpty creates a state with no variables and an empty covariance.
// Variables are assembled through InsertVariable and the Cov handle, or by
// the initialization operations.
func NewEmpty(opts Options) *State {
	return &State{
		cov:    NewCovariance(0),
		clones: make(map[float64]*types.PoseJPL),
		opts:   opts,
	}
}

// Lock acquires the state for exclusive use.
func (s *State) Lock() { s.mu.Lock() }

// Unlock releases the state.
func (s *State) Unlock() { s.mu.Unlock() }

// Timestamp returns the time the state estimate refers to.
func (s *State) Timestamp() float64 {
	return s.timestamp
}

// SetTimestamp sets the state time.
func (s *State) SetTimestamp(t float64) {
	s.timestamp = t
}

// Cov returns the live covariance handle.
func (s *State) Cov() *Covariance {
	return s.cov
}

// Dim returns the dimension of the joint error state.
func (s *State) Dim() int {
	return s.cov.Dim()
}

// Options returns the state options.
func (s *State) Options() Options {
	return s.opts
}

// IMU returns the primary inertial variable.
func (s *State) IMU() vins.Inertial {
	return s.imu
}

// CalibDtCAMtoIMU returns the camera to IMU time offset variable or nil when
// the offset is not estimated.
func (s *State) CalibDtCAMtoIMU() *types.Vec {
	return s.calibDt
}

// Variables returns the live variables in covariance block order.
func (s *State) Variables() []vins.Variable {
	vars := make([]vins.Variable, len(s.vars))
	copy(vars, s.vars)

	return vars
}

// InsertVariable appends v to the live variable collection. The variable
// offset must already delimit its block of the covariance.
func (s *State) InsertVariable(v vins.Variable) {
	s.vars = append(s.vars, v)
}

// FindVariable returns the live variable or sub-variable identical to
// target, or nil when no live variable matches.
func (s *State) FindVariable(target vins.Variable) vins.Variable {
	for _, v := range s.vars {
		if m := v.Match(target); m != nil {
			return m
		}
	}

	return nil
}

// InsertClone registers the pose clone under the given timestamp.
func (s *State) InsertClone(timestamp float64, pose *types.PoseJPL) {
	s.clones[timestamp] = pose
}

// CloneAt returns the pose clone registered at the given timestamp or nil.
func (s *State) CloneAt(timestamp float64) *types.PoseJPL {
	return s.clones[timestamp]
}

// NumClones returns the number of registered pose clones.
func (s *State) NumClones() int {
	return len(s.clones)
}

// Clones returns a copy of the sliding window keyed by timestamp.
func (s *State) Clones() map[float64]*types.PoseJPL {
	clones := make(map[float64]*types.PoseJPL, len(s.clones))
	for ts, p := range s.clones {
		clones[ts] = p
	}

	return clones
}

// MarginalCovariance returns the covariance restricted to the requested
// variables, rows and columns concatenated in the requested order.
// It returns error when a requested variable does not delimit a valid block
// of the current covariance.
func (s *State) MarginalCovariance(order []vins.Variable) (*mat.Dense, error) {
	dim := 0
	for _, v := range order {
		if v == nil || v.Offset() < 0 || v.Offset()+v.Size() > s.cov.Dim() {
			return nil, fmt.Errorf("marginal covariance: %w", ErrVariableNotFound)
		}
		dim += v.Size()
	}
	if dim == 0 {
		return nil, fmt.Errorf("marginal covariance of no variables: %w", ErrDimensionMismatch)
	}

	small := mat.NewDense(dim, dim, nil)
	i := 0
	for _, vi := range order {
		j := 0
		for _, vj := range order {
			src := s.cov.Block(vi.Offset(), vj.Offset(), vi.Size(), vj.Size())
			small.Slice(i, i+vi.Size(), j, j+vj.Size()).(*mat.Dense).Copy(src)
			j += vj.Size()
		}
		i += vi.Size()
	}

	return small, nil
}

// ApplyCorrection dispatches the correction dx to every live variable, each
// receiving the slice of dx delimited by its own offset and size. How a
// correction composes with the current value is up to the variable.
func (s *State) ApplyCorrection(dx mat.Vector) error {
	if dx.Len() != s.cov.Dim() {
		return fmt.Errorf("correction length %d, state dimension %d: %w", dx.Len(), s.cov.Dim(), ErrDimensionMismatch)
	}

	for _, v := range s.vars {
		seg := mat.NewVecDense(v.Size(), nil)
		for i := 0; i < v.Size(); i++ {
			seg.SetVec(i, dx.AtVec(v.Offset()+i))
		}
		if err := v.Correct(seg); err != nil {
			return err
		}
	}

	return nil
}

// Estimate returns a snapshot of the live variable matching v: its current
// value together with its marginal error state covariance.
func (s *State) Estimate(v vins.Variable) (*estimate.Base, error) {
	live := s.FindVariable(v)
	if live == nil {
		return nil, fmt.Errorf("estimate: %w", ErrVariableNotFound)
	}

	marg, err := s.MarginalCovariance([]vins.Variable{live})
	if err != nil {
		return nil, err
	}

	cov := mat.NewSymDense(live.Size(), nil)
	for i := 0; i < live.Size(); i++ {
		for j := i; j < live.Size(); j++ {
			cov.SetSym(i, j, marg.At(i, j))
		}
	}

	return estimate.NewBaseWithCov(live.Value(), cov)
}
