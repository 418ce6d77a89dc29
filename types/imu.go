package types

import (
	"fmt"

	vins "github.com/StevenCui/open-vins"
	"gonum.org/v1/gonum/mat"
)

// IMU is the primary inertial state variable: pose, velocity, gyroscope bias
// and accelerometer bias. Its value is the 16 dimensional
// [q; p; v; bg; ba] stack, its error state is 15 dimensional.
type IMU struct {
	// off is the variable location in the covariance matrix
	off int
	// pose is the 6 DoF pose sub-variable
	pose *PoseJPL
	// v is the linear velocity sub-variable
	v *Vec
	// bg is the gyroscope bias sub-variable
	bg *Vec
	// ba is the accelerometer bias sub-variable
	ba *Vec
}

// NewIMU creates new IMU at the identity pose with zero velocity and biases
func NewIMU() *IMU {
	return &IMU{
		off:  -1,
		pose: NewPoseJPL(),
		v:    NewVec(3),
		bg:   NewVec(3),
		ba:   NewVec(3),
	}
}

// Size returns the error state dimension
func (i *IMU) Size() int {
	return 15
}

// Offset returns the variable location in the covariance matrix
func (i *IMU) Offset() int {
	return i.off
}

// SetOffset sets the variable location in the covariance matrix and cascades
// it to the sub-variables: pose at off, velocity at off+6, gyroscope bias at
// off+9 and accelerometer bias at off+12.
func (i *IMU) SetOffset(off int) {
	i.off = off
	i.pose.SetOffset(off)
	i.v.SetOffset(off + 6)
	i.bg.SetOffset(off + 9)
	i.ba.SetOffset(off + 12)
}

// Value returns a copy of the current [q; p; v; bg; ba] estimate
func (i *IMU) Value() mat.Vector {
	out := mat.NewVecDense(16, nil)
	parts := []mat.Vector{i.pose.Value(), i.v.Value(), i.bg.Value(), i.ba.Value()}
	at := 0
	for _, p := range parts {
		for k := 0; k < p.Len(); k++ {
			out.SetVec(at, p.AtVec(k))
			at++
		}
	}

	return out
}

// SetValue sets the inertial estimate to the 16 dimensional stack val.
// It returns error if the dimension of val is invalid.
func (i *IMU) SetValue(val mat.Vector) error {
	if val.Len() != 16 {
		return fmt.Errorf("invalid inertial dimension: %d", val.Len())
	}
	if err := i.pose.SetValue(segment(val, 0, 7)); err != nil {
		return err
	}
	if err := i.v.SetValue(segment(val, 7, 3)); err != nil {
		return err
	}
	if err := i.bg.SetValue(segment(val, 10, 3)); err != nil {
		return err
	}

	return i.ba.SetValue(segment(val, 13, 3))
}

// Fej returns a copy of the first-estimate [q; p; v; bg; ba] value
func (i *IMU) Fej() mat.Vector {
	out := mat.NewVecDense(16, nil)
	parts := []mat.Vector{i.pose.Fej(), i.v.Fej(), i.bg.Fej(), i.ba.Fej()}
	at := 0
	for _, p := range parts {
		for k := 0; k < p.Len(); k++ {
			out.SetVec(at, p.AtVec(k))
			at++
		}
	}

	return out
}

// SetFej sets the first-estimate value to the 16 dimensional stack fej.
// It returns error if the dimension of fej is invalid.
func (i *IMU) SetFej(fej mat.Vector) error {
	if fej.Len() != 16 {
		return fmt.Errorf("invalid first-estimate dimension: %d", fej.Len())
	}
	if err := i.pose.SetFej(segment(fej, 0, 7)); err != nil {
		return err
	}
	if err := i.v.SetFej(segment(fej, 7, 3)); err != nil {
		return err
	}
	if err := i.bg.SetFej(segment(fej, 10, 3)); err != nil {
		return err
	}

	return i.ba.SetFej(segment(fej, 13, 3))
}

// Clone returns an independent copy of the variable
func (i *IMU) Clone() vins.Variable {
	c := NewIMU()
	c.pose = i.pose.Clone().(*PoseJPL)
	c.v = i.v.Clone().(*Vec)
	c.bg = i.bg.Clone().(*Vec)
	c.ba = i.ba.Clone().(*Vec)

	return c
}

// Match returns the variable itself or the matching sub-variable when other
// is the inertial variable or any of its constituents, and nil otherwise
func (i *IMU) Match(other vins.Variable) vins.Variable {
	if i == other {
		return i
	}
	for _, sub := range []vins.Variable{i.pose, i.v, i.bg, i.ba} {
		if m := sub.Match(other); m != nil {
			return m
		}
	}

	return nil
}

// Correct composes the 15 dimensional correction dx with the current
// estimate, slice by sub-variable.
// It returns error if the dimension of dx is invalid.
func (i *IMU) Correct(dx mat.Vector) error {
	if dx.Len() != 15 {
		return fmt.Errorf("invalid correction dimension: %d", dx.Len())
	}
	if err := i.pose.Correct(segment(dx, 0, 6)); err != nil {
		return err
	}
	if err := i.v.Correct(segment(dx, 6, 3)); err != nil {
		return err
	}
	if err := i.bg.Correct(segment(dx, 9, 3)); err != nil {
		return err
	}

	return i.ba.Correct(segment(dx, 12, 3))
}

// Pose returns the pose sub-variable
func (i *IMU) Pose() vins.Variable {
	return i.pose
}

// Vel returns a copy of the current linear velocity estimate
func (i *IMU) Vel() mat.Vector {
	return i.v.Value()
}

// V returns the velocity sub-variable
func (i *IMU) V() *Vec {
	return i.v
}

// Bg returns the gyroscope bias sub-variable
func (i *IMU) Bg() *Vec {
	return i.bg
}

// Ba returns the accelerometer bias sub-variable
func (i *IMU) Ba() *Vec {
	return i.ba
}

// Quat returns a copy of the current orientation estimate
func (i *IMU) Quat() mat.Vector {
	return i.pose.Quat()
}

// Pos returns a copy of the current position estimate
func (i *IMU) Pos() mat.Vector {
	return i.pose.Pos()
}

// Rot returns the 3x3 rotation matrix of the current orientation estimate
func (i *IMU) Rot() *mat.Dense {
	return i.pose.Rot()
}
