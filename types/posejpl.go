package types

import (
	"fmt"

	vins "github.com/StevenCui/open-vins"
	"gonum.org/v1/gonum/mat"
)

// PoseJPL is a 6 DoF pose variable composed of a JPL quaternion orientation
// and a 3 dimensional position. Its value is the 7 dimensional [q; p] stack,
// its error state is [dtheta; dp].
type PoseJPL struct {
	// off is the variable location in the covariance matrix
	off int
	// q is the orientation sub-variable
	q *JPLQuat
	// p is the position sub-variable
	p *Vec
}

// NewPoseJPL creates new PoseJPL set to the identity pose
func NewPoseJPL() *PoseJPL {
	return &PoseJPL{
		off: -1,
		q:   NewJPLQuat(),
		p:   NewVec(3),
	}
}

// Size returns the error state dimension
func (ps *PoseJPL) Size() int {
	return 6
}

// Offset returns the variable location in the covariance matrix
func (ps *PoseJPL) Offset() int {
	return ps.off
}

// SetOffset sets the variable location in the covariance matrix.
// Sub-variable offsets are kept consistent: the orientation block starts at
// off and the position block at off+3.
func (ps *PoseJPL) SetOffset(off int) {
	ps.off = off
	ps.q.SetOffset(off)
	ps.p.SetOffset(off + 3)
}

// Value returns a copy of the current [q; p] estimate
func (ps *PoseJPL) Value() mat.Vector {
	out := mat.NewVecDense(7, nil)
	q := ps.q.Value()
	p := ps.p.Value()
	for i := 0; i < 4; i++ {
		out.SetVec(i, q.AtVec(i))
	}
	for i := 0; i < 3; i++ {
		out.SetVec(4+i, p.AtVec(i))
	}

	return out
}

// SetValue sets the pose estimate to the 7 dimensional [q; p] stack val.
// It returns error if the dimension of val is invalid.
func (ps *PoseJPL) SetValue(val mat.Vector) error {
	if val.Len() != 7 {
		return fmt.Errorf("invalid pose dimension: %d", val.Len())
	}
	if err := ps.q.SetValue(segment(val, 0, 4)); err != nil {
		return err
	}

	return ps.p.SetValue(segment(val, 4, 3))
}

// Fej returns a copy of the first-estimate [q; p] value
func (ps *PoseJPL) Fej() mat.Vector {
	out := mat.NewVecDense(7, nil)
	q := ps.q.Fej()
	p := ps.p.Fej()
	for i := 0; i < 4; i++ {
		out.SetVec(i, q.AtVec(i))
	}
	for i := 0; i < 3; i++ {
		out.SetVec(4+i, p.AtVec(i))
	}

	return out
}

// SetFej sets the first-estimate value to the 7 dimensional stack fej.
// It returns error if the dimension of fej is invalid.
func (ps *PoseJPL) SetFej(fej mat.Vector) error {
	if fej.Len() != 7 {
		return fmt.Errorf("invalid first-estimate dimension: %d", fej.Len())
	}
	if err := ps.q.SetFej(segment(fej, 0, 4)); err != nil {
		return err
	}

	return ps.p.SetFej(segment(fej, 4, 3))
}

// Clone returns an independent copy of the variable
func (ps *PoseJPL) Clone() vins.Variable {
	c := NewPoseJPL()
	c.q = ps.q.Clone().(*JPLQuat)
	c.p = ps.p.Clone().(*Vec)

	return c
}

// Match returns the pose itself or the matching sub-variable when other is
// the pose, its orientation or its position, and nil otherwise
func (ps *PoseJPL) Match(other vins.Variable) vins.Variable {
	if ps == other {
		return ps
	}
	if m := ps.q.Match(other); m != nil {
		return m
	}
	if m := ps.p.Match(other); m != nil {
		return m
	}

	return nil
}

// Correct composes the 6 dimensional correction dx with the current estimate:
// dx[0:3] is composed with the orientation and dx[3:6] added to the position.
// It returns error if the dimension of dx is invalid.
func (ps *PoseJPL) Correct(dx mat.Vector) error {
	if dx.Len() != 6 {
		return fmt.Errorf("invalid correction dimension: %d", dx.Len())
	}
	if err := ps.q.Correct(segment(dx, 0, 3)); err != nil {
		return err
	}

	return ps.p.Correct(segment(dx, 3, 3))
}

// Q returns the orientation sub-variable
func (ps *PoseJPL) Q() *JPLQuat {
	return ps.q
}

// P returns the position sub-variable
func (ps *PoseJPL) P() *Vec {
	return ps.p
}

// Quat returns a copy of the current quaternion estimate
func (ps *PoseJPL) Quat() mat.Vector {
	return ps.q.Value()
}

// Pos returns a copy of the current position estimate
func (ps *PoseJPL) Pos() mat.Vector {
	return ps.p.Value()
}

// Rot returns the 3x3 rotation matrix of the current orientation estimate
func (ps *PoseJPL) Rot() *mat.Dense {
	return ps.q.Rot()
}
