package types

import (
	"fmt"

	vins "github.com/StevenCui/open-vins"
	"gonum.org/v1/gonum/mat"
)

// JPLQuat is a unit quaternion state variable in JPL convention.
// Its value is stored as [x y z w] and its error state is the 3 DoF
// rotation angle vector, composed by quaternion left multiplication.
type JPLQuat struct {
	// off is the variable location in the covariance matrix
	off int
	// val is the current estimate: unit quaternion [x y z w]
	val *mat.VecDense
	// fej is the first-estimate quaternion
	fej *mat.VecDense
}

// NewJPLQuat creates new JPLQuat set to the identity rotation
func NewJPLQuat() *JPLQuat {
	return &JPLQuat{
		off: -1,
		val: mat.NewVecDense(4, []float64{0, 0, 0, 1}),
		fej: mat.NewVecDense(4, []float64{0, 0, 0, 1}),
	}
}

// Size returns the error state dimension
func (q *JPLQuat) Size() int {
	return 3
}

// Offset returns the variable location in the covariance matrix
func (q *JPLQuat) Offset() int {
	return q.off
}

// SetOffset sets the variable location in the covariance matrix
func (q *JPLQuat) SetOffset(off int) {
	q.off = off
}

// Value returns a copy of the current quaternion estimate
func (q *JPLQuat) Value() mat.Vector {
	val := &mat.VecDense{}
	val.CloneFromVec(q.val)

	return val
}

// SetValue sets the quaternion estimate to val which is expected to be unit norm.
// It returns error if the dimension of val is invalid.
func (q *JPLQuat) SetValue(val mat.Vector) error {
	if val.Len() != 4 {
		return fmt.Errorf("invalid quaternion dimension: %d", val.Len())
	}
	q.val.CloneFromVec(val)

	return nil
}

// Fej returns a copy of the first-estimate quaternion
func (q *JPLQuat) Fej() mat.Vector {
	fej := &mat.VecDense{}
	fej.CloneFromVec(q.fej)

	return fej
}

// SetFej sets the first-estimate quaternion to fej.
// It returns error if the dimension of fej is invalid.
func (q *JPLQuat) SetFej(fej mat.Vector) error {
	if fej.Len() != 4 {
		return fmt.Errorf("invalid first-estimate dimension: %d", fej.Len())
	}
	q.fej.CloneFromVec(fej)

	return nil
}

// Clone returns an independent copy of the variable
func (q *JPLQuat) Clone() vins.Variable {
	c := NewJPLQuat()
	c.val.CloneFromVec(q.val)
	c.fej.CloneFromVec(q.fej)

	return c
}

// Match returns q if other is this very variable and nil otherwise
func (q *JPLQuat) Match(other vins.Variable) vins.Variable {
	if q == other {
		return q
	}

	return nil
}

// Correct composes the small angle correction dx with the current estimate:
// the corrected quaternion is quatnorm([dx/2; 1]) x q.
// It returns error if the dimension of dx is invalid.
func (q *JPLQuat) Correct(dx mat.Vector) error {
	if dx.Len() != 3 {
		return fmt.Errorf("invalid correction dimension: %d", dx.Len())
	}

	dq := quatNorm(mat.NewVecDense(4, []float64{
		0.5 * dx.AtVec(0),
		0.5 * dx.AtVec(1),
		0.5 * dx.AtVec(2),
		1.0,
	}))
	q.val = quatMultiply(dq, q.val)

	return nil
}

// Rot returns the 3x3 rotation matrix of the current estimate
func (q *JPLQuat) Rot() *mat.Dense {
	return quatToRot(q.val)
}

// skew returns the skew symmetric matrix of a 3 dimensional vector
func skew(v mat.Vector) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -v.AtVec(2), v.AtVec(1),
		v.AtVec(2), 0, -v.AtVec(0),
		-v.AtVec(1), v.AtVec(0), 0,
	})
}

// quatNorm normalizes q and enforces the positive scalar part convention
func quatNorm(q *mat.VecDense) *mat.VecDense {
	out := &mat.VecDense{}
	out.CloneFromVec(q)
	if out.AtVec(3) < 0 {
		out.ScaleVec(-1, out)
	}
	out.ScaleVec(1/mat.Norm(out, 2), out)

	return out
}

// quatMultiply returns the JPL quaternion product q x p
func quatMultiply(q, p *mat.VecDense) *mat.VecDense {
	qm := mat.NewDense(4, 4, nil)
	qm.Slice(0, 3, 0, 3).(*mat.Dense).Sub(eye3scaled(q.AtVec(3)), skew(segment(q, 0, 3)))
	for i := 0; i < 3; i++ {
		qm.Set(i, 3, q.AtVec(i))
		qm.Set(3, i, -q.AtVec(i))
	}
	qm.Set(3, 3, q.AtVec(3))

	out := mat.NewVecDense(4, nil)
	out.MulVec(qm, p)

	return quatNorm(out)
}

// quatToRot returns the rotation matrix of a JPL quaternion [x y z w]
func quatToRot(q *mat.VecDense) *mat.Dense {
	qv := segment(q, 0, 3)
	w := q.AtVec(3)

	rot := eye3scaled(2*w*w - 1)

	qx := skew(qv)
	qx.Scale(2*w, qx)
	rot.Sub(rot, qx)

	outer := mat.NewDense(3, 3, nil)
	outer.Outer(2, qv, qv)
	rot.Add(rot, outer)

	return rot
}

func eye3scaled(v float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{v, 0, 0, 0, v, 0, 0, 0, v})
}
