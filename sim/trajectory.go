package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sample is a single trajectory sample
type Sample struct {
	// Quat is the global to body orientation in JPL [x y z w] order
	Quat *mat.VecDense
	// Pos is the body position in the global frame
	Pos *mat.VecDense
	// Vel is the linear velocity in the global frame
	Vel *mat.VecDense
	// AngVel is the angular velocity in the body frame
	AngVel *mat.VecDense
}

// Sinusoid is an analytic trajectory which travels a horizontal circle at a
// constant rate with the heading tangent to the circle, while the height
// oscillates at twice the circle rate.
type Sinusoid struct {
	// radius is the circle radius
	radius float64
	// omega is the circle rate
	omega float64
	// amp is the height oscillation amplitude
	amp float64
}

// NewSinusoid creates new Sinusoid trajectory.
// It returns error if radius or omega is not positive or amp is negative.
func NewSinusoid(radius, omega, amp float64) (*Sinusoid, error) {
	if radius <= 0 || omega <= 0 || amp < 0 {
		return nil, fmt.Errorf("invalid trajectory parameters: radius %v, omega %v, amp %v", radius, omega, amp)
	}

	return &Sinusoid{
		radius: radius,
		omega:  omega,
		amp:    amp,
	}, nil
}

// At returns the trajectory sample at time t
func (s *Sinusoid) At(t float64) Sample {
	th := s.omega * t

	pos := mat.NewVecDense(3, []float64{
		s.radius * math.Sin(th),
		s.radius * (1 - math.Cos(th)),
		s.amp * math.Sin(2*th),
	})
	vel := mat.NewVecDense(3, []float64{
		s.radius * s.omega * math.Cos(th),
		s.radius * s.omega * math.Sin(th),
		2 * s.amp * s.omega * math.Cos(2*th),
	})
	quat := mat.NewVecDense(4, []float64{0, 0, math.Sin(th / 2), math.Cos(th / 2)})
	angVel := mat.NewVecDense(3, []float64{0, 0, s.omega})

	return Sample{
		Quat:   quat,
		Pos:    pos,
		Vel:    vel,
		AngVel: angVel,
	}
}

// PoseValue returns the stacked [q; p] pose value at time t
func (s *Sinusoid) PoseValue(t float64) *mat.VecDense {
	smp := s.At(t)

	out := mat.NewVecDense(7, nil)
	for i := 0; i < 4; i++ {
		out.SetVec(i, smp.Quat.AtVec(i))
	}
	for i := 0; i < 3; i++ {
		out.SetVec(4+i, smp.Pos.AtVec(i))
	}

	return out
}

// IMUValue returns the stacked [q; p; v; bg; ba] inertial value at time t.
// The biases are zero.
func (s *Sinusoid) IMUValue(t float64) *mat.VecDense {
	smp := s.At(t)

	out := mat.NewVecDense(16, nil)
	for i := 0; i < 4; i++ {
		out.SetVec(i, smp.Quat.AtVec(i))
	}
	for i := 0; i < 3; i++ {
		out.SetVec(4+i, smp.Pos.AtVec(i))
		out.SetVec(7+i, smp.Vel.AtVec(i))
	}

	return out
}
