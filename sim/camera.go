package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/StevenCui/open-vins/types"
)

// Camera projects landmarks into normalized image coordinates.
// The camera frame coincides with the body frame and the optical axis is the
// body z axis.
type Camera struct{}

// NewCamera creates new Camera
func NewCamera() *Camera {
	return &Camera{}
}

// Measure returns the normalized bearing [x/z y/z] of the landmark observed
// from the given pose.
// It returns error if the landmark projects behind the camera.
func (c *Camera) Measure(pose *types.PoseJPL, landmark mat.Vector) (*mat.VecDense, error) {
	if pose == nil || landmark == nil || landmark.Len() != 3 {
		return nil, fmt.Errorf("invalid projection inputs")
	}

	pos := pose.Pos()
	rel := mat.NewVecDense(3, nil)
	for i := 0; i < 3; i++ {
		rel.SetVec(i, landmark.AtVec(i)-pos.AtVec(i))
	}

	inBody := mat.NewVecDense(3, nil)
	inBody.MulVec(pose.Rot(), rel)

	depth := inBody.AtVec(2)
	if depth <= 0 {
		return nil, fmt.Errorf("landmark behind the camera: depth %v", depth)
	}

	return mat.NewVecDense(2, []float64{
		inBody.AtVec(0) / depth,
		inBody.AtVec(1) / depth,
	}), nil
}

// Jacobians returns the 2x6 pose and 2x3 landmark Jacobians of the bearing
// measurement, computed with central differences on the pose error state and
// on the landmark position.
// It returns error if the landmark does not project in front of the camera.
func (c *Camera) Jacobians(pose *types.PoseJPL, landmark mat.Vector) (*mat.Dense, *mat.Dense, error) {
	if _, err := c.Measure(pose, landmark); err != nil {
		return nil, nil, err
	}

	hPose := mat.NewDense(2, 6, nil)
	fd.Jacobian(hPose, func(y, dx []float64) {
		probe := pose.Clone().(*types.PoseJPL)
		if err := probe.Correct(mat.NewVecDense(6, dx)); err != nil {
			y[0], y[1] = math.NaN(), math.NaN()
			return
		}
		uv, err := c.Measure(probe, landmark)
		if err != nil {
			y[0], y[1] = math.NaN(), math.NaN()
			return
		}
		y[0], y[1] = uv.AtVec(0), uv.AtVec(1)
	}, make([]float64, 6), &fd.JacobianSettings{
		Formula:    fd.Central,
		Concurrent: true,
	})

	hLm := mat.NewDense(2, 3, nil)
	fd.Jacobian(hLm, func(y, dx []float64) {
		probe := mat.NewVecDense(3, nil)
		for i := 0; i < 3; i++ {
			probe.SetVec(i, landmark.AtVec(i)+dx[i])
		}
		uv, err := c.Measure(pose, probe)
		if err != nil {
			y[0], y[1] = math.NaN(), math.NaN()
			return
		}
		y[0], y[1] = uv.AtVec(0), uv.AtVec(1)
	}, make([]float64, 3), &fd.JacobianSettings{
		Formula:    fd.Central,
		Concurrent: true,
	})

	return hPose, hLm, nil
}
