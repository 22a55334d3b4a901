package scene

import (
	"fmt"
	"math"

	"github.com/achilleasa/viewsynth/types"
)

var ErrDegenerateGeometry = types.ErrDegenerateGeometry

// A camera placement. Poses are always derived from a Viewpoint via SolvePose.
type Pose struct {
	Position    types.Vec3
	Orientation types.Quat
}

func (p Pose) String() string {
	return fmt.Sprintf("position %v, orientation %v", p.Position, p.Orientation)
}

// Convert spherical coordinates around the origin into a cartesian position.
// Azimuth is measured in the XY plane from +X towards +Y and elevation from
// the XY plane towards +Z.
func SphericalToCartesian(dist, azimuthDeg, elevationDeg float64) types.Vec3 {
	phi := elevationDeg / 180 * math.Pi
	theta := azimuthDeg / 180 * math.Pi
	sinTheta, cosTheta := math.Sincos(theta)
	sinPhi, cosPhi := math.Sincos(phi)
	return types.Vec3{
		dist * cosTheta * cosPhi,
		dist * sinTheta * cosPhi,
		dist * sinPhi,
	}
}

// Calculate the camera pose for a viewpoint. The camera is placed on the
// viewpoint's sphere, looks at the origin with +Z up and is then rolled about
// its viewing axis by the viewpoint tilt.
func SolvePose(vp Viewpoint) (Pose, error) {
	if !(vp.Distance > 0) || math.IsInf(vp.Distance, 0) {
		return Pose{}, fmt.Errorf("%w: camera distance must be positive; got %v", ErrDegenerateGeometry, vp.Distance)
	}

	for _, angle := range []float64{vp.Azimuth, vp.Elevation, vp.Tilt} {
		if math.IsNaN(angle) || math.IsInf(angle, 0) {
			return Pose{}, fmt.Errorf("%w: viewpoint %v has a non-finite angle", ErrDegenerateGeometry, vp)
		}
	}

	pose, err := LookAtPose(SphericalToCartesian(vp.Distance, vp.Azimuth, vp.Elevation), vp.Tilt)
	if err != nil {
		return Pose{}, fmt.Errorf("solving pose for %v: %w", vp, err)
	}
	return pose, nil
}

// Calculate the pose of a camera at pos that looks at the origin and is rolled
// by tiltDeg about its viewing axis. The driver uses this for every point it
// samples along a view path.
func LookAtPose(pos types.Vec3, tiltDeg float64) (Pose, error) {
	lookAt, err := types.LookAtOriginQuat(pos)
	if err != nil {
		return Pose{}, err
	}
	roll, err := types.CameraRollQuat(pos, tiltDeg)
	if err != nil {
		return Pose{}, err
	}

	return Pose{
		Position:    pos,
		Orientation: roll.Mul(lookAt).Normalize(),
	}, nil
}

// Transform a world space point into the camera frame of the pose. The camera
// looks down its local -Z axis with +Y up.
func (p Pose) WorldToCamera(pt types.Vec3) types.Vec3 {
	return p.Orientation.Conjugate().Rotate(pt.Sub(p.Position))
}

// Rotation from world axes to camera axes. Callers transforming many points
// with the same pose should use this instead of WorldToCamera.
func (p Pose) ViewMatrix() types.Mat3 {
	return p.Orientation.Conjugate().Mat3()
}
