package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/achilleasa/viewsynth/types"
)

var ErrInvalidPath = errors.New("scene: invalid path")

// Maximum spline degree used for view paths.
const maxPathDegree = 2

// An open (clamped) uniform B-spline through which the camera travels while a
// viewpoint's frames are rendered. The curve starts at the first control point
// and ends at the last one.
type PathSegment struct {
	Points []types.Vec3
	Degree int

	knots []float64
}

// Create a path segment. The degree must be in [1, len(points)-1].
func NewPathSegment(points []types.Vec3, degree int) (*PathSegment, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 control points; got %d", ErrInvalidPath, len(points))
	}
	if degree < 1 || degree >= len(points) {
		return nil, fmt.Errorf("%w: degree %d is not supported for %d control points", ErrInvalidPath, degree, len(points))
	}
	for idx, pt := range points {
		if pt.IsInvalid() {
			return nil, fmt.Errorf("%w: control point %d is not finite", ErrInvalidPath, idx)
		}
	}

	ps := &PathSegment{
		Points: append([]types.Vec3(nil), points...),
		Degree: degree,
	}
	ps.knots = clampedKnots(len(points), degree)
	return ps, nil
}

// Build the path used for animating a viewpoint: the primary camera position
// followed by positions FlankOffset degrees before and after it on the same
// sphere.
func NewViewPath(vp Viewpoint) (*PathSegment, error) {
	if !(vp.Distance > 0) {
		return nil, fmt.Errorf("%w: camera distance must be positive; got %v", ErrDegenerateGeometry, vp.Distance)
	}
	points := []types.Vec3{
		SphericalToCartesian(vp.Distance, vp.Azimuth, vp.Elevation),
		SphericalToCartesian(vp.Distance, vp.Azimuth-FlankOffset, vp.Elevation),
		SphericalToCartesian(vp.Distance, vp.Azimuth+FlankOffset, vp.Elevation),
	}
	degree := len(points) - 1
	if degree > maxPathDegree {
		degree = maxPathDegree
	}
	return NewPathSegment(points, degree)
}

// Generate a clamped uniform knot vector for n control points.
func clampedKnots(n, degree int) []float64 {
	numKnots := n + degree + 1
	knots := make([]float64, numKnots)
	spans := n - degree
	for i := 0; i < numKnots; i++ {
		switch {
		case i <= degree:
			knots[i] = 0
		case i >= n:
			knots[i] = 1
		default:
			knots[i] = float64(i-degree) / float64(spans)
		}
	}
	return knots
}

// Evaluate the path at the normalized parameter u. Values outside [0, 1] are
// clamped.
func (ps *PathSegment) Sample(u float64) types.Vec3 {
	if math.IsNaN(u) || u <= 0 {
		return ps.Points[0]
	}
	if u >= 1 {
		return ps.Points[len(ps.Points)-1]
	}

	// Locate the knot span containing u.
	p := ps.Degree
	span := p
	for span < len(ps.Points)-1 && u >= ps.knots[span+1] {
		span++
	}

	// de Boor's algorithm.
	d := make([]types.Vec3, p+1)
	for j := 0; j <= p; j++ {
		d[j] = ps.Points[span-p+j]
	}
	for r := 1; r <= p; r++ {
		for j := p; j >= r; j-- {
			i := span - p + j
			alpha := (u - ps.knots[i]) / (ps.knots[i+p+1-r] - ps.knots[i])
			d[j] = d[j-1].Mul(1 - alpha).Add(d[j].Mul(alpha))
		}
	}
	return d[p]
}

// Calculate the normalized path offset for a frame within [start, end].
func FrameOffset(frame, start, end int) float64 {
	if end == start {
		return 0
	}
	return float64(frame-start) / float64(end-start)
}
