package scene

import (
	"fmt"
	"math"
)

const (
	// Every viewpoint after the first one is rendered this many degrees
	// further along the azimuth than its predecessor.
	AzimuthStep float64 = 70

	// Azimuth offset of the two flanking control points of a view path.
	FlankOffset float64 = 35
)

// A camera viewpoint in spherical coordinates around the origin. Angles are
// specified in degrees.
type Viewpoint struct {
	Azimuth   float64
	Elevation float64
	Tilt      float64
	Distance  float64
}

func (vp Viewpoint) String() string {
	return fmt.Sprintf("azimuth %.2f, elevation %.2f, tilt %.2f, distance %.2f", vp.Azimuth, vp.Elevation, vp.Tilt, vp.Distance)
}

// Apply the azimuth step rule to a viewpoint list. The first viewpoint keeps
// its azimuth; every other viewpoint ignores its own azimuth and uses the
// previous effective azimuth plus AzimuthStep. Azimuths are not wrapped.
//
// The input slice is not modified.
func EffectiveViewpoints(vps []Viewpoint) []Viewpoint {
	out := make([]Viewpoint, len(vps))
	for idx, vp := range vps {
		if idx > 0 {
			vp.Azimuth = out[idx-1].Azimuth + AzimuthStep
		}
		out[idx] = vp
	}
	return out
}

// Convert a tilt angle into the annotation convention used for output names:
// the tilt is negated and reduced to [0, 360).
func AnnotationTilt(tiltDeg float64) float64 {
	t := math.Mod(-tiltDeg, 360)
	switch {
	case t < 0:
		t += 360
	case t == 0:
		// math.Mod preserves the sign of -0.
		t = 0
	}
	return t
}
