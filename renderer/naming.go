package renderer

import (
	"fmt"
	"math"
	"strings"

	"github.com/achilleasa/viewsynth/scene"
)

func roundField(v float64) int {
	return int(math.RoundToEven(v))
}

// Build the name of the directory that receives the frames of a viewpoint.
// Numeric fields are rounded half to even and the tilt is reported using
// the annotation convention (negated, modulo 360).
func OutputDirName(synset, modelID string, vp scene.Viewpoint) string {
	return fmt.Sprintf(
		"%s_%s_a%03d_e%03d_t%03d_d%03d",
		synset, modelID,
		roundField(vp.Azimuth),
		roundField(vp.Elevation),
		roundField(scene.AnnotationTilt(vp.Tilt)),
		roundField(vp.Distance),
	)
}

// Build the file name of the count-th frame of a viewpoint.
func FrameFileName(count int, format string) string {
	return fmt.Sprintf("frame_%d.%s", count, strings.TrimPrefix(format, "."))
}
