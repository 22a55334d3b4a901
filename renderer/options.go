package renderer

import (
	"io"
	"math/rand"

	"github.com/achilleasa/viewsynth/asset"
	"github.com/achilleasa/viewsynth/scene"
)

type Options struct {
	// The model to import and its identifiers used for output names.
	Model   *asset.ModelInfo
	Synset  string
	ModelID string

	// Output directories are created under this path.
	OutputDir string

	// Inclusive frame range rendered for every viewpoint.
	FrameStart int
	FrameEnd   int

	// Image file extension.
	FileFormat string

	// If positive, cameras are placed at this distance instead of the
	// viewpoint distance.
	CameraDistance float64

	Camera scene.CameraParams
	Lights scene.LightBounds

	// Random source for light sampling.
	Rand *rand.Rand

	// The intrinsic matrix of each viewpoint is printed here if not nil.
	Diagnostics io.Writer
}
