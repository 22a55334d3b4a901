package renderer

import (
	"github.com/achilleasa/viewsynth/asset"
	"github.com/achilleasa/viewsynth/scene"
)

// A handle to the scene graph of a render engine. Engines keep mutable state
// (the active camera, lights, path and frame) so a Scene must only be driven
// from a single goroutine.
type Scene interface {
	// Import the model that is rendered from every viewpoint.
	ImportModel(model *asset.ModelInfo) error

	// Create the active camera, replacing any previous one.
	AddCamera(name string) error
	RemoveCamera() error

	// Place the active camera.
	SetCameraPose(pose scene.Pose) error

	// Set the strength of the uniform environment light.
	SetEnvironment(energy float64) error

	AddPointLight(light scene.Light) error
	RemoveLights() error

	// Create a path object from the segment control points and make the
	// active camera follow it.
	BindPath(path *scene.PathSegment) error
	RemovePath() error

	// Advance to a frame. Offset is the normalized position along the bound
	// path.
	SetFrame(frame int, offset float64) error

	// Render the current frame to an image file.
	RenderFrame(path string) error

	// Shutdown the engine and release its resources.
	Close() error
}
