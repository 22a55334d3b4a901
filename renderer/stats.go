package renderer

import "time"

type ViewpointStats struct {
	// Index in the batch.
	Index int

	// Effective azimuth and the output directory the frames were written to.
	Azimuth   float64
	OutputDir string

	// Number of rendered frames and point lights.
	Frames int
	Lights int

	// Sampled environment light energy.
	Environment float64

	// Total render time for all frames of the viewpoint.
	RenderTime time.Duration
}

type BatchStats struct {
	// Individual viewpoint stats.
	Viewpoints []ViewpointStats

	// Total number of frames rendered.
	Frames int

	// Total time including model import.
	RenderTime time.Duration
}
