package renderer

import (
	"testing"

	"github.com/achilleasa/viewsynth/scene"
)

func TestOutputDirName(t *testing.T) {
	type spec struct {
		vp  scene.Viewpoint
		exp string
	}
	specs := []spec{
		{scene.Viewpoint{Azimuth: 0, Elevation: 0, Tilt: 0, Distance: 4}, "syn_md5_a000_e000_t000_d004"},
		{scene.Viewpoint{Azimuth: 12.4, Elevation: 7.6, Tilt: 15, Distance: 3.2}, "syn_md5_a012_e008_t345_d003"},
		// Ties round to the nearest even integer.
		{scene.Viewpoint{Azimuth: 2.5, Elevation: 3.5, Tilt: -0.5, Distance: 4.5}, "syn_md5_a002_e004_t000_d004"},
		{scene.Viewpoint{Azimuth: 430, Elevation: -10, Tilt: -90, Distance: 12}, "syn_md5_a430_e-10_t090_d012"},
		{scene.Viewpoint{Azimuth: 150, Elevation: 45, Tilt: 720, Distance: 1}, "syn_md5_a150_e045_t000_d001"},
	}

	for index, s := range specs {
		if got := OutputDirName("syn", "md5", s.vp); got != s.exp {
			t.Fatalf("[spec %d] expected %s; got %s", index, s.exp, got)
		}
	}
}

func TestFrameFileName(t *testing.T) {
	type spec struct {
		count  int
		format string
		exp    string
	}
	specs := []spec{
		{0, "jpg", "frame_0.jpg"},
		{12, ".png", "frame_12.png"},
	}

	for index, s := range specs {
		if got := FrameFileName(s.count, s.format); got != s.exp {
			t.Fatalf("[spec %d] expected %s; got %s", index, s.exp, got)
		}
	}
}
