package scene

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/achilleasa/viewsynth/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSphericalToCartesian(t *testing.T) {
	type spec struct {
		dist, azimuth, elevation float64
		exp                      types.Vec3
	}
	specs := []spec{
		{4, 0, 0, types.Vec3{4, 0, 0}},
		{2, 90, 0, types.Vec3{0, 2, 0}},
		{3, 0, 90, types.Vec3{0, 0, 3}},
		{1, 180, -90, types.Vec3{0, 0, -1}},
		{2, 45, 0, types.Vec3{math.Sqrt2, math.Sqrt2, 0}},
	}

	for index, s := range specs {
		got := SphericalToCartesian(s.dist, s.azimuth, s.elevation)
		if !got.ApproxEqual(s.exp, 1e-12) {
			t.Fatalf("[spec %d] expected %v; got %v", index, s.exp, got)
		}
	}
}

func TestSphericalToCartesianPreservesDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		d := 0.01 + rng.Float64()*50
		az := (rng.Float64() - 0.5) * 2000
		el := (rng.Float64() - 0.5) * 2000
		require.InDelta(t, d, SphericalToCartesian(d, az, el).Len(), 1e-9)
	}
}

func TestSolvePoseOnPositiveXAxis(t *testing.T) {
	pose, err := SolvePose(Viewpoint{Azimuth: 0, Elevation: 0, Tilt: 0, Distance: 4})
	require.NoError(t, err)

	assert.True(t, pose.Position.ApproxEqual(types.Vec3{4, 0, 0}, 1e-12), "position %v", pose.Position)
	assert.True(t, pose.Orientation.ApproxEqual(types.QuatWXYZ(-0.5, -0.5, -0.5, -0.5), 1e-12), "orientation %v", pose.Orientation)

	origin := pose.WorldToCamera(types.Vec3{})
	assert.True(t, origin.ApproxEqual(types.Vec3{0, 0, -4}, 1e-12), "origin in camera space %v", origin)
}

func TestViewMatrixMatchesWorldToCamera(t *testing.T) {
	pose, err := SolvePose(Viewpoint{Azimuth: 130, Elevation: 25, Tilt: 15, Distance: 3})
	require.NoError(t, err)

	view := pose.ViewMatrix()
	for _, pt := range []types.Vec3{{}, {1, 0, 0}, {0.5, -2, 0.25}, {-3, 1, 4}} {
		got := view.MulVec3(pt.Sub(pose.Position))
		exp := pose.WorldToCamera(pt)
		require.True(t, got.ApproxEqual(exp, 1e-12), "point %v: expected %v; got %v", pt, exp, got)
	}
}

func TestSolvePoseKeepsOriginCentered(t *testing.T) {
	in, err := ComputeIntrinsics(testCameraParams())
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 500; i++ {
		vp := Viewpoint{
			Azimuth:   rng.Float64() * 360,
			Elevation: (rng.Float64() - 0.5) * 170,
			Tilt:      (rng.Float64() - 0.5) * 360,
			Distance:  0.5 + rng.Float64()*10,
		}
		pose, err := SolvePose(vp)
		require.NoError(t, err)
		require.InDelta(t, 1.0, pose.Orientation.Len(), 1e-9)

		px, visible := in.Project(pose.WorldToCamera(types.Vec3{}))
		require.True(t, visible)
		require.InDeltaf(t, in.PrincipalU, px[0], 1e-6, "viewpoint %v", vp)
		require.InDeltaf(t, in.PrincipalV, px[1], 1e-6, "viewpoint %v", vp)
	}
}

func TestSolvePoseAppliesTiltAboutViewAxis(t *testing.T) {
	base, err := SolvePose(Viewpoint{Azimuth: 30, Elevation: 20, Distance: 3})
	require.NoError(t, err)
	tilted, err := SolvePose(Viewpoint{Azimuth: 30, Elevation: 20, Tilt: 90, Distance: 3})
	require.NoError(t, err)

	assert.Equal(t, base.Position, tilted.Position)

	fwdBase := base.Orientation.Rotate(types.Vec3{0, 0, -1})
	fwdTilted := tilted.Orientation.Rotate(types.Vec3{0, 0, -1})
	assert.True(t, fwdBase.ApproxEqual(fwdTilted, 1e-12))

	upBase := base.Orientation.Rotate(types.Vec3{0, 1, 0})
	upTilted := tilted.Orientation.Rotate(types.Vec3{0, 1, 0})
	assert.InDelta(t, 0, upBase.Dot(upTilted), 1e-12)
}

func TestSolvePoseDegenerateGeometry(t *testing.T) {
	specs := []Viewpoint{
		{Distance: 0},
		{Distance: -1},
		{Distance: math.NaN()},
		{Distance: math.Inf(1)},
		{Elevation: 90, Distance: 4},
		{Elevation: -90, Distance: 4},
		{Tilt: math.NaN(), Distance: 4},
		{Tilt: math.Inf(-1), Distance: 4},
		{Azimuth: math.Inf(1), Distance: 4},
		{Elevation: math.NaN(), Distance: 4},
	}

	for index, vp := range specs {
		if _, err := SolvePose(vp); !errors.Is(err, ErrDegenerateGeometry) {
			t.Fatalf("[spec %d] expected ErrDegenerateGeometry; got %v", index, err)
		}
	}
}

func TestLookAtPoseMatchesSolvePose(t *testing.T) {
	vp := Viewpoint{Azimuth: 120, Elevation: -15, Tilt: 25, Distance: 6}
	exp, err := SolvePose(vp)
	require.NoError(t, err)

	got, err := LookAtPose(SphericalToCartesian(vp.Distance, vp.Azimuth, vp.Elevation), vp.Tilt)
	require.NoError(t, err)
	assert.True(t, got.Orientation.ApproxEqual(exp.Orientation, 1e-12), "expected %v; got %v", exp.Orientation, got.Orientation)

	if _, err = LookAtPose(types.Vec3{0, 0, 2}, 0); !errors.Is(err, ErrDegenerateGeometry) {
		t.Fatalf("expected ErrDegenerateGeometry for a camera on the vertical axis; got %v", err)
	}
}
