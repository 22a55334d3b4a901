package renderer

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/achilleasa/viewsynth/log"
	"github.com/achilleasa/viewsynth/scene"
)

var logger = log.New("renderer")

// Renders the frames of a viewpoint batch using a Scene. Viewpoints and
// frames are processed sequentially.
type Driver struct {
	scene      Scene
	opts       Options
	intrinsics scene.Intrinsics
	lights     *scene.LightSampler
}

// Create a new driver for the given scene.
func NewDriver(sc Scene, opts Options) (*Driver, error) {
	if opts.Model == nil {
		return nil, ErrNoModel
	}
	if opts.FrameEnd < opts.FrameStart {
		return nil, fmt.Errorf("renderer: invalid frame range [%d, %d]", opts.FrameStart, opts.FrameEnd)
	}
	if opts.FileFormat == "" {
		opts.FileFormat = "jpg"
	}

	in, err := scene.ComputeIntrinsics(opts.Camera)
	if err != nil {
		return nil, err
	}

	rng := opts.Rand
	if rng == nil {
		seed := time.Now().UnixNano()
		logger.Noticef("no random source specified; seeding light sampler with %d", seed)
		rng = rand.New(rand.NewSource(seed))
	}

	return &Driver{
		scene:      sc,
		opts:       opts,
		intrinsics: in,
		lights:     scene.NewLightSampler(opts.Lights, rng),
	}, nil
}

// Import the model and render every viewpoint. Rendering stops at the first
// error; frames that were already written are left on disk.
func (d *Driver) Run(vps []scene.Viewpoint) (BatchStats, error) {
	var stats BatchStats
	if len(vps) == 0 {
		return stats, ErrNoViewpoints
	}

	start := time.Now()
	logger.Noticef("importing model %s", d.opts.Model)
	if err := d.scene.ImportModel(d.opts.Model); err != nil {
		return stats, &BatchError{Viewpoint: -1, Frame: -1, Op: "import model", Err: engineError(err)}
	}

	for index, vp := range scene.EffectiveViewpoints(vps) {
		vpStats, err := d.renderViewpoint(index, vp)
		if err != nil {
			return stats, err
		}
		stats.Viewpoints = append(stats.Viewpoints, vpStats)
		stats.Frames += vpStats.Frames
	}

	stats.RenderTime = time.Since(start)
	logger.Noticef("rendered %d frames for %d viewpoints in %s", stats.Frames, len(stats.Viewpoints), stats.RenderTime)
	return stats, nil
}

func (d *Driver) renderViewpoint(index int, vp scene.Viewpoint) (ViewpointStats, error) {
	fail := func(frame int, op string, err error) (ViewpointStats, error) {
		return ViewpointStats{}, &BatchError{Viewpoint: index, Frame: frame, Op: op, Err: err}
	}

	start := time.Now()
	stats := ViewpointStats{
		Index:     index,
		Azimuth:   vp.Azimuth,
		OutputDir: filepath.Join(d.opts.OutputDir, OutputDirName(d.opts.Synset, d.opts.ModelID, vp)),
	}
	logger.Noticef("[viewpoint %d] %s", index, vp)

	// The camera distance override only affects placement; output names
	// keep reporting the viewpoint distance.
	camVp := vp
	if d.opts.CameraDistance > 0 {
		camVp.Distance = d.opts.CameraDistance
	}

	pose, err := scene.SolvePose(camVp)
	if err != nil {
		return fail(-1, "solve pose", err)
	}
	path, err := scene.NewViewPath(camVp)
	if err != nil {
		return fail(-1, "build path", err)
	}

	if err = d.scene.AddCamera(fmt.Sprintf("camera%d", index)); err != nil {
		return fail(-1, "add camera", engineError(err))
	}
	if err = d.scene.SetCameraPose(pose); err != nil {
		return fail(-1, "set camera pose", engineError(err))
	}
	logger.Debugf("[viewpoint %d] camera %s", index, pose)

	if err = d.scene.RemoveLights(); err != nil {
		return fail(-1, "remove lights", engineError(err))
	}
	lighting := d.lights.Sample()
	if err = d.scene.SetEnvironment(lighting.Environment); err != nil {
		return fail(-1, "set environment", engineError(err))
	}
	for _, light := range lighting.Points {
		if err = d.scene.AddPointLight(light); err != nil {
			return fail(-1, "add light", engineError(err))
		}
		logger.Debugf("[viewpoint %d] light at %v with energy %.3f", index, light.Position, light.Energy)
	}
	stats.Environment = lighting.Environment
	stats.Lights = len(lighting.Points)

	if err = os.MkdirAll(stats.OutputDir, os.ModePerm); err != nil {
		return fail(-1, "create output dir", fmt.Errorf("%w: %w", ErrFilesystem, err))
	}

	if err = d.scene.BindPath(path); err != nil {
		return fail(-1, "bind path", engineError(err))
	}

	for frame, count := d.opts.FrameStart, 0; frame <= d.opts.FrameEnd; frame, count = frame+1, count+1 {
		offset := scene.FrameOffset(frame, d.opts.FrameStart, d.opts.FrameEnd)
		if err = d.scene.SetFrame(frame, offset); err != nil {
			return fail(frame, "set frame", engineError(err))
		}

		var framePose scene.Pose
		if framePose, err = scene.LookAtPose(path.Sample(offset), camVp.Tilt); err != nil {
			return fail(frame, "solve path pose", err)
		}
		if err = d.scene.SetCameraPose(framePose); err != nil {
			return fail(frame, "set camera pose", engineError(err))
		}

		framePath := filepath.Join(stats.OutputDir, FrameFileName(count, d.opts.FileFormat))
		tick := time.Now()
		if err = d.scene.RenderFrame(framePath); err != nil {
			return fail(frame, "render frame", engineError(err))
		}
		logger.Debugf("[viewpoint %d] frame %d (offset %.3f) rendered to %s in %s", index, frame, offset, framePath, time.Since(tick))
		stats.Frames++
	}

	if d.opts.Diagnostics != nil {
		fmt.Fprintf(d.opts.Diagnostics, "%s\n", d.intrinsics)
	}

	if err = d.scene.RemovePath(); err != nil {
		return fail(-1, "remove path", engineError(err))
	}
	if err = d.scene.RemoveCamera(); err != nil {
		return fail(-1, "remove camera", engineError(err))
	}

	stats.RenderTime = time.Since(start)
	return stats, nil
}
