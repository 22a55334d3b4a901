package blender

import (
	"bufio"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/achilleasa/viewsynth/asset"
	"github.com/achilleasa/viewsynth/log"
	"github.com/achilleasa/viewsynth/renderer"
	"github.com/achilleasa/viewsynth/scene"
	"github.com/mitchellh/go-homedir"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sync/errgroup"
)

//go:embed bridge.py
var bridgeScript []byte

var (
	ErrUnsupportedVersion = errors.New("blender: unsupported blender version")
	ErrBridgeExited       = errors.New("blender: bridge exited")
	ErrCommandFailed      = errors.New("blender: command failed")
	ErrClosed             = errors.New("blender: scene is closed")
	ErrNoProcess          = errors.New("blender: no blender process")
)

var (
	// Oldest supported release.
	minVersion = semver.MustParse("2.79")

	// Releases before this one use the 2.7x python API.
	modernVersion = semver.MustParse("2.80")
)

// Max length of a line printed by blender.
const maxLineLen = 1024 * 1024

var logger = log.New("blender")

type Config struct {
	// Path to the blender executable. A leading ~ is expanded.
	Binary string

	// Optional .blend file to load before the bridge script runs.
	BlendFile string

	// Extra command line arguments passed to blender before the script.
	Args []string

	// Extra environment variables for the blender process.
	Env []string

	// Render engine (e.g. CYCLES) and compute device (CPU or GPU).
	RenderEngine string
	Device       string

	FileFormat string
	Camera     scene.CameraParams
}

// Resource usage of the blender process.
type ProcessStats struct {
	PID        int32
	RSS        uint64
	CPUPercent float64
	NumThreads int32
}

// A Scene backed by a blender process running the bridge script in
// background mode. Commands are sent as JSON lines over stdin and block until
// blender acknowledges them.
type Scene struct {
	cmd        *exec.Cmd
	wait       func() error
	scriptPath string

	stdin   io.WriteCloser
	enc     *json.Encoder
	replies chan reply
	pumps   *errgroup.Group

	camera  scene.CameraParams
	version *semver.Version
	legacy  bool
	nextID  uint64
	closed  bool
}

var _ renderer.Scene = (*Scene)(nil)

// Start blender and configure its render settings.
func Start(cfg Config) (*Scene, error) {
	bin, err := homedir.Expand(cfg.Binary)
	if err != nil {
		return nil, fmt.Errorf("blender: could not expand %q: %w", cfg.Binary, err)
	}
	if bin, err = exec.LookPath(bin); err != nil {
		return nil, fmt.Errorf("blender: %w", err)
	}

	script, err := os.CreateTemp("", "viewsynth-bridge-*.py")
	if err != nil {
		return nil, fmt.Errorf("blender: could not create bridge script: %w", err)
	}
	_, err = script.Write(bridgeScript)
	if cerr := script.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(script.Name())
		return nil, fmt.Errorf("blender: could not write bridge script: %w", err)
	}

	args := append([]string{}, cfg.Args...)
	if cfg.BlendFile != "" {
		blendFile, err := homedir.Expand(cfg.BlendFile)
		if err != nil {
			os.Remove(script.Name())
			return nil, fmt.Errorf("blender: could not expand %q: %w", cfg.BlendFile, err)
		}
		args = append(args, blendFile)
	}
	args = append(args, "--background", "--python", script.Name())

	cmd := exec.Command(bin, args...)
	cmd.Env = append(os.Environ(), cfg.Env...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		os.Remove(script.Name())
		return nil, fmt.Errorf("blender: stdin pipe error: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		os.Remove(script.Name())
		return nil, fmt.Errorf("blender: stdout pipe error: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		os.Remove(script.Name())
		return nil, fmt.Errorf("blender: stderr pipe error: %w", err)
	}

	logger.Infof("starting %s %s", bin, strings.Join(args, " "))
	if err = cmd.Start(); err != nil {
		os.Remove(script.Name())
		return nil, fmt.Errorf("blender: start error: %w", err)
	}

	s := attach(stdin, stdout, stderr, cmd.Wait)
	s.cmd = cmd
	s.scriptPath = script.Name()

	if err = s.init(cfg); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Wire a scene to the pipes of a running bridge.
func attach(stdin io.WriteCloser, stdout, stderr io.Reader, wait func() error) *Scene {
	s := &Scene{
		wait:    wait,
		stdin:   stdin,
		enc:     json.NewEncoder(stdin),
		replies: make(chan reply, 16),
		pumps:   new(errgroup.Group),
	}
	s.pumps.Go(func() error { return s.readReplies(stdout) })
	s.pumps.Go(func() error { return pumpLines(stderr, "[stderr] ") })
	return s
}

// Wait for the bridge to report its blender version and push the render
// settings.
func (s *Scene) init(cfg Config) error {
	r, ok := <-s.replies
	if !ok {
		return fmt.Errorf("%w before it became ready", ErrBridgeExited)
	}
	if r.ID != readyID || !r.OK {
		return fmt.Errorf("%w: unexpected handshake reply %+v", ErrCommandFailed, r)
	}

	v, err := semver.NewVersion(r.Version)
	if err != nil {
		return fmt.Errorf("blender: could not parse version %q: %w", r.Version, err)
	}
	if v.LessThan(minVersion) {
		return fmt.Errorf("%w: %s; need at least %s", ErrUnsupportedVersion, v, minVersion)
	}
	s.version = v
	s.legacy = v.LessThan(modernVersion)
	logger.Noticef("connected to blender %s", v)

	s.camera = cfg.Camera
	return s.call("configure", configureArgs{
		ResolutionX:          cfg.Camera.ResolutionX,
		ResolutionY:          cfg.Camera.ResolutionY,
		ResolutionPercentage: cfg.Camera.ResolutionScale,
		PixelAspectX:         cfg.Camera.PixelAspectX,
		PixelAspectY:         cfg.Camera.PixelAspectY,
		Engine:               cfg.RenderEngine,
		Device:               cfg.Device,
		FileFormat:           cfg.FileFormat,
	})
}

func (s *Scene) readReplies(stdout io.Reader) error {
	defer close(s.replies)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLen)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, replyPrefix) {
			logger.Debugf("[stdout] %s", line)
			continue
		}

		var r reply
		if err := json.Unmarshal([]byte(line[len(replyPrefix):]), &r); err != nil {
			logger.Warningf("discarding malformed bridge reply %q: %v", line, err)
			continue
		}
		s.replies <- r
	}
	return scanner.Err()
}

func pumpLines(r io.Reader, prefix string) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLen)
	for scanner.Scan() {
		logger.Debugf("%s%s", prefix, scanner.Text())
	}
	return scanner.Err()
}

// Send a command and block until the bridge acknowledges it.
func (s *Scene) call(cmd string, args interface{}) error {
	if s.closed {
		return ErrClosed
	}

	s.nextID++
	req := request{ID: s.nextID, Cmd: cmd, Args: args}
	if err := s.enc.Encode(req); err != nil {
		return fmt.Errorf("blender: sending %s: %w", cmd, err)
	}

	for r := range s.replies {
		if r.ID != req.ID {
			logger.Warningf("ignoring reply %d while waiting for %d", r.ID, req.ID)
			continue
		}
		if !r.OK {
			return fmt.Errorf("%w: %s: %s", ErrCommandFailed, cmd, r.Error)
		}
		return nil
	}
	return fmt.Errorf("%w while waiting for %s", ErrBridgeExited, cmd)
}

// The blender version reported by the bridge.
func (s *Scene) Version() *semver.Version {
	return s.version
}

// True if blender uses the 2.7x python API.
func (s *Scene) Legacy() bool {
	return s.legacy
}

func (s *Scene) ImportModel(model *asset.ModelInfo) error {
	return s.call("import_model", importArgs{Path: model.Path, Format: string(model.Format)})
}

func (s *Scene) AddCamera(name string) error {
	return s.call("add_camera", cameraArgs{
		Name:         name,
		Lens:         s.camera.FocalLength,
		SensorWidth:  s.camera.SensorWidth,
		SensorHeight: s.camera.SensorHeight,
		SensorFit:    s.camera.SensorFit.String(),
	})
}

func (s *Scene) RemoveCamera() error {
	return s.call("remove_camera", nil)
}

func (s *Scene) SetCameraPose(pose scene.Pose) error {
	return s.call("set_camera_pose", poseArgs{
		Location: pose.Position,
		Rotation: pose.Orientation.WXYZ(),
	})
}

func (s *Scene) SetEnvironment(energy float64) error {
	return s.call("set_environment", environmentArgs{Energy: energy})
}

func (s *Scene) AddPointLight(light scene.Light) error {
	return s.call("add_point_light", lightArgs{Location: light.Position, Energy: light.Energy})
}

func (s *Scene) RemoveLights() error {
	return s.call("remove_lights", nil)
}

// Create a NURBS curve from the segment control points. The curve order is
// the spline degree plus one and its endpoints are clamped so it matches
// PathSegment.Sample.
func (s *Scene) BindPath(path *scene.PathSegment) error {
	return s.call("bind_path", pathArgs{Points: path.Points, Order: path.Degree + 1})
}

func (s *Scene) RemovePath() error {
	return s.call("remove_path", nil)
}

func (s *Scene) SetFrame(frame int, offset float64) error {
	return s.call("set_frame", frameArgs{Frame: frame, Offset: offset})
}

func (s *Scene) RenderFrame(path string) error {
	return s.call("render_frame", renderArgs{Path: path})
}

// Collect resource usage for the blender process.
func (s *Scene) ProcessStats() (ProcessStats, error) {
	if s.cmd == nil || s.cmd.Process == nil || s.closed {
		return ProcessStats{}, ErrNoProcess
	}

	p, err := process.NewProcess(int32(s.cmd.Process.Pid))
	if err != nil {
		return ProcessStats{}, fmt.Errorf("blender: %w", err)
	}
	stats := ProcessStats{PID: p.Pid}
	mem, err := p.MemoryInfo()
	if err != nil {
		return ProcessStats{}, fmt.Errorf("blender: %w", err)
	}
	stats.RSS = mem.RSS
	if stats.CPUPercent, err = p.CPUPercent(); err != nil {
		return ProcessStats{}, fmt.Errorf("blender: %w", err)
	}
	if stats.NumThreads, err = p.NumThreads(); err != nil {
		return ProcessStats{}, fmt.Errorf("blender: %w", err)
	}
	return stats, nil
}

// Ask the bridge to exit and wait for blender to terminate.
func (s *Scene) Close() error {
	if s.closed {
		return nil
	}
	if err := s.call("quit", nil); err != nil {
		logger.Warningf("could not shut down bridge cleanly: %v", err)
	}
	s.closed = true
	s.stdin.Close()

	err := s.pumps.Wait()
	if werr := s.wait(); err == nil {
		err = werr
	}
	if s.scriptPath != "" {
		os.Remove(s.scriptPath)
	}
	if err != nil {
		return fmt.Errorf("blender: %w", err)
	}
	return nil
}
