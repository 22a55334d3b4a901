package sketch

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/achilleasa/viewsynth/asset"
	"github.com/achilleasa/viewsynth/log"
	"github.com/achilleasa/viewsynth/renderer"
	"github.com/achilleasa/viewsynth/scene"
	"github.com/achilleasa/viewsynth/types"
	"golang.org/x/image/vector"
)

var (
	ErrNoCamera          = errors.New("sketch: no camera defined")
	ErrClosed            = errors.New("sketch: scene is closed")
	ErrUnsupportedFormat = errors.New("sketch: unsupported image format")
)

const (
	// Number of samples used for drawing the bound path.
	pathSamples = 32

	// Length of the drawn world axes in scene units.
	axisLength = 1.0

	jpegQuality = 90
)

var (
	colorAxisX  = color.RGBA{220, 50, 50, 255}
	colorAxisY  = color.RGBA{50, 200, 50, 255}
	colorAxisZ  = color.RGBA{60, 90, 230, 255}
	colorPath   = color.RGBA{240, 200, 40, 255}
	colorLight  = color.RGBA{255, 140, 0, 255}
	colorOrigin = color.RGBA{255, 255, 255, 255}
)

var logger = log.New("sketch")

// A Scene that draws a wireframe preview of the camera setup instead of the
// model: the world axes, the origin, the bound path and the point lights.
// The origin always lands on the principal point for poses produced by
// scene.SolvePose which makes the output useful for checking camera math
// without an external renderer.
type Scene struct {
	width, height int
	intrinsics    scene.Intrinsics

	model       *asset.ModelInfo
	camera      string
	pose        *scene.Pose
	view        types.Mat3
	environment float64
	lights      []scene.Light
	path        *scene.PathSegment
	frame       int
	offset      float64

	ras    *vector.Rasterizer
	closed bool
}

var _ renderer.Scene = (*Scene)(nil)

// Create a sketch scene rendering frames for the given camera.
func New(params scene.CameraParams) (*Scene, error) {
	in, err := scene.ComputeIntrinsics(params)
	if err != nil {
		return nil, err
	}

	scale := params.ResolutionScale / 100
	w := int(math.Round(float64(params.ResolutionX) * scale))
	h := int(math.Round(float64(params.ResolutionY) * scale))
	return &Scene{
		width:      w,
		height:     h,
		intrinsics: in,
		ras:        vector.NewRasterizer(w, h),
	}, nil
}

func (s *Scene) ImportModel(model *asset.ModelInfo) error {
	if s.closed {
		return ErrClosed
	}
	s.model = model
	logger.Debugf("model %s is not rasterized in sketch mode", model)
	return nil
}

func (s *Scene) AddCamera(name string) error {
	if s.closed {
		return ErrClosed
	}
	s.camera = name
	s.pose = nil
	return nil
}

func (s *Scene) RemoveCamera() error {
	s.camera = ""
	s.pose = nil
	return nil
}

func (s *Scene) SetCameraPose(pose scene.Pose) error {
	if s.closed {
		return ErrClosed
	}
	if s.camera == "" {
		return ErrNoCamera
	}
	s.pose = &pose
	s.view = pose.ViewMatrix()
	return nil
}

func (s *Scene) SetEnvironment(energy float64) error {
	s.environment = energy
	return nil
}

func (s *Scene) AddPointLight(light scene.Light) error {
	s.lights = append(s.lights, light)
	return nil
}

func (s *Scene) RemoveLights() error {
	s.lights = s.lights[:0]
	return nil
}

func (s *Scene) BindPath(path *scene.PathSegment) error {
	if s.camera == "" {
		return ErrNoCamera
	}
	s.path = path
	return nil
}

func (s *Scene) RemovePath() error {
	s.path = nil
	return nil
}

func (s *Scene) SetFrame(frame int, offset float64) error {
	s.frame = frame
	s.offset = offset
	return nil
}

// Draw the current frame and encode it as a jpeg or png file depending on the
// path extension.
func (s *Scene) RenderFrame(path string) error {
	if s.closed {
		return ErrClosed
	}

	var encode func(*os.File, image.Image) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		encode = func(f *os.File, im image.Image) error {
			return jpeg.Encode(f, im, &jpeg.Options{Quality: jpegQuality})
		}
	case ".png":
		encode = func(f *os.File, im image.Image) error {
			return png.Encode(f, im)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	im, err := s.Draw()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = encode(f, im); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Draw the current frame.
func (s *Scene) Draw() (*image.RGBA, error) {
	if s.pose == nil {
		return nil, ErrNoCamera
	}

	im := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	bg := uint8(32 + 191*math.Min(math.Max(s.environment, 0), 1))
	draw.Draw(im, im.Bounds(), image.NewUniform(color.RGBA{bg, bg, bg, 255}), image.Point{}, draw.Src)

	origin := types.Vec3{}
	s.drawSegment(im, origin, types.Vec3{axisLength, 0, 0}, 2, colorAxisX)
	s.drawSegment(im, origin, types.Vec3{0, axisLength, 0}, 2, colorAxisY)
	s.drawSegment(im, origin, types.Vec3{0, 0, axisLength}, 2, colorAxisZ)

	if s.path != nil {
		prev := s.path.Sample(0)
		for i := 1; i <= pathSamples; i++ {
			next := s.path.Sample(float64(i) / pathSamples)
			s.drawSegment(im, prev, next, 1.5, colorPath)
			prev = next
		}
	}

	for _, light := range s.lights {
		if px, ok := s.Project(light.Position); ok {
			s.fillSquare(im, px, 5, colorLight)
		}
	}

	if px, ok := s.Project(origin); ok {
		s.fillSquare(im, px, 4, colorOrigin)
	}
	return im, nil
}

// Project a world space point to pixel coordinates using the current camera
// pose.
func (s *Scene) Project(pt types.Vec3) (types.Vec2, bool) {
	if s.pose == nil {
		return types.Vec2{}, false
	}
	return s.intrinsics.Project(s.view.MulVec3(pt.Sub(s.pose.Position)))
}

func (s *Scene) drawSegment(dst draw.Image, a, b types.Vec3, width float64, c color.Color) {
	pa, okA := s.Project(a)
	pb, okB := s.Project(b)
	if !okA || !okB {
		return
	}

	dx, dy := pb[0]-pa[0], pb[1]-pa[1]
	l := math.Hypot(dx, dy)
	if l < 1e-6 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2

	s.ras.Reset(s.width, s.height)
	s.ras.MoveTo(float32(pa[0]+nx), float32(pa[1]+ny))
	s.ras.LineTo(float32(pb[0]+nx), float32(pb[1]+ny))
	s.ras.LineTo(float32(pb[0]-nx), float32(pb[1]-ny))
	s.ras.LineTo(float32(pa[0]-nx), float32(pa[1]-ny))
	s.ras.ClosePath()
	s.ras.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

func (s *Scene) fillSquare(dst draw.Image, center types.Vec2, halfSize float64, c color.Color) {
	s.ras.Reset(s.width, s.height)
	s.ras.MoveTo(float32(center[0]-halfSize), float32(center[1]-halfSize))
	s.ras.LineTo(float32(center[0]+halfSize), float32(center[1]-halfSize))
	s.ras.LineTo(float32(center[0]+halfSize), float32(center[1]+halfSize))
	s.ras.LineTo(float32(center[0]-halfSize), float32(center[1]+halfSize))
	s.ras.ClosePath()
	s.ras.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

func (s *Scene) Close() error {
	s.closed = true
	s.model = nil
	s.pose = nil
	s.path = nil
	s.lights = nil
	return nil
}
