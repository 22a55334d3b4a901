package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/achilleasa/viewsynth/types"
	"gonum.org/v1/gonum/mat"
)

var ErrInvalidCameraParams = errors.New("scene: invalid camera parameters")

// Controls which sensor dimension is kept fixed when the pixel aspect ratio
// is not square.
type SensorFit uint8

const (
	SensorFitAuto SensorFit = iota
	SensorFitHorizontal
	SensorFitVertical
)

func (sf SensorFit) String() string {
	switch sf {
	case SensorFitHorizontal:
		return "HORIZONTAL"
	case SensorFitVertical:
		return "VERTICAL"
	default:
		return "AUTO"
	}
}

// Parse a sensor fit mode name. Matching is case-insensitive.
func ParseSensorFit(name string) (SensorFit, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "AUTO":
		return SensorFitAuto, nil
	case "HORIZONTAL":
		return SensorFitHorizontal, nil
	case "VERTICAL":
		return SensorFitVertical, nil
	}
	return SensorFitAuto, fmt.Errorf("%w: unknown sensor fit %q", ErrInvalidCameraParams, name)
}

// Lens, sensor and output resolution settings of the render camera.
type CameraParams struct {
	// Focal length and sensor size in mm.
	FocalLength  float64
	SensorWidth  float64
	SensorHeight float64
	SensorFit    SensorFit

	// Output resolution in pixels and the percentage it is scaled by.
	ResolutionX     int
	ResolutionY     int
	ResolutionScale float64

	PixelAspectX float64
	PixelAspectY float64
}

// Pinhole camera intrinsics in pixels.
type Intrinsics struct {
	AlphaU     float64
	AlphaV     float64
	PrincipalU float64
	PrincipalV float64
}

func (p CameraParams) validate() error {
	switch {
	case !(p.FocalLength > 0):
		return fmt.Errorf("%w: focal length must be positive", ErrInvalidCameraParams)
	case !(p.SensorWidth > 0) || !(p.SensorHeight > 0):
		return fmt.Errorf("%w: sensor size must be positive", ErrInvalidCameraParams)
	case p.ResolutionX <= 0 || p.ResolutionY <= 0:
		return fmt.Errorf("%w: resolution must be positive", ErrInvalidCameraParams)
	case !(p.ResolutionScale > 0):
		return fmt.Errorf("%w: resolution scale must be positive", ErrInvalidCameraParams)
	case !(p.PixelAspectX > 0) || !(p.PixelAspectY > 0):
		return fmt.Errorf("%w: pixel aspect must be positive", ErrInvalidCameraParams)
	}
	return nil
}

// Derive the pinhole intrinsics for a camera.
func ComputeIntrinsics(p CameraParams) (Intrinsics, error) {
	if err := p.validate(); err != nil {
		return Intrinsics{}, err
	}

	scale := p.ResolutionScale / 100
	resX := float64(p.ResolutionX) * scale
	resY := float64(p.ResolutionY) * scale
	pixelAspectRatio := p.PixelAspectX / p.PixelAspectY

	var sU, sV float64
	if p.SensorFit == SensorFitVertical {
		// Sensor height is fixed; the effective width follows the pixel aspect ratio.
		sU = resX / p.SensorWidth / pixelAspectRatio
		sV = resY / p.SensorHeight
	} else {
		// Sensor width is fixed; the effective height follows the pixel aspect ratio.
		sU = resX / p.SensorWidth
		sV = resY * pixelAspectRatio / p.SensorHeight
	}

	return Intrinsics{
		AlphaU:     p.FocalLength * sU,
		AlphaV:     p.FocalLength * sV,
		PrincipalU: resX / 2,
		PrincipalV: resY / 2,
	}, nil
}

// Returns the 3x3 intrinsic matrix.
func (in Intrinsics) Matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		in.AlphaU, 0, in.PrincipalU,
		0, in.AlphaV, in.PrincipalV,
		0, 0, 1,
	})
}

// Project a camera space point to pixel coordinates with the origin at the
// top-left corner of the image. The second return value is false for points
// on or behind the image plane.
func (in Intrinsics) Project(pt types.Vec3) (types.Vec2, bool) {
	depth := -pt[2]
	if depth <= 0 {
		return types.Vec2{}, false
	}
	return types.Vec2{
		in.PrincipalU + in.AlphaU*pt[0]/depth,
		in.PrincipalV - in.AlphaV*pt[1]/depth,
	}, true
}

func (in Intrinsics) String() string {
	return fmt.Sprintf("%v", mat.Formatted(in.Matrix(), mat.Prefix(""), mat.Squeeze()))
}
