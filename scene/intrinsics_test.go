package scene

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testCameraParams() CameraParams {
	return CameraParams{
		FocalLength:     35,
		SensorWidth:     32,
		SensorHeight:    18,
		SensorFit:       SensorFitAuto,
		ResolutionX:     856,
		ResolutionY:     480,
		ResolutionScale: 100,
		PixelAspectX:    1,
		PixelAspectY:    1,
	}
}

func TestComputeIntrinsics(t *testing.T) {
	type spec struct {
		mutate func(*CameraParams)
		exp    Intrinsics
	}
	specs := []spec{
		{
			mutate: func(p *CameraParams) {},
			exp:    Intrinsics{AlphaU: 936.25, AlphaV: 35 * 480.0 / 18, PrincipalU: 428, PrincipalV: 240},
		},
		{
			mutate: func(p *CameraParams) { p.ResolutionScale = 50 },
			exp:    Intrinsics{AlphaU: 468.125, AlphaV: 35 * 240.0 / 18, PrincipalU: 214, PrincipalV: 120},
		},
		{
			mutate: func(p *CameraParams) { p.SensorFit = SensorFitHorizontal; p.PixelAspectX = 2 },
			exp:    Intrinsics{AlphaU: 936.25, AlphaV: 35 * 960.0 / 18, PrincipalU: 428, PrincipalV: 240},
		},
		{
			mutate: func(p *CameraParams) { p.SensorFit = SensorFitVertical; p.PixelAspectX = 2 },
			exp:    Intrinsics{AlphaU: 468.125, AlphaV: 35 * 480.0 / 18, PrincipalU: 428, PrincipalV: 240},
		},
	}

	for index, s := range specs {
		params := testCameraParams()
		s.mutate(&params)

		got, err := ComputeIntrinsics(params)
		require.NoErrorf(t, err, "spec %d", index)
		assert.InDeltaf(t, s.exp.AlphaU, got.AlphaU, 1e-9, "spec %d", index)
		assert.InDeltaf(t, s.exp.AlphaV, got.AlphaV, 1e-9, "spec %d", index)
		assert.InDeltaf(t, s.exp.PrincipalU, got.PrincipalU, 1e-9, "spec %d", index)
		assert.InDeltaf(t, s.exp.PrincipalV, got.PrincipalV, 1e-9, "spec %d", index)
	}
}

func TestIntrinsicsMatrix(t *testing.T) {
	in := Intrinsics{AlphaU: 10, AlphaV: 20, PrincipalU: 3, PrincipalV: 4}
	exp := mat.NewDense(3, 3, []float64{
		10, 0, 3,
		0, 20, 4,
		0, 0, 1,
	})
	if !mat.Equal(in.Matrix(), exp) {
		t.Fatalf("expected\n%v\ngot\n%v", mat.Formatted(exp), mat.Formatted(in.Matrix()))
	}
}

func TestComputeIntrinsicsValidation(t *testing.T) {
	specs := []func(*CameraParams){
		func(p *CameraParams) { p.FocalLength = 0 },
		func(p *CameraParams) { p.SensorWidth = -1 },
		func(p *CameraParams) { p.SensorHeight = 0 },
		func(p *CameraParams) { p.ResolutionX = 0 },
		func(p *CameraParams) { p.ResolutionScale = 0 },
		func(p *CameraParams) { p.PixelAspectY = 0 },
	}

	for index, mutate := range specs {
		params := testCameraParams()
		mutate(&params)
		if _, err := ComputeIntrinsics(params); !errors.Is(err, ErrInvalidCameraParams) {
			t.Fatalf("[spec %d] expected ErrInvalidCameraParams; got %v", index, err)
		}
	}
}

func TestParseSensorFit(t *testing.T) {
	for name, exp := range map[string]SensorFit{
		"":           SensorFitAuto,
		"auto":       SensorFitAuto,
		"HORIZONTAL": SensorFitHorizontal,
		"Vertical":   SensorFitVertical,
	} {
		got, err := ParseSensorFit(name)
		require.NoError(t, err)
		assert.Equal(t, exp, got, name)
	}

	if _, err := ParseSensorFit("diagonal"); !errors.Is(err, ErrInvalidCameraParams) {
		t.Fatalf("expected ErrInvalidCameraParams; got %v", err)
	}
}
