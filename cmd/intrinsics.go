package cmd

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/viewsynth/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Print the camera intrinsic matrix for the configured lens and resolution.
func ShowIntrinsics(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	params, err := cfg.CameraParams()
	if err != nil {
		return err
	}
	in, err := scene.ComputeIntrinsics(params)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Parameter", "Value"})
	table.Append([]string{"Focal length", fmt.Sprintf("%g mm", params.FocalLength)})
	table.Append([]string{"Sensor", fmt.Sprintf("%g x %g mm (%s)", params.SensorWidth, params.SensorHeight, params.SensorFit)})
	table.Append([]string{"Resolution", fmt.Sprintf("%d x %d @ %g%%", params.ResolutionX, params.ResolutionY, params.ResolutionScale)})
	table.Append([]string{"Pixel aspect", fmt.Sprintf("%g:%g", params.PixelAspectX, params.PixelAspectY)})
	table.Append([]string{"alpha_u, alpha_v", fmt.Sprintf("%.4f, %.4f", in.AlphaU, in.AlphaV)})
	table.Append([]string{"u_0, v_0", fmt.Sprintf("%.4f, %.4f", in.PrincipalU, in.PrincipalV)})
	table.Render()

	logger.Noticef("camera intrinsics\n%s", buf.String())
	fmt.Printf("%s\n", in)
	return nil
}
