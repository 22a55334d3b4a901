package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/achilleasa/viewsynth/asset"
	"github.com/achilleasa/viewsynth/renderer"
	"github.com/achilleasa/viewsynth/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the camera poses and output directories that a render would use
// without starting a render engine.
func ListPoses(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing view_params argument")
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	vps, err := asset.ReadViewpoints(ctx.Args().First())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err = writePoseTable(&buf, vps, ctx.String("synset"), ctx.String("model-id"), cfg.Render.CameraDistance); err != nil {
		return err
	}
	logger.Noticef("camera poses\n%s", buf.String())
	return nil
}

func writePoseTable(buf *bytes.Buffer, vps []scene.Viewpoint, synset, modelID string, cameraDistance float64) error {
	table := tablewriter.NewWriter(buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Azimuth", "Elevation", "Tilt", "Distance", "Position", "Orientation (w, x, y, z)", "Output"})

	for index, vp := range scene.EffectiveViewpoints(vps) {
		camVp := vp
		if cameraDistance > 0 {
			camVp.Distance = cameraDistance
		}
		pose, err := scene.SolvePose(camVp)
		if err != nil {
			return fmt.Errorf("viewpoint %d: %w", index, err)
		}
		q := pose.Orientation.WXYZ()
		table.Append([]string{
			fmt.Sprintf("%d", index),
			fmt.Sprintf("%.2f", vp.Azimuth),
			fmt.Sprintf("%.2f", vp.Elevation),
			fmt.Sprintf("%.2f", vp.Tilt),
			fmt.Sprintf("%.2f", vp.Distance),
			fmt.Sprintf("(%.4f, %.4f, %.4f)", pose.Position[0], pose.Position[1], pose.Position[2]),
			fmt.Sprintf("(%.4f, %.4f, %.4f, %.4f)", q[0], q[1], q[2], q[3]),
			renderer.OutputDirName(synset, modelID, vp),
		})
	}

	table.Render()
	return nil
}
