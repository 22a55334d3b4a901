package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/achilleasa/viewsynth/asset"
	"github.com/achilleasa/viewsynth/config"
	"github.com/achilleasa/viewsynth/renderer"
	"github.com/achilleasa/viewsynth/renderer/blender"
	"github.com/achilleasa/viewsynth/renderer/sketch"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render the frames of every viewpoint in a view parameter file.
func RenderViews(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 5 {
		return errors.New("expected arguments: model synset md5 view_params out_dir")
	}
	args := ctx.Args()
	modelFile, synset, modelID, viewFile, outDir := args.Get(0), args.Get(1), args.Get(2), args.Get(3), args.Get(4)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	vps, err := asset.ReadViewpoints(viewFile)
	if err != nil {
		return err
	}
	model, err := asset.InspectModel(modelFile)
	if err != nil {
		return err
	}

	camera, err := cfg.CameraParams()
	if err != nil {
		return err
	}

	seed := cfg.Render.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Noticef("light sampling seed: %d", seed)

	sc, err := openScene(cfg)
	if err != nil {
		return err
	}
	defer sc.Close()

	d, err := renderer.NewDriver(sc, renderer.Options{
		Model:          model,
		Synset:         synset,
		ModelID:        modelID,
		OutputDir:      outDir,
		FrameStart:     cfg.Render.FrameStart,
		FrameEnd:       cfg.Render.FrameEnd,
		FileFormat:     cfg.Render.FileFormat,
		CameraDistance: cfg.Render.CameraDistance,
		Camera:         camera,
		Lights:         cfg.LightBounds(),
		Rand:           rand.New(rand.NewSource(seed)),
		Diagnostics:    os.Stdout,
	})
	if err != nil {
		return err
	}

	stats, err := d.Run(vps)
	if err != nil {
		return err
	}

	displayBatchStats(stats)
	if bs, ok := sc.(*blender.Scene); ok {
		if pstats, err := bs.ProcessStats(); err == nil {
			logger.Noticef("blender %s (pid %d): rss %d MiB, cpu %.1f%%, %d threads", bs.Version(), pstats.PID, pstats.RSS>>20, pstats.CPUPercent, pstats.NumThreads)
		}
	}
	return nil
}

// Create the render engine selected by the configuration.
func openScene(cfg *config.Config) (renderer.Scene, error) {
	camera, err := cfg.CameraParams()
	if err != nil {
		return nil, err
	}

	switch cfg.Render.Engine {
	case "sketch":
		logger.Notice("using sketch engine; frames contain a wireframe preview of the camera setup")
		return sketch.New(camera)
	default:
		extraArgs, err := cfg.Blender.ExtraArgs()
		if err != nil {
			return nil, err
		}
		return blender.Start(blender.Config{
			Binary:       cfg.Blender.Binary,
			BlendFile:    cfg.Blender.BlendFile,
			Args:         extraArgs,
			RenderEngine: cfg.Blender.RenderEngine,
			Device:       cfg.Blender.Device,
			FileFormat:   cfg.Render.FileFormat,
			Camera:       camera,
		})
	}
}

func displayBatchStats(stats renderer.BatchStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Viewpoint", "Azimuth", "Output", "Lights", "Environment", "Frames", "Render time"})
	for _, stat := range stats.Viewpoints {
		table.Append([]string{
			fmt.Sprintf("%d", stat.Index),
			fmt.Sprintf("%.1f", stat.Azimuth),
			stat.OutputDir,
			fmt.Sprintf("%d", stat.Lights),
			fmt.Sprintf("%.3f", stat.Environment),
			fmt.Sprintf("%d", stat.Frames),
			stat.RenderTime.String(),
		})
	}
	table.SetFooter([]string{"", "", "", "", "TOTAL", fmt.Sprintf("%d", stats.Frames), stats.RenderTime.String()})

	table.Render()
	logger.Noticef("render statistics\n%s", buf.String())
}
