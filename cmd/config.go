package cmd

import (
	"github.com/achilleasa/viewsynth/config"
	"github.com/urfave/cli"
)

// Load the configuration file selected by the global --config flag (or the
// defaults) and apply any command line overrides.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := ctx.GlobalString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
		logger.Infof("loaded configuration from %s", path)
	}

	if ctx.IsSet("frame-start") {
		cfg.Render.FrameStart = ctx.Int("frame-start")
	}
	if ctx.IsSet("frame-end") {
		cfg.Render.FrameEnd = ctx.Int("frame-end")
	}
	if ctx.IsSet("format") {
		cfg.Render.FileFormat = ctx.String("format")
	}
	if ctx.IsSet("camera-distance") {
		cfg.Render.CameraDistance = ctx.Float64("camera-distance")
	}
	if ctx.IsSet("seed") {
		cfg.Render.Seed = ctx.Int64("seed")
	}
	if ctx.IsSet("engine") {
		cfg.Render.Engine = ctx.String("engine")
	}
	if ctx.IsSet("light-mode") {
		cfg.Light.Mode = ctx.String("light-mode")
	}
	if ctx.IsSet("blender") {
		cfg.Blender.Binary = ctx.String("blender")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
