package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/viewsynth/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "viewsynth"
	app.Usage = "render synthetic training views of 3D models"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load settings from a yaml or toml file",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render the views of a model",
			Description: `
Read a list of viewpoints (one "azimuth elevation tilt distance" tuple per line)
and render a short camera fly-by for each one. Frames are written to
<out_dir>/<synset>_<md5>_a<azimuth>_e<elevation>_t<tilt>_d<distance>/frame_<n>.<ext>.

Every viewpoint after the first one is rendered 70 degrees further along the
azimuth than its predecessor, regardless of the azimuth in the file.`,
			ArgsUsage: "model synset md5 view_params out_dir",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "frame-start",
					Value: 1,
					Usage: "first frame of every viewpoint",
				},
				cli.IntFlag{
					Name:  "frame-end",
					Value: 250,
					Usage: "last frame of every viewpoint (inclusive)",
				},
				cli.StringFlag{
					Name:  "format, f",
					Value: "jpg",
					Usage: "image format for rendered frames",
				},
				cli.Float64Flag{
					Name:  "camera-distance",
					Usage: "place cameras at this distance instead of the viewpoint distance",
				},
				cli.Int64Flag{
					Name:  "seed",
					Usage: "seed for light sampling; 0 selects a random seed",
				},
				cli.StringFlag{
					Name:  "engine, e",
					Value: "blender",
					Usage: "render engine: blender or sketch",
				},
				cli.StringFlag{
					Name:  "light-mode",
					Value: "fixed",
					Usage: "light placement: fixed or sampled",
				},
				cli.StringFlag{
					Name:  "blender",
					Value: "blender",
					Usage: "path to the blender executable",
				},
			},
			Action: cmd.RenderViews,
		},
		{
			Name:      "poses",
			Usage:     "list the camera poses for a view parameter file",
			ArgsUsage: "view_params",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "synset",
					Value: "synset",
					Usage: "synset used for output directory names",
				},
				cli.StringFlag{
					Name:  "model-id",
					Value: "model",
					Usage: "model id used for output directory names",
				},
			},
			Action: cmd.ListPoses,
		},
		{
			Name:   "intrinsics",
			Usage:  "print the camera intrinsic matrix",
			Action: cmd.ShowIntrinsics,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
