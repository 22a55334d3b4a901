package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/achilleasa/viewsynth/scene"
	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("config: invalid configuration")

// Top level configuration of a render batch.
type Config struct {
	Render  RenderConfig  `yaml:"render" toml:"render"`
	Camera  CameraConfig  `yaml:"camera" toml:"camera"`
	Light   LightConfig   `yaml:"light" toml:"light"`
	Blender BlenderConfig `yaml:"blender" toml:"blender"`
}

// Frame range and output settings.
type RenderConfig struct {
	// Inclusive frame range rendered for every viewpoint.
	FrameStart int `yaml:"frame_start" toml:"frame_start"`
	FrameEnd   int `yaml:"frame_end" toml:"frame_end"`

	// Image file extension for rendered frames.
	FileFormat string `yaml:"file_format" toml:"file_format"`

	// If positive, cameras are placed at this distance instead of the
	// viewpoint distance. Output names still report the viewpoint distance.
	CameraDistance float64 `yaml:"camera_distance" toml:"camera_distance"`

	// Seed for light sampling; 0 selects a time based seed.
	Seed int64 `yaml:"seed" toml:"seed"`

	// Render engine: blender or sketch.
	Engine string `yaml:"engine" toml:"engine"`
}

// Lens, sensor and resolution of the render camera.
type CameraConfig struct {
	FocalLength          float64 `yaml:"focal_length_mm" toml:"focal_length_mm"`
	SensorWidth          float64 `yaml:"sensor_width_mm" toml:"sensor_width_mm"`
	SensorHeight         float64 `yaml:"sensor_height_mm" toml:"sensor_height_mm"`
	SensorFit            string  `yaml:"sensor_fit" toml:"sensor_fit"`
	ResolutionX          int     `yaml:"resolution_x" toml:"resolution_x"`
	ResolutionY          int     `yaml:"resolution_y" toml:"resolution_y"`
	ResolutionPercentage float64 `yaml:"resolution_percentage" toml:"resolution_percentage"`
	PixelAspectX         float64 `yaml:"pixel_aspect_x" toml:"pixel_aspect_x"`
	PixelAspectY         float64 `yaml:"pixel_aspect_y" toml:"pixel_aspect_y"`
}

// Light randomization bounds.
type LightConfig struct {
	Mode string `yaml:"mode" toml:"mode"`

	NumLowBound              int     `yaml:"light_num_lowbound" toml:"light_num_lowbound"`
	NumHighBound             int     `yaml:"light_num_highbound" toml:"light_num_highbound"`
	DistLowBound             float64 `yaml:"light_dist_lowbound" toml:"light_dist_lowbound"`
	DistHighBound            float64 `yaml:"light_dist_highbound" toml:"light_dist_highbound"`
	EnergyMean               float64 `yaml:"light_energy_mean" toml:"light_energy_mean"`
	EnergyStd                float64 `yaml:"light_energy_std" toml:"light_energy_std"`
	EnvironmentEnergyLow     float64 `yaml:"light_environment_energy_lowbound" toml:"light_environment_energy_lowbound"`
	EnvironmentEnergyHigh    float64 `yaml:"light_environment_energy_highbound" toml:"light_environment_energy_highbound"`
	AzimuthDegreeLowBound    float64 `yaml:"light_azimuth_degree_lowbound" toml:"light_azimuth_degree_lowbound"`
	AzimuthDegreeHighBound   float64 `yaml:"light_azimuth_degree_highbound" toml:"light_azimuth_degree_highbound"`
	ElevationDegreeLowBound  float64 `yaml:"light_elevation_degree_lowbound" toml:"light_elevation_degree_lowbound"`
	ElevationDegreeHighBound float64 `yaml:"light_elevation_degree_highbound" toml:"light_elevation_degree_highbound"`

	// Distance and energy of the single light used in fixed mode.
	Distance float64 `yaml:"distance" toml:"distance"`
	Energy   float64 `yaml:"energy" toml:"energy"`
}

// Settings for the blender engine.
type BlenderConfig struct {
	// Path to the blender executable.
	Binary string `yaml:"binary" toml:"binary"`

	// Optional .blend file loaded before the bridge script runs.
	BlendFile string `yaml:"blend_file" toml:"blend_file"`

	// Extra command line arguments, split using shell quoting rules.
	Args string `yaml:"args" toml:"args"`

	// Render engine and compute device (e.g. CYCLES/GPU).
	RenderEngine string `yaml:"render_engine" toml:"render_engine"`
	Device       string `yaml:"device" toml:"device"`
}

// Returns the default configuration, matching the settings the synthetic
// image pipeline has historically been run with.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			FrameStart: 1,
			FrameEnd:   250,
			FileFormat: "jpg",
			Engine:     "blender",
		},
		Camera: CameraConfig{
			FocalLength:          35,
			SensorWidth:          32,
			SensorHeight:         18,
			SensorFit:            "AUTO",
			ResolutionX:          856,
			ResolutionY:          480,
			ResolutionPercentage: 100,
			PixelAspectX:         1,
			PixelAspectY:         1,
		},
		Light: LightConfig{
			Mode:                     "fixed",
			NumLowBound:              0,
			NumHighBound:             6,
			DistLowBound:             8,
			DistHighBound:            20,
			EnergyMean:               2,
			EnergyStd:                2,
			EnvironmentEnergyLow:     0,
			EnvironmentEnergyHigh:    1,
			AzimuthDegreeLowBound:    0,
			AzimuthDegreeHighBound:   360,
			ElevationDegreeLowBound:  -90,
			ElevationDegreeHighBound: 90,
			Distance:                 2.5,
			Energy:                   2,
		},
		Blender: BlenderConfig{
			Binary:       "blender",
			RenderEngine: "CYCLES",
			Device:       "GPU",
		},
	}
}

// Load a configuration file on top of the defaults. The format is selected
// by the file extension (.yaml, .yml or .toml). Unknown keys are rejected.
func Load(path string) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("config: could not expand %q: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err = dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported config file format %q", filepath.Ext(path))
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func invalid(field, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, field, fmt.Sprintf(format, args...))
}

// Check the configuration for inconsistent values.
func (c *Config) Validate() error {
	r := c.Render
	switch {
	case r.FrameEnd < r.FrameStart:
		return invalid("render.frame_end", "must not be smaller than frame_start (%d)", r.FrameStart)
	case strings.TrimPrefix(r.FileFormat, ".") == "":
		return invalid("render.file_format", "must not be empty")
	case r.CameraDistance < 0:
		return invalid("render.camera_distance", "must not be negative")
	}
	switch r.Engine {
	case "blender", "sketch":
	default:
		return invalid("render.engine", "unknown engine %q", r.Engine)
	}

	if _, err := c.CameraParams(); err != nil {
		return invalid("camera", "%s", err)
	}

	l := c.Light
	if _, err := scene.ParseLightMode(l.Mode); err != nil {
		return invalid("light.mode", "%s", err)
	}
	switch {
	case l.NumLowBound < 0 || l.NumHighBound < l.NumLowBound:
		return invalid("light.light_num_*", "bounds [%d, %d] are invalid", l.NumLowBound, l.NumHighBound)
	case l.DistLowBound <= 0 || l.DistHighBound < l.DistLowBound:
		return invalid("light.light_dist_*", "bounds [%v, %v] are invalid", l.DistLowBound, l.DistHighBound)
	case l.EnergyStd < 0:
		return invalid("light.light_energy_std", "must not be negative")
	case l.EnvironmentEnergyLow < 0 || l.EnvironmentEnergyHigh < l.EnvironmentEnergyLow:
		return invalid("light.light_environment_energy_*", "bounds [%v, %v] are invalid", l.EnvironmentEnergyLow, l.EnvironmentEnergyHigh)
	case l.AzimuthDegreeHighBound < l.AzimuthDegreeLowBound:
		return invalid("light.light_azimuth_degree_*", "bounds [%v, %v] are invalid", l.AzimuthDegreeLowBound, l.AzimuthDegreeHighBound)
	case l.ElevationDegreeHighBound < l.ElevationDegreeLowBound:
		return invalid("light.light_elevation_degree_*", "bounds [%v, %v] are invalid", l.ElevationDegreeLowBound, l.ElevationDegreeHighBound)
	case l.Distance <= 0:
		return invalid("light.distance", "must be positive")
	case l.Energy < 0:
		return invalid("light.energy", "must not be negative")
	}

	if _, err := c.Blender.ExtraArgs(); err != nil {
		return invalid("blender.args", "%s", err)
	}
	return nil
}

// Build the camera parameters for intrinsics calculation.
func (c *Config) CameraParams() (scene.CameraParams, error) {
	fit, err := scene.ParseSensorFit(c.Camera.SensorFit)
	if err != nil {
		return scene.CameraParams{}, err
	}
	params := scene.CameraParams{
		FocalLength:     c.Camera.FocalLength,
		SensorWidth:     c.Camera.SensorWidth,
		SensorHeight:    c.Camera.SensorHeight,
		SensorFit:       fit,
		ResolutionX:     c.Camera.ResolutionX,
		ResolutionY:     c.Camera.ResolutionY,
		ResolutionScale: c.Camera.ResolutionPercentage,
		PixelAspectX:    c.Camera.PixelAspectX,
		PixelAspectY:    c.Camera.PixelAspectY,
	}
	if _, err = scene.ComputeIntrinsics(params); err != nil {
		return scene.CameraParams{}, err
	}
	return params, nil
}

// Build the light sampling bounds.
func (c *Config) LightBounds() scene.LightBounds {
	l := c.Light
	mode, _ := scene.ParseLightMode(l.Mode)
	return scene.LightBounds{
		Mode:                  mode,
		NumLow:                l.NumLowBound,
		NumHigh:               l.NumHighBound,
		DistLow:               l.DistLowBound,
		DistHigh:              l.DistHighBound,
		EnergyMean:            l.EnergyMean,
		EnergyStd:             l.EnergyStd,
		EnvironmentEnergyLow:  l.EnvironmentEnergyLow,
		EnvironmentEnergyHigh: l.EnvironmentEnergyHigh,
		AzimuthLow:            l.AzimuthDegreeLowBound,
		AzimuthHigh:           l.AzimuthDegreeHighBound,
		ElevationLow:          l.ElevationDegreeLowBound,
		ElevationHigh:         l.ElevationDegreeHighBound,
		FixedDistance:         l.Distance,
		FixedEnergy:           l.Energy,
	}
}

// Split the extra blender arguments using shell quoting rules.
func (b BlenderConfig) ExtraArgs() ([]string, error) {
	if strings.TrimSpace(b.Args) == "" {
		return nil, nil
	}
	return shellwords.Parse(b.Args)
}
