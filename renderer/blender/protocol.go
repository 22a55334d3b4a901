package blender

import "github.com/achilleasa/viewsynth/types"

// Lines written by the bridge script to stdout that start with this prefix
// carry a JSON encoded reply. Everything else is blender output.
const replyPrefix = "@@bridge "

// The id of the reply the bridge sends once it is ready to accept commands.
const readyID = 0

type request struct {
	ID   uint64      `json:"id"`
	Cmd  string      `json:"cmd"`
	Args interface{} `json:"args,omitempty"`
}

type reply struct {
	ID      uint64 `json:"id"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Version string `json:"version,omitempty"`
}

type configureArgs struct {
	ResolutionX          int     `json:"resolution_x"`
	ResolutionY          int     `json:"resolution_y"`
	ResolutionPercentage float64 `json:"resolution_percentage"`
	PixelAspectX         float64 `json:"pixel_aspect_x"`
	PixelAspectY         float64 `json:"pixel_aspect_y"`
	Engine               string  `json:"engine"`
	Device               string  `json:"device"`
	FileFormat           string  `json:"file_format"`
}

type importArgs struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

type cameraArgs struct {
	Name         string  `json:"name"`
	Lens         float64 `json:"lens"`
	SensorWidth  float64 `json:"sensor_width"`
	SensorHeight float64 `json:"sensor_height"`
	SensorFit    string  `json:"sensor_fit"`
}

type poseArgs struct {
	Location types.Vec3 `json:"location"`
	Rotation [4]float64 `json:"rotation"`
}

type environmentArgs struct {
	Energy float64 `json:"energy"`
}

type lightArgs struct {
	Location types.Vec3 `json:"location"`
	Energy   float64    `json:"energy"`
}

type pathArgs struct {
	Points []types.Vec3 `json:"points"`
	Order  int          `json:"order"`
}

type frameArgs struct {
	Frame  int     `json:"frame"`
	Offset float64 `json:"offset"`
}

type renderArgs struct {
	Path string `json:"path"`
}
