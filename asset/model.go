package asset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/qmuntal/gltf"
)

var ErrUnsupportedModel = errors.New("model: unsupported model format")

// 3D model file formats that can be imported by the render engines.
type ModelFormat string

const (
	FormatOBJ  ModelFormat = "obj"
	FormatPLY  ModelFormat = "ply"
	FormatSTL  ModelFormat = "stl"
	FormatFBX  ModelFormat = "fbx"
	FormatGLTF ModelFormat = "gltf"
)

var modelExtensions = map[string]ModelFormat{
	".obj":  FormatOBJ,
	".ply":  FormatPLY,
	".stl":  FormatSTL,
	".fbx":  FormatFBX,
	".gltf": FormatGLTF,
	".glb":  FormatGLTF,
}

// Information about a model file collected before it is handed to a render engine.
type ModelInfo struct {
	// Absolute path to the model.
	Path   string
	Format ModelFormat
	Size   int64

	// Mesh and node counts. Only populated for glTF models.
	Meshes int
	Nodes  int
}

func (mi *ModelInfo) String() string {
	if mi.Format == FormatGLTF {
		return fmt.Sprintf("%s (%s, %d bytes, %d meshes, %d nodes)", mi.Path, mi.Format, mi.Size, mi.Meshes, mi.Nodes)
	}
	return fmt.Sprintf("%s (%s, %d bytes)", mi.Path, mi.Format, mi.Size)
}

// Detect the format of a model file from its extension and make sure it can
// be imported. glTF documents are opened so that broken files are rejected
// before an engine is started.
func InspectModel(pathToModel string) (*ModelInfo, error) {
	path, err := homedir.Expand(pathToModel)
	if err != nil {
		return nil, fmt.Errorf("model: could not expand %q: %w", pathToModel, err)
	}
	if path, err = filepath.Abs(path); err != nil {
		return nil, fmt.Errorf("model: could not detect abs path for %q: %w", pathToModel, err)
	}

	format, ok := modelExtensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, filepath.Base(path))
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("model: %s is a directory", path)
	}

	info := &ModelInfo{
		Path:   path,
		Format: format,
		Size:   stat.Size(),
	}

	if format == FormatGLTF {
		doc, err := gltf.Open(path)
		if err != nil {
			return nil, fmt.Errorf("model: could not open gltf document %s: %w", path, err)
		}
		if len(doc.Meshes) == 0 {
			return nil, fmt.Errorf("model: gltf document %s does not contain any meshes", path)
		}
		info.Meshes = len(doc.Meshes)
		info.Nodes = len(doc.Nodes)
	}

	logger.Debugf("inspected model %s", info)
	return info, nil
}
