package asset

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/achilleasa/viewsynth/log"
	"github.com/achilleasa/viewsynth/scene"
)

var ErrMalformedViewpoint = errors.New("viewpoints: malformed viewpoint")

var logger = log.New("asset")

// Number of whitespace separated fields on a viewpoint line:
// azimuth elevation tilt distance.
const viewpointFields = 4

// Read a viewpoint list from a local file or URL.
func ReadViewpoints(pathToResource string) ([]scene.Viewpoint, error) {
	res, err := NewResource(pathToResource, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return ParseViewpoints(res)
}

// Parse viewpoints from a resource. Blank lines and lines starting with '#'
// are ignored. Any malformed line rejects the whole resource.
func ParseViewpoints(res *Resource) ([]scene.Viewpoint, error) {
	var vps []scene.Viewpoint

	scanner := bufio.NewScanner(res)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		vp, err := parseViewpoint(strings.Fields(line))
		if err != nil {
			return nil, fmt.Errorf("[%s: %d] %w", res.Path(), lineNum, err)
		}
		vps = append(vps, vp)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("viewpoints: reading %s: %w", res.Path(), err)
	}

	logger.Debugf("read %d viewpoints from %s", len(vps), res.Path())
	return vps, nil
}

func parseViewpoint(tokens []string) (scene.Viewpoint, error) {
	if len(tokens) != viewpointFields {
		return scene.Viewpoint{}, fmt.Errorf("%w: expected %d fields; got %d", ErrMalformedViewpoint, viewpointFields, len(tokens))
	}

	var values [viewpointFields]float64
	for idx, token := range tokens {
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return scene.Viewpoint{}, fmt.Errorf("%w: field %d: %q is not a number", ErrMalformedViewpoint, idx+1, token)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return scene.Viewpoint{}, fmt.Errorf("%w: field %d: %q is not a finite number", ErrMalformedViewpoint, idx+1, token)
		}
		values[idx] = v
	}

	return scene.Viewpoint{
		Azimuth:   values[0],
		Elevation: values[1],
		Tilt:      values[2],
		Distance:  values[3],
	}, nil
}
