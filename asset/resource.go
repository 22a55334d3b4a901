package asset

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// The Resource type wraps a streamable local file or a remote http(s) document.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Returns the file name of the resource without any directory or URL prefix.
func (r *Resource) Name() string {
	return filepath.Base(r.url.Path)
}

// Returns true if the Resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Create a new Resource data stream. Local paths may start with "~" which
// expands to the current user's home directory. If relTo is specified and
// pathToResource does not define a scheme, then the path to the new Resource
// is generated by concatenating the base path of relTo and pathToResource.
//
// The caller must close the returned Resource.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	url, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, err
	}

	if url.Scheme == "" {
		if relTo != nil && !filepath.IsAbs(url.Path) {
			path := url.Path
			url, _ = url.Parse(relTo.url.String())
			prefix := url.Path
			if url.Scheme == "" {
				prefix, err = filepath.Abs(relTo.url.String())
				if err != nil {
					return nil, fmt.Errorf("resource: could not detect abs path for %s: %w", relTo.url.String(), err)
				}
			}
			url.Path = filepath.Dir(prefix) + "/" + path
		} else if url.Path, err = homedir.Expand(url.Path); err != nil {
			return nil, fmt.Errorf("resource: could not expand %q: %w", pathToResource, err)
		}
	}

	var reader io.ReadCloser
	switch url.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(url.Path))
		if err != nil {
			return nil, err
		}
	case "http", "https":
		resp, err := http.Get(url.String())
		if err != nil {
			return nil, fmt.Errorf("resource: could not fetch '%s': %w", url.String(), err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("resource: could not fetch '%s': status %d", url.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, fmt.Errorf("resource: unsupported scheme '%s'", url.Scheme)
	}

	return &Resource{
		ReadCloser: reader,
		url:        url,
	}, nil
}

// Create a resource from a reader.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	url, _ := url.Parse(name)
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        url,
	}
}
