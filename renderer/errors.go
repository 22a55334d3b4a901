package renderer

import (
	"errors"
	"fmt"
)

var (
	ErrRenderer     = errors.New("renderer: render engine failure")
	ErrFilesystem   = errors.New("renderer: filesystem failure")
	ErrNoViewpoints = errors.New("renderer: no viewpoints defined")
	ErrNoModel      = errors.New("renderer: no model defined")
)

// An error that aborted a batch. Viewpoint and Frame are -1 when the failure
// is not tied to a particular viewpoint or frame.
type BatchError struct {
	Viewpoint int
	Frame     int
	Op        string
	Err       error
}

func (e *BatchError) Error() string {
	switch {
	case e.Viewpoint < 0:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Frame < 0:
		return fmt.Sprintf("viewpoint %d: %s: %v", e.Viewpoint, e.Op, e.Err)
	}
	return fmt.Sprintf("viewpoint %d, frame %d: %s: %v", e.Viewpoint, e.Frame, e.Op, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Tag an engine error so callers can match it with errors.Is(err, ErrRenderer).
func engineError(err error) error {
	if errors.Is(err, ErrRenderer) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrRenderer, err)
}
