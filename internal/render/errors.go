package render

import (
	"errors"
	"fmt"
)

// Stages a RenderingError can come from.
const (
	StageLayout    = "layout"
	StageArtwork   = "artwork"
	StageSVG       = "svg"
	StageRasterize = "rasterize"
)

// ErrEmptyLayout is returned when the tree has no area to draw.
var ErrEmptyLayout = errors.New("layout has zero area")

// ErrSVGUnsupported means the linked libvips was built without SVG loading.
var ErrSVGUnsupported = errors.New("libvips has no SVG loader")

// RenderingError is any failure turning a layout into a bitmap.
// The export pipeline treats it as fatal.
type RenderingError struct {
	Stage string
	Err   error
}

func (e *RenderingError) Error() string {
	return fmt.Sprintf("rendering failed at %s: %v", e.Stage, e.Err)
}

func (e *RenderingError) Unwrap() error { return e.Err }

func renderErr(stage string, err error) error {
	return &RenderingError{Stage: stage, Err: err}
}
