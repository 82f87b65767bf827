// Package render turns a layout tree into a lossless bitmap.
//
// The tree is written out as SVG with every piece of remote artwork
// embedded as a data URI, and libvips (through bimg) rasterizes the SVG
// at device scale:
//
//	layout tree -> fetch + crop artwork -> SVG -> libvips -> PNG
package render

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/h2non/bimg"
	"go.uber.org/zap"

	"github.com/fleveque/lastmosaic/internal/layout"
	"github.com/fleveque/lastmosaic/internal/model"
)

// DeviceScale is the default ratio of device pixels to logical pixels.
const DeviceScale = 2.0

// Mount is a layout tree attached to an off-screen staging area.
type Mount interface {
	Root() *layout.Container
	Background() layout.Color
	// Dir is a private scratch directory that lives as long as the mount.
	Dir() string
}

// Option configures a Rasterizer.
type Option func(*Rasterizer)

// WithScale overrides the device scale.
func WithScale(scale float64) Option {
	return func(r *Rasterizer) { r.scale = scale }
}

// WithHTTPClient sets the client used for artwork downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Rasterizer) { r.client = c }
}

// WithConcurrency bounds parallel artwork downloads.
func WithConcurrency(n int) Option {
	return func(r *Rasterizer) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithKeepSVG leaves the intermediate SVG in the mount's scratch dir.
func WithKeepSVG() Option {
	return func(r *Rasterizer) { r.keepSVG = true }
}

// Rasterizer renders mounted layouts to PNG.
type Rasterizer struct {
	client      *http.Client
	processor   *ArtworkProcessor
	scale       float64
	concurrency int
	keepSVG     bool
	logger      *zap.Logger
}

// NewRasterizer creates a Rasterizer with a 2x device scale.
func NewRasterizer(processor *ArtworkProcessor, logger *zap.Logger, opts ...Option) *Rasterizer {
	r := &Rasterizer{
		client:      &http.Client{Timeout: 30 * time.Second},
		processor:   processor,
		scale:       DeviceScale,
		concurrency: 8,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rasterize renders the mounted tree. Every failure, including a single
// artwork download, is returned as a *RenderingError.
func (r *Rasterizer) Rasterize(ctx context.Context, mount Mount) (model.Bitmap, error) {
	root := mount.Root()
	if root == nil || root.Rect.W <= 0 || root.Rect.H <= 0 {
		return model.Bitmap{}, renderErr(StageLayout, ErrEmptyLayout)
	}
	if !bimg.IsTypeSupported(bimg.SVG) {
		return model.Bitmap{}, renderErr(StageRasterize, ErrSVGUnsupported)
	}

	fetcher := &artworkFetcher{
		client:      r.client,
		processor:   r.processor,
		concurrency: r.concurrency,
		scale:       r.scale,
		logger:      r.logger,
	}
	artwork, err := fetcher.fetchAll(ctx, root)
	if err != nil {
		return model.Bitmap{}, renderErr(StageArtwork, err)
	}

	svg := RenderSVG(root, r.scale, artwork)
	if r.keepSVG {
		path := filepath.Join(mount.Dir(), "collage.svg")
		if err := os.WriteFile(path, svg, 0644); err != nil {
			return model.Bitmap{}, renderErr(StageSVG, fmt.Errorf("writing %s: %w", path, err))
		}
	}

	bg := mount.Background()
	out, err := bimg.NewImage(svg).Process(bimg.Options{
		Type:           bimg.PNG,
		Background:     bimg.Color{R: bg.R, G: bg.G, B: bg.B},
		Interpretation: bimg.InterpretationSRGB,
	})
	if err != nil {
		return model.Bitmap{}, renderErr(StageRasterize, err)
	}

	size, err := bimg.NewImage(out).Size()
	if err != nil {
		return model.Bitmap{}, renderErr(StageRasterize, fmt.Errorf("reading size: %w", err))
	}

	r.logger.Debug("rasterized collage",
		zap.Int("width", size.Width),
		zap.Int("height", size.Height),
		zap.Int("bytes", len(out)),
	)

	return model.Bitmap{
		Data:   out,
		Format: model.FormatPNG,
		Width:  size.Width,
		Height: size.Height,
	}, nil
}
