// Package export runs the client-side collage pipeline:
//
//	Layout -> Rasterize -> Compress -> Deliver
//
// Stages run strictly in order. A rendering failure aborts the export; an
// encoding failure degrades to delivering the uncompressed bitmap.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/lastmosaic/internal/compress"
	"github.com/fleveque/lastmosaic/internal/layout"
	"github.com/fleveque/lastmosaic/internal/model"
	"github.com/fleveque/lastmosaic/internal/render"
)

// Rasterizer turns a mounted layout into a lossless bitmap.
type Rasterizer interface {
	Rasterize(ctx context.Context, mount render.Mount) (model.Bitmap, error)
}

// Compressor re-encodes a bitmap under a compression profile.
type Compressor interface {
	Compress(src model.Bitmap, opts model.CompressionOptions) (model.Bitmap, error)
}

// Stats records how long each stage took.
type Stats struct {
	LayoutTime   time.Duration
	RenderTime   time.Duration
	CompressTime time.Duration
	DeliverTime  time.Duration
}

// Total is the sum of all stages.
func (s Stats) Total() time.Duration {
	return s.LayoutTime + s.RenderTime + s.CompressTime + s.DeliverTime
}

// Result describes a delivered collage.
type Result struct {
	Filename string
	Location string
	Format   model.ImageFormat
	Bytes    int
	Width    int
	Height   int
	// Degraded is set when compression failed and the uncompressed
	// bitmap was delivered instead.
	Degraded bool
	Stats    Stats
}

// Exporter wires the pipeline stages together.
type Exporter struct {
	host       Host
	rasterizer Rasterizer
	compressor Compressor
	progress   ProgressFunc
	logger     *zap.Logger
}

// NewExporter creates an Exporter. progress may be nil.
func NewExporter(host Host, rasterizer Rasterizer, compressor Compressor, progress ProgressFunc, logger *zap.Logger) *Exporter {
	return &Exporter{
		host:       host,
		rasterizer: rasterizer,
		compressor: compressor,
		progress:   progress,
		logger:     logger,
	}
}

// Export renders data and hands the file to saver. Once the save
// succeeds no error is returned.
func (e *Exporter) Export(ctx context.Context, data model.CollageData, opts model.DownloadOptions, saver Saver) (*Result, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid collage data: %w", err)
	}
	compression, err := opts.CompressionLevel.Resolve()
	if err != nil {
		return nil, fmt.Errorf("resolving compression level: %w", err)
	}

	n := newNotifier(e.progress, e.logger)
	defer n.close()

	var stats Stats
	n.notify(StageProcessing, opts.Translate(stageKeys[StageProcessing], nil))

	// Layout
	start := time.Now()
	root := layout.Synthesize(data, opts)
	stats.LayoutTime = time.Since(start)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mount, err := e.host.Attach(root, layout.Background(opts.IsDarkMode))
	if err != nil {
		return nil, fmt.Errorf("attaching layout: %w", err)
	}
	defer func() {
		if err := mount.Detach(); err != nil {
			e.logger.Warn("detaching layout", zap.Error(err))
		}
	}()

	// Rasterize
	n.notify(StageRendering, opts.Translate(stageKeys[StageRendering], nil))
	start = time.Now()
	bitmap, err := e.rasterizer.Rasterize(ctx, mount)
	stats.RenderTime = time.Since(start)
	if err != nil {
		e.logger.Error("rendering collage",
			zap.String("username", data.Username),
			zap.Error(err),
		)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Compress
	n.notify(StageCompressing, opts.Translate(stageKeys[StageCompressing], nil))
	start = time.Now()
	out, err := e.compressor.Compress(bitmap, compression)
	stats.CompressTime = time.Since(start)
	degraded := false
	if err != nil {
		var encErr *compress.EncodingError
		if !errors.As(err, &encErr) {
			return nil, fmt.Errorf("compressing collage: %w", err)
		}
		e.logger.Warn("compression failed, delivering uncompressed image",
			zap.String("op", encErr.Op),
			zap.Error(err),
		)
		out, degraded = bitmap, true
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Deliver
	filename := Filename(data, opts.ShowStyles, out.Format)
	start = time.Now()
	location, err := saver.Save(ctx, filename, out.Data)
	stats.DeliverTime = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("saving %s: %w", filename, err)
	}

	n.notify(StageComplete, opts.Translate(stageKeys[StageComplete], nil))

	e.logger.Info("collage exported",
		zap.String("filename", filename),
		zap.String("compression", opts.CompressionLevel.String()),
		zap.Int("bytes", out.Size()),
		zap.Bool("degraded", degraded),
		zap.Duration("total", stats.Total()),
	)

	return &Result{
		Filename: filename,
		Location: location,
		Format:   out.Format,
		Bytes:    out.Size(),
		Width:    out.Width,
		Height:   out.Height,
		Degraded: degraded,
		Stats:    stats,
	}, nil
}
