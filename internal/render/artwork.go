package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/h2non/bimg"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fleveque/lastmosaic/internal/layout"
	"github.com/fleveque/lastmosaic/internal/model"
)

// MaxArtworkSize caps a single artwork download.
const MaxArtworkSize = 10 * 1024 * 1024

// ArtworkProcessor normalizes downloaded artwork for embedding.
// It uses bimg (Go bindings for libvips), so libvips must be installed.
type ArtworkProcessor struct{}

// NewArtworkProcessor creates a new ArtworkProcessor.
func NewArtworkProcessor() *ArtworkProcessor {
	return &ArtworkProcessor{}
}

// CoverSquare scales the image to fill a pixels×pixels square and crops
// the overflow around the centre, the same result as CSS object-fit: cover.
// Output is always PNG.
func (p *ArtworkProcessor) CoverSquare(imageData []byte, pixels int) ([]byte, error) {
	if pixels <= 0 {
		return nil, fmt.Errorf("invalid artwork size: %dpx", pixels)
	}

	img := bimg.NewImage(imageData)
	out, err := img.Process(bimg.Options{
		Width:          pixels,
		Height:         pixels,
		Crop:           true,
		Gravity:        bimg.GravityCentre,
		Enlarge:        true,
		Type:           bimg.PNG,
		Interpretation: bimg.InterpretationSRGB,
	})
	if err != nil {
		return nil, fmt.Errorf("cropping to %dpx: %w", pixels, err)
	}
	return out, nil
}

// artworkFetcher downloads every Image in a tree and returns data URIs
// keyed by URL. Duplicate URLs are fetched once, at the largest tile size
// they appear at.
type artworkFetcher struct {
	client      *http.Client
	processor   *ArtworkProcessor
	concurrency int
	scale       float64
	logger      *zap.Logger
}

func (f *artworkFetcher) fetchAll(ctx context.Context, root *layout.Container) (map[string]string, error) {
	sizes := make(map[string]int)
	for _, img := range layout.Images(root) {
		px := scaled(img.Rect.W, f.scale)
		if px > sizes[img.URL] {
			sizes[img.URL] = px
		}
	}

	var (
		mu  sync.Mutex
		out = make(map[string]string, len(sizes))
	)

	// errgroup cancels the shared context on the first failure, so the
	// remaining downloads stop early.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for url, px := range sizes {
		g.Go(func() error {
			data, err := f.fetch(gctx, url)
			if err != nil {
				return err
			}
			png, err := f.processor.CoverSquare(data, px)
			if err != nil {
				return fmt.Errorf("processing %s: %w", url, err)
			}
			uri := model.Bitmap{Data: png, Format: model.FormatPNG}.DataURL()

			mu.Lock()
			out[url] = uri
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	f.logger.Debug("artwork fetched", zap.Int("images", len(out)))
	return out, nil
}

func (f *artworkFetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxArtworkSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if len(data) > MaxArtworkSize {
		return nil, fmt.Errorf("artwork %s exceeds %d bytes", url, MaxArtworkSize)
	}
	return data, nil
}
