// Package compress re-encodes rendered collages under a size/quality
// profile: optional downscale, opaque white backing for JPEG, a light
// sharpening pass at low quality, then encode. A result that is not
// smaller than its input is discarded in favour of the input.
package compress

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/fleveque/lastmosaic/internal/model"
)

// SharpenBelow is the quality under which the unsharp mask runs.
const SharpenBelow = 0.5

const sharpenAmount = 0.5

// EncodingError is a failure to decode the source or encode the result.
// The export pipeline recovers from it by delivering the uncompressed
// bitmap.
type EncodingError struct {
	Op  string
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("image %s failed: %v", e.Op, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// Compressor applies CompressionOptions to bitmaps.
type Compressor struct {
	logger *zap.Logger
}

// NewCompressor creates a new Compressor.
func NewCompressor(logger *zap.Logger) *Compressor {
	return &Compressor{logger: logger}
}

// Compress returns src re-encoded under opts, or src itself when the
// candidate would not be smaller.
func (c *Compressor) Compress(src model.Bitmap, opts model.CompressionOptions) (model.Bitmap, error) {
	if err := opts.Validate(); err != nil {
		return model.Bitmap{}, &EncodingError{Op: "options", Err: err}
	}

	img, err := imaging.Decode(bytes.NewReader(src.Data))
	if err != nil {
		return model.Bitmap{}, &EncodingError{Op: "decode", Err: err}
	}

	surface := composeSurface(img, opts)
	if opts.Quality < SharpenBelow {
		unsharpMask(surface)
	}

	data, err := encode(surface, opts)
	if err != nil {
		return model.Bitmap{}, &EncodingError{Op: "encode", Err: err}
	}

	b := surface.Bounds()
	candidate := model.Bitmap{Data: data, Format: opts.Format, Width: b.Dx(), Height: b.Dy()}

	if dataURLLen(candidate) >= dataURLLen(src) {
		c.logger.Info("compressed image is not smaller, keeping original",
			zap.Int("original_bytes", src.Size()),
			zap.Int("compressed_bytes", candidate.Size()),
			zap.String("format", string(opts.Format)),
		)
		return src, nil
	}

	c.logger.Debug("compressed image",
		zap.Int("original_bytes", src.Size()),
		zap.Int("compressed_bytes", candidate.Size()),
		zap.Int("width", candidate.Width),
		zap.Int("height", candidate.Height),
	)
	return candidate, nil
}

// TargetSize applies the max-width rule: images wider than maxWidth are
// scaled to maxWidth with the height floored to keep the aspect ratio.
func TargetSize(width, height, maxWidth int) (int, int) {
	if maxWidth <= 0 || width <= maxWidth {
		return width, height
	}
	h := height * maxWidth / width
	if h < 1 {
		h = 1
	}
	return maxWidth, h
}

// composeSurface draws img onto a fresh NRGBA surface at the target
// size. JPEG has no alpha, so unless transparency is explicitly kept
// the surface starts opaque white.
func composeSurface(img image.Image, opts model.CompressionOptions) *image.NRGBA {
	sb := img.Bounds()
	w, h := TargetSize(sb.Dx(), sb.Dy(), opts.MaxWidth)

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if opts.Format == model.FormatJPEG && !opts.PreserveTransparency {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	}

	if w == sb.Dx() && h == sb.Dy() {
		draw.Draw(dst, dst.Bounds(), img, sb.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, sb, draw.Over, nil)
	}
	return dst
}

// unsharpMask sharpens RGB in place: out = o + (o - blur)·amount, where
// blur is the 3×3 box mean of the original. Alpha and the one-pixel
// border are left as they are.
func unsharpMask(img *image.NRGBA) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return
	}

	orig := make([]uint8, len(img.Pix))
	copy(orig, img.Pix)
	stride := img.Stride

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*stride + x*4
			for ch := 0; ch < 3; ch++ {
				sum := 0
				for dy := -1; dy <= 1; dy++ {
					row := (y + dy) * stride
					for dx := -1; dx <= 1; dx++ {
						sum += int(orig[row+(x+dx)*4+ch])
					}
				}
				o := float64(orig[i+ch])
				blur := float64(sum) / 9
				img.Pix[i+ch] = clamp(o + (o-blur)*sharpenAmount)
			}
		}
	}
}

func clamp(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func encode(img image.Image, opts model.CompressionOptions) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch opts.Format {
	case model.FormatJPEG:
		quality := int(math.Round(opts.Quality * 100))
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case model.FormatPNG:
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	default:
		err = errors.New("unsupported format " + string(opts.Format))
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// dataURLLen is len(b.DataURL()) without building the string.
func dataURLLen(b model.Bitmap) int {
	return len("data:") + len(b.Format) + len(";base64,") + base64.StdEncoding.EncodedLen(len(b.Data))
}
