package model

import (
	"fmt"
	"strings"
)

// ImageFormat is the MIME type of an encoded bitmap.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "image/png"
	FormatJPEG ImageFormat = "image/jpeg"
)

// Extension returns the file extension used for downloads.
func (f ImageFormat) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "png"
}

// CompressionOptions is the canonical encoder profile the compressor consumes.
// MaxWidth of 0 means no downscale.
type CompressionOptions struct {
	Quality              float64     `json:"quality" mapstructure:"quality"`
	MaxWidth             int         `json:"maxWidth,omitempty" mapstructure:"max_width"`
	Format               ImageFormat `json:"format" mapstructure:"format"`
	PreserveTransparency bool        `json:"preserveTransparency,omitempty" mapstructure:"preserve_transparency"`
}

// Validate checks quality is in (0,1] and the format is supported.
func (o CompressionOptions) Validate() error {
	if o.Quality <= 0 || o.Quality > 1 {
		return fmt.Errorf("quality must be in (0,1], got %v", o.Quality)
	}
	if o.MaxWidth < 0 {
		return fmt.Errorf("max width must not be negative, got %d", o.MaxWidth)
	}
	if o.Format != FormatPNG && o.Format != FormatJPEG {
		return fmt.Errorf("unsupported format: %q", o.Format)
	}
	return nil
}

// Preset names a bundle of compression parameters.
type Preset string

const (
	PresetHigh     Preset = "high"
	PresetNormal   Preset = "normal"
	PresetMedium   Preset = "medium"
	PresetLow      Preset = "low"
	PresetUltraLow Preset = "ultraLow"
	PresetTiny     Preset = "tiny"
)

// Presets holds the trade-off points. Everything below quality 0.5 gets
// the sharpening pass in the compressor.
var Presets = map[Preset]CompressionOptions{
	PresetHigh:     {Quality: 1.0, Format: FormatPNG},
	PresetNormal:   {Quality: 0.8, MaxWidth: 2400, Format: FormatJPEG},
	PresetMedium:   {Quality: 0.8, MaxWidth: 2400, Format: FormatJPEG},
	PresetLow:      {Quality: 0.6, MaxWidth: 1800, Format: FormatJPEG},
	PresetUltraLow: {Quality: 0.4, MaxWidth: 1200, Format: FormatJPEG},
	PresetTiny:     {Quality: 0.3, MaxWidth: 800, Format: FormatJPEG},
}

// AllPresets lists preset names from least to most aggressive.
var AllPresets = []Preset{PresetHigh, PresetNormal, PresetMedium, PresetLow, PresetUltraLow, PresetTiny}

// CompressionLevel is either a named preset or an explicit options record.
// The zero value resolves to the normal preset.
type CompressionLevel struct {
	preset   Preset
	explicit *CompressionOptions
}

// PresetLevel selects a named preset.
func PresetLevel(p Preset) CompressionLevel {
	return CompressionLevel{preset: p}
}

// ExplicitLevel carries a literal options record.
func ExplicitLevel(o CompressionOptions) CompressionLevel {
	return CompressionLevel{explicit: &o}
}

// ParseCompressionLevel accepts a preset name, case-insensitively.
func ParseCompressionLevel(s string) (CompressionLevel, error) {
	if s == "" {
		return CompressionLevel{}, nil
	}
	for _, p := range AllPresets {
		if strings.EqualFold(s, string(p)) {
			return PresetLevel(p), nil
		}
	}
	return CompressionLevel{}, fmt.Errorf("unknown compression level: %q", s)
}

// String returns the preset name, or "custom" for explicit records.
func (l CompressionLevel) String() string {
	if l.explicit != nil {
		return "custom"
	}
	if l.preset == "" {
		return string(PresetNormal)
	}
	return string(l.preset)
}

// Resolve turns the level into the concrete record the compressor uses.
func (l CompressionLevel) Resolve() (CompressionOptions, error) {
	if l.explicit != nil {
		if err := l.explicit.Validate(); err != nil {
			return CompressionOptions{}, err
		}
		return *l.explicit, nil
	}
	p := l.preset
	if p == "" {
		p = PresetNormal
	}
	opts, ok := Presets[p]
	if !ok {
		return CompressionOptions{}, fmt.Errorf("unknown compression preset: %q", p)
	}
	return opts, nil
}

// TranslateFunc looks up a localized message and fills {name} placeholders.
type TranslateFunc func(key string, params map[string]string) string

// NumberFormatFunc formats an integer for a locale.
type NumberFormatFunc func(n int, locale string) string

// DownloadOptions configures one export. T and FormatNumber are supplied
// by the host and treated as pure functions.
type DownloadOptions struct {
	ShowTitles       bool
	ShowPlayCount    bool
	ShowStyles       bool
	Locale           string
	DateString       string
	CompressionLevel CompressionLevel
	IsDarkMode       bool

	T            TranslateFunc
	FormatNumber NumberFormatFunc
}

// Translate calls T, falling back to the key when no translator is set.
func (o DownloadOptions) Translate(key string, params map[string]string) string {
	if o.T == nil {
		return key
	}
	return o.T(key, params)
}

// Number calls FormatNumber, falling back to plain decimal.
func (o DownloadOptions) Number(n int) string {
	if o.FormatNumber == nil {
		return fmt.Sprintf("%d", n)
	}
	return o.FormatNumber(n, o.Locale)
}
