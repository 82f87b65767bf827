package model

import "encoding/base64"

// Bitmap is an encoded raster image with its pixel size.
type Bitmap struct {
	Data   []byte
	Format ImageFormat
	Width  int
	Height int
}

// DataURL returns the bitmap as a base64 data URL.
func (b Bitmap) DataURL() string {
	return "data:" + string(b.Format) + ";base64," + base64.StdEncoding.EncodeToString(b.Data)
}

// Size is the encoded length in bytes.
func (b Bitmap) Size() int { return len(b.Data) }
