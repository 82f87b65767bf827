package export

import (
	"context"
	"fmt"
	"io"

	"github.com/fleveque/lastmosaic/internal/model"
	"github.com/fleveque/lastmosaic/internal/storage"
)

// Filename is the download name for a collage:
// [styled-]{username}-{type}-{period}-{gridSize}.{jpg|png}
func Filename(data model.CollageData, styled bool, format model.ImageFormat) string {
	prefix := ""
	if styled {
		prefix = "styled-"
	}
	return fmt.Sprintf("%s%s-%s-%s-%s.%s",
		prefix, data.Username, data.Type, data.Period, data.GridSize, format.Extension())
}

// Saver hands the finished file to the user.
type Saver interface {
	Save(ctx context.Context, filename string, data []byte) (location string, err error)
}

// DirSaver writes files into an output directory.
type DirSaver struct {
	fs *storage.FileSystem
}

// NewDirSaver creates a saver backed by fs.
func NewDirSaver(fs *storage.FileSystem) *DirSaver {
	return &DirSaver{fs: fs}
}

func (s *DirSaver) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.fs.Write(filename, data); err != nil {
		return "", err
	}
	return s.fs.Path(filename), nil
}

// WriterSaver streams the file to w, e.g. stdout.
type WriterSaver struct {
	W io.Writer
}

func (s WriterSaver) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := s.W.Write(data); err != nil {
		return "", fmt.Errorf("writing %s: %w", filename, err)
	}
	return filename, nil
}
