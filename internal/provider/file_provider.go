package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fleveque/lastmosaic/internal/model"
)

// FileProvider serves a CollageData JSON document from disk, as written by
// `lastmosaic fetch`. It allows offline exports.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider for the JSON file at path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) Name() string { return "file" }

// GetCollage returns the file's collage. Request fields that are set must
// agree with the file; empty ones are taken from it.
func (p *FileProvider) GetCollage(_ context.Context, req Request) (*model.CollageData, error) {
	data, err := p.load()
	if err != nil {
		return nil, err
	}

	if req.Username != "" && !strings.EqualFold(req.Username, data.Username) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, req.Username)
	}
	if req.Period != "" && req.Period != data.Period {
		return nil, fmt.Errorf("file holds period %s, not %s", data.Period, req.Period)
	}
	if req.Type != "" && req.Type != data.Type {
		return nil, fmt.Errorf("file holds %s, not %s", data.Type, req.Type)
	}
	if req.GridSize != "" && req.GridSize != data.GridSize {
		return nil, fmt.Errorf("file holds a %s grid, not %s", data.GridSize, req.GridSize)
	}
	return data, nil
}

// ValidateUser accepts only the file's own username.
func (p *FileProvider) ValidateUser(_ context.Context, username string) error {
	data, err := p.load()
	if err != nil {
		return err
	}
	if !strings.EqualFold(username, data.Username) {
		return fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	return nil
}

func (p *FileProvider) load() (*model.CollageData, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("reading collage file: %w", err)
	}
	var data model.CollageData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing collage file %s: %w", p.path, err)
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("collage file %s: %w", p.path, err)
	}
	return &data, nil
}
