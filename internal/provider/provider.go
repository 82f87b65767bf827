// Package provider defines where collage data comes from. Each source
// (Last.fm, the data API, a local file) implements CollageProvider.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/fleveque/lastmosaic/internal/model"
)

// ErrUserNotFound is returned when the username does not exist upstream.
// Callers check with errors.Is(err, ErrUserNotFound).
var ErrUserNotFound = errors.New("user not found")

// Request identifies one collage.
type Request struct {
	Username string
	Period   model.Period
	Type     model.ItemType
	GridSize model.GridSize
}

// Validate checks the username and enumerated fields.
func (r Request) Validate() error {
	switch {
	case r.Username == "":
		return fmt.Errorf("username is required")
	case !r.Period.Valid():
		return fmt.Errorf("invalid period: %q", r.Period)
	case !r.Type.Valid():
		return fmt.Errorf("invalid type: %q", r.Type)
	case !r.GridSize.Valid():
		return fmt.Errorf("invalid grid size: %q", r.GridSize)
	}
	return nil
}

// CollageProvider is the interface for collage data sources.
type CollageProvider interface {
	// GetCollage returns at most req.GridSize.Limit() items in rank order.
	GetCollage(ctx context.Context, req Request) (*model.CollageData, error)

	// ValidateUser returns nil when the user exists, or an error matching
	// ErrUserNotFound.
	ValidateUser(ctx context.Context, username string) error

	// Name returns a human-readable name for the provider.
	Name() string
}
