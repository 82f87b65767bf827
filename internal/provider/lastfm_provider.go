package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/lastmosaic/internal/lastfm"
	"github.com/fleveque/lastmosaic/internal/model"
	"github.com/fleveque/lastmosaic/internal/storage"
)

// LastFMProvider reads top albums and artists straight from Last.fm.
// Every upstream call is recorded for the stats endpoint.
type LastFMProvider struct {
	client   *lastfm.Client
	callRepo storage.CallRepository
	logger   *zap.Logger
}

// NewLastFMProvider creates a provider on a Last.fm client. callRepo may be
// nil, in which case calls are not recorded.
func NewLastFMProvider(client *lastfm.Client, callRepo storage.CallRepository, logger *zap.Logger) *LastFMProvider {
	return &LastFMProvider{client: client, callRepo: callRepo, logger: logger}
}

func (p *LastFMProvider) Name() string { return "lastfm" }

// GetCollage fetches grid-capacity items for the requested type.
func (p *LastFMProvider) GetCollage(ctx context.Context, req Request) (*model.CollageData, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	data := &model.CollageData{
		Username: req.Username,
		Period:   req.Period,
		Type:     req.Type,
		GridSize: req.GridSize,
		Items:    []model.CollageItem{},
	}
	limit := req.GridSize.Limit()

	switch req.Type {
	case model.TypeAlbums:
		var top *lastfm.TopAlbums
		err := p.track(ctx, "user.gettopalbums", req.Username, func() (err error) {
			top, err = p.client.User().GetTopAlbums(ctx, req.Username, string(req.Period), limit)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, a := range top.Albums {
			data.Items = append(data.Items, model.CollageItem{
				Name:      a.Name,
				Artist:    a.Artist.Name,
				Playcount: int(a.Playcount),
				ImageURL:  a.Image.ExtraLarge(),
			})
		}

	case model.TypeArtists:
		var top *lastfm.TopArtists
		err := p.track(ctx, "user.gettopartists", req.Username, func() (err error) {
			top, err = p.client.User().GetTopArtists(ctx, req.Username, string(req.Period), limit)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, a := range top.Artists {
			data.Items = append(data.Items, model.CollageItem{
				Name:      a.Name,
				Playcount: int(a.Playcount),
				ImageURL:  a.Image.ExtraLarge(),
			})
		}
	}

	// Last.fm occasionally returns more than limit on the last page.
	if len(data.Items) > limit {
		data.Items = data.Items[:limit]
	}
	return data, nil
}

// ValidateUser checks the user through user.getInfo.
func (p *LastFMProvider) ValidateUser(ctx context.Context, username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	return p.track(ctx, "user.getinfo", username, func() error {
		_, err := p.client.User().GetInfo(ctx, username)
		return err
	})
}

// track runs fn, records the call and maps Last.fm's user-not-found error.
func (p *LastFMProvider) track(ctx context.Context, method, username string, fn func() error) error {
	start := time.Now()
	err := fn()
	duration := time.Since(start).Milliseconds()

	p.recordCall(ctx, method, username, err, duration)

	if errors.Is(err, lastfm.ErrUserNotFound) {
		return fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	if err != nil {
		return fmt.Errorf("%s for %s: %w", method, username, err)
	}
	return nil
}

func (p *LastFMProvider) recordCall(ctx context.Context, method, username string, callErr error, durationMs int64) {
	if p.callRepo == nil {
		return
	}
	call := &model.UpstreamCall{
		Method:     method,
		Username:   username,
		Success:    callErr == nil,
		DurationMs: &durationMs,
	}
	// Record even when the request was canceled.
	if err := p.callRepo.Create(context.WithoutCancel(ctx), call); err != nil {
		p.logger.Error("recording upstream call", zap.Error(err))
	}
}
