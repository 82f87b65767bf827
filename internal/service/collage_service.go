// Package service contains the collage data logic shared by the HTTP API
// and the CLI. CollageService follows a "cache first, then provider" flow:
//
//	Layer 1: Cache: SQLite or Redis, keyed by user/period/type/grid
//	Layer 2: Provider: Last.fm (server), the data API or a file (CLI)
//
// Concurrent misses for the same key share one upstream fetch.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fleveque/lastmosaic/internal/lastfm"
	"github.com/fleveque/lastmosaic/internal/model"
	"github.com/fleveque/lastmosaic/internal/provider"
	"github.com/fleveque/lastmosaic/internal/storage"
)

// ErrInvalidRequest wraps request validation failures so handlers can map
// them to 400.
var ErrInvalidRequest = errors.New("invalid request")

// DefaultCacheTTL is used when the configured TTL is not positive.
const DefaultCacheTTL = 10 * time.Minute

// DefaultFetchTimeout bounds a shared upstream fetch. It outlives any single
// caller, so it needs its own deadline.
const DefaultFetchTimeout = 60 * time.Second

// CollageService fetches collage data through a cache.
type CollageService struct {
	provider provider.CollageProvider
	cache    storage.CollageCache   // nil disables caching
	calls    storage.CallRepository // nil disables call stats
	ttl      time.Duration
	timeout  time.Duration
	group    singleflight.Group
	logger   *zap.Logger
}

// NewCollageService wires a provider with an optional cache and call log.
func NewCollageService(
	p provider.CollageProvider,
	cache storage.CollageCache,
	calls storage.CallRepository,
	ttl time.Duration,
	logger *zap.Logger,
) *CollageService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CollageService{
		provider: p,
		cache:    cache,
		calls:    calls,
		ttl:      ttl,
		timeout:  DefaultFetchTimeout,
		logger:   logger,
	}
}

// GetCollage returns the collage for req, from cache when fresh.
func (s *CollageService) GetCollage(ctx context.Context, req provider.Request) (*model.CollageData, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	key := cacheKey(req)
	if data, ok := s.fromCache(ctx, key); ok {
		return data, nil
	}

	s.logger.Info("cache miss, fetching collage",
		zap.String("username", req.Username),
		zap.String("type", string(req.Type)),
		zap.String("period", string(req.Period)),
		zap.String("grid", string(req.GridSize)),
		zap.String("provider", s.provider.Name()),
	)

	// The fetch is shared by every caller waiting on key, so it must not
	// die with the first caller's context. Each caller still stops waiting
	// when its own context is done.
	ch := s.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		data, err := s.provider.GetCollage(fetchCtx, req)
		if err != nil {
			return nil, err
		}
		s.store(fetchCtx, key, data)
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("shared in-flight fetch", zap.String("key", key))
		}
		return res.Val.(*model.CollageData), nil
	}
}

// ProviderName names the configured data source.
func (s *CollageService) ProviderName() string {
	return s.provider.Name()
}

// ValidateUser reports whether username exists upstream.
func (s *CollageService) ValidateUser(ctx context.Context, username string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidRequest)
	}
	return s.provider.ValidateUser(ctx, username)
}

// Stats is what the stats endpoint reports.
type Stats struct {
	Provider      string `json:"provider"`
	CacheEntries  int64  `json:"cache_entries"`
	UpstreamCalls int64  `json:"upstream_calls"`
	FailedCalls   int64  `json:"failed_calls"`
}

// Stats counts live cache entries and recorded upstream calls.
func (s *CollageService) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{Provider: s.provider.Name()}
	var err error
	if s.cache != nil {
		if st.CacheEntries, err = s.cache.Count(ctx); err != nil {
			return nil, fmt.Errorf("counting cache entries: %w", err)
		}
	}
	if s.calls != nil {
		if st.UpstreamCalls, err = s.calls.Count(ctx); err != nil {
			return nil, fmt.Errorf("counting upstream calls: %w", err)
		}
		if st.FailedCalls, err = s.calls.CountFailed(ctx); err != nil {
			return nil, fmt.Errorf("counting failed calls: %w", err)
		}
	}
	return st, nil
}

// Usernames are case-insensitive on Last.fm, so they share a key.
func cacheKey(req provider.Request) string {
	return storage.CacheKey("collage",
		strings.ToLower(req.Username), req.Period, req.Type, req.GridSize)
}

func (s *CollageService) fromCache(ctx context.Context, key string) (*model.CollageData, bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrCacheMiss) {
			s.logger.Warn("reading collage cache", zap.Error(err))
		}
		return nil, false
	}

	var data model.CollageData
	if err := json.Unmarshal(payload, &data); err != nil {
		s.logger.Warn("dropping corrupt cache entry", zap.String("key", key), zap.Error(err))
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}
	return &data, true
}

// store is best effort: a cache write failure never fails the request.
func (s *CollageService) store(ctx context.Context, key string, data *model.CollageData) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("encoding collage for cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
		s.logger.Warn("writing collage cache", zap.Error(err))
	}
}

// imageSizes are the entries every fetched item carries.
var imageSizes = []string{lastfm.ImageSmall, lastfm.ImageMedium, lastfm.ImageLarge, lastfm.ImageExtraLarge}

// FetchedArtist is an artist in Last.fm's top-artists shape.
type FetchedArtist struct {
	Name      string         `json:"name"`
	Playcount string         `json:"playcount"`
	Image     []lastfm.Image `json:"image"`
}

// FetchedAlbum is an album in Last.fm's top-albums shape.
type FetchedAlbum struct {
	Name      string         `json:"name"`
	Artist    FetchedName    `json:"artist"`
	Playcount string         `json:"playcount"`
	Image     []lastfm.Image `json:"image"`
}

// FetchedName is the nested {"name": ...} object on albums.
type FetchedName struct {
	Name string `json:"name"`
}

// TopArtistsPayload is the body of "topartists".
type TopArtistsPayload struct {
	Artist []FetchedArtist `json:"artist"`
}

// TopAlbumsPayload is the body of "topalbums".
type TopAlbumsPayload struct {
	Album []FetchedAlbum `json:"album"`
}

// FetchResult mirrors Last.fm's user.getTop* envelope; exactly one field is set.
type FetchResult struct {
	TopArtists *TopArtistsPayload `json:"topartists,omitempty"`
	TopAlbums  *TopAlbumsPayload  `json:"topalbums,omitempty"`
}

// FetchData returns up to limit items reshaped like the Last.fm API. The
// upstream fetch uses the smallest grid that holds limit items.
func (s *CollageService) FetchData(ctx context.Context, username string, itemType model.ItemType, period model.Period, limit int) (*FetchResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidRequest)
	}

	data, err := s.GetCollage(ctx, provider.Request{
		Username: username,
		Period:   period,
		Type:     itemType,
		GridSize: model.GridSizeForLimit(limit),
	})
	if err != nil {
		return nil, err
	}

	items := data.Items
	if len(items) > limit {
		items = items[:limit]
	}

	res := &FetchResult{}
	switch itemType {
	case model.TypeArtists:
		res.TopArtists = &TopArtistsPayload{Artist: make([]FetchedArtist, 0, len(items))}
		for _, it := range items {
			res.TopArtists.Artist = append(res.TopArtists.Artist, FetchedArtist{
				Name:      it.Name,
				Playcount: strconv.Itoa(it.Playcount),
				Image:     imageEntries(it.ImageURL),
			})
		}
	case model.TypeAlbums:
		res.TopAlbums = &TopAlbumsPayload{Album: make([]FetchedAlbum, 0, len(items))}
		for _, it := range items {
			res.TopAlbums.Album = append(res.TopAlbums.Album, FetchedAlbum{
				Name:      it.Name,
				Artist:    FetchedName{Name: it.Artist},
				Playcount: strconv.Itoa(it.Playcount),
				Image:     imageEntries(it.ImageURL),
			})
		}
	}
	return res, nil
}

func imageEntries(url string) []lastfm.Image {
	out := make([]lastfm.Image, len(imageSizes))
	for i, size := range imageSizes {
		out[i] = lastfm.Image{Size: size, URL: url}
	}
	return out
}
