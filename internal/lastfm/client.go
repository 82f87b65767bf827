// Package lastfm is a read-only client for the Last.fm API 2.0 (JSON).
//
// Only the unauthenticated user.* methods needed for collages are
// implemented:
//
//	client, err := lastfm.NewClient(lastfm.Config{APIKey: key})
//	albums, err := client.User().GetTopAlbums(ctx, "rj", "overall", 9)
package lastfm

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the default Last.fm API endpoint.
const DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

// Last.fm asks clients to stay under five requests per second.
const DefaultRequestsPerSecond = 5

// Config holds client configuration.
type Config struct {
	APIKey            string        // Required
	BaseURL           string        // Optional, for tests
	HTTPClient        *http.Client  // Optional
	Logger            *zap.Logger   // Optional
	RequestsPerSecond float64       // Optional, client-side pacing
	MaxRetries        int           // Optional, attempts per call (default 3)
	InitialBackoff    time.Duration // Optional, first retry delay (default 1s)
}

// Client is the entry point for Last.fm API calls.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration

	user *UserService
}

// NewClient creates a new Last.fm API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("lastfm: APIKey is required")
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.InitialBackoff,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.maxRetries <= 0 {
		c.maxRetries = 3
	}
	if c.backoff <= 0 {
		c.backoff = time.Second
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), 1)

	c.user = &UserService{client: c}
	return c, nil
}

// User returns the user.* methods.
func (c *Client) User() *UserService {
	return c.user
}
