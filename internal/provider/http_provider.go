package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/lastmosaic/internal/model"
)

// HTTPProvider reads collage data from a running lastmosaic server, so the
// CLI can export without its own Last.fm API key.
type HTTPProvider struct {
	baseURL string
	locale  string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPProvider creates a provider for the server at baseURL. locale is
// sent as Accept-Language so error messages come back localized.
func NewHTTPProvider(baseURL, locale string, logger *zap.Logger) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		locale:  locale,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

func (p *HTTPProvider) Name() string { return "http" }

// apiError is the error body the server returns.
type apiError struct {
	Error string `json:"error"`
}

func (p *HTTPProvider) GetCollage(ctx context.Context, req Request) (*model.CollageData, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("username", req.Username)
	q.Set("period", string(req.Period))
	q.Set("type", string(req.Type))
	q.Set("gridSize", string(req.GridSize))

	var data model.CollageData
	if err := p.get(ctx, "/api/v1/collage", q, req.Username, &data); err != nil {
		return nil, err
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("server returned invalid collage: %w", err)
	}
	return &data, nil
}

func (p *HTTPProvider) ValidateUser(ctx context.Context, username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	q := url.Values{}
	q.Set("username", username)

	var resp struct {
		Valid bool `json:"valid"`
	}
	if err := p.get(ctx, "/api/v1/validate-user", q, username, &resp); err != nil {
		return err
	}
	if !resp.Valid {
		return fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	return nil
}

func (p *HTTPProvider) get(ctx context.Context, path string, q url.Values, username string, out any) error {
	endpoint := p.baseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.locale != "" {
		req.Header.Set("Accept-Language", p.locale)
	}

	p.logger.Debug("requesting collage data", zap.String("url", endpoint))

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20)) // 10MB limit
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrUserNotFound, username)
	case resp.StatusCode != http.StatusOK:
		var e apiError
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("server error: HTTP %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
