package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const maxBackoff = 30 * time.Second

// call makes a GET request to the API and returns the raw JSON body.
//
// Temporary API errors, 5xx responses and network errors are retried with
// exponential backoff. Every attempt waits on the client-side limiter.
func (c *Client) call(ctx context.Context, method string, params map[string]string) ([]byte, error) {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("method", method)
	q.Set("api_key", c.apiKey)
	q.Set("format", "json")
	endpoint := c.baseURL + "?" + q.Encode()

	var lastErr error
	backoff := c.backoff

	for i := 0; i < c.maxRetries; i++ {
		if i > 0 {
			c.logger.Debug("retrying lastfm call",
				zap.String("method", method),
				zap.Int("attempt", i+1),
				zap.Error(lastErr),
			)
			if !sleep(ctx, backoff) {
				return nil, ctx.Err()
			}
			backoff = nextBackoff(backoff)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.do(ctx, endpoint)
		if err == nil {
			return body, nil
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("lastfm: %s failed after %d attempts: %w", method, c.maxRetries, lastErr)
}

type serverError struct {
	status int
}

func (e *serverError) Error() string {
	return fmt.Sprintf("lastfm: server error: %d %s", e.status, http.StatusText(e.status))
}

// do performs a single attempt.
func (c *Client) do(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "lastmosaic/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	// Last.fm reports API errors as JSON, with either a 200 or a 4xx status.
	var apiErr Error
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Code != 0 {
		return nil, &apiErr
	}

	if resp.StatusCode >= 500 {
		return nil, &serverError{status: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lastfm: unexpected status code: %d", resp.StatusCode)
	}
	return body, nil
}

func retryable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	var srvErr *serverError
	if errors.As(err, &srvErr) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// sleep waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
