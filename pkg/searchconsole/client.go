// Package searchconsole provides a client for the search analytics API,
// which reports per-query organic clicks, impressions, and average
// position for the company site. When configured, its rows substitute for
// the agency's exported ranking table.
package searchconsole

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/attribution-cli/internal/model"
)

const defaultBaseURL = "https://www.googleapis.com/webmasters/v3"

// defaultRowLimit is the API maximum per request.
const defaultRowLimit = 5000

// Client performs search analytics API operations.
type Client interface {
	// Rankings returns per-query ranking rows for the inclusive date range.
	Rankings(ctx context.Context, start, end time.Time) ([]model.RankingRow, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps request throughput at rps requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithRowLimit overrides the per-request row limit.
func WithRowLimit(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.rowLimit = n
		}
	}
}

type httpClient struct {
	siteURL  string
	token    string
	baseURL  string
	rowLimit int
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a search analytics client for the given property.
// siteURL is the property identifier (for example "https://example.com/"
// or "sc-domain:example.com"); token is an OAuth bearer token.
func NewClient(siteURL, token string, opts ...Option) Client {
	c := &httpClient{
		siteURL:  siteURL,
		token:    token,
		baseURL:  defaultBaseURL,
		rowLimit: defaultRowLimit,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes an authenticated POST with retries on transient
// failures. A 429 waits for the server's Retry-After before the next
// attempt; other retryable statuses use exponential backoff.
func (c *httpClient) retryDo(ctx context.Context, url string, payload []byte) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, 0, eris.Wrap(err, "searchconsole: rate limit")
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, 0, eris.Wrap(err, "searchconsole: create request")
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				if err := sleep(ctx, backoff); err != nil {
					return nil, 0, err
				}
				backoff *= 2
				continue
			}
			return nil, 0, eris.Wrap(lastErr, "searchconsole: send request")
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "searchconsole: read response body")
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxAttempts {
			wait := retryAfter(resp.Header.Get("Retry-After"), backoff)
			zap.L().Warn("search analytics rate limited, waiting",
				zap.Duration("wait", wait),
				zap.Int("attempt", attempt),
			)
			lastErr = eris.Errorf("searchconsole: status 429: %s", string(body))
			if err := sleep(ctx, wait); err != nil {
				return nil, 0, err
			}
			backoff *= 2
			continue
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("searchconsole: status %d: %s", resp.StatusCode, string(body))
			if err := sleep(ctx, backoff); err != nil {
				return nil, 0, err
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

// queryURL builds the site-scoped searchAnalytics endpoint.
func (c *httpClient) queryURL() string {
	return c.baseURL + "/sites/" + url.PathEscape(c.siteURL) + "/searchAnalytics/query"
}

// retryAfter parses a Retry-After header given in seconds, falling back to
// the computed backoff when absent or malformed.
func retryAfter(header string, fallback time.Duration) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return fallback
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
