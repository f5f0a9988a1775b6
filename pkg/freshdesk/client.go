// Package freshdesk provides a client for the Freshdesk helpdesk API.
//
// The client is the pipeline's ticket access layer, so it returns the
// shared model types directly instead of redeclaring the wire shapes.
package freshdesk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/attribution-cli/internal/model"
)

// Client defines the Freshdesk operations used by the pipeline.
type Client interface {
	// TicketsForEmail returns the requester's tickets created inside the
	// inclusive [start, end] window.
	TicketsForEmail(ctx context.Context, email string, start, end time.Time) ([]model.TicketRecord, error)

	// Conversations returns every reply on the ticket.
	Conversations(ctx context.Context, ticketID int64) ([]model.ConversationRecord, error)
}

// Option configures the Freshdesk client.
type Option func(*httpClient)

// WithBaseURL overrides the https://<domain>.freshdesk.com base URL
// derived from the account domain (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
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

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Freshdesk client for the given account domain (the
// <domain> part of <domain>.freshdesk.com). The API key authenticates via
// basic auth with the literal password "X".
func NewClient(domain, apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: fmt.Sprintf("https://%s.freshdesk.com", domain),
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
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

// retryDo executes an authenticated GET with retries on transient failures.
// A 429 waits for the server's Retry-After before the next attempt; other
// retryable statuses use exponential backoff.
func (c *httpClient) retryDo(ctx context.Context, url string) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, 0, eris.Wrap(err, "freshdesk: rate limit")
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, 0, eris.Wrap(err, "freshdesk: create request")
		}
		req.SetBasicAuth(c.apiKey, "X")
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
			return nil, 0, eris.Wrap(lastErr, "freshdesk: send request")
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "freshdesk: read response body")
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxAttempts {
			wait := retryAfter(resp.Header.Get("Retry-After"), backoff)
			zap.L().Warn("freshdesk rate limited, waiting",
				zap.Duration("wait", wait),
				zap.Int("attempt", attempt),
			)
			lastErr = eris.Errorf("freshdesk: status 429: %s", string(body))
			if err := sleep(ctx, wait); err != nil {
				return nil, 0, err
			}
			backoff *= 2
			continue
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("freshdesk: status %d: %s", resp.StatusCode, string(body))
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
