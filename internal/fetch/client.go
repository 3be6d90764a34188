// Package fetch retrieves pages from scraped sites with rate limiting
// and bounded retries. Every source goes through the same client so
// politeness rules apply uniformly.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/franz/roster-scout/internal/util"
)

const (
	// DefaultTimeout is the per-request timeout
	DefaultTimeout = 30 * time.Second

	// MaxBodySize caps how much of a page is read into memory
	MaxBodySize = 4 << 20 // 4 MB
)

// Client handles page fetches with rate limiting and retries
type Client struct {
	httpClient  *http.Client
	userAgent   string
	rateLimiter *time.Ticker
	maxRetries  uint64
}

// Config holds fetch client configuration
type Config struct {
	UserAgent  string
	RateLimit  time.Duration
	Timeout    time.Duration
	MaxRetries int
}

// NewClient creates a new fetch client
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = util.UserAgent()
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = util.RateLimit()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent:   cfg.UserAgent,
		rateLimiter: time.NewTicker(cfg.RateLimit),
		maxRetries:  uint64(cfg.MaxRetries),
	}
}

// Close releases resources used by the client
func (c *Client) Close() {
	if c.rateLimiter != nil {
		c.rateLimiter.Stop()
	}
}

// Fetch retrieves a page body, retrying transient failures with
// exponential backoff. Not-found and blocked pages fail immediately;
// retrying those wastes the rate budget or aggravates the block.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, _, err := c.FetchPage(ctx, url)
	return body, err
}

// FetchPage is Fetch plus the final URL after redirects. Sources that
// record provenance need the page a site actually served, not the URL
// that was asked for.
func (c *Client) FetchPage(ctx context.Context, url string) ([]byte, string, error) {
	var body []byte
	finalURL := url

	operation := func() error {
		b, fu, err := c.fetchOnce(ctx, url)
		if err != nil {
			if fe := AsError(err); fe != nil {
				switch fe.Kind {
				case KindNotFound, KindBlocked:
					return backoff.Permanent(err)
				}
			}
			return err
		}
		body = b
		finalURL = fu
		return nil
	}

	notify := func(err error, wait time.Duration) {
		util.DebugLog("Fetch: retrying %s in %v: %v", url, wait, err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, "", err
	}

	return body, finalURL, nil
}

// fetchOnce performs a single rate-limited GET
func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, string, error) {
	// Wait for rate limit
	select {
	case <-c.rateLimiter.C:
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, "", &Error{Kind: KindTimeout, URL: url, Err: err}
		}
		return nil, "", &Error{Kind: KindUnavailable, URL: url, Err: err}
	}
	defer resp.Body.Close()

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	if kind := classifyStatus(resp.StatusCode); kind != "" {
		return nil, "", &Error{Kind: kind, URL: finalURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, "", &Error{Kind: KindUnavailable, URL: finalURL, Err: err}
	}

	util.DebugLog("Fetch: %s (%d bytes)", finalURL, len(body))
	return body, finalURL, nil
}

// classifyStatus maps an HTTP status to a failure kind, or "" for success
func classifyStatus(status int) Kind {
	switch {
	case status >= 200 && status < 300:
		return ""
	case status == http.StatusNotFound || status == http.StatusGone:
		return KindNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden ||
		status == http.StatusTooManyRequests || status == http.StatusUnavailableForLegalReasons:
		return KindBlocked
	default:
		return KindUnavailable
	}
}
