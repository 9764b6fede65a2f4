package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/oarkflow/json"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/logger"
)

const (
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3

	// DefaultBackoff is the first retry delay; it doubles per attempt.
	DefaultBackoff = 500 * time.Millisecond

	// MaxBodySize caps how much of a response is read.
	MaxBodySize = 256 << 20

	// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
	HeaderRetryAfter = "Retry-After"
)

// Config configures the client.
type Config struct {
	// RequestsPerSecond is the proactive throttle rate.
	RequestsPerSecond float64

	// Burst is the token bucket size.
	Burst int

	// MaxRetries for transient failures. Zero means the default and a
	// negative value disables retries.
	MaxRetries int

	// Backoff is the initial retry delay.
	Backoff time.Duration

	// SearchTimeout bounds list and search calls.
	SearchTimeout time.Duration

	// DownloadTimeout bounds document downloads.
	DownloadTimeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// Transport allows injecting a custom HTTP transport (for tests).
	Transport http.RoundTripper
}

// ConfigFromSettings derives a client config from application settings.
func ConfigFromSettings(s domain.HTTPSettings) Config {
	return Config{
		RequestsPerSecond: s.RequestsPerSecond,
		SearchTimeout:     s.SearchTimeout,
		DownloadTimeout:   s.DownloadTimeout,
		UserAgent:         s.UserAgent,
	}
}

// Client is a rate-limited, retry-capable HTTP client.
// It is safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	bucket *rate.Limiter

	mu           sync.Mutex
	blockedUntil time.Time
}

// New creates a client, filling unset config fields with defaults.
func New(cfg Config) *Client {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 4
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 2
	}
	switch {
	case cfg.MaxRetries == 0:
		cfg.MaxRetries = DefaultMaxRetries
	case cfg.MaxRetries < 0:
		cfg.MaxRetries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = 30 * time.Second
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = 120 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "telemachus/1.0"
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Transport: cfg.Transport},
		bucket: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// Search fetches a list or search endpoint with the short timeout.
func (c *Client) Search(ctx context.Context, rawURL string, query url.Values) ([]byte, error) {
	return c.get(ctx, withQuery(rawURL, query), c.cfg.SearchTimeout)
}

// SearchJSON fetches a list or search endpoint and decodes its JSON body.
func (c *Client) SearchJSON(ctx context.Context, rawURL string, query url.Values, target any) error {
	body, err := c.Search(ctx, rawURL, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

// Download fetches a document with the long timeout.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	return c.get(ctx, rawURL, c.cfg.DownloadTimeout)
}

func (c *Client) get(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.Backoff * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.once(ctx, rawURL, timeout)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil || !IsTransient(err) {
			return nil, err
		}
		logger.Debug("httpclient: attempt %d for %s failed: %v", attempt+1, rawURL, err)
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// wait blocks for the token bucket and any Retry-After pause.
func (c *Client) wait(ctx context.Context) error {
	if err := c.bucket.Wait(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	until := c.blockedUntil
	c.mu.Unlock()

	if d := time.Until(until); d > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}
	return nil
}

func (c *Client) once(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
			c.pause(resp.Header.Get(HeaderRetryAfter))
		}
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: rawURL, Body: snippet}
	}
	return body, nil
}

// pause honours a Retry-After header for every request on this client.
func (c *Client) pause(header string) {
	d, ok := parseRetryAfter(header, time.Now())
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if until := time.Now().Add(d); until.After(c.blockedUntil) {
		c.blockedUntil = until
	}
}

func parseRetryAfter(header string, now time.Time) (time.Duration, bool) {
	if header == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := t.Sub(now); d > 0 {
			return d, true
		}
	}
	return 0, false
}

func withQuery(rawURL string, query url.Values) string {
	if len(query) == 0 {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL + "?" + query.Encode()
	}
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

