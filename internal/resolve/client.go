// Package resolve looks up entity labels, page views and page info from the
// Wikimedia APIs.
//
// Every lookup is a single blocking request. A 429 response triggers one
// fixed pause, after which the response body is parsed as-is; there is no
// retry. Failures are logged and reported as absent values.
package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ppiankov/wikisift/internal/logging"
	"github.com/ppiankov/wikisift/internal/model"
	"github.com/ppiankov/wikisift/internal/ratelimit"
)

// DefaultRateLimitPause is how long a 429 response holds the pipeline.
const DefaultRateLimitPause = 30 * time.Second

// rateLimitSleepFunc is the pause applied after a 429 (injectable for tests)
var rateLimitSleepFunc = func(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Client is the HTTP client shared by all lookups.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	pause      time.Duration
	limiter    *ratelimit.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLimiter paces requests per host.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRateLimitPause overrides the pause applied after a 429.
func WithRateLimitPause(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.pause = d
		}
	}
}

// NewClient creates a Client from the HTTP configuration.
func NewClient(cfg model.HTTPConfig, opts ...Option) *Client {
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: newProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
		pause:     DefaultRateLimitPause,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON fetches rawURL and decodes the body into out. The service name
// only feeds log lines.
func (c *Client) getJSON(ctx context.Context, service, rawURL string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, rawURL); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("rate limited, pausing",
			slog.String("service", service),
			slog.Duration("pause", c.pause))
		rateLimitSleepFunc(ctx, c.pause)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response (status %d): %w", service, resp.StatusCode, err)
	}
	return nil
}

// newProxyFunc returns a proxy function for explicit proxy URLs, falling
// back to the environment.
func newProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
