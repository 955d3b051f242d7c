package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsChecker reads crawl delays from API hosts' robots.txt.
type RobotsChecker struct {
	httpClient *http.Client
	userAgent  string
}

// NewRobotsChecker creates a new robots.txt checker
func NewRobotsChecker(userAgent string, timeout time.Duration) *RobotsChecker {
	return &RobotsChecker{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// CrawlDelay returns the crawl delay robots.txt asks of our user agent on
// rawURL's host. A missing robots.txt or group means no delay.
func (r *RobotsChecker) CrawlDelay(ctx context.Context, rawURL string) (time.Duration, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return 0, fmt.Errorf("parse URL: %w", err)
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", parsed.Scheme, parsed.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return 0, fmt.Errorf("parse robots.txt: %w", err)
	}

	group := data.FindGroup(productToken(r.userAgent))
	if group == nil {
		return 0, nil
	}
	return group.CrawlDelay, nil
}

// ApplyCrawlDelays probes each endpoint's host and slows the limiter down
// for hosts that ask for a crawl delay. Probe failures leave the host at the
// default rate.
func ApplyCrawlDelays(ctx context.Context, checker *RobotsChecker, limiter *Limiter, endpoints []string) map[string]time.Duration {
	applied := make(map[string]time.Duration)
	for _, endpoint := range endpoints {
		host, err := hostOf(endpoint)
		if err != nil || host == "" {
			continue
		}
		if _, done := applied[host]; done {
			continue
		}
		delay, err := checker.CrawlDelay(ctx, endpoint)
		if err != nil || delay <= 0 {
			continue
		}
		limiter.SetHostRate(host, 1/delay.Seconds(), 1)
		applied[host] = delay
	}
	return applied
}

// productToken extracts the product name of a user agent string,
// e.g. "wikisift" from "wikisift/0.1 (+https://...)".
func productToken(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) > 0 {
		return strings.Split(parts[0], "/")[0]
	}
	return ua
}
