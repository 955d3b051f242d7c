package model

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all runtime settings for a sift run.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	API          APIConfig          `yaml:"api" mapstructure:"api"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Selection    SelectionConfig    `yaml:"selection" mapstructure:"selection"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// HTTPConfig configures the shared HTTP client used by every resolver.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// APIConfig holds the endpoints of the three lookup services.
type APIConfig struct {
	WikidataURL    string `yaml:"wikidata_url" mapstructure:"wikidata_url"`
	PageviewsURL   string `yaml:"pageviews_url" mapstructure:"pageviews_url"`
	WikipediaURL   string `yaml:"wikipedia_url" mapstructure:"wikipedia_url"`
	PageviewsStart string `yaml:"pageviews_start" mapstructure:"pageviews_start"` // YYYYMMDDHH
	PageviewsEnd   string `yaml:"pageviews_end" mapstructure:"pageviews_end"`     // YYYYMMDDHH
}

// RateLimitingConfig controls request pacing.
type RateLimitingConfig struct {
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 disables pacing
	BurstSize         int           `yaml:"burst_size" mapstructure:"burst_size"`
	RateLimitPause    time.Duration `yaml:"rate_limit_pause" mapstructure:"rate_limit_pause"` // Applied once after a 429
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// SelectionConfig holds the tunable parts of the selection rules.
type SelectionConfig struct {
	MinSitelinks   int            `yaml:"min_sitelinks" mapstructure:"min_sitelinks"`
	DateProperties []DateProperty `yaml:"date_properties" mapstructure:"date_properties"`
}

// OutputConfig controls where accepted items go.
type OutputConfig struct {
	Path          string `yaml:"path" mapstructure:"path"`
	SQLitePath    string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	ProgressEvery int    `yaml:"progress_every" mapstructure:"progress_every"`
	Verbose       bool   `yaml:"verbose" mapstructure:"verbose"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text, json
}

// DefaultUserAgent identifies wikisift to the Wikimedia APIs.
const DefaultUserAgent = "wikisift/0.1 (+https://github.com/ppiankov/wikisift)"

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    DefaultUserAgent,
			MaxBodyBytes: 2_000_000,
		},
		API: APIConfig{
			WikidataURL:    "https://www.wikidata.org/w/api.php",
			PageviewsURL:   "https://wikimedia.org/api/rest_v1/metrics/pageviews/per-article/en.wikipedia/all-access/all-agents",
			WikipediaURL:   "https://en.wikipedia.org/w/api.php",
			PageviewsStart: "2021010100",
			PageviewsEnd:   "2021020100",
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 0,
			BurstSize:         5,
			RateLimitPause:    30 * time.Second,
		},
		Selection: SelectionConfig{
			MinSitelinks:   15,
			DateProperties: DefaultDateProperties(),
		},
		Output: OutputConfig{
			Path:          "items.json",
			ProgressEvery: 100_000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.HTTP.UserAgent == "" {
		return errors.New("http.user_agent must not be empty")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %v", c.HTTP.Timeout)
	}
	if c.RateLimiting.RateLimitPause < 0 {
		return fmt.Errorf("rate_limiting.rate_limit_pause must not be negative, got %v", c.RateLimiting.RateLimitPause)
	}
	if c.RateLimiting.RequestsPerSecond < 0 {
		return fmt.Errorf("rate_limiting.requests_per_second must not be negative, got %v", c.RateLimiting.RequestsPerSecond)
	}
	if c.Selection.MinSitelinks < 0 {
		return fmt.Errorf("selection.min_sitelinks must not be negative, got %d", c.Selection.MinSitelinks)
	}
	if len(c.Selection.DateProperties) == 0 {
		return errors.New("selection.date_properties must not be empty")
	}
	seen := make(map[string]bool, len(c.Selection.DateProperties))
	for _, p := range c.Selection.DateProperties {
		if p.ID == "" {
			return errors.New("selection.date_properties: empty property id")
		}
		if seen[p.ID] {
			return fmt.Errorf("selection.date_properties: duplicate property %s", p.ID)
		}
		seen[p.ID] = true
	}
	if c.Output.Path == "" && c.Output.SQLitePath == "" {
		return errors.New("output.path or output.sqlite_path must be set")
	}
	return nil
}
