package model

import (
	"strings"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.Selection.MinSitelinks != 15 {
		t.Errorf("expected min sitelinks 15, got %d", cfg.Selection.MinSitelinks)
	}
	if cfg.RateLimiting.RateLimitPause.Seconds() != 30 {
		t.Errorf("expected 30s pause, got %v", cfg.RateLimiting.RateLimitPause)
	}
}

func TestDefaultDateProperties_Order(t *testing.T) {
	props := DefaultDateProperties()
	if len(props) != 17 {
		t.Fatalf("expected 17 date properties, got %d", len(props))
	}
	if props[0].ID != "P575" {
		t.Errorf("expected P575 first, got %s", props[0].ID)
	}
	if props[len(props)-1].ID != "P7125" {
		t.Errorf("expected P7125 last, got %s", props[len(props)-1].ID)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty user agent", func(c *Config) { c.HTTP.UserAgent = "" }, "user_agent"},
		{"zero timeout", func(c *Config) { c.HTTP.Timeout = 0 }, "timeout"},
		{"negative pause", func(c *Config) { c.RateLimiting.RateLimitPause = -1 }, "rate_limit_pause"},
		{"no date properties", func(c *Config) { c.Selection.DateProperties = nil }, "date_properties"},
		{"duplicate date property", func(c *Config) {
			c.Selection.DateProperties = append(c.Selection.DateProperties, DateProperty{ID: "P569"})
		}, "duplicate"},
		{"no outputs", func(c *Config) { c.Output.Path = "" }, "output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDatePropertyDescription(t *testing.T) {
	props := DefaultDateProperties()
	if got := DatePropertyDescription(props, "P569"); got != "date of birth" {
		t.Errorf("expected 'date of birth', got %q", got)
	}
	if got := DatePropertyDescription(props, "P9999"); got != "P9999" {
		t.Errorf("expected fallback to id, got %q", got)
	}
}
