package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %s, want 8080", cfg.HTTPPort)
	}
	if cfg.GenerateTimeout != 30*time.Second {
		t.Errorf("GenerateTimeout = %s, want 30s", cfg.GenerateTimeout)
	}
	if cfg.GeminiModel != "gemini-2.5-flash-image" {
		t.Errorf("GeminiModel = %s", cfg.GeminiModel)
	}
	if cfg.DedupCacheTTL != 24*time.Hour {
		t.Errorf("DedupCacheTTL = %s, want 24h", cfg.DedupCacheTTL)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("GENERATE_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT_BURST", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != "9999" {
		t.Errorf("HTTPPort = %s, want 9999", cfg.HTTPPort)
	}
	if cfg.GenerateTimeout != 5*time.Second {
		t.Errorf("GenerateTimeout = %s, want 5s", cfg.GenerateTimeout)
	}
	if cfg.RateLimitBurst != 3 {
		t.Errorf("RateLimitBurst = %d, want 3", cfg.RateLimitBurst)
	}
}
