package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OverpassURI() != "https://overpass-api.de" {
		t.Fatalf("unexpected overpass uri %q", cfg.OverpassURI())
	}
	if cfg.HTTPTimeout != 0 {
		t.Fatalf("expected transport default timeout, got %v", cfg.HTTPTimeout)
	}
	if cfg.CronInterval != time.Hour {
		t.Fatalf("unexpected cron interval %v", cfg.CronInterval)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OVERPASS_URI", "http://localhost:12345/")
	t.Setenv("CRON_INTERVAL", "60")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "30")
	t.Setenv("CRON_ONCE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OverpassURI() != "http://localhost:12345" {
		t.Fatalf("trailing slash not trimmed: %q", cfg.OverpassURI())
	}
	if cfg.CronInterval != time.Minute {
		t.Fatalf("unexpected cron interval %v", cfg.CronInterval)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.HTTPTimeout)
	}
	if !cfg.CronOnce {
		t.Fatalf("expected cron_once from env")
	}
}

func TestLoadRejectsInvalidInterval(t *testing.T) {
	t.Setenv("CRON_INTERVAL", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero cron_interval")
	}
}
