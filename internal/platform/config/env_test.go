package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port     int           `env:"TENANTSITE_TEST_PORT" envDefault:"123"`
	Locales  []string      `env:"TENANTSITE_TEST_LOCALES" envDefault:"en,tr"`
	CacheTTL time.Duration `env:"TENANTSITE_TEST_CACHE_TTL" envDefault:"30s"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
	if len(cfg.Locales) != 2 || cfg.Locales[0] != "en" || cfg.Locales[1] != "tr" {
		t.Fatalf("expected default locales [en tr], got %v", cfg.Locales)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Fatalf("expected default ttl 30s, got %v", cfg.CacheTTL)
	}
}

func TestParseEnvOverrides(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("TENANTSITE_TEST_PORT", "8080")
	t.Setenv("TENANTSITE_TEST_CACHE_TTL", "2m")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.CacheTTL != 2*time.Minute {
		t.Fatalf("expected ttl 2m, got %v", cfg.CacheTTL)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("TENANTSITE_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
