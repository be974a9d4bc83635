package web

import (
	"flag"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/louisbranch/tenantsite/internal/platform/i18n"
	"github.com/louisbranch/tenantsite/internal/platform/otel"
	"github.com/louisbranch/tenantsite/internal/services/web/integration/cache"
	"github.com/louisbranch/tenantsite/internal/services/web/tenant"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	want := Config{
		HTTPAddr:         "localhost:8080",
		Environment:      "development",
		DevelopmentSlug:  "demo",
		FaviconDir:       "public/favicons",
		DefaultLocale:    "tr",
		ConfigAPIBaseURL: "http://localhost:8081/api",
		ConfigAPITimeout: 3 * time.Second,
		CacheBackend:     "sqlite",
		CachePath:        "data/site-cache.db",
		CacheTTL:         time.Minute,
		CacheStaleTTL:    24 * time.Hour,
		MetricsEnabled:   true,
		LogLevel:         "info",
		LogFormat:        "json",
		Tracing:          otel.Config{Enabled: true, Sampling: 1},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("ParseConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConfigReadsEnvironment(t *testing.T) {
	t.Setenv("TENANTSITE_ENV", "production")
	t.Setenv("TENANTSITE_WEB_DEFAULT_TENANT", "acme")
	t.Setenv("TENANTSITE_CACHE_BACKEND", "redis")
	t.Setenv("TENANTSITE_REDIS_URL", "redis://cache:6379/0")
	t.Setenv("TENANTSITE_CACHE_TTL", "30s")
	t.Setenv("TENANTSITE_OTEL_ENDPOINT", "http://collector:4318")

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.Environment != "production" || cfg.DefaultSlug != "acme" {
		t.Fatalf("environment = %q default = %q", cfg.Environment, cfg.DefaultSlug)
	}
	if cfg.CacheBackend != "redis" || cfg.RedisURL != "redis://cache:6379/0" {
		t.Fatalf("cache = %q %q", cfg.CacheBackend, cfg.RedisURL)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Fatalf("CacheTTL = %v, want 30s", cfg.CacheTTL)
	}
	if !cfg.Tracing.Active() || cfg.Tracing.Endpoint != "http://collector:4318" {
		t.Fatalf("Tracing = %+v, want active collector", cfg.Tracing)
	}
}

func TestParseConfigFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("TENANTSITE_WEB_HTTP_ADDR", "0.0.0.0:9000")

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{
		"-http-addr", "127.0.0.1:9002",
		"-default-locale", "de",
		"-trust-forwarded-host",
		"-cache-backend", "none",
	})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9002" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "127.0.0.1:9002")
	}
	if cfg.DefaultLocale != "de" || !cfg.TrustForwardedHost || cfg.CacheBackend != "none" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestParseConfigRejectsUnknownFlag(t *testing.T) {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := ParseConfig(fs, []string{"-auth-addr", "x"}); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}

func TestServerConfig(t *testing.T) {
	t.Parallel()

	cfg := Config{
		HTTPAddr:        " :8080 ",
		Environment:     "Production",
		DevelopmentSlug: "demo",
		DefaultSlug:     "acme",
		DefaultLocale:   "EN",
		CacheBackend:    "sqlite",
		OpsToken:        " secret ",
	}
	got, err := cfg.ServerConfig()
	if err != nil {
		t.Fatalf("ServerConfig() error = %v", err)
	}
	if got.HTTPAddr != ":8080" || got.OpsToken != "secret" {
		t.Fatalf("trimmed fields = %q %q", got.HTTPAddr, got.OpsToken)
	}
	if got.Environment != tenant.EnvironmentProduction {
		t.Fatalf("Environment = %q, want production", got.Environment)
	}
	if got.DefaultLocale != i18n.English {
		t.Fatalf("DefaultLocale = %q, want en", got.DefaultLocale)
	}
	if got.CacheBackend != cache.BackendSQLite {
		t.Fatalf("CacheBackend = %q", got.CacheBackend)
	}
}

func TestServerConfigRejectsUnsupportedLocale(t *testing.T) {
	t.Parallel()

	if _, err := (Config{DefaultLocale: "xx"}).ServerConfig(); err == nil {
		t.Fatalf("expected error for unsupported locale")
	}
}
