package web

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/louisbranch/tenantsite/internal/platform/i18n"
	"github.com/louisbranch/tenantsite/internal/services/web/integration/cache"
	"github.com/louisbranch/tenantsite/internal/services/web/tenant"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func validServerConfig() Config {
	return Config{
		HTTPAddr:         "127.0.0.1:0",
		Environment:      tenant.EnvironmentDevelopment,
		DevelopmentSlug:  "demo",
		DefaultLocale:    i18n.Turkish,
		ConfigAPIBaseURL: "http://127.0.0.1:1/api",
		CacheBackend:     cache.BackendNone,
	}
}

func TestNewServerValidatesConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing address", mutate: func(c *Config) { c.HTTPAddr = " " }},
		{name: "missing fallback tenant", mutate: func(c *Config) { c.DevelopmentSlug = "" }},
		{name: "missing tenants file", mutate: func(c *Config) { c.TenantsFile = filepath.Join(t.TempDir(), "absent.yaml") }},
		{name: "bad config api url", mutate: func(c *Config) { c.ConfigAPIBaseURL = "ftp://config" }},
		{name: "unknown cache backend", mutate: func(c *Config) { c.CacheBackend = "memcached" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validServerConfig()
			tc.mutate(&cfg)
			if _, err := NewServer(context.Background(), cfg, zap.NewNop()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestNewServerWithTenantsFileAndSQLiteCache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tenantsFile := filepath.Join(dir, "tenants.yaml")
	data := []byte("tenants:\n  - slug: acme\n    name: Acme Co\n    hostnames: [www.acme-shop.com]\n")
	if err := os.WriteFile(tenantsFile, data, 0o600); err != nil {
		t.Fatalf("write tenants: %v", err)
	}

	cfg := validServerConfig()
	cfg.TenantsFile = tenantsFile
	cfg.CacheBackend = cache.BackendSQLite
	cfg.CachePath = filepath.Join(dir, "cache", "site.db")

	core, logs := observer.New(zap.InfoLevel)
	server, err := NewServer(context.Background(), cfg, zap.New(core))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	defer server.Close()
	configured := logs.FilterMessage("site server configured").All()
	if len(configured) != 1 {
		t.Fatalf("configured log entries = %d, want 1", len(configured))
	}
	fields := configured[0].ContextMap()
	if got := fmt.Sprint(fields["tenant_slugs"]); got != "[acme]" {
		t.Fatalf("tenant_slugs = %s, want [acme]", got)
	}
	if got := fmt.Sprint(fields["modules"]); got == "[]" || got == "<nil>" {
		t.Fatalf("modules field = %s, want registered module ids", got)
	}
	if server.store == nil {
		t.Fatalf("expected sqlite store")
	}
	if _, err := os.Stat(cfg.CachePath); err != nil {
		t.Fatalf("cache database not created: %v", err)
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	server, err := NewServer(context.Background(), validServerConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := server.ListenAndServe(ctx); err != nil {
		t.Fatalf("ListenAndServe: %v", err)
	}
}

func TestServerNilSafety(t *testing.T) {
	t.Parallel()

	var server *Server
	server.Close()
	if err := server.ListenAndServe(context.Background()); err == nil {
		t.Fatalf("expected error for nil server")
	}
}
