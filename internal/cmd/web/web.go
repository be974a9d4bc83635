// Package web parses site server flags and launches the service.
package web

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/tenantsite/internal/platform/cmd"
	"github.com/louisbranch/tenantsite/internal/platform/i18n"
	"github.com/louisbranch/tenantsite/internal/platform/logging"
	"github.com/louisbranch/tenantsite/internal/platform/otel"
	"github.com/louisbranch/tenantsite/internal/services/web"
	"github.com/louisbranch/tenantsite/internal/services/web/integration/cache"
	"github.com/louisbranch/tenantsite/internal/services/web/tenant"
	"go.uber.org/zap"
)

// Config holds the web command configuration.
type Config struct {
	HTTPAddr        string `env:"TENANTSITE_WEB_HTTP_ADDR" envDefault:"localhost:8080"`
	Environment     string `env:"TENANTSITE_ENV" envDefault:"development"`
	DevelopmentSlug string `env:"TENANTSITE_WEB_DEV_TENANT" envDefault:"demo"`
	DefaultSlug     string `env:"TENANTSITE_WEB_DEFAULT_TENANT"`
	TenantsFile     string `env:"TENANTSITE_WEB_TENANTS_FILE"`
	FaviconDir      string `env:"TENANTSITE_WEB_FAVICON_DIR" envDefault:"public/favicons"`
	DefaultLocale   string `env:"TENANTSITE_WEB_DEFAULT_LOCALE" envDefault:"tr"`

	ConfigAPIBaseURL string        `env:"TENANTSITE_CONFIG_API_URL" envDefault:"http://localhost:8081/api"`
	ConfigAPITimeout time.Duration `env:"TENANTSITE_CONFIG_API_TIMEOUT" envDefault:"3s"`

	CacheBackend  string        `env:"TENANTSITE_CACHE_BACKEND" envDefault:"sqlite"`
	CachePath     string        `env:"TENANTSITE_CACHE_PATH" envDefault:"data/site-cache.db"`
	RedisURL      string        `env:"TENANTSITE_REDIS_URL"`
	CacheTTL      time.Duration `env:"TENANTSITE_CACHE_TTL" envDefault:"1m"`
	CacheStaleTTL time.Duration `env:"TENANTSITE_CACHE_STALE_TTL" envDefault:"24h"`

	TrustForwardedHost  bool   `env:"TENANTSITE_WEB_TRUST_FORWARDED_HOST"`
	TrustForwardedProto bool   `env:"TENANTSITE_WEB_TRUST_FORWARDED_PROTO"`
	MetricsEnabled      bool   `env:"TENANTSITE_METRICS_ENABLED" envDefault:"true"`
	OpsToken            string `env:"TENANTSITE_OPS_TOKEN"`

	LogLevel  string `env:"TENANTSITE_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"TENANTSITE_LOG_FORMAT" envDefault:"json"`

	Tracing otel.Config
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.Environment, "env", cfg.Environment, "Deployment environment (development or production)")
	fs.StringVar(&cfg.DevelopmentSlug, "dev-tenant", cfg.DevelopmentSlug, "Tenant slug used for unresolvable hosts in development")
	fs.StringVar(&cfg.DefaultSlug, "default-tenant", cfg.DefaultSlug, "Tenant slug used for unresolvable hosts in production")
	fs.StringVar(&cfg.TenantsFile, "tenants-file", cfg.TenantsFile, "YAML file listing tenants and their hostnames")
	fs.StringVar(&cfg.FaviconDir, "favicon-dir", cfg.FaviconDir, "Directory served under /favicons/")
	fs.StringVar(&cfg.DefaultLocale, "default-locale", cfg.DefaultLocale, "Locale used when negotiation finds no match")
	fs.StringVar(&cfg.ConfigAPIBaseURL, "config-api-url", cfg.ConfigAPIBaseURL, "Config API base URL")
	fs.DurationVar(&cfg.ConfigAPITimeout, "config-api-timeout", cfg.ConfigAPITimeout, "Config API request timeout")
	fs.StringVar(&cfg.CacheBackend, "cache-backend", cfg.CacheBackend, "Config cache backend (sqlite, redis or none)")
	fs.StringVar(&cfg.CachePath, "cache-path", cfg.CachePath, "SQLite cache database path")
	fs.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for the redis cache backend")
	fs.DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "Freshness window for cached config")
	fs.DurationVar(&cfg.CacheStaleTTL, "cache-stale-ttl", cfg.CacheStaleTTL, "How long stale config is kept for outages")
	fs.BoolVar(&cfg.TrustForwardedHost, "trust-forwarded-host", cfg.TrustForwardedHost, "Resolve tenants from X-Forwarded-Host")
	fs.BoolVar(&cfg.TrustForwardedProto, "trust-forwarded-proto", cfg.TrustForwardedProto, "Honor X-Forwarded-Proto for secure cookies")
	fs.BoolVar(&cfg.MetricsEnabled, "metrics", cfg.MetricsEnabled, "Expose Prometheus metrics on /metrics")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (json or console)")
	fs.StringVar(&cfg.Tracing.Endpoint, "otel-endpoint", cfg.Tracing.Endpoint, "OTLP/HTTP collector URL; empty disables tracing")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ServerConfig maps the command configuration onto the site server inputs.
func (cfg Config) ServerConfig() (web.Config, error) {
	defaultLocale, ok := i18n.ParseLocale(cfg.DefaultLocale)
	if !ok {
		return web.Config{}, fmt.Errorf("unsupported default locale %q", cfg.DefaultLocale)
	}
	return web.Config{
		HTTPAddr:            strings.TrimSpace(cfg.HTTPAddr),
		Environment:         tenant.ParseEnvironment(cfg.Environment),
		DevelopmentSlug:     strings.TrimSpace(cfg.DevelopmentSlug),
		DefaultSlug:         strings.TrimSpace(cfg.DefaultSlug),
		TenantsFile:         strings.TrimSpace(cfg.TenantsFile),
		FaviconDir:          strings.TrimSpace(cfg.FaviconDir),
		DefaultLocale:       defaultLocale,
		ConfigAPIBaseURL:    strings.TrimSpace(cfg.ConfigAPIBaseURL),
		ConfigAPITimeout:    cfg.ConfigAPITimeout,
		CacheBackend:        cache.Backend(cfg.CacheBackend),
		CachePath:           cfg.CachePath,
		RedisURL:            cfg.RedisURL,
		CacheTTL:            cfg.CacheTTL,
		CacheStaleTTL:       cfg.CacheStaleTTL,
		TrustForwardedHost:  cfg.TrustForwardedHost,
		TrustForwardedProto: cfg.TrustForwardedProto,
		MetricsEnabled:      cfg.MetricsEnabled,
		OpsToken:            strings.TrimSpace(cfg.OpsToken),
	}, nil
}

// Run starts the site server.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(logging.Config{
		Level:   cfg.LogLevel,
		Format:  logging.Format(cfg.LogFormat),
		Service: entrypoint.ServiceWeb,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	serverConfig, err := cfg.ServerConfig()
	if err != nil {
		return err
	}

	options := entrypoint.RunOptions{Logger: logger, Tracing: cfg.Tracing}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceWeb, options, func(ctx context.Context) error {
		server, err := web.NewServer(ctx, serverConfig, logger)
		if err != nil {
			return fmt.Errorf("init web server: %w", err)
		}
		defer server.Close()

		logger.Info("site server starting", zap.String("addr", serverConfig.HTTPAddr))
		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve web: %w", err)
		}
		return nil
	})
}
