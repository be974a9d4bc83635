package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/tenantsite/internal/platform/i18n"
	"github.com/louisbranch/tenantsite/internal/platform/telemetry/metrics"
	"github.com/louisbranch/tenantsite/internal/platform/timeouts"
	"github.com/louisbranch/tenantsite/internal/services/web/integration/cache"
	"github.com/louisbranch/tenantsite/internal/services/web/integration/configapi"
	"github.com/louisbranch/tenantsite/internal/services/web/modules"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/requestmeta"
	webstorage "github.com/louisbranch/tenantsite/internal/services/web/storage"
	"github.com/louisbranch/tenantsite/internal/services/web/surfaces/health"
	"github.com/louisbranch/tenantsite/internal/services/web/tenant"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Config defines the inputs for the site server.
type Config struct {
	HTTPAddr        string
	Environment     tenant.Environment
	DevelopmentSlug string
	DefaultSlug     string
	TenantsFile     string
	FaviconDir      string
	DefaultLocale   i18n.Locale

	ConfigAPIBaseURL string
	ConfigAPITimeout time.Duration

	CacheBackend  cache.Backend
	CachePath     string
	RedisURL      string
	CacheTTL      time.Duration
	CacheStaleTTL time.Duration

	TrustForwardedHost  bool
	TrustForwardedProto bool
	MetricsEnabled      bool
	// OpsToken enables the /ops/ surface when set.
	OpsToken string
}

// Server hosts the site HTTP server.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	store      webstorage.Store
	logger     *zap.Logger
}

// NewServer builds a configured site server.
func NewServer(ctx context.Context, config Config, logger *zap.Logger) (*Server, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}

	registry, err := tenant.LoadFile(config.TenantsFile)
	if err != nil {
		return nil, fmt.Errorf("load tenants: %w", err)
	}
	resolver := tenant.Resolver{
		Environment:     config.Environment,
		DevelopmentSlug: config.DevelopmentSlug,
		DefaultSlug:     config.DefaultSlug,
		Registry:        registry,
	}
	if resolver.Fallback() == "" {
		return nil, errors.New("a development or default tenant slug is required")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	api, err := configapi.New(configapi.Config{
		BaseURL: config.ConfigAPIBaseURL,
		Timeout: config.ConfigAPITimeout,
	}, logger, m)
	if err != nil {
		return nil, fmt.Errorf("init config api client: %w", err)
	}

	openCtx, cancel := context.WithTimeout(ctx, timeouts.StoreOpen)
	store, err := cache.OpenStore(openCtx, cache.StoreOptions{
		Backend:        config.CacheBackend,
		Path:           config.CachePath,
		RedisURL:       config.RedisURL,
		StaleRetention: config.CacheStaleTTL,
	})
	cancel()
	if err != nil {
		return nil, err
	}
	source := cache.NewCachedSource(api, store, cache.SourceOptions{
		Backend:        config.CacheBackend,
		TTL:            config.CacheTTL,
		StaleRetention: config.CacheStaleTTL,
	}, logger, m)

	var checks []health.Check
	if pinger, ok := store.(health.Pinger); ok {
		checks = append(checks, health.Check{Name: "cache", Pinger: pinger})
	}
	var gatherer prometheus.Gatherer
	if config.MetricsEnabled {
		gatherer = reg
	}

	moduleRegistry := modules.DefaultRegistry()
	handler, err := NewHandler(HandlerConfig{
		Resolver:      resolver,
		Source:        source,
		Purger:        source,
		Modules:       moduleRegistry,
		DefaultLocale: config.DefaultLocale,
		RequestPolicy: requestmeta.Policy{
			TrustForwardedHost:  config.TrustForwardedHost,
			TrustForwardedProto: config.TrustForwardedProto,
		},
		FaviconDir:   config.FaviconDir,
		OpsToken:     config.OpsToken,
		HealthChecks: checks,
		Gatherer:     gatherer,
		Logger:       logger,
		Metrics:      m,
	})
	if err != nil {
		closeStore(store, logger)
		return nil, fmt.Errorf("build handler: %w", err)
	}

	logger.Info("site server configured",
		zap.String("environment", string(config.Environment)),
		zap.Int("tenants", registry.Len()),
		zap.Strings("tenant_slugs", registry.Slugs()),
		zap.Strings("modules", moduleRegistry.IDs()),
		zap.String("fallback_tenant", resolver.Fallback()),
		zap.String("cache_backend", string(config.CacheBackend)),
	)
	return &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           otelhttp.NewHandler(handler, "tenantsite.web"),
			ReadHeaderTimeout: timeouts.ReadHeader,
			IdleTimeout:       timeouts.Idle,
		},
		store:  store,
		logger: logger,
	}, nil
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	s.logger.Info("site listening", zap.String("addr", s.httpAddr))
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases the cache store.
func (s *Server) Close() {
	if s == nil {
		return
	}
	closeStore(s.store, s.logger)
}

func closeStore(store webstorage.Store, logger *zap.Logger) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		logger.Warn("close cache store", zap.Error(err))
	}
}
