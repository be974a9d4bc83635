// Package site serves tenant pages composed from config API module lists.
package site

import (
	"net/http"

	"github.com/louisbranch/tenantsite/internal/platform/telemetry/metrics"
	"github.com/louisbranch/tenantsite/internal/services/web/app"
	"github.com/louisbranch/tenantsite/internal/services/web/composition"
	"github.com/louisbranch/tenantsite/internal/services/web/integration/configapi"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/httpx"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/tenantsite/internal/services/web/routepath"
	"go.uber.org/zap"
)

// Config wires the site surface.
type Config struct {
	Source        configapi.Source
	Composer      *composition.Composer
	RequestPolicy requestmeta.Policy
	Logger        *zap.Logger
	Metrics       *metrics.Metrics
}

// Surface mounts the page handler at the root path.
type Surface struct {
	handlers handlers
}

// New returns the site surface.
func New(cfg Config) Surface {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("site")
	composer := cfg.Composer
	if composer == nil {
		composer = composition.NewComposer(nil, logger, cfg.Metrics)
	}
	return Surface{handlers: handlers{
		service:  service{source: cfg.Source, logger: logger},
		composer: composer,
		policy:   cfg.RequestPolicy,
		logger:   logger,
		metrics:  cfg.Metrics,
	}}
}

// ID returns the surface id.
func (Surface) ID() string { return "site" }

// Mount returns the root mount.
func (s Surface) Mount() (app.Mount, error) {
	handler := httpx.Chain(http.HandlerFunc(s.handlers.handlePage), httpx.RequireMethod(http.MethodGet, http.MethodHead))
	return app.Mount{Prefix: routepath.Root, Handler: handler}, nil
}
