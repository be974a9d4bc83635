package web

import (
	"errors"
	"net/http"

	"github.com/louisbranch/tenantsite/internal/platform/i18n"
	"github.com/louisbranch/tenantsite/internal/platform/telemetry/metrics"
	"github.com/louisbranch/tenantsite/internal/services/web/app"
	"github.com/louisbranch/tenantsite/internal/services/web/composition"
	"github.com/louisbranch/tenantsite/internal/services/web/integration/configapi"
	"github.com/louisbranch/tenantsite/internal/services/web/locale"
	module "github.com/louisbranch/tenantsite/internal/services/web/module"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/httpx"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/tenantsite/internal/services/web/routepath"
	"github.com/louisbranch/tenantsite/internal/services/web/surfaces/assets"
	"github.com/louisbranch/tenantsite/internal/services/web/surfaces/health"
	"github.com/louisbranch/tenantsite/internal/services/web/surfaces/ops"
	"github.com/louisbranch/tenantsite/internal/services/web/surfaces/site"
	"github.com/louisbranch/tenantsite/internal/services/web/tenant"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// HandlerConfig carries the collaborators of the root handler.
type HandlerConfig struct {
	Resolver      tenant.Resolver
	Source        configapi.Source
	Purger        ops.Purger
	Modules       *module.Registry
	DefaultLocale i18n.Locale
	RequestPolicy requestmeta.Policy
	FaviconDir    string
	OpsToken      string
	HealthChecks  []health.Check
	// Gatherer enables /metrics when set.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

// NewHandler builds the root handler: request id, panic recovery, access
// log, icon rewrite, tenant resolution and locale negotiation in front of
// the surface mux.
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	if cfg.Source == nil {
		return nil, errors.New("config source is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fallback := cfg.DefaultLocale
	if !i18n.IsSupported(fallback) {
		fallback = i18n.DefaultLocale
	}

	public := []app.Surface{
		site.New(site.Config{
			Source:        cfg.Source,
			Composer:      composition.NewComposer(cfg.Modules, logger, cfg.Metrics),
			RequestPolicy: cfg.RequestPolicy,
			Logger:        logger,
			Metrics:       cfg.Metrics,
		}),
		assets.NewFavicons(cfg.FaviconDir),
		assets.NewStatic(),
		health.New(cfg.HealthChecks...),
	}
	if cfg.Gatherer != nil {
		public = append(public, health.NewMetrics(cfg.Gatherer))
	}
	root, err := app.BuildRootHandler(app.Config{
		PublicSurfaces:    public,
		ProtectedSurfaces: []app.Surface{ops.New(cfg.Purger, logger)},
		OpsToken:          cfg.OpsToken,
	})
	if err != nil {
		return nil, err
	}

	return httpx.Chain(root,
		httpx.RequestID(),
		httpx.RecoverPanic(logger),
		httpx.AccessLog(logger.Named("http"), cfg.Metrics, routepath.Label, accessLogFields),
		assets.RewriteIcons(cfg.Resolver, cfg.RequestPolicy),
		tenant.Middleware(cfg.Resolver, cfg.RequestPolicy, cfg.Metrics),
		locale.Middleware(fallback, cfg.RequestPolicy, cfg.Metrics),
	), nil
}

func accessLogFields(r *http.Request) []zap.Field {
	ctx := httpx.RequestContext(r)
	fields := []zap.Field{zap.String("locale", i18n.LocaleFromContext(ctx).String())}
	if t, ok := tenant.FromContext(ctx); ok {
		fields = append(fields, zap.String("tenant", t.Slug), zap.String("tenant_source", string(t.Source)))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
	}
	return fields
}
