package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tenantsite"

// Metrics holds the Prometheus collectors for the web service.
type Metrics struct {
	TenantResolutions   *prometheus.CounterVec
	LocaleResolutions   *prometheus.CounterVec
	PageCompositions    *prometheus.CounterVec
	MissingModules      *prometheus.CounterVec
	ConfigAPIRequests   *prometheus.CounterVec
	CacheLookups        *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TenantResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tenant",
			Name:      "resolutions_total",
			Help:      "Tenant resolutions by winning source (hostname, label, fallback).",
		}, []string{"source"}),
		LocaleResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "locale",
			Name:      "resolutions_total",
			Help:      "Locale resolutions by winning source (query, cookie, header, default).",
		}, []string{"source"}),
		PageCompositions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "page",
			Name:      "compositions_total",
			Help:      "Page renders by configured tenant (or unknown) and outcome (ok, unavailable, page_not_found, tenant_not_found).",
		}, []string{"tenant", "outcome"}),
		MissingModules: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "page",
			Name:      "missing_modules_total",
			Help:      "Descriptors whose module id was not found in the registry, by tenant.",
		}, []string{"tenant"}),
		ConfigAPIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "configapi",
			Name:      "requests_total",
			Help:      "Config API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Config cache lookups by backend and result (hit, miss, stale, error).",
		}, []string{"backend", "result"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
	}
}

// Handler serves the collectors registered on gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveTenant counts one tenant resolution.
func (m *Metrics) ObserveTenant(source string) {
	if m == nil {
		return
	}
	m.TenantResolutions.WithLabelValues(source).Inc()
}

// ObserveLocale counts one locale resolution.
func (m *Metrics) ObserveLocale(source string) {
	if m == nil {
		return
	}
	m.LocaleResolutions.WithLabelValues(source).Inc()
}

// ObserveComposition counts one page composition.
func (m *Metrics) ObserveComposition(tenant, outcome string) {
	if m == nil {
		return
	}
	m.PageCompositions.WithLabelValues(tenant, outcome).Inc()
}

// ObserveMissingModule counts one unknown module id. The id itself comes from
// the config API and is only logged.
func (m *Metrics) ObserveMissingModule(tenant string) {
	if m == nil {
		return
	}
	m.MissingModules.WithLabelValues(tenant).Inc()
}

// ObserveConfigAPI counts one upstream config API call.
func (m *Metrics) ObserveConfigAPI(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.ConfigAPIRequests.WithLabelValues(endpoint, outcome).Inc()
}

// ObserveCache counts one cache lookup.
func (m *Metrics) ObserveCache(backend, result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(backend, result).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
