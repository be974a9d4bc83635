// Package health exposes liveness and Prometheus scrape endpoints.
package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/louisbranch/tenantsite/internal/platform/telemetry/metrics"
	"github.com/louisbranch/tenantsite/internal/services/web/app"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/httpx"
	"github.com/louisbranch/tenantsite/internal/services/web/routepath"
	"github.com/prometheus/client_golang/prometheus"
)

const checkTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check is one named dependency check.
type Check struct {
	Name   string
	Pinger Pinger
}

type report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health serves /healthz.
type Health struct {
	checks []Check
}

// New returns the health surface. Checks with a nil pinger are skipped.
func New(checks ...Check) Health {
	kept := make([]Check, 0, len(checks))
	for _, check := range checks {
		if check.Pinger != nil && check.Name != "" {
			kept = append(kept, check)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Name < kept[j].Name })
	return Health{checks: kept}
}

// ID returns the surface id.
func (Health) ID() string { return "health" }

// Mount returns the health handler.
func (h Health) Mount() (app.Mount, error) {
	handler := httpx.Chain(http.HandlerFunc(h.serve), httpx.RequireMethod(http.MethodGet, http.MethodHead))
	return app.Mount{Prefix: routepath.Health, Handler: handler}, nil
}

func (h Health) serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(httpx.RequestContext(r), checkTimeout)
	defer cancel()

	out := report{Status: "ok"}
	status := http.StatusOK
	for _, check := range h.checks {
		result := "ok"
		if check.Pinger.Ping(ctx) != nil {
			result = "unavailable"
			out.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		if out.Checks == nil {
			out.Checks = make(map[string]string, len(h.checks))
		}
		out.Checks[check.Name] = result
	}
	_ = httpx.WriteJSON(w, status, out)
}

// Metrics serves the Prometheus scrape endpoint.
type Metrics struct {
	gatherer prometheus.Gatherer
}

// NewMetrics returns the metrics surface for gatherer.
func NewMetrics(gatherer prometheus.Gatherer) Metrics {
	return Metrics{gatherer: gatherer}
}

// ID returns the surface id.
func (Metrics) ID() string { return "metrics" }

// Mount returns the scrape handler.
func (m Metrics) Mount() (app.Mount, error) {
	handler := httpx.Chain(metrics.Handler(m.gatherer), httpx.RequireMethod(http.MethodGet))
	return app.Mount{Prefix: routepath.Metrics, Handler: handler}, nil
}
