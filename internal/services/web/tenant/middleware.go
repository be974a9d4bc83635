package tenant

import (
	"net/http"

	"github.com/louisbranch/tenantsite/internal/platform/telemetry/metrics"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/httpx"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/requestmeta"
)

// Middleware resolves the request tenant from Host, or X-Forwarded-Host when
// the policy trusts it, and stores it in the request context.
func Middleware(resolver Resolver, policy requestmeta.Policy, m *metrics.Metrics) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t := FromRequest(r, resolver, policy)
			m.ObserveTenant(string(t.Source))
			r = r.WithContext(WithTenant(r.Context(), t))
			httpx.Publish(r)
			next.ServeHTTP(w, r)
		})
	}
}

// FromRequest resolves the tenant for r without touching its context.
func FromRequest(r *http.Request, resolver Resolver, policy requestmeta.Policy) Tenant {
	slug, source := resolver.Resolve(requestmeta.Host(r, policy))
	t := Tenant{Slug: slug, Source: source}
	if desc, ok := resolver.Registry.Lookup(slug); ok {
		t.Descriptor = &desc
	}
	return t
}
