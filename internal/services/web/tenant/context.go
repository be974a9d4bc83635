package tenant

import "context"

// Tenant is the request-scoped tenant resolution.
type Tenant struct {
	Slug   string
	Source Source
	// Descriptor is set when the slug names a configured tenant.
	Descriptor *Descriptor
}

// UnknownLabel stands in for every unconfigured slug in metric labels.
const UnknownLabel = "unknown"

// Known reports whether the slug names a configured tenant.
func (t Tenant) Known() bool {
	return t.Descriptor != nil
}

// MetricLabel returns the slug for configured tenants and UnknownLabel
// otherwise. Unconfigured slugs come from the Host header.
func (t Tenant) MetricLabel() string {
	if !t.Known() {
		return UnknownLabel
	}
	return t.Slug
}

type tenantContextKey struct{}

// WithTenant returns ctx carrying t.
func WithTenant(ctx context.Context, t Tenant) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, tenantContextKey{}, t)
}

// FromContext returns the tenant stored by WithTenant.
func FromContext(ctx context.Context) (Tenant, bool) {
	if ctx == nil {
		return Tenant{}, false
	}
	t, ok := ctx.Value(tenantContextKey{}).(Tenant)
	return t, ok
}
