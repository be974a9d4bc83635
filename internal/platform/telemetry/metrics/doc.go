// Package metrics provides operational metrics collection.
//
// # Metric Categories
//
//   - Resolution: tenant and locale resolution counts by winning source
//   - Composition: composed pages and missing section ids per tenant
//   - Upstream: config API calls and cache lookups by outcome
//   - HTTP: request counts and latency by route pattern
//
// # Integration
//
// Metrics register against an injected prometheus.Registerer so tests can use
// an isolated registry. The web server exposes them at /metrics in the
// Prometheus text format.
//
// A nil *Metrics is valid and records nothing.
package metrics
