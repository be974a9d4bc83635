// Package telemetry groups the operational observability of the site.
//
// # Operational Metrics (telemetry/metrics)
//
// Prometheus counters and histograms for tenant/locale resolution, page
// composition, upstream config API calls and HTTP traffic.
//
// Tracing lives in platform/otel and is opt-in per deployment.
package telemetry
