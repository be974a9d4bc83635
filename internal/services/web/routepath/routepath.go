// Package routepath stores canonical HTTP paths for the site server.
package routepath

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	Root              = "/"
	Health            = "/healthz"
	Metrics           = "/metrics"
	FaviconsPrefix    = "/favicons/"
	Favicon           = "/favicon.ico"
	AppleTouchIcon    = "/apple-touch-icon.png"
	Favicon16         = "/favicon-16x16.png"
	Favicon32         = "/favicon-32x32.png"
	OpsPrefix         = "/ops/"
	OpsTenantsPrefix  = "/ops/tenants/"
	OpsCachePurgePath = OpsTenantsPrefix + "{tenant}/cache/purge"
	HomePageSlug      = "home"
)

// Route labels used by access logs and HTTP metrics.
const (
	LabelPage     = "page"
	LabelHealth   = "health"
	LabelMetrics  = "metrics"
	LabelAsset    = "asset"
	LabelOps      = "ops"
	LabelNotFound = "other"
)

// Page returns the public path of a page slug.
func Page(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" || slug == HomePageSlug {
		return Root
	}
	return Root + escapeSegment(slug)
}

// PageSlug maps a request path to a page slug. The root path is the home
// page; nested paths are not pages.
func PageSlug(path string) (string, bool) {
	if path == "" || path == Root {
		return HomePageSlug, true
	}
	if !strings.HasPrefix(path, Root) {
		return "", false
	}
	slug := strings.TrimSuffix(strings.TrimPrefix(path, Root), "/")
	if slug == "" || strings.Contains(slug, "/") || strings.HasPrefix(slug, ".") {
		return "", false
	}
	return slug, true
}

// Label classifies a request path into a bounded route label.
func Label(r *http.Request) string {
	if r == nil || r.URL == nil {
		return LabelNotFound
	}
	path := r.URL.Path
	switch {
	case path == Health:
		return LabelHealth
	case path == Metrics:
		return LabelMetrics
	case strings.HasPrefix(path, FaviconsPrefix), IsLegacyIconPath(path):
		return LabelAsset
	case strings.HasPrefix(path, OpsPrefix):
		return LabelOps
	}
	if _, ok := PageSlug(path); ok {
		return LabelPage
	}
	return LabelNotFound
}

// IsLegacyIconPath reports whether path is one of the root-level icon paths
// browsers request without reading the page head.
func IsLegacyIconPath(path string) bool {
	switch path {
	case Favicon, AppleTouchIcon, Favicon16, Favicon32:
		return true
	default:
		return false
	}
}

func escapeSegment(raw string) string {
	return url.PathEscape(strings.TrimSpace(raw))
}
