// Package requestmeta provides normalized request metadata helpers.
package requestmeta

import (
	"net/http"
	"strings"
)

// Policy controls which proxy headers request metadata may trust.
//
// Both flags must be explicitly enabled. Without a reverse proxy that strips
// client-supplied forwarding headers they are attacker controlled.
type Policy struct {
	TrustForwardedProto bool
	TrustForwardedHost  bool
}

// IsHTTPSWithPolicy reports whether a request should be treated as HTTPS using
// the provided policy.
func IsHTTPSWithPolicy(r *http.Request, policy Policy) bool {
	return requestScheme(r, policy) == "https"
}

// Host returns the client-facing host for r, port included when present.
//
// X-Forwarded-Host is honored only when policy.TrustForwardedHost is set; a
// comma-separated chain yields its first (client-most) entry.
func Host(r *http.Request, policy Policy) string {
	if r == nil {
		return ""
	}
	if policy.TrustForwardedHost {
		if forwarded := firstForwarded(r.Header.Get("X-Forwarded-Host")); forwarded != "" {
			return forwarded
		}
	}
	if host := strings.TrimSpace(r.Host); host != "" {
		return host
	}
	if r.URL != nil {
		return strings.TrimSpace(r.URL.Host)
	}
	return ""
}

func firstForwarded(raw string) string {
	first, _, _ := strings.Cut(raw, ",")
	return strings.TrimSpace(first)
}

func requestScheme(r *http.Request, policy Policy) string {
	if r == nil {
		return ""
	}
	if policy.TrustForwardedProto {
		if forwarded := strings.ToLower(firstForwarded(r.Header.Get("X-Forwarded-Proto"))); forwarded == "http" || forwarded == "https" {
			return forwarded
		}
	}
	if r.URL != nil {
		if scheme := strings.ToLower(strings.TrimSpace(r.URL.Scheme)); scheme == "http" || scheme == "https" {
			return scheme
		}
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
