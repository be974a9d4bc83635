// Package tenant maps request hostnames to tenant slugs and the per-tenant
// static asset paths derived from them.
package tenant

import (
	"net"
	"strings"

	"golang.org/x/net/idna"
)

// Environment selects the fallback slug used when a host names no tenant.
type Environment string

const (
	EnvironmentDevelopment Environment = "development"
	EnvironmentProduction  Environment = "production"
)

// ParseEnvironment normalizes value; anything but "production" is development.
func ParseEnvironment(value string) Environment {
	if strings.EqualFold(strings.TrimSpace(value), string(EnvironmentProduction)) {
		return EnvironmentProduction
	}
	return EnvironmentDevelopment
}

// Source names how a slug was chosen.
type Source string

const (
	SourceHostname Source = "hostname"
	SourceLabel    Source = "label"
	SourceFallback Source = "fallback"
)

// ResolveFromHost derives a tenant slug from a Host header value. Two-label
// hosts yield the first label and longer hosts the second-to-last label, after
// lowercasing and stripping the port and a leading "www.". Localhost, IP
// literals, single labels and malformed hosts yield fallback.
func ResolveFromHost(host, fallback string) string {
	slug, ok := slugFromHost(host)
	if !ok {
		return fallback
	}
	return slug
}

func slugFromHost(host string) (string, bool) {
	normalized, ok := normalizeHost(host)
	if !ok {
		return "", false
	}
	normalized = strings.TrimPrefix(normalized, "www.")
	labels := strings.Split(normalized, ".")
	for _, label := range labels {
		if label == "" {
			return "", false
		}
	}
	switch {
	case len(labels) < 2:
		return "", false
	case len(labels) == 2:
		return labels[0], true
	default:
		return labels[len(labels)-2], true
	}
}

// normalizeHost lowercases host, strips the port and a trailing root dot, and
// converts internationalized names to their ASCII form. Localhost and IP
// literals are rejected.
func normalizeHost(host string) (string, bool) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return "", false
	}
	if strings.HasPrefix(host, "[") {
		// Bracketed hosts are always IPv6 literals.
		return "", false
	}
	if name, _, err := net.SplitHostPort(host); err == nil {
		host = name
	} else if strings.Count(host, ":") > 1 {
		return "", false
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" || host == "localhost" || net.ParseIP(host) != nil {
		return "", false
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil || ascii == "" {
		return "", false
	}
	return ascii, true
}

// Resolver applies the environment-aware fallback and the optional hostname
// table.
type Resolver struct {
	Environment     Environment
	DevelopmentSlug string
	DefaultSlug     string
	Registry        *Registry
}

// Fallback returns the slug used when a host names no tenant.
func (r Resolver) Fallback() string {
	if r.Environment == EnvironmentProduction && strings.TrimSpace(r.DefaultSlug) != "" {
		return strings.TrimSpace(r.DefaultSlug)
	}
	return strings.TrimSpace(r.DevelopmentSlug)
}

// Resolve returns the tenant slug for host and how it was chosen. A
// configured hostname wins over the label rule. Resolve never fails.
func (r Resolver) Resolve(host string) (string, Source) {
	if slug, ok := r.Registry.SlugForHost(host); ok {
		return slug, SourceHostname
	}
	if slug, ok := slugFromHost(host); ok {
		return slug, SourceLabel
	}
	return r.Fallback(), SourceFallback
}
