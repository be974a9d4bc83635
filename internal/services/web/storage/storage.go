package storage

import (
	"context"
	"time"
)

// Cache scopes.
const (
	ScopeModules = "modules"
	ScopeSEO     = "seo"
)

// CacheEntry stores one cached config API payload and its freshness window.
type CacheEntry struct {
	CacheKey     string
	Scope        string
	TenantSlug   string
	Locale       string
	PayloadBytes []byte
	RefreshedAt  time.Time
	// ExpiresAt ends the fresh window. Expired entries may still be served
	// while the upstream is failing.
	ExpiresAt time.Time
}

// Fresh reports whether the entry is within its TTL at now.
func (e CacheEntry) Fresh(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.Before(e.ExpiresAt)
}

// Servable reports whether the entry may still be served at now, either
// fresh or within retention past its fresh window.
func (e CacheEntry) Servable(now time.Time, retention time.Duration) bool {
	if e.ExpiresAt.IsZero() {
		return false
	}
	return now.Before(e.ExpiresAt.Add(retention))
}

// Store is the cache persistence contract shared by all backends.
type Store interface {
	Close() error
	GetCacheEntry(ctx context.Context, cacheKey string) (CacheEntry, bool, error)
	PutCacheEntry(ctx context.Context, entry CacheEntry) error
	DeleteCacheEntry(ctx context.Context, cacheKey string) error
	// DeleteTenantEntries removes every entry for tenantSlug and reports how
	// many were removed.
	DeleteTenantEntries(ctx context.Context, tenantSlug string) (int, error)
}
