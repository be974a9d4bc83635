// Package cache opens the config cache store and wraps the config API with a
// read-through cache.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	webstorage "github.com/louisbranch/tenantsite/internal/services/web/storage"
	webredis "github.com/louisbranch/tenantsite/internal/services/web/storage/redis"
	websqlite "github.com/louisbranch/tenantsite/internal/services/web/storage/sqlite"
)

// Backend names a cache store implementation.
type Backend string

const (
	BackendNone   Backend = "none"
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
)

// StoreOptions selects and configures the cache store.
type StoreOptions struct {
	Backend        Backend
	Path           string
	RedisURL       string
	StaleRetention time.Duration
}

// OpenStore opens the configured cache store. BackendNone, or SQLite with an
// empty path, yields a nil store and no error.
func OpenStore(ctx context.Context, opts StoreOptions) (webstorage.Store, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(string(opts.Backend)))) {
	case BackendNone, "":
		return nil, nil
	case BackendSQLite:
		return openSQLite(opts.Path)
	case BackendRedis:
		store, err := webredis.Open(ctx, opts.RedisURL, webredis.Options{StaleRetention: opts.StaleRetention})
		if err != nil {
			return nil, fmt.Errorf("open web cache redis store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}

func openSQLite(path string) (webstorage.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create web cache dir: %w", err)
		}
	}
	store, err := websqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open web cache sqlite store: %w", err)
	}
	return store, nil
}

var _ Pruner = (*websqlite.Store)(nil)
