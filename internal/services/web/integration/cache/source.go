package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/tenantsite/internal/platform/telemetry/metrics"
	module "github.com/louisbranch/tenantsite/internal/services/web/module"
	"github.com/louisbranch/tenantsite/internal/services/web/integration/configapi"
	apperrors "github.com/louisbranch/tenantsite/internal/services/web/platform/errors"
	"github.com/louisbranch/tenantsite/internal/services/web/seo"
	webstorage "github.com/louisbranch/tenantsite/internal/services/web/storage"
	"go.uber.org/zap"
)

const (
	defaultTTL            = time.Minute
	defaultStaleRetention = 24 * time.Hour
	pruneInterval         = 10 * time.Minute
)

// SourceOptions configures a CachedSource.
type SourceOptions struct {
	Backend Backend
	TTL     time.Duration
	// StaleRetention bounds how long past its TTL an entry may be served
	// while upstream is failing.
	StaleRetention time.Duration
	Now            func() time.Time
}

// Pruner is implemented by stores that do not expire entries on their own.
type Pruner interface {
	PruneExpired(ctx context.Context, cutoff time.Time) (int, error)
}

// CachedSource serves config API reads from the store while fresh, refreshes
// them from upstream when expired, and falls back to an expired entry when
// upstream is unavailable, for at most the stale retention. A nil store
// passes every read through.
type CachedSource struct {
	upstream  configapi.Source
	store     webstorage.Store
	backend   string
	ttl       time.Duration
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
	metrics   *metrics.Metrics

	pruneMu   sync.Mutex
	lastPrune time.Time
}

// NewCachedSource wraps upstream with store.
func NewCachedSource(upstream configapi.Source, store webstorage.Store, opts SourceOptions, logger *zap.Logger, m *metrics.Metrics) *CachedSource {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	retention := opts.StaleRetention
	if retention <= 0 {
		retention = defaultStaleRetention
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	backend := strings.TrimSpace(string(opts.Backend))
	if backend == "" {
		backend = string(BackendNone)
	}
	return &CachedSource{
		upstream:  upstream,
		store:     store,
		backend:   backend,
		ttl:       ttl,
		retention: retention,
		now:       now,
		logger:    logger.Named("cache"),
		metrics:   m,
	}
}

// Modules returns the page module list.
func (c *CachedSource) Modules(ctx context.Context, page configapi.Page) ([]module.Descriptor, error) {
	return readThrough(ctx, c, webstorage.ScopeModules, page, c.upstream.Modules)
}

// SEO returns the page metadata snapshot.
func (c *CachedSource) SEO(ctx context.Context, page configapi.Page) (seo.Snapshot, error) {
	return readThrough(ctx, c, webstorage.ScopeSEO, page, c.upstream.SEO)
}

// Purge drops every cached entry of a tenant.
func (c *CachedSource) Purge(ctx context.Context, tenantSlug string) (int, error) {
	if c.store == nil {
		return 0, nil
	}
	removed, err := c.store.DeleteTenantEntries(ctx, tenantSlug)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindUnavailable, "purge cache", err)
	}
	c.logger.Info("cache purged", zap.String("tenant", tenantSlug), zap.Int("entries", removed))
	return removed, nil
}

// Key returns the cache key of scope and page.
func Key(scope string, page configapi.Page) string {
	return scope + ":" + page.Tenant + ":" + page.Slug + ":" + page.Locale.String()
}

func readThrough[T any](ctx context.Context, c *CachedSource, scope string, page configapi.Page, load func(context.Context, configapi.Page) (T, error)) (T, error) {
	if c.store == nil {
		return load(ctx, page)
	}

	key := Key(scope, page)
	now := c.now()
	cached, hasCached := c.lookup(ctx, key)
	if hasCached && !cached.Servable(now, c.retention) {
		hasCached = false
	}
	if hasCached && cached.Fresh(now) {
		if value, ok := decodeEntry[T](cached); ok {
			c.metrics.ObserveCache(c.backend, "hit")
			return value, nil
		}
		hasCached = false
	}

	value, err := load(ctx, page)
	if err == nil {
		c.metrics.ObserveCache(c.backend, "miss")
		c.save(ctx, scope, key, page, value, now)
		return value, nil
	}

	if apperrors.Is(err, apperrors.KindNotFound) {
		if hasCached {
			if delErr := c.store.DeleteCacheEntry(ctx, key); delErr != nil {
				c.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(delErr))
			}
		}
		return value, err
	}

	if hasCached {
		if stale, ok := decodeEntry[T](cached); ok {
			c.metrics.ObserveCache(c.backend, "stale")
			c.logger.Warn("serving stale config after upstream failure",
				zap.String("key", key),
				zap.Time("refreshed_at", cached.RefreshedAt),
				zap.Error(err),
			)
			return stale, nil
		}
	}
	return value, err
}

func (c *CachedSource) lookup(ctx context.Context, key string) (webstorage.CacheEntry, bool) {
	entry, ok, err := c.store.GetCacheEntry(ctx, key)
	if err != nil {
		c.metrics.ObserveCache(c.backend, "error")
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return webstorage.CacheEntry{}, false
	}
	return entry, ok
}

func (c *CachedSource) save(ctx context.Context, scope, key string, page configapi.Page, value any, now time.Time) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	err = c.store.PutCacheEntry(ctx, webstorage.CacheEntry{
		CacheKey:     key,
		Scope:        scope,
		TenantSlug:   page.Tenant,
		Locale:       page.Locale.String(),
		PayloadBytes: payload,
		RefreshedAt:  now,
		ExpiresAt:    now.Add(c.ttl),
	})
	if err != nil {
		c.metrics.ObserveCache(c.backend, "error")
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	c.prune(ctx, now)
}

// prune drops entries past the stale retention, at most once per
// pruneInterval, on stores that keep expired rows.
func (c *CachedSource) prune(ctx context.Context, now time.Time) {
	pruner, ok := c.store.(Pruner)
	if !ok {
		return
	}
	c.pruneMu.Lock()
	if !c.lastPrune.IsZero() && now.Sub(c.lastPrune) < pruneInterval {
		c.pruneMu.Unlock()
		return
	}
	c.lastPrune = now
	c.pruneMu.Unlock()

	removed, err := pruner.PruneExpired(ctx, now.Add(-c.retention))
	if err != nil {
		c.logger.Warn("cache prune failed", zap.Error(err))
		return
	}
	if removed > 0 {
		c.logger.Debug("cache pruned", zap.Int("entries", removed))
	}
}

func decodeEntry[T any](entry webstorage.CacheEntry) (T, bool) {
	var value T
	if err := json.Unmarshal(entry.PayloadBytes, &value); err != nil {
		return value, false
	}
	return value, true
}

var _ configapi.Source = (*CachedSource)(nil)
