// Package redis provides the web cache persistence adapter backed by Redis.
//
// Entries are JSON records under one key each; a per-tenant set indexes keys
// so a tenant's entries can be purged together. Redis expiry is the entry's
// fresh window plus a stale retention, so expired entries stay available for
// stale-on-error serving until retention ends.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	webstorage "github.com/louisbranch/tenantsite/internal/services/web/storage"
	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultPrefix         = "tenantsite:cache:"
	defaultStaleRetention = 24 * time.Hour
)

// Options configures key layout and retention.
type Options struct {
	Prefix         string
	StaleRetention time.Duration
}

// Store provides Redis-backed persistence for web cache data.
type Store struct {
	client         goredis.UniversalClient
	prefix         string
	staleRetention time.Duration
}

type record struct {
	Scope       string `json:"scope"`
	TenantSlug  string `json:"tenant"`
	Locale      string `json:"locale,omitempty"`
	Payload     []byte `json:"payload"`
	RefreshedAt int64  `json:"refreshed_at"`
	ExpiresAt   int64  `json:"expires_at"`
}

// Open connects to the Redis server at rawURL and verifies the connection.
func Open(ctx context.Context, rawURL string, opts Options) (*Store, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	clientOpts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(clientOpts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, opts), nil
}

// New wraps an existing client.
func New(client goredis.UniversalClient, opts Options) *Store {
	prefix := strings.TrimSpace(opts.Prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	retention := opts.StaleRetention
	if retention <= 0 {
		retention = defaultStaleRetention
	}
	return &Store{client: client, prefix: prefix, staleRetention: retention}
}

// Close releases the client.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Ping reports whether the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.client.Ping(ctx).Err()
}

// GetCacheEntry loads a cache payload and metadata by key.
func (s *Store) GetCacheEntry(ctx context.Context, cacheKey string) (webstorage.CacheEntry, bool, error) {
	if s == nil || s.client == nil {
		return webstorage.CacheEntry{}, false, fmt.Errorf("storage is not configured")
	}
	cacheKey = strings.TrimSpace(cacheKey)
	if cacheKey == "" {
		return webstorage.CacheEntry{}, false, fmt.Errorf("cache key is required")
	}

	data, err := s.client.Get(ctx, s.entryKey(cacheKey)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return webstorage.CacheEntry{}, false, nil
	}
	if err != nil {
		return webstorage.CacheEntry{}, false, fmt.Errorf("get cache entry: %w", err)
	}
	entry, err := decodeRecord(cacheKey, data)
	if err != nil {
		return webstorage.CacheEntry{}, false, err
	}
	return entry, true, nil
}

// PutCacheEntry stores a cache payload and indexes it under its tenant.
func (s *Store) PutCacheEntry(ctx context.Context, entry webstorage.CacheEntry) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("storage is not configured")
	}
	entry.CacheKey = strings.TrimSpace(entry.CacheKey)
	if entry.CacheKey == "" {
		return fmt.Errorf("cache key is required")
	}
	entry.Scope = strings.TrimSpace(entry.Scope)
	if entry.Scope == "" {
		return fmt.Errorf("cache scope is required")
	}
	entry.TenantSlug = strings.TrimSpace(entry.TenantSlug)
	if entry.TenantSlug == "" {
		return fmt.Errorf("tenant slug is required")
	}
	if len(entry.PayloadBytes) == 0 {
		return fmt.Errorf("cache payload is required")
	}
	if entry.RefreshedAt.IsZero() {
		entry.RefreshedAt = time.Now().UTC()
	}
	data, err := encodeRecord(entry)
	if err != nil {
		return err
	}

	ttl := s.ttl(entry, time.Now())
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.entryKey(entry.CacheKey), data, ttl)
	pipe.SAdd(ctx, s.tenantKey(entry.TenantSlug), entry.CacheKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

// DeleteCacheEntry removes a cache entry by key. The tenant index is cleaned
// lazily by DeleteTenantEntries.
func (s *Store) DeleteCacheEntry(ctx context.Context, cacheKey string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("storage is not configured")
	}
	cacheKey = strings.TrimSpace(cacheKey)
	if cacheKey == "" {
		return fmt.Errorf("cache key is required")
	}
	if err := s.client.Del(ctx, s.entryKey(cacheKey)).Err(); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// DeleteTenantEntries removes every indexed entry for one tenant.
func (s *Store) DeleteTenantEntries(ctx context.Context, tenantSlug string) (int, error) {
	if s == nil || s.client == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	tenantSlug = strings.TrimSpace(tenantSlug)
	if tenantSlug == "" {
		return 0, fmt.Errorf("tenant slug is required")
	}
	indexKey := s.tenantKey(tenantSlug)
	members, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("list tenant entries: %w", err)
	}
	keys := make([]string, 0, len(members)+1)
	for _, member := range members {
		keys = append(keys, s.entryKey(member))
	}
	var removed int64
	if len(keys) > 0 {
		removed, err = s.client.Del(ctx, keys...).Result()
		if err != nil {
			return 0, fmt.Errorf("delete tenant entries: %w", err)
		}
	}
	if err := s.client.Del(ctx, indexKey).Err(); err != nil {
		return int(removed), fmt.Errorf("delete tenant index: %w", err)
	}
	return int(removed), nil
}

func (s *Store) entryKey(cacheKey string) string {
	return s.prefix + "entry:" + cacheKey
}

func (s *Store) tenantKey(tenantSlug string) string {
	return s.prefix + "tenant:" + tenantSlug
}

// ttl keeps the entry for its remaining fresh window plus stale retention.
func (s *Store) ttl(entry webstorage.CacheEntry, now time.Time) time.Duration {
	if entry.ExpiresAt.IsZero() {
		return s.staleRetention
	}
	remaining := entry.ExpiresAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return remaining + s.staleRetention
}

func encodeRecord(entry webstorage.CacheEntry) ([]byte, error) {
	data, err := json.Marshal(record{
		Scope:       entry.Scope,
		TenantSlug:  entry.TenantSlug,
		Locale:      entry.Locale,
		Payload:     entry.PayloadBytes,
		RefreshedAt: toMillis(entry.RefreshedAt),
		ExpiresAt:   toMillis(entry.ExpiresAt),
	})
	if err != nil {
		return nil, fmt.Errorf("encode cache entry: %w", err)
	}
	return data, nil
}

func decodeRecord(cacheKey string, data []byte) (webstorage.CacheEntry, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return webstorage.CacheEntry{}, fmt.Errorf("decode cache entry: %w", err)
	}
	return webstorage.CacheEntry{
		CacheKey:     cacheKey,
		Scope:        rec.Scope,
		TenantSlug:   rec.TenantSlug,
		Locale:       rec.Locale,
		PayloadBytes: rec.Payload,
		RefreshedAt:  fromMillis(rec.RefreshedAt),
		ExpiresAt:    fromMillis(rec.ExpiresAt),
	}, nil
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

var _ webstorage.Store = (*Store)(nil)
