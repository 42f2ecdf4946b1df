package feed

import (
	"context"
	"sync"
	"time"

	"github.com/okian/escala/pkg/logger"
	"github.com/okian/escala/pkg/metrics"
)

// DefaultCacheKey is the key CachedSource stores snapshots under.
const DefaultCacheKey = "escala:feed:snapshot"

// DefaultTTL matches how often the upstream market is expected to move.
const DefaultTTL = 10 * time.Minute

// Cache stores snapshots with an expiry.
type Cache interface {
	Get(ctx context.Context, key string) (Snapshot, bool, error)
	Set(ctx context.Context, key string, s Snapshot, ttl time.Duration) error
}

type memoryEntry struct {
	snap    Snapshot
	expires time.Time
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get returns the entry for key unless it has expired.
func (m *MemoryCache) Get(_ context.Context, key string) (Snapshot, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || !m.now().Before(e.expires) {
		return Snapshot{}, false, nil
	}
	return e.snap, true, nil
}

// Set stores s under key for ttl. A non-positive ttl removes the entry.
func (m *MemoryCache) Set(_ context.Context, key string, s Snapshot, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ttl <= 0 {
		delete(m.entries, key)
		return nil
	}
	m.entries[key] = memoryEntry{snap: s, expires: m.now().Add(ttl)}
	return nil
}

// CachedSource serves snapshots from a Cache and refills it from the
// wrapped Source on a miss. Cache failures are logged and bypassed.
type CachedSource struct {
	source Source
	cache  Cache
	key    string
	ttl    time.Duration
	logger logger.Logger

	fill sync.Mutex
}

// CacheOption configures a CachedSource.
type CacheOption func(*CachedSource)

// WithTTL sets how long a fetched snapshot stays fresh.
func WithTTL(d time.Duration) CacheOption {
	return func(c *CachedSource) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithKey overrides the cache key.
func WithKey(k string) CacheOption {
	return func(c *CachedSource) {
		if k != "" {
			c.key = k
		}
	}
}

// WithCacheLogger sets the logger.
func WithCacheLogger(l logger.Logger) CacheOption {
	return func(c *CachedSource) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCachedSource wraps src with cache.
func NewCachedSource(src Source, cache Cache, opts ...CacheOption) *CachedSource {
	c := &CachedSource{
		source: src,
		cache:  cache,
		key:    DefaultCacheKey,
		ttl:    DefaultTTL,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the cached snapshot or fetches a new one. Concurrent misses
// share one upstream call.
func (c *CachedSource) Fetch(ctx context.Context) (Snapshot, error) {
	if s, ok := c.lookup(ctx); ok {
		return s, nil
	}

	c.fill.Lock()
	defer c.fill.Unlock()
	if s, ok := c.lookup(ctx); ok {
		return s, nil
	}

	metrics.RecordFeedCache("miss")
	s, err := c.source.Fetch(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if err := c.cache.Set(ctx, c.key, s, c.ttl); err != nil {
		c.logger.Warn(ctx, "snapshot cache write failed", logger.Error(err))
	}
	return s, nil
}

func (c *CachedSource) lookup(ctx context.Context) (Snapshot, bool) {
	s, ok, err := c.cache.Get(ctx, c.key)
	if err != nil {
		metrics.RecordFeedCache("error")
		c.logger.Warn(ctx, "snapshot cache read failed", logger.Error(err))
		return Snapshot{}, false
	}
	if ok {
		metrics.RecordFeedCache("hit")
	}
	return s, ok
}
