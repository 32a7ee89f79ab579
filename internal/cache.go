package internal

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long a cached response stays visible when no TTL is configured.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry[V any] struct {
	value    V
	storedAt time.Time
}

// TimedCache is a key/value store whose entries are treated as absent once
// they are older than the configured TTL. Expiry is checked lazily on Get;
// there is no background eviction and no size bound.
type TimedCache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]cacheEntry[V]
	ttl     time.Duration
	now     func() time.Time
}

// CacheOption configures a TimedCache.
type CacheOption func(*cacheConfig)

type cacheConfig struct {
	now func() time.Time
}

// WithClock replaces time.Now as the cache's clock source.
func WithClock(now func() time.Time) CacheOption {
	return func(c *cacheConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// NewTimedCache returns an empty cache. A non-positive ttl falls back to DefaultCacheTTL.
func NewTimedCache[K comparable, V any](ttl time.Duration, opts ...CacheOption) *TimedCache[K, V] {
	cfg := cacheConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &TimedCache[K, V]{
		entries: make(map[K]cacheEntry[V]),
		ttl:     ttl,
		now:     cfg.now,
	}
}

// Set inserts or replaces the entry for key, stamped with the current time.
func (c *TimedCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	c.entries[key] = cacheEntry[V]{value: value, storedAt: c.now()}
	c.mu.Unlock()
}

// Get returns the value for key if present and not older than the TTL.
// An expired entry is removed as a side effect.
func (c *TimedCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	entry, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return zero, false
	}
	return entry.value, true
}

// Delete removes key. It reports whether an entry was present.
func (c *TimedCache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// Clear drops every entry.
func (c *TimedCache[K, V]) Clear() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// SetTTL changes the TTL used by future Get calls. Existing entries keep
// their original timestamps.
func (c *TimedCache[K, V]) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	c.ttl = ttl
	c.mu.Unlock()
}

// TTL returns the current time-to-live.
func (c *TimedCache[K, V]) TTL() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl
}

// Len returns the number of stored entries, including expired ones that
// have not been looked up yet.
func (c *TimedCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
