package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is applied by Set when a non-positive ttl is given
const DefaultTTL = time.Hour

// Entry is a cached value together with its absolute expiry
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// isExpired checks if the entry has expired at the given instant
func (e Entry[V]) isExpired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// TTLCache is an in-memory map with per-entry expiry.
// Thread-safe implementation using sync.RWMutex. Get enforces expiry on its own,
// so the background sweep only reclaims memory.
type TTLCache[V any] struct {
	mu         sync.RWMutex
	entries    map[string]Entry[V]
	defaultTTL time.Duration
	now        func() time.Time
	hits       uint64
	misses     uint64
}

// Option configures a TTLCache
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates a TTLCache whose entries default to the given ttl
func New[V any](defaultTTL time.Duration, opts ...Option) *TTLCache[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &TTLCache[V]{
		entries:    make(map[string]Entry[V]),
		defaultTTL: defaultTTL,
		now:        o.now,
	}
}

// Get returns the value for key. Expired entries are reported as a miss and dropped.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists || entry.isExpired(c.now()) {
		c.misses++
		if exists {
			delete(c.entries, key)
		}
		var zero V
		return zero, false
	}

	c.hits++
	return entry.Value, true
}

// Set stores value under key, overwriting any previous entry and resetting its expiry.
// A non-positive ttl uses the cache default.
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry[V]{
		Value:     value,
		ExpiresAt: c.now().Add(ttl),
	}
}

// Delete removes a specific entry
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear removes all entries from the cache
func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry[V])
}

// DefaultTTL returns the ttl applied when Set is called without one
func (c *TTLCache[V]) DefaultTTL() time.Duration {
	return c.defaultTTL
}

// CleanupExpired removes all expired entries and returns how many were dropped
func (c *TTLCache[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if entry.isExpired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// StartCleanupWorker periodically sweeps expired entries until ctx is cancelled.
// It blocks, so callers run it in its own goroutine.
func (c *TTLCache[V]) StartCleanupWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.CleanupExpired()
		case <-ctx.Done():
			return
		}
	}
}

// Stats represents cache statistics
type Stats struct {
	Size    int     `json:"size"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Stats returns cache statistics
func (c *TTLCache[V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}

	return Stats{
		Size:    len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
		HitRate: rate,
	}
}
