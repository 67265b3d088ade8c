// Package cache provides the process-local time-boxed memoization layer.
// The cache itself is only a timestamped map: TTL judgment belongs to the
// caller, which must treat an entry older than its TTL as absent.
package cache

import (
	"sync"
	"time"
)

// Entry pairs a value with the time it was fetched.
type Entry[V any] struct {
	Value     V
	FetchedAt time.Time
}

// Cache is a mutex-guarded timestamped map keyed by a logical cache name.
// It is process-local and never persisted.
type Cache[V any] struct {
	mu      sync.RWMutex
	name    string
	entries map[string]Entry[V]
	now     func() time.Time
}

// New creates a named cache. The name only shows up in logs and metrics of
// the owning component.
func New[V any](name string) *Cache[V] {
	return &Cache[V]{
		name:    name,
		entries: make(map[string]Entry[V]),
		now:     time.Now,
	}
}

// Name returns the logical cache name.
func (c *Cache[V]) Name() string { return c.name }

// SetClock replaces the time source. Tests use this to verify TTL behavior.
func (c *Cache[V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get returns the stored entry and whether it exists. Freshness is the
// caller's concern.
func (c *Cache[V]) Get(key string) (Entry[V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Fresh returns the value only if the entry exists and is younger than ttl.
func (c *Cache[V]) Fresh(key string, ttl time.Duration) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.FetchedAt) > ttl {
		var zero V
		return zero, false
	}
	return e.Value, true
}

// Set stores value under key, stamped with the current time.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry[V]{Value: value, FetchedAt: c.now()}
}

// Invalidate drops the entry for key.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateAll drops every entry.
func (c *Cache[V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry[V])
}

// Len returns the number of stored entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// PruneOlderThan removes entries fetched more than age ago and returns how
// many were dropped. The janitor calls this periodically.
func (c *Cache[V]) PruneOlderThan(age time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := c.now().Add(-age)
	pruned := 0
	for k, e := range c.entries {
		if e.FetchedAt.Before(cutoff) {
			delete(c.entries, k)
			pruned++
		}
	}
	return pruned
}
