// file: internal/cache/cache.go
// version: 2.0.0
// guid: a1b2c3d4-e5f6-7a8b-9c0d-1e2f3a4b5c6d

package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e entry[T]) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// Cache is a generic TTL cache safe for concurrent use. Expired entries are
// purged lazily on read, so an idle key costs one map slot until it is next
// touched or the cache is cleared.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	ttl     time.Duration
}

// New creates a cache whose Set uses defaultTTL.
func New[T any](defaultTTL time.Duration) *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]entry[T]),
		ttl:     defaultTTL,
	}
}

// Get retrieves a live value. An expired entry reads as a miss and is
// removed.
func (c *Cache[T]) Get(key string) (T, bool) {
	now := time.Now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	if e.expired(now) {
		c.mu.Lock()
		// Re-check under the write lock: a fresh Set may have replaced it.
		if cur, ok := c.entries[key]; ok && cur.expired(now) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores a value with the default TTL.
func (c *Cache[T]) Set(key string, value T) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a specific TTL.
func (c *Cache[T]) SetWithTTL(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry[T]{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Invalidate removes a single key.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll removes all entries.
func (c *Cache[T]) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry[T])
	c.mu.Unlock()
}

// Len counts stored entries, including any expired ones not yet purged.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
