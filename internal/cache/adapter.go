// file: internal/cache/adapter.go
// version: 1.0.0
// guid: c3d4e5f6-a7b8-9c0d-1e2f-3a4b5c6d7e8f

package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/jdfalk/fund-discovery/internal/metrics"
)

// Backend is the external cache collaborator: get/set with TTL, both of
// which may fail. The in-memory backend never fails; a remote one might.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// MemoryBackend adapts the generic TTL cache to the Backend interface.
type MemoryBackend struct {
	c *Cache[[]byte]
}

// NewMemoryBackend creates an in-process cache backend.
func NewMemoryBackend(defaultTTL time.Duration) *MemoryBackend {
	return &MemoryBackend{c: New[[]byte](defaultTTL)}
}

func (m *MemoryBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	return v, ok, nil
}

func (m *MemoryBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.c.SetWithTTL(key, value, ttl)
	return nil
}

// Adapter wraps a Backend with JSON serialization and absorb-and-log failure
// semantics: a broken cache degrades to "always compute", it never fails the
// request.
type Adapter struct {
	backend Backend
	service string
}

// NewAdapter creates a cache adapter for the named service (used in logs).
func NewAdapter(service string, backend Backend) *Adapter {
	return &Adapter{backend: backend, service: service}
}

// GetJSON loads key into v. Returns false on miss, expiry, or backend error.
func (a *Adapter) GetJSON(ctx context.Context, key string, v any) bool {
	data, ok, err := a.backend.Get(ctx, key)
	if err != nil {
		log.Printf("[WARN] %s: cache read failed for %s: %v", a.service, key, err)
		metrics.IncCacheError(a.service)
		return false
	}
	if !ok {
		log.Printf("[CACHE-MISS] %s: %s", a.service, key)
		metrics.IncCacheMiss(a.service)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("[WARN] %s: cache entry for %s is corrupt: %v", a.service, key, err)
		metrics.IncCacheError(a.service)
		return false
	}
	log.Printf("[CACHE-HIT] %s: %s", a.service, key)
	metrics.IncCacheHit(a.service)
	return true
}

// SetJSON stores v under key. Failures are logged and dropped.
func (a *Adapter) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[WARN] %s: cache marshal failed for %s: %v", a.service, key, err)
		metrics.IncCacheError(a.service)
		return
	}
	if err := a.backend.Set(ctx, key, data, ttl); err != nil {
		log.Printf("[WARN] %s: cache write failed for %s: %v", a.service, key, err)
		metrics.IncCacheError(a.service)
	}
}
