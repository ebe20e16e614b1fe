// Package cache provides an in-memory TTL cache for scan results keyed
// by source URL and content digest. Concurrent requests for the same key
// are collapsed into a single computation.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sync"
	"time"

	"github.com/jonathan/job-scanner/internal/types"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a cached scan result stays valid.
const DefaultTTL = time.Hour

// defaultJanitorInterval is how often expired entries are swept.
const defaultJanitorInterval = 5 * time.Minute

// Key derives the cache key for an input: a digest of the source URL
// and content together, so the same URL with changed content misses.
func Key(url, content string) string {
	sum := md5.Sum([]byte(url + ":" + content))
	return hex.EncodeToString(sum[:])
}

type entry struct {
	result    types.ExtractionResult
	expiresAt time.Time
}

// Cache stores scan results with per-entry expiry.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	group   singleflight.Group
	stop    chan struct{}
	once    sync.Once
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// New creates a Cache and starts its background janitor. Call Stop when
// the cache is no longer needed.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		ttl:     DefaultTTL,
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.janitor()
	return c
}

// Get returns the cached result for key if present and unexpired.
func (c *Cache) Get(key string) (types.ExtractionResult, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return types.ExtractionResult{}, false
	}
	return e.result, true
}

// Set stores a result under key with the configured TTL.
func (c *Cache) Set(key string, result types.ExtractionResult) {
	c.mu.Lock()
	c.entries[key] = entry{result: result, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// GetOrCompute returns the cached result for key, computing and caching
// it on a miss. Concurrent callers with the same key share one compute
// call; the shared result is cached once.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) types.ExtractionResult) types.ExtractionResult {
	if result, ok := c.Get(key); ok {
		return result
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		// Another caller may have populated the entry while this one
		// waited on the group.
		if result, ok := c.Get(key); ok {
			return result, nil
		}
		result := compute(ctx)
		c.Set(key, result)
		return result, nil
	})
	result, ok := v.(types.ExtractionResult)
	if !ok {
		return compute(ctx)
	}
	return result
}

// Invalidate removes the entry for key if present.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stop halts the background janitor. Safe to call more than once.
func (c *Cache) Stop() {
	c.once.Do(func() {
		close(c.stop)
	})
}

func (c *Cache) janitor() {
	ticker := time.NewTicker(defaultJanitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep(time.Now())
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
