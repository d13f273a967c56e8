// internal/cache/memory.go
package cache

import (
	"context"
	"sync"
	"time"

	"feedstream/internal/models"
)

// MemoryCache is the in-process feed cache. Correctness comes from explicit
// invalidation on write; the optional TTL is only a staleness backstop,
// checked passively at read time (no expiry timer).
type MemoryCache struct {
	mu        sync.RWMutex
	feed      []models.PostView
	timestamp time.Time
	valid     bool
	ttl       time.Duration
}

var _ FeedCache = (*MemoryCache)(nil)

// NewMemoryCache creates a cache with no expiry. A ttl of zero means entries
// live until invalidated.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl}
}

func (c *MemoryCache) Get(_ context.Context) ([]models.PostView, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.valid {
		return nil, false, nil
	}
	if c.ttl > 0 && time.Since(c.timestamp) > c.ttl {
		// Expired entries read as misses; the next Set replaces them.
		return nil, false, nil
	}

	feed := make([]models.PostView, len(c.feed))
	copy(feed, c.feed)
	return feed, true, nil
}

func (c *MemoryCache) Set(_ context.Context, feed []models.PostView) error {
	stored := make([]models.PostView, len(feed))
	copy(stored, feed)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.feed = stored
	c.timestamp = time.Now()
	c.valid = true
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feed = nil
	c.valid = false
	return nil
}

func (c *MemoryCache) Close() error {
	return nil
}
