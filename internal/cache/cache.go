// internal/cache/cache.go
package cache

import (
	"context"

	"feedstream/internal/models"
)

// FeedCache holds the last computed feed. It is populated lazily by the read
// path (read-through) and cleared by every feed-visible mutation. Concurrent
// Set calls are allowed to race; the feed is derived data, so last-write-wins
// is fine and no single-flight is promised.
//
// Get returns (feed, true, nil) on a hit. Backend failures surface as a
// CACHE_ERROR so the caller can log and fall back to a rebuild; they are
// never fatal.
type FeedCache interface {
	Get(ctx context.Context) ([]models.PostView, bool, error)
	Set(ctx context.Context, feed []models.PostView) error
	Invalidate(ctx context.Context) error
	Close() error
}
