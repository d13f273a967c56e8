// internal/gateway/gateway.go
package gateway

import (
	"context"
	"log/slog"
	"strings"

	"feedstream/internal/cache"
	"feedstream/internal/database"
	"feedstream/internal/feed"
	"feedstream/internal/models"
	"feedstream/internal/social"
	"feedstream/internal/utils"

	"github.com/google/uuid"
)

// Authenticator is the identity capability the gateway requires. Operations
// that need a caller resolve one through it; everything about tokens and
// credentials stays behind this interface.
type Authenticator interface {
	Authenticate(ctx context.Context) (*models.User, error)
	HashPassword(password string) (string, error)
	CheckPassword(hashedPassword, password string) bool
	GenerateToken(user *models.User) (string, error)
}

// Gateway is the operation surface consumed by the transport layer: the read
// path (read-through feed, cache-bypassing single-post reads) and every
// mutation, each of which validates input, writes through the store, and
// invalidates the feed cache after the write commits.
type Gateway struct {
	store    database.Store
	cache    cache.FeedCache
	builder  *feed.Builder
	resolver *social.Resolver
	auth     Authenticator
	logger   *slog.Logger
}

func NewGateway(store database.Store, feedCache cache.FeedCache, builder *feed.Builder, resolver *social.Resolver, auth Authenticator, logger *slog.Logger) *Gateway {
	return &Gateway{
		store:    store,
		cache:    feedCache,
		builder:  builder,
		resolver: resolver,
		auth:     auth,
		logger:   logger,
	}
}

// GetFeed serves the denormalized feed read-through: a cache hit is returned
// as-is, a miss rebuilds from the store and repopulates the cache. Cache
// failures degrade to a rebuild, never to a request failure.
func (g *Gateway) GetFeed(ctx context.Context) ([]models.PostView, error) {
	cached, found, err := g.cache.Get(ctx)
	if err != nil {
		g.logger.Warn("feed cache read failed, rebuilding from store", "error", err)
	}
	if found {
		return cached, nil
	}

	views, err := g.builder.BuildFeed(ctx)
	if err != nil {
		return nil, err
	}

	if err := g.cache.Set(ctx, views); err != nil {
		g.logger.Warn("feed cache write failed", "error", err)
	}
	return views, nil
}

// GetPostByID rebuilds a single post view from the store on every call; the
// feed cache only covers the aggregate feed.
func (g *Gateway) GetPostByID(ctx context.Context, id uuid.UUID) (*models.PostView, error) {
	post, err := g.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return g.builder.BuildPostView(ctx, post)
}

// ResolveGraph returns the followers/following sets for userID.
func (g *Gateway) ResolveGraph(ctx context.Context, userID uuid.UUID) (*models.SocialGraph, error) {
	return g.resolver.ResolveGraph(ctx, userID)
}

// GetUsers lists all users.
func (g *Gateway) GetUsers(ctx context.Context) ([]*models.User, error) {
	return g.store.GetUsers(ctx)
}

// GetUserByID looks up a single user.
func (g *Gateway) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return g.store.GetUserByID(ctx, id)
}

// SearchUsers matches username or name by case-insensitive substring.
func (g *Gateway) SearchUsers(ctx context.Context, keyword string) ([]*models.User, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, utils.NewValidationError("search keyword is required")
	}
	return g.store.SearchUsers(ctx, keyword)
}

// Profile is the authenticated caller's own record with the social graph
// resolved.
type Profile struct {
	User      *models.User         `json:"user"`
	Followers []*models.UserDetail `json:"followers"`
	Following []*models.UserDetail `json:"following"`
}

// GetProfile returns the caller's profile with followers/following resolved.
func (g *Gateway) GetProfile(ctx context.Context) (*Profile, error) {
	caller, err := g.auth.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	graph, err := g.resolver.ResolveGraph(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	return &Profile{
		User:      caller,
		Followers: graph.Followers,
		Following: graph.Following,
	}, nil
}

// invalidateFeed clears the cached feed after a committed write. A failing
// cache backend is logged and swallowed: a stale-read window is preferred
// over failing a mutation that already committed.
func (g *Gateway) invalidateFeed(ctx context.Context) {
	if err := g.cache.Invalidate(ctx); err != nil {
		g.logger.Warn("feed cache invalidation failed, next read may be stale", "error", err)
	}
}
