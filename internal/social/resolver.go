// internal/social/resolver.go
package social

import (
	"context"

	"feedstream/internal/database"
	"feedstream/internal/models"

	"github.com/google/uuid"
)

// Resolver computes a user's social graph by joining follow edges against the
// users collection. It is read-only and holds no state of its own.
type Resolver struct {
	store database.Store
}

func NewResolver(store database.Store) *Resolver {
	return &Resolver{store: store}
}

// ResolveGraph returns the followers and following sets for userID. Users are
// listed in edge-creation order. Edges whose referenced user no longer exists
// are dropped; an unknown userID yields empty sets, not an error.
func (r *Resolver) ResolveGraph(ctx context.Context, userID uuid.UUID) (*models.SocialGraph, error) {
	followerEdges, err := r.store.GetFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	followingEdges, err := r.store.GetFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}

	// One batched lookup covers both edge sets.
	ids := make([]uuid.UUID, 0, len(followerEdges)+len(followingEdges))
	seen := make(map[uuid.UUID]bool)
	for _, e := range followerEdges {
		if !seen[e.FollowerID] {
			seen[e.FollowerID] = true
			ids = append(ids, e.FollowerID)
		}
	}
	for _, e := range followingEdges {
		if !seen[e.FollowingID] {
			seen[e.FollowingID] = true
			ids = append(ids, e.FollowingID)
		}
	}

	users, err := r.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	graph := &models.SocialGraph{
		Followers: make([]*models.UserDetail, 0, len(followerEdges)),
		Following: make([]*models.UserDetail, 0, len(followingEdges)),
	}
	for _, e := range followerEdges {
		if u, ok := byID[e.FollowerID]; ok {
			graph.Followers = append(graph.Followers, u.Detail())
		}
	}
	for _, e := range followingEdges {
		if u, ok := byID[e.FollowingID]; ok {
			graph.Following = append(graph.Following, u.Detail())
		}
	}
	return graph, nil
}
