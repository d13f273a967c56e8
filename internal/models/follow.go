package models

import (
	"time"

	"github.com/google/uuid"
)

// FollowEdge is a directed edge in the social graph, from follower to following.
type FollowEdge struct {
	ID          uuid.UUID `json:"id"`
	FollowerID  uuid.UUID `json:"followerId"`
	FollowingID uuid.UUID `json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SocialGraph is the resolved follower/following sets for one user.
type SocialGraph struct {
	Followers []*UserDetail `json:"followers"`
	Following []*UserDetail `json:"following"`
}
