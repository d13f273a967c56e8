package database

import (
	"context"

	"feedstream/internal/models"

	"github.com/google/uuid"
)

// Store is the typed surface over the three backing collections. Lookups that
// feed the view builders are batched ($in queries) so a feed build never costs
// one query per embedded username.
//
// GetUserByID and GetPost return a NOT_FOUND AppError when the id is unknown;
// FindUserByUsernameOrEmail returns (nil, nil) on no match since callers use it
// as an existence probe. Backend I/O failures surface as STORE_ERROR.
type Store interface {
	// Users
	InsertUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	GetUsers(ctx context.Context) ([]*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error)
	GetUsersByUsernames(ctx context.Context, usernames []string) ([]*models.User, error)
	SearchUsers(ctx context.Context, keyword string) ([]*models.User, error)
	UpdateUserProfile(ctx context.Context, id uuid.UUID, name, profilePicture string) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)

	// Posts
	InsertPost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	GetPosts(ctx context.Context) ([]*models.Post, error)
	PushComment(ctx context.Context, postID uuid.UUID, comment models.Comment) error
	// ToggleLike atomically flips like membership for like.Username on the
	// post: pull if present, push if absent. Returns true when the call
	// resulted in a like, false when it removed one.
	ToggleLike(ctx context.Context, postID uuid.UUID, like models.Like) (bool, error)

	// Follows
	InsertFollow(ctx context.Context, edge *models.FollowEdge) error
	GetFollowers(ctx context.Context, userID uuid.UUID) ([]*models.FollowEdge, error)
	GetFollowing(ctx context.Context, userID uuid.UUID) ([]*models.FollowEdge, error)
	HasFollowEdge(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
}
