package models

import (
	"time"

	"github.com/google/uuid"
)

// PostView is the fully denormalized representation of a post: the author and
// every embedded comment/like carry a resolved user projection. Views are
// rebuilt from the source collections on demand and never mutated in place.
type PostView struct {
	ID        uuid.UUID     `json:"id"`
	Content   string        `json:"content"`
	Tags      []string      `json:"tags"`
	ImgURL    string        `json:"imgUrl,omitempty"`
	AuthorID  uuid.UUID     `json:"authorId"`
	Author    *UserDetail   `json:"author"`
	Comments  []CommentView `json:"comments"`
	Likes     []LikeView    `json:"likes"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// CommentView is a comment with its author resolved by username.
// User stays nil when the username no longer matches a user record.
type CommentView struct {
	Content   string      `json:"content"`
	Username  string      `json:"username"`
	User      *UserDetail `json:"user"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// LikeView is a like with its owner resolved by username.
type LikeView struct {
	Username  string      `json:"username"`
	User      *UserDetail `json:"user"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
