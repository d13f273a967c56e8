package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	ImgURL    string    `json:"imgUrl,omitempty"`
	AuthorID  uuid.UUID `json:"authorId"`
	Comments  []Comment `json:"comments"`
	Likes     []Like    `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is embedded in its post. Only the author's username is stored;
// the full user record is resolved at view-build time.
type Comment struct {
	Content   string    `json:"content"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Like is embedded in its post. A username appears at most once per post;
// the like mutation toggles membership.
type Like struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserKey identifies the comment's author for view enrichment.
func (c Comment) UserKey() string { return c.Username }

// UserKey identifies the like's owner for view enrichment.
func (l Like) UserKey() string { return l.Username }

// HasLike reports whether username currently holds a like on the post.
func (p *Post) HasLike(username string) bool {
	for _, l := range p.Likes {
		if l.Username == username {
			return true
		}
	}
	return false
}
