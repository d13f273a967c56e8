// internal/feed/builder.go
package feed

import (
	"context"
	"log/slog"
	"sort"

	"feedstream/internal/database"
	"feedstream/internal/models"

	"github.com/google/uuid"
)

// Builder joins posts with author, comment, and like user details into fully
// denormalized post views. Views are always rebuilt from the source
// collections; nothing here is mutated in place.
type Builder struct {
	store  database.Store
	logger *slog.Logger
}

func NewBuilder(store database.Store, logger *slog.Logger) *Builder {
	return &Builder{store: store, logger: logger}
}

// BuildPostView denormalizes a single post. A missing author or an unmatched
// comment/like username leaves the user projection nil, never an error.
func (b *Builder) BuildPostView(ctx context.Context, post *models.Post) (*models.PostView, error) {
	views, err := b.buildViews(ctx, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// BuildFeed denormalizes every post, newest first. Ties on createdAt break by
// id ascending so repeated builds return identical sequences.
func (b *Builder) BuildFeed(ctx context.Context) ([]models.PostView, error) {
	posts, err := b.store.GetPosts(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID.String() < posts[j].ID.String()
	})

	return b.buildViews(ctx, posts)
}

// buildViews resolves every user reference across the given posts with two
// batched lookups (one by id for authors, one by username for comments and
// likes) rather than a query per entry.
func (b *Builder) buildViews(ctx context.Context, posts []*models.Post) ([]models.PostView, error) {
	authorIDs := make([]uuid.UUID, 0, len(posts))
	seenIDs := make(map[uuid.UUID]bool)
	var usernames []string
	seenNames := make(map[string]bool)

	for _, post := range posts {
		if !seenIDs[post.AuthorID] {
			seenIDs[post.AuthorID] = true
			authorIDs = append(authorIDs, post.AuthorID)
		}
		for _, c := range post.Comments {
			if !seenNames[c.Username] {
				seenNames[c.Username] = true
				usernames = append(usernames, c.Username)
			}
		}
		for _, l := range post.Likes {
			if !seenNames[l.Username] {
				seenNames[l.Username] = true
				usernames = append(usernames, l.Username)
			}
		}
	}

	authors, err := b.store.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.UserDetail, len(authors))
	for _, u := range authors {
		byID[u.ID] = u.Detail()
	}

	users, err := b.store.GetUsersByUsernames(ctx, usernames)
	if err != nil {
		return nil, err
	}
	byUsername := make(map[string]*models.UserDetail, len(users))
	for _, u := range users {
		byUsername[u.Username] = u.Detail()
	}

	views := make([]models.PostView, len(posts))
	for i, post := range posts {
		views[i] = models.PostView{
			ID:       post.ID,
			Content:  post.Content,
			Tags:     append([]string{}, post.Tags...),
			ImgURL:   post.ImgURL,
			AuthorID: post.AuthorID,
			Author:   byID[post.AuthorID],
			Comments: enrichByUsername(post.Comments, byUsername,
				func(c models.Comment, user *models.UserDetail) models.CommentView {
					return models.CommentView{
						Content:   c.Content,
						Username:  c.Username,
						User:      user,
						CreatedAt: c.CreatedAt,
						UpdatedAt: c.UpdatedAt,
					}
				}),
			Likes: enrichByUsername(b.dedupeLikes(post), byUsername,
				func(l models.Like, user *models.UserDetail) models.LikeView {
					return models.LikeView{
						Username:  l.Username,
						User:      user,
						CreatedAt: l.CreatedAt,
						UpdatedAt: l.UpdatedAt,
					}
				}),
			CreatedAt: post.CreatedAt,
			UpdatedAt: post.UpdatedAt,
		}
	}
	return views, nil
}

// userKeyed is any embedded entry that references its user by username.
type userKeyed interface {
	UserKey() string
}

// enrichByUsername attaches the resolved user projection to each embedded
// entry. Entries whose username has no matching user keep a nil user.
func enrichByUsername[E userKeyed, V any](entries []E, users map[string]*models.UserDetail, view func(E, *models.UserDetail) V) []V {
	out := make([]V, len(entries))
	for i, entry := range entries {
		out[i] = view(entry, users[entry.UserKey()])
	}
	return out
}

// dedupeLikes enforces the at-most-one-like-per-username invariant on read.
// The toggle mutation upholds it on write; a duplicate here means corrupt
// data, which is logged and dropped rather than surfaced.
func (b *Builder) dedupeLikes(post *models.Post) []models.Like {
	seen := make(map[string]bool, len(post.Likes))
	likes := make([]models.Like, 0, len(post.Likes))
	for _, l := range post.Likes {
		if seen[l.Username] {
			b.logger.Warn("dropping duplicate like entry",
				"postId", post.ID.String(),
				"username", l.Username,
			)
			continue
		}
		seen[l.Username] = true
		likes = append(likes, l)
	}
	return likes
}
