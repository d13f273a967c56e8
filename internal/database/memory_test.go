package database

import (
	"context"
	"testing"
	"time"

	"feedstream/internal/models"
	"feedstream/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreToggleLike(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	post := &models.Post{ID: uuid.New(), Content: "hello", AuthorID: uuid.New()}
	require.NoError(t, store.InsertPost(ctx, post))

	like := models.Like{Username: "bob", CreatedAt: time.Now(), UpdatedAt: time.Now()}

	liked, err := store.ToggleLike(ctx, post.ID, like)
	require.NoError(t, err)
	assert.True(t, liked)

	got, err := store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Likes, 1)

	liked, err = store.ToggleLike(ctx, post.ID, like)
	require.NoError(t, err)
	assert.False(t, liked)

	got, err = store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
}

func TestMemoryStoreToggleLikeUnknownPost(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.ToggleLike(context.Background(), uuid.New(), models.Like{Username: "bob"})
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}

func TestMemoryStoreGetPostsOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	older := &models.Post{ID: uuid.New(), Content: "older", AuthorID: uuid.New(), CreatedAt: base.Add(-time.Hour)}
	newer := &models.Post{ID: uuid.New(), Content: "newer", AuthorID: uuid.New(), CreatedAt: base}
	require.NoError(t, store.InsertPost(ctx, older))
	require.NoError(t, store.InsertPost(ctx, newer))

	posts, err := store.GetPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "newer", posts[0].Content)
	assert.Equal(t, "older", posts[1].Content)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	post := &models.Post{ID: uuid.New(), Content: "hello", AuthorID: uuid.New()}
	require.NoError(t, store.InsertPost(ctx, post))

	got, err := store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	got.Content = "mutated"

	again, err := store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", again.Content)
}

func TestMemoryStoreFindUserByUsernameOrEmail(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com"}
	require.NoError(t, store.InsertUser(ctx, user))

	byName, err := store.FindUserByUsernameOrEmail(ctx, "alice", "other@example.com")
	require.NoError(t, err)
	require.NotNil(t, byName)

	byEmail, err := store.FindUserByUsernameOrEmail(ctx, "other", "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)

	missing, err := store.FindUserByUsernameOrEmail(ctx, "other", "other@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStoreFailNext(t *testing.T) {
	store := NewMemoryStore()
	store.FailNext = assert.AnError

	_, err := store.GetPosts(context.Background())
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrStore))

	// The failure is one-shot.
	_, err = store.GetPosts(context.Background())
	assert.NoError(t, err)
}
