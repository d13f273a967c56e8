package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"feedstream/internal/auth"
	"feedstream/internal/cache"
	"feedstream/internal/database"
	"feedstream/internal/feed"
	"feedstream/internal/models"
	"feedstream/internal/social"
	"feedstream/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T) (*Gateway, *database.MemoryStore, cache.FeedCache) {
	t.Helper()
	store := database.NewMemoryStore()
	feedCache := cache.NewMemoryCache(0)
	return newGatewayWith(store, feedCache), store, feedCache
}

func newGatewayWith(store *database.MemoryStore, feedCache cache.FeedCache) *Gateway {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authenticator := auth.NewAuthenticator(store, "test-secret", time.Hour)
	builder := feed.NewBuilder(store, logger)
	resolver := social.NewResolver(store)
	return NewGateway(store, feedCache, builder, resolver, authenticator, logger)
}

func registerUser(t *testing.T, gw *Gateway, username string) *models.User {
	t.Helper()
	user, err := gw.Register(context.Background(), RegisterInput{
		Name:     "User " + username,
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return user
}

func asCaller(user *models.User) context.Context {
	return auth.WithUserID(context.Background(), user.ID)
}

func TestRegisterValidation(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"empty username", RegisterInput{Email: "a@b.co", Password: "secret123"}},
		{"bad email", RegisterInput{Username: "x", Email: "not-an-email", Password: "secret123"}},
		{"short password", RegisterInput{Username: "x", Email: "a@b.co", Password: "abc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := gw.Register(ctx, tc.input)
			require.Error(t, err)
			assert.True(t, utils.IsErrorCode(err, utils.ErrValidation))
		})
	}
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	gw, store, _ := newTestGateway(t)
	ctx := context.Background()

	registerUser(t, gw, "alice")
	before, err := store.CountUsers(ctx)
	require.NoError(t, err)

	_, err = gw.Register(ctx, RegisterInput{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrConflict))

	after, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLogin(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	ctx := context.Background()
	registerUser(t, gw, "alice")

	token, err := gw.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = gw.Login(ctx, "alice", "wrongpass")
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrUnauthorized))

	// Unknown username is indistinguishable from a wrong password.
	_, err = gw.Login(ctx, "nobody", "secret123")
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrUnauthorized))
}

func TestAddPostRequiresAuthentication(t *testing.T) {
	gw, _, _ := newTestGateway(t)

	_, err := gw.AddPost(context.Background(), PostInput{Content: "hello"})
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrUnauthorized))
}

func TestAddPostValidatesContent(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	alice := registerUser(t, gw, "alice")

	_, err := gw.AddPost(asCaller(alice), PostInput{Content: "   "})
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrValidation))
}

func TestSelfFollowRejected(t *testing.T) {
	gw, store, _ := newTestGateway(t)
	alice := registerUser(t, gw, "alice")

	_, err := gw.FollowUser(asCaller(alice), alice.ID)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrUnauthorized))

	exists, err := store.HasFollowEdge(context.Background(), alice.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDuplicateFollowRejected(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	alice := registerUser(t, gw, "alice")
	bob := registerUser(t, gw, "bob")

	_, err := gw.FollowUser(asCaller(alice), bob.ID)
	require.NoError(t, err)

	_, err = gw.FollowUser(asCaller(alice), bob.ID)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrConflict))
}

func TestFollowUnknownUserNotFound(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	alice := registerUser(t, gw, "alice")

	_, err := gw.FollowUser(asCaller(alice), uuid.New())
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}

func TestGetFeedIsIdempotentAndCached(t *testing.T) {
	gw, store, _ := newTestGateway(t)
	alice := registerUser(t, gw, "alice")

	_, err := gw.AddPost(asCaller(alice), PostInput{Content: "hello"})
	require.NoError(t, err)

	first, err := gw.GetFeed(context.Background())
	require.NoError(t, err)
	postsReads := store.Calls("GetPosts")

	second, err := gw.GetFeed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// The second read is served from cache without touching the store.
	assert.Equal(t, postsReads, store.Calls("GetPosts"))
}

func TestFeedCacheCoherenceAcrossAddPost(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	alice := registerUser(t, gw, "alice")
	ctx := asCaller(alice)

	_, err := gw.AddPost(ctx, PostInput{Content: "older"})
	require.NoError(t, err)

	before, err := gw.GetFeed(context.Background())
	require.NoError(t, err)
	require.Len(t, before, 1)

	_, err = gw.AddPost(ctx, PostInput{Content: "newest"})
	require.NoError(t, err)

	after, err := gw.GetFeed(context.Background())
	require.NoError(t, err)
	require.Len(t, after, 2)
	// New post appears, and first: recency ordering holds.
	assert.Equal(t, "newest", after[0].Content)
	assert.Equal(t, "older", after[1].Content)
}

func TestLikeToggleRoundTrip(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	alice := registerUser(t, gw, "alice")
	bob := registerUser(t, gw, "bob")

	view, err := gw.AddPost(asCaller(alice), PostInput{Content: "hello"})
	require.NoError(t, err)

	liked, err := gw.LikePost(asCaller(bob), view.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = gw.LikePost(asCaller(bob), view.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	after, err := gw.GetPostByID(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Empty(t, after.Likes)
}

// The full scenario: A posts, B likes, B unlikes.
func TestPostLikeScenario(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	alice := registerUser(t, gw, "alice")
	bob := registerUser(t, gw, "bob")

	feedBefore, err := gw.GetFeed(context.Background())
	require.NoError(t, err)

	view, err := gw.AddPost(asCaller(alice), PostInput{Content: "hello"})
	require.NoError(t, err)
	require.NotNil(t, view.Author)
	assert.Equal(t, "alice", view.Author.Username)
	assert.Empty(t, view.Comments)
	assert.Empty(t, view.Likes)

	feedAfter, err := gw.GetFeed(context.Background())
	require.NoError(t, err)
	assert.Len(t, feedAfter, len(feedBefore)+1)

	_, err = gw.LikePost(asCaller(bob), view.ID)
	require.NoError(t, err)

	liked, err := gw.GetPostByID(context.Background(), view.ID)
	require.NoError(t, err)
	require.Len(t, liked.Likes, 1)
	assert.Equal(t, "bob", liked.Likes[0].Username)
	require.NotNil(t, liked.Likes[0].User)
	assert.Equal(t, bob.ID, liked.Likes[0].User.ID)

	_, err = gw.LikePost(asCaller(bob), view.ID)
	require.NoError(t, err)

	unliked, err := gw.GetPostByID(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Empty(t, unliked.Likes)
}

func TestCommentPost(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	alice := registerUser(t, gw, "alice")
	bob := registerUser(t, gw, "bob")

	view, err := gw.AddPost(asCaller(alice), PostInput{Content: "hello"})
	require.NoError(t, err)

	require.NoError(t, gw.CommentPost(asCaller(bob), view.ID, "first!"))

	err = gw.CommentPost(asCaller(bob), view.ID, "   ")
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrValidation))

	err = gw.CommentPost(asCaller(bob), uuid.New(), "into the void")
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))

	after, err := gw.GetPostByID(context.Background(), view.ID)
	require.NoError(t, err)
	require.Len(t, after.Comments, 1)
	assert.Equal(t, "first!", after.Comments[0].Content)
	require.NotNil(t, after.Comments[0].User)
	assert.Equal(t, "bob", after.Comments[0].User.Username)
}

func TestCommentInvalidatesFeedCache(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	alice := registerUser(t, gw, "alice")

	view, err := gw.AddPost(asCaller(alice), PostInput{Content: "hello"})
	require.NoError(t, err)

	feedBefore, err := gw.GetFeed(context.Background())
	require.NoError(t, err)
	require.Empty(t, feedBefore[0].Comments)

	require.NoError(t, gw.CommentPost(asCaller(alice), view.ID, "self reply"))

	feedAfter, err := gw.GetFeed(context.Background())
	require.NoError(t, err)
	require.Len(t, feedAfter[0].Comments, 1)
}

// flakyCache fails invalidation while delegating everything else.
type flakyCache struct {
	cache.FeedCache
	invalidateErr error
}

func (c *flakyCache) Invalidate(ctx context.Context) error {
	if c.invalidateErr != nil {
		return c.invalidateErr
	}
	return c.FeedCache.Invalidate(ctx)
}

func TestCacheInvalidationFailureDoesNotFailMutation(t *testing.T) {
	store := database.NewMemoryStore()
	flaky := &flakyCache{
		FeedCache:     cache.NewMemoryCache(0),
		invalidateErr: utils.NewCacheError("del", errors.New("backend unreachable")),
	}
	gw := newGatewayWith(store, flaky)
	alice := registerUser(t, gw, "alice")

	// The write still succeeds; stale reads are preferred over write failure.
	view, err := gw.AddPost(asCaller(alice), PostInput{Content: "hello"})
	require.NoError(t, err)

	stored, err := store.GetPost(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.Content)
}

func TestUpdateProfile(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	alice := registerUser(t, gw, "alice")

	updated, err := gw.UpdateProfile(asCaller(alice), UpdateProfileInput{Name: "Alice Prime"})
	require.NoError(t, err)
	assert.Equal(t, "Alice Prime", updated.Name)
	assert.Equal(t, "alice", updated.Username)

	_, err = gw.UpdateProfile(asCaller(alice), UpdateProfileInput{})
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrValidation))
}

func TestGetProfileResolvesGraph(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	alice := registerUser(t, gw, "alice")
	bob := registerUser(t, gw, "bob")

	_, err := gw.FollowUser(asCaller(bob), alice.ID)
	require.NoError(t, err)

	profile, err := gw.GetProfile(asCaller(alice))
	require.NoError(t, err)
	assert.Equal(t, alice.ID, profile.User.ID)
	require.Len(t, profile.Followers, 1)
	assert.Equal(t, "bob", profile.Followers[0].Username)
	assert.Empty(t, profile.Following)
}

func TestSearchUsers(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	registerUser(t, gw, "alice")
	registerUser(t, gw, "alicia")
	registerUser(t, gw, "bob")

	found, err := gw.SearchUsers(context.Background(), "ali")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = gw.SearchUsers(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrValidation))
}

func TestGetPostByIDBypassesFeedCache(t *testing.T) {
	gw, store, _ := newTestGateway(t)
	alice := registerUser(t, gw, "alice")

	view, err := gw.AddPost(asCaller(alice), PostInput{Content: "hello"})
	require.NoError(t, err)

	// Warm the feed cache, then verify single-post reads still hit the store.
	_, err = gw.GetFeed(context.Background())
	require.NoError(t, err)

	reads := store.Calls("GetPost")
	_, err = gw.GetPostByID(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, reads+1, store.Calls("GetPost"))
}
