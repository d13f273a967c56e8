package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feedstream/internal/auth"
	"feedstream/internal/cache"
	"feedstream/internal/database"
	"feedstream/internal/feed"
	"feedstream/internal/gateway"
	"feedstream/internal/middleware"
	"feedstream/internal/social"
	"feedstream/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := database.NewMemoryStore()
	feedCache := cache.NewMemoryCache(0)
	authenticator := auth.NewAuthenticator(store, "test-secret", time.Hour)
	builder := feed.NewBuilder(store, logger)
	resolver := social.NewResolver(store)
	gw := gateway.NewGateway(store, feedCache, builder, resolver, authenticator, logger)

	server := NewServer(gw, utils.NewMetricsCollector(), logger)

	var handler http.Handler = server.Routes()
	handler = middleware.AuthMiddleware(authenticator, logger)(handler)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body any, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 400 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func registerAndLogin(t *testing.T, ts *httptest.Server, username string) (string, string) {
	t.Helper()

	var user struct {
		ID string `json:"id"`
	}
	status := doJSON(t, ts, http.MethodPost, "/register", "", map[string]string{
		"name":     "User " + username,
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	}, &user)
	require.Equal(t, http.StatusOK, status)

	var login LoginResponse
	status = doJSON(t, ts, http.MethodPost, "/login", "", map[string]string{
		"username": username,
		"password": "secret123",
	}, &login)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, login.Token)

	return login.Token, user.ID
}

func TestRegisterLoginAndPostFlow(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, _ := registerAndLogin(t, ts, "alice")
	bobToken, _ := registerAndLogin(t, ts, "bob")

	var view struct {
		ID     string `json:"id"`
		Author struct {
			Username string `json:"username"`
		} `json:"author"`
	}
	status := doJSON(t, ts, http.MethodPost, "/posts", aliceToken, map[string]any{
		"content": "hello world",
		"tags":    []string{"intro"},
	}, &view)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", view.Author.Username)

	status = doJSON(t, ts, http.MethodPost, "/posts/comment", bobToken, map[string]string{
		"postId":  view.ID,
		"content": "first!",
	}, nil)
	require.Equal(t, http.StatusOK, status)

	var like LikeResponse
	status = doJSON(t, ts, http.MethodPost, "/posts/like", bobToken, map[string]string{
		"postId": view.ID,
	}, &like)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, like.Liked)

	var feedViews []struct {
		Content  string `json:"content"`
		Comments []struct {
			Username string `json:"username"`
		} `json:"comments"`
		Likes []struct {
			Username string `json:"username"`
		} `json:"likes"`
	}
	status = doJSON(t, ts, http.MethodGet, "/feed", "", nil, &feedViews)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, feedViews, 1)
	assert.Equal(t, "hello world", feedViews[0].Content)
	require.Len(t, feedViews[0].Comments, 1)
	assert.Equal(t, "bob", feedViews[0].Comments[0].Username)
	require.Len(t, feedViews[0].Likes, 1)
	assert.Equal(t, "bob", feedViews[0].Likes[0].Username)
}

func TestMutationsRequireToken(t *testing.T) {
	ts := newTestServer(t)

	status := doJSON(t, ts, http.MethodPost, "/posts", "", map[string]string{
		"content": "hello",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status = doJSON(t, ts, http.MethodPost, "/follow", "not a token", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestDuplicateRegisterConflict(t *testing.T) {
	ts := newTestServer(t)
	registerAndLogin(t, ts, "alice")

	status := doJSON(t, ts, http.MethodPost, "/register", "", map[string]string{
		"username": "other",
		"email":    "alice@example.com",
		"password": "secret123",
	}, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestSelfFollowReturnsUnauthorized(t *testing.T) {
	ts := newTestServer(t)
	token, id := registerAndLogin(t, ts, "alice")

	status := doJSON(t, ts, http.MethodPost, "/follow", token, map[string]string{
		"followingId": id,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestFollowAndGraph(t *testing.T) {
	ts := newTestServer(t)
	_, aliceID := registerAndLogin(t, ts, "alice")
	bobToken, _ := registerAndLogin(t, ts, "bob")

	status := doJSON(t, ts, http.MethodPost, "/follow", bobToken, map[string]string{
		"followingId": aliceID,
	}, nil)
	require.Equal(t, http.StatusOK, status)

	var graph struct {
		Followers []struct {
			Username string `json:"username"`
		} `json:"followers"`
		Following []any `json:"following"`
	}
	status = doJSON(t, ts, http.MethodGet, "/graph?userId="+aliceID, "", nil, &graph)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, graph.Followers, 1)
	assert.Equal(t, "bob", graph.Followers[0].Username)
	assert.Empty(t, graph.Following)
}

func TestGetPostByIDNotFound(t *testing.T) {
	ts := newTestServer(t)

	status := doJSON(t, ts, http.MethodGet, "/posts?id=11111111-1111-1111-1111-111111111111", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	var health map[string]string
	status := doJSON(t, ts, http.MethodGet, "/health", "", nil, &health)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", health["status"])
}
