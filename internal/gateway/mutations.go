// internal/gateway/mutations.go
package gateway

import (
	"context"
	"regexp"
	"strings"
	"time"

	"feedstream/internal/models"
	"feedstream/internal/utils"

	"github.com/google/uuid"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegisterInput carries the fields for a new account.
type RegisterInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileInput carries the mutable profile fields. Empty fields are
// left unchanged.
type UpdateProfileInput struct {
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture"`
}

// PostInput carries the fields for a new post.
type PostInput struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	ImgURL  string   `json:"imgUrl"`
}

// Register validates the input, checks username/email uniqueness, and stores
// the new user with a hashed credential. Registration never touches the feed
// cache: it cannot change post, comment, or like state.
func (g *Gateway) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	if username == "" {
		return nil, utils.NewValidationError("username is required")
	}
	if !emailPattern.MatchString(email) {
		return nil, utils.NewValidationError("invalid email address")
	}
	if len(input.Password) < minPasswordLength {
		return nil, utils.NewValidationError("password must be at least 6 characters")
	}

	existing, err := g.store.FindUserByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.NewConflictError("username or email already taken")
	}

	hashed, err := g.auth.HashPassword(input.Password)
	if err != nil {
		return nil, utils.NewStoreError("HashPassword", err)
	}

	now := time.Now()
	user := &models.User{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(input.Name),
		Username:       username,
		Email:          email,
		HashedPassword: hashed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := g.store.InsertUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks credentials and issues a signed token. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (g *Gateway) Login(ctx context.Context, username, password string) (string, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return "", utils.NewValidationError("username and password are required")
	}

	user, err := g.store.GetUserByUsername(ctx, username)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			return "", utils.NewUnauthorizedError("invalid username or password")
		}
		return "", err
	}

	if !g.auth.CheckPassword(user.HashedPassword, password) {
		return "", utils.NewUnauthorizedError("invalid username or password")
	}

	token, err := g.auth.GenerateToken(user)
	if err != nil {
		return "", utils.NewUnauthorizedError("could not issue token")
	}
	return token, nil
}

// UpdateProfile mutates the caller's own profile. Author projections are
// embedded in cached views, so the feed cache is invalidated too.
func (g *Gateway) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*models.User, error) {
	caller, err := g.auth.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) == "" && strings.TrimSpace(input.ProfilePicture) == "" {
		return nil, utils.NewValidationError("nothing to update")
	}

	user, err := g.store.UpdateUserProfile(ctx, caller.ID, strings.TrimSpace(input.Name), strings.TrimSpace(input.ProfilePicture))
	if err != nil {
		return nil, err
	}

	g.invalidateFeed(ctx)
	return user, nil
}

// FollowUser creates a follow edge from the caller to followingID. Self-follow
// is rejected before any store access; a repeated follow is a conflict, so the
// edge set stays duplicate-free.
func (g *Gateway) FollowUser(ctx context.Context, followingID uuid.UUID) (*models.FollowEdge, error) {
	caller, err := g.auth.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	if caller.ID == followingID {
		return nil, utils.NewUnauthorizedError("you cannot follow yourself")
	}

	if _, err := g.store.GetUserByID(ctx, followingID); err != nil {
		return nil, err
	}

	exists, err := g.store.HasFollowEdge(ctx, caller.ID, followingID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, utils.NewConflictError("already following this user")
	}

	now := time.Now()
	edge := &models.FollowEdge{
		ID:          uuid.New(),
		FollowerID:  caller.ID,
		FollowingID: followingID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := g.store.InsertFollow(ctx, edge); err != nil {
		return nil, err
	}
	return edge, nil
}

// AddPost stores a new post by the caller and invalidates the feed cache once
// the write has committed.
func (g *Gateway) AddPost(ctx context.Context, input PostInput) (*models.PostView, error) {
	caller, err := g.auth.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, utils.NewValidationError("content is required")
	}

	now := time.Now()
	post := &models.Post{
		ID:        uuid.New(),
		Content:   content,
		Tags:      input.Tags,
		ImgURL:    strings.TrimSpace(input.ImgURL),
		AuthorID:  caller.ID,
		Comments:  []models.Comment{},
		Likes:     []models.Like{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := g.store.InsertPost(ctx, post); err != nil {
		return nil, err
	}
	g.invalidateFeed(ctx)

	return g.builder.BuildPostView(ctx, post)
}

// CommentPost appends a comment by the caller to the post's embedded array.
func (g *Gateway) CommentPost(ctx context.Context, postID uuid.UUID, content string) error {
	caller, err := g.auth.Authenticate(ctx)
	if err != nil {
		return err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return utils.NewValidationError("comment content is required")
	}

	now := time.Now()
	comment := models.Comment{
		Content:   content,
		Username:  caller.Username,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := g.store.PushComment(ctx, postID, comment); err != nil {
		return err
	}
	g.invalidateFeed(ctx)
	return nil
}

// LikePost toggles the caller's like on the post: a present like is removed,
// an absent one is added. The store performs the flip as an atomic conditional
// update, so two racing toggles from the same user cannot leave a duplicate
// entry. Returns true when the call resulted in a like.
func (g *Gateway) LikePost(ctx context.Context, postID uuid.UUID) (bool, error) {
	caller, err := g.auth.Authenticate(ctx)
	if err != nil {
		return false, err
	}

	now := time.Now()
	like := models.Like{
		Username:  caller.Username,
		CreatedAt: now,
		UpdatedAt: now,
	}

	liked, err := g.store.ToggleLike(ctx, postID, like)
	if err != nil {
		return false, err
	}
	g.invalidateFeed(ctx)
	return liked, nil
}
