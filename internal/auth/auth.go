// internal/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feedstream/internal/database"
	"feedstream/internal/models"
	"feedstream/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Claims represents the JWT claims for our application
type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	jwt.RegisteredClaims
}

// Authenticator owns password hashing and token issue/verify, and resolves a
// request's identity back to a live user record. Mutations that require
// identity fail with UNAUTHORIZED when resolution fails for any reason.
type Authenticator struct {
	store           database.Store
	secret          []byte
	tokenExpiration time.Duration
}

func NewAuthenticator(store database.Store, secret string, tokenExpiration time.Duration) *Authenticator {
	return &Authenticator{
		store:           store,
		secret:          []byte(secret),
		tokenExpiration: tokenExpiration,
	}
}

// HashPassword hashes a plaintext password with bcrypt.
func (a *Authenticator) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func (a *Authenticator) CheckPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// GenerateToken creates a new JWT token for the given user
func (a *Authenticator) GenerateToken(user *models.User) (string, error) {
	expirationTime := time.Now().Add(a.tokenExpiration)

	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "feedstream-api",
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken validates the provided JWT token
func (a *Authenticator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return a.secret, nil
		},
	)

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// Authenticate resolves the caller identity placed in the request context by
// the transport middleware back to a live user record. A token whose user no
// longer exists is treated as unauthorized, not as a missing user.
func (a *Authenticator) Authenticate(ctx context.Context) (*models.User, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, utils.NewUnauthorizedError("missing caller identity")
	}

	user, err := a.store.GetUserByID(ctx, userID)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			return nil, utils.NewUnauthorizedError("unknown caller")
		}
		return nil, err
	}
	return user, nil
}

// Define a custom context key type to avoid collisions
type contextKey string

const userIDKey contextKey = "user_id"

// WithUserID saves the caller's user ID in the request context
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the caller's user ID from the context
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}
