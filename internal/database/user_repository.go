// internal/database/user_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"feedstream/internal/models"
	"feedstream/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserDocument represents the MongoDB schema for a user
type UserDocument struct {
	ID             string    `bson:"_id"`
	Name           string    `bson:"name"`
	Username       string    `bson:"username"`
	Email          string    `bson:"email"`
	HashedPassword string    `bson:"hashedPassword"`
	ProfilePicture string    `bson:"profilePicture,omitempty"`
	CreatedAt      time.Time `bson:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

func userToDocument(user *models.User) *UserDocument {
	return &UserDocument{
		ID:             user.ID.String(),
		Name:           user.Name,
		Username:       user.Username,
		Email:          user.Email,
		HashedPassword: user.HashedPassword,
		ProfilePicture: user.ProfilePicture,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

func documentToUser(doc *UserDocument) (*models.User, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %w", err)
	}

	return &models.User{
		ID:             id,
		Name:           doc.Name,
		Username:       doc.Username,
		Email:          doc.Email,
		HashedPassword: doc.HashedPassword,
		ProfilePicture: doc.ProfilePicture,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

// InsertUser stores a new user record.
func (m *MongoDB) InsertUser(ctx context.Context, user *models.User) error {
	if _, err := m.Users.InsertOne(ctx, userToDocument(user)); err != nil {
		return utils.NewStoreError("InsertUser", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (m *MongoDB) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var doc UserDocument
	err := m.Users.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("user")
	}
	if err != nil {
		return nil, utils.NewStoreError("GetUserByID", err)
	}
	return documentToUser(&doc)
}

// GetUserByUsername retrieves a user by their unique username.
func (m *MongoDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var doc UserDocument
	err := m.Users.FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("user")
	}
	if err != nil {
		return nil, utils.NewStoreError("GetUserByUsername", err)
	}
	return documentToUser(&doc)
}

// FindUserByUsernameOrEmail is the uniqueness probe used on registration.
// Returns (nil, nil) when neither field matches.
func (m *MongoDB) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	filter := bson.M{"$or": []bson.M{
		{"username": username},
		{"email": email},
	}}

	var doc UserDocument
	err := m.Users.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, utils.NewStoreError("FindUserByUsernameOrEmail", err)
	}
	return documentToUser(&doc)
}

// GetUsers retrieves all user records.
func (m *MongoDB) GetUsers(ctx context.Context) ([]*models.User, error) {
	cursor, err := m.Users.Find(ctx, bson.M{})
	if err != nil {
		return nil, utils.NewStoreError("GetUsers", err)
	}
	return m.decodeUsers(ctx, cursor, "GetUsers")
}

// GetUsersByIDs batch-fetches users by id. Unknown ids are simply absent
// from the result.
func (m *MongoDB) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	cursor, err := m.Users.Find(ctx, bson.M{"_id": bson.M{"$in": idStrings}})
	if err != nil {
		return nil, utils.NewStoreError("GetUsersByIDs", err)
	}
	return m.decodeUsers(ctx, cursor, "GetUsersByIDs")
}

// GetUsersByUsernames batch-fetches users by username. This is the single
// round trip behind comment/like enrichment.
func (m *MongoDB) GetUsersByUsernames(ctx context.Context, usernames []string) ([]*models.User, error) {
	if len(usernames) == 0 {
		return nil, nil
	}

	cursor, err := m.Users.Find(ctx, bson.M{"username": bson.M{"$in": usernames}})
	if err != nil {
		return nil, utils.NewStoreError("GetUsersByUsernames", err)
	}
	return m.decodeUsers(ctx, cursor, "GetUsersByUsernames")
}

// SearchUsers matches username or name by case-insensitive substring.
func (m *MongoDB) SearchUsers(ctx context.Context, keyword string) ([]*models.User, error) {
	filter := bson.M{"$or": []bson.M{
		{"username": bson.M{"$regex": keyword, "$options": "i"}},
		{"name": bson.M{"$regex": keyword, "$options": "i"}},
	}}

	cursor, err := m.Users.Find(ctx, filter)
	if err != nil {
		return nil, utils.NewStoreError("SearchUsers", err)
	}
	return m.decodeUsers(ctx, cursor, "SearchUsers")
}

// UpdateUserProfile sets the mutable profile fields and returns the updated
// record. Empty fields are left untouched.
func (m *MongoDB) UpdateUserProfile(ctx context.Context, id uuid.UUID, name, profilePicture string) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if name != "" {
		set["name"] = name
	}
	if profilePicture != "" {
		set["profilePicture"] = profilePicture
	}

	result, err := m.Users.UpdateOne(ctx, bson.M{"_id": id.String()}, bson.M{"$set": set})
	if err != nil {
		return nil, utils.NewStoreError("UpdateUserProfile", err)
	}
	if result.MatchedCount == 0 {
		return nil, utils.NewNotFoundError("user")
	}

	return m.GetUserByID(ctx, id)
}

// CountUsers returns the total number of user records.
func (m *MongoDB) CountUsers(ctx context.Context) (int64, error) {
	count, err := m.Users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, utils.NewStoreError("CountUsers", err)
	}
	return count, nil
}

func (m *MongoDB) decodeUsers(ctx context.Context, cursor *mongo.Cursor, op string) ([]*models.User, error) {
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.NewStoreError(op, err)
		}
		user, err := documentToUser(&doc)
		if err != nil {
			return nil, utils.NewStoreError(op, err)
		}
		users = append(users, user)
	}
	if err := cursor.Err(); err != nil {
		return nil, utils.NewStoreError(op, err)
	}
	return users, nil
}
