// internal/database/follow_repository.go
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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FollowDocument represents the MongoDB schema for a follow edge.
type FollowDocument struct {
	ID          string    `bson:"_id"`
	FollowerID  string    `bson:"followerId"`
	FollowingID string    `bson:"followingId"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func documentToFollow(doc *FollowDocument) (*models.FollowEdge, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid follow ID in database: %w", err)
	}
	followerID, err := uuid.Parse(doc.FollowerID)
	if err != nil {
		return nil, fmt.Errorf("invalid follower ID in database: %w", err)
	}
	followingID, err := uuid.Parse(doc.FollowingID)
	if err != nil {
		return nil, fmt.Errorf("invalid following ID in database: %w", err)
	}

	return &models.FollowEdge{
		ID:          id,
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

// InsertFollow stores a new follow edge.
func (m *MongoDB) InsertFollow(ctx context.Context, edge *models.FollowEdge) error {
	doc := &FollowDocument{
		ID:          edge.ID.String(),
		FollowerID:  edge.FollowerID.String(),
		FollowingID: edge.FollowingID.String(),
		CreatedAt:   edge.CreatedAt,
		UpdatedAt:   edge.UpdatedAt,
	}
	if _, err := m.Follows.InsertOne(ctx, doc); err != nil {
		return utils.NewStoreError("InsertFollow", err)
	}
	return nil
}

// GetFollowers returns edges pointing at userID, oldest first.
func (m *MongoDB) GetFollowers(ctx context.Context, userID uuid.UUID) ([]*models.FollowEdge, error) {
	return m.findFollows(ctx, bson.M{"followingId": userID.String()}, "GetFollowers")
}

// GetFollowing returns edges originating from userID, oldest first.
func (m *MongoDB) GetFollowing(ctx context.Context, userID uuid.UUID) ([]*models.FollowEdge, error) {
	return m.findFollows(ctx, bson.M{"followerId": userID.String()}, "GetFollowing")
}

// HasFollowEdge reports whether the exact edge already exists.
func (m *MongoDB) HasFollowEdge(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	filter := bson.M{
		"followerId":  followerID.String(),
		"followingId": followingID.String(),
	}
	err := m.Follows.FindOne(ctx, filter).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, utils.NewStoreError("HasFollowEdge", err)
	}
	return true, nil
}

func (m *MongoDB) findFollows(ctx context.Context, filter bson.M, op string) ([]*models.FollowEdge, error) {
	// Sorted by createdAt so resolver output is reproducible across calls.
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := m.Follows.Find(ctx, filter, opts)
	if err != nil {
		return nil, utils.NewStoreError(op, err)
	}
	defer cursor.Close(ctx)

	var edges []*models.FollowEdge
	for cursor.Next(ctx) {
		var doc FollowDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.NewStoreError(op, err)
		}
		edge, err := documentToFollow(&doc)
		if err != nil {
			return nil, utils.NewStoreError(op, err)
		}
		edges = append(edges, edge)
	}
	if err := cursor.Err(); err != nil {
		return nil, utils.NewStoreError(op, err)
	}
	return edges, nil
}
