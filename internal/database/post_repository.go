// internal/database/post_repository.go
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

// PostDocument represents the MongoDB schema for a post.
type PostDocument struct {
	ID        string            `bson:"_id"`
	Content   string            `bson:"content"`
	Tags      []string          `bson:"tags,omitempty"`
	ImgURL    string            `bson:"imgUrl,omitempty"`
	AuthorID  string            `bson:"authorId"`
	Comments  []CommentDocument `bson:"comments"`
	Likes     []LikeDocument    `bson:"likes"`
	CreatedAt time.Time         `bson:"createdAt"`
	UpdatedAt time.Time         `bson:"updatedAt"`
}

type CommentDocument struct {
	Content   string    `bson:"content"`
	Username  string    `bson:"username"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type LikeDocument struct {
	Username  string    `bson:"username"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func postToDocument(post *models.Post) *PostDocument {
	doc := &PostDocument{
		ID:        post.ID.String(),
		Content:   post.Content,
		Tags:      post.Tags,
		ImgURL:    post.ImgURL,
		AuthorID:  post.AuthorID.String(),
		Comments:  make([]CommentDocument, len(post.Comments)),
		Likes:     make([]LikeDocument, len(post.Likes)),
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
	for i, c := range post.Comments {
		doc.Comments[i] = CommentDocument(c)
	}
	for i, l := range post.Likes {
		doc.Likes[i] = LikeDocument(l)
	}
	return doc
}

func documentToPost(doc *PostDocument) (*models.Post, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID in database: %w", err)
	}

	authorID, err := uuid.Parse(doc.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author ID in database: %w", err)
	}

	post := &models.Post{
		ID:        id,
		Content:   doc.Content,
		Tags:      doc.Tags,
		ImgURL:    doc.ImgURL,
		AuthorID:  authorID,
		Comments:  make([]models.Comment, len(doc.Comments)),
		Likes:     make([]models.Like, len(doc.Likes)),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for i, c := range doc.Comments {
		post.Comments[i] = models.Comment(c)
	}
	for i, l := range doc.Likes {
		post.Likes[i] = models.Like(l)
	}
	return post, nil
}

// InsertPost stores a new post.
func (m *MongoDB) InsertPost(ctx context.Context, post *models.Post) error {
	if _, err := m.Posts.InsertOne(ctx, postToDocument(post)); err != nil {
		return utils.NewStoreError("InsertPost", err)
	}
	return nil
}

// GetPost retrieves a post by its ID.
func (m *MongoDB) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var doc PostDocument
	err := m.Posts.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("post")
	}
	if err != nil {
		return nil, utils.NewStoreError("GetPost", err)
	}
	return documentToPost(&doc)
}

// GetPosts retrieves all posts, newest first. Ties on createdAt fall back to
// _id ascending so repeated reads are deterministic.
func (m *MongoDB) GetPosts(ctx context.Context) ([]*models.Post, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: 1},
	})

	cursor, err := m.Posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, utils.NewStoreError("GetPosts", err)
	}
	defer cursor.Close(ctx)

	var posts []*models.Post
	for cursor.Next(ctx) {
		var doc PostDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.NewStoreError("GetPosts", err)
		}
		post, err := documentToPost(&doc)
		if err != nil {
			return nil, utils.NewStoreError("GetPosts", err)
		}
		posts = append(posts, post)
	}
	if err := cursor.Err(); err != nil {
		return nil, utils.NewStoreError("GetPosts", err)
	}
	return posts, nil
}

// PushComment appends a comment to the post's embedded comment array.
func (m *MongoDB) PushComment(ctx context.Context, postID uuid.UUID, comment models.Comment) error {
	update := bson.M{
		"$push": bson.M{"comments": CommentDocument(comment)},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	result, err := m.Posts.UpdateOne(ctx, bson.M{"_id": postID.String()}, update)
	if err != nil {
		return utils.NewStoreError("PushComment", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("post")
	}
	return nil
}

// ToggleLike flips like membership with two conditional updates instead of a
// read-modify-write, so racing toggles from the same user can never leave a
// duplicate entry.
func (m *MongoDB) ToggleLike(ctx context.Context, postID uuid.UUID, like models.Like) (bool, error) {
	id := postID.String()
	now := time.Now()

	// Pull only matches when the username currently holds a like.
	pull, err := m.Posts.UpdateOne(ctx,
		bson.M{"_id": id, "likes.username": like.Username},
		bson.M{
			"$pull": bson.M{"likes": bson.M{"username": like.Username}},
			"$set":  bson.M{"updatedAt": now},
		},
	)
	if err != nil {
		return false, utils.NewStoreError("ToggleLike", err)
	}
	if pull.MatchedCount > 0 {
		return false, nil
	}

	// Push is guarded so a concurrent like that won the race makes this a no-op.
	push, err := m.Posts.UpdateOne(ctx,
		bson.M{"_id": id, "likes.username": bson.M{"$ne": like.Username}},
		bson.M{
			"$push": bson.M{"likes": LikeDocument(like)},
			"$set":  bson.M{"updatedAt": now},
		},
	)
	if err != nil {
		return false, utils.NewStoreError("ToggleLike", err)
	}
	if push.MatchedCount > 0 {
		return true, nil
	}

	// Neither update matched: either the post is gone, or a concurrent toggle
	// landed between the two updates. Distinguish by existence.
	if err := m.Posts.FindOne(ctx, bson.M{"_id": id}).Err(); err == mongo.ErrNoDocuments {
		return false, utils.NewNotFoundError("post")
	} else if err != nil {
		return false, utils.NewStoreError("ToggleLike", err)
	}
	return false, nil
}
