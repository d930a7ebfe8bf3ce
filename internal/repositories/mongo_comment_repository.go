package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/quillpress/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/datatypes"
)

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// CreateComment creates a new comment in MongoDB
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = primitive.NewObjectID().Hex()
	}
	if comment.CommentedAt.IsZero() {
		comment.CommentedAt = time.Now()
	}
	if comment.Children == nil {
		comment.Children = datatypes.JSONSlice[string]{}
	}
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// GetCommentByID retrieves a comment by ID from MongoDB
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("comment %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &comment, nil
}

// DeleteComment deletes a single comment document
func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("comment %s: %w", id, ErrNotFound)
	}
	return nil
}

// AppendChild pushes childID onto the parent's children list
func (r *MongoCommentRepository) AppendChild(ctx context.Context, parentID, childID string) error {
	return r.updateOne(ctx, parentID, bson.M{"$push": bson.M{"children": childID}})
}

// RemoveChild pulls childID out of the parent's children list
func (r *MongoCommentRepository) RemoveChild(ctx context.Context, parentID, childID string) error {
	return r.updateOne(ctx, parentID, bson.M{"$pull": bson.M{"children": childID}})
}

// ListTopLevel retrieves the thread roots of a blog, newest first
func (r *MongoCommentRepository) ListTopLevel(ctx context.Context, blogID string, w models.Window) ([]models.Comment, error) {
	return r.aggregate(ctx, bson.M{"blog_id": blogID, "isReply": false}, w)
}

// ListReplies retrieves the children of a comment, newest first
func (r *MongoCommentRepository) ListReplies(ctx context.Context, parentID string, w models.Window) ([]models.Comment, error) {
	parent, err := r.GetCommentByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if len(parent.Children) == 0 {
		return []models.Comment{}, nil
	}
	return r.aggregate(ctx, bson.M{"_id": bson.M{"$in": []string(parent.Children)}}, w)
}

// DeleteCommentsByBlog removes every comment of a blog
func (r *MongoCommentRepository) DeleteCommentsByBlog(ctx context.Context, blogID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"blog_id": blogID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoCommentRepository) aggregate(ctx context.Context, match bson.M, w models.Window) ([]models.Comment, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "commentedAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$skip", Value: w.Skip}},
		{{Key: "$limit", Value: w.Limit}},
	}
	pipeline = append(pipeline, lookupUser("commented_by", "commenter")...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *MongoCommentRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("comment %s: %w", id, ErrNotFound)
	}
	return nil
}
