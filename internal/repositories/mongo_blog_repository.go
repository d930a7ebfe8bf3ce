package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/quillpress/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/datatypes"
)

// MongoBlogRepository implements BlogRepository for MongoDB
type MongoBlogRepository struct {
	collection *mongo.Collection
}

// NewMongoBlogRepository creates a new MongoBlogRepository
func NewMongoBlogRepository(db *mongo.Database) *MongoBlogRepository {
	return &MongoBlogRepository{collection: db.Collection("blogs")}
}

// CreateBlog creates a new blog in MongoDB
func (r *MongoBlogRepository) CreateBlog(ctx context.Context, blog *models.Blog) error {
	if blog.PublishedAt.IsZero() {
		blog.PublishedAt = time.Now()
	}
	blog.UpdatedAt = blog.PublishedAt
	if blog.Comments == nil {
		blog.Comments = datatypes.JSONSlice[string]{}
	}
	if blog.Tags == nil {
		blog.Tags = datatypes.JSONSlice[string]{}
	}
	_, err := r.collection.InsertOne(ctx, blog)
	return err
}

// GetBlogByID retrieves a blog with its author populated
func (r *MongoBlogRepository) GetBlogByID(ctx context.Context, id string) (*models.Blog, error) {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": id}}}}
	pipeline = append(pipeline, lookupUser("author", "author_info")...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var blogs []models.Blog
	if err = cursor.All(ctx, &blogs); err != nil {
		return nil, err
	}
	if len(blogs) == 0 {
		return nil, fmt.Errorf("blog %s: %w", id, ErrNotFound)
	}
	return &blogs[0], nil
}

// UpdateBlog overwrites the editable fields of a blog
func (r *MongoBlogRepository) UpdateBlog(ctx context.Context, blog *models.Blog) error {
	blog.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"title":       blog.Title,
			"banner":      blog.Banner,
			"des":         blog.Des,
			"content":     blog.Content,
			"tags":        blog.Tags,
			"draft":       blog.Draft,
			"publishedAt": blog.PublishedAt,
			"updatedAt":   blog.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": blog.BlogID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("blog %s: %w", blog.BlogID, ErrNotFound)
	}
	return nil
}

// DeleteBlog deletes a blog by ID from MongoDB
func (r *MongoBlogRepository) DeleteBlog(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("blog %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListBlogs retrieves blogs newest first with their authors populated
func (r *MongoBlogRepository) ListBlogs(ctx context.Context, filter models.BlogFilter, w models.Window) ([]models.Blog, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: blogQuery(filter)}},
		{{Key: "$sort", Value: bson.D{{Key: "publishedAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$skip", Value: w.Skip}},
		{{Key: "$limit", Value: w.Limit}},
	}
	pipeline = append(pipeline, lookupUser("author", "author_info")...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	blogs := []models.Blog{}
	if err = cursor.All(ctx, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

// CountBlogs counts the blogs matching filter
func (r *MongoBlogRepository) CountBlogs(ctx context.Context, filter models.BlogFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, blogQuery(filter))
}

// IncrementActivity adds delta to one activity counter of a blog
func (r *MongoBlogRepository) IncrementActivity(ctx context.Context, id string, field models.ActivityField, delta int) error {
	update := bson.M{"$inc": bson.M{"activity." + string(field): delta}}
	return r.updateOne(ctx, id, update)
}

// AttachComment records a new comment on the blog
func (r *MongoBlogRepository) AttachComment(ctx context.Context, id, commentID string, root bool) error {
	update := bson.M{
		"$push": bson.M{"comments": commentID},
		"$inc":  commentCounters(1, root),
	}
	return r.updateOne(ctx, id, update)
}

// DetachComment removes a deleted comment from the blog
func (r *MongoBlogRepository) DetachComment(ctx context.Context, id, commentID string, root bool) error {
	update := bson.M{
		"$pull": bson.M{"comments": commentID},
		"$inc":  commentCounters(-1, root),
	}
	return r.updateOne(ctx, id, update)
}

func (r *MongoBlogRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("blog %s: %w", id, ErrNotFound)
	}
	return nil
}

func commentCounters(delta int, root bool) bson.M {
	inc := bson.M{"activity." + string(models.ActivityTotalComments): delta}
	if root {
		inc["activity."+string(models.ActivityTotalParentComments)] = delta
	}
	return inc
}

func blogQuery(filter models.BlogFilter) bson.M {
	q := bson.M{"draft": filter.Draft}
	if filter.Author != "" {
		q["author"] = filter.Author
	}
	return q
}

// lookupUser populates the user referenced by localField into as, projected
// down to a UserSummary.
func lookupUser(localField, as string) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   localField,
			"foreignField": "_id",
			"as":           as,
			"pipeline": bson.A{
				bson.M{"$project": bson.M{
					"fullname":    "$personal_info.fullname",
					"username":    "$personal_info.username",
					"profile_img": "$personal_info.profile_img",
				}},
			},
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$" + as, "preserveNullAndEmptyArrays": true}}},
	}
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
