package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/quillpress/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = primitive.NewObjectID().Hex()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, n)
	return err
}

func (r *MongoNotificationRepository) Exists(ctx context.Context, filter models.NotificationFilter) (bool, error) {
	err := r.collection.FindOne(ctx, notificationQuery(filter)).Err()
	if err != nil {
		if isNoDocuments(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List retrieves notifications newest first with the acting user populated
func (r *MongoNotificationRepository) List(ctx context.Context, filter models.NotificationFilter, w models.Window) ([]models.Notification, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: notificationQuery(filter)}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$skip", Value: w.Skip}},
		{{Key: "$limit", Value: w.Limit}},
	}
	pipeline = append(pipeline, lookupUser("user", "actor")...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *MongoNotificationRepository) Count(ctx context.Context, filter models.NotificationFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, notificationQuery(filter))
}

func (r *MongoNotificationRepository) DeleteOne(ctx context.Context, filter models.NotificationFilter) error {
	res, err := r.collection.DeleteOne(ctx, notificationQuery(filter))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("notification: %w", ErrNotFound)
	}
	return nil
}

func (r *MongoNotificationRepository) DeleteMany(ctx context.Context, filter models.NotificationFilter) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, notificationQuery(filter))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoNotificationRepository) SetReply(ctx context.Context, id, replyID string) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"reply": replyID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *MongoNotificationRepository) UnsetReply(ctx context.Context, replyID string) (int64, error) {
	res, err := r.collection.UpdateMany(ctx, bson.M{"reply": replyID}, bson.M{"$unset": bson.M{"reply": ""}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *MongoNotificationRepository) MarkSeen(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.collection.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{"$set": bson.M{"seen": true}})
	return err
}

func notificationQuery(f models.NotificationFilter) bson.M {
	q := bson.M{}
	if f.ID != "" {
		q["_id"] = f.ID
	}
	switch len(f.Types) {
	case 0:
	case 1:
		q["type"] = f.Types[0]
	default:
		q["type"] = bson.M{"$in": f.Types}
	}
	if f.Blog != "" {
		q["blog"] = f.Blog
	}
	if f.NotificationFor != "" {
		q["notification_for"] = f.NotificationFor
	}
	if f.User != "" {
		q["user"] = f.User
	} else if f.ExcludeUser != "" {
		q["user"] = bson.M{"$ne": f.ExcludeUser}
	}
	if f.Comment != "" {
		q["comment"] = f.Comment
	}
	if f.Reply != "" {
		q["reply"] = f.Reply
	}
	if f.Seen != nil {
		q["seen"] = *f.Seen
	}
	return q
}
