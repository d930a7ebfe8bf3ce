package repositories

import (
	"context"
	"time"

	"github.com/anonto42/quillpress/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoStore wires every repository against one MongoDB database.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Blogs:         NewMongoBlogRepository(db),
		Comments:      NewMongoCommentRepository(db),
		Notifications: NewMongoNotificationRepository(db),
		Users:         NewMongoUserRepository(db),
		Ledger:        NewMongoLedger(db),
	}
}

// EnsureMongoIndexes creates the indexes the listing queries rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"blogs": {
			{Keys: bson.D{{Key: "draft", Value: 1}, {Key: "publishedAt", Value: -1}}},
			{Keys: bson.D{{Key: "author", Value: 1}, {Key: "draft", Value: 1}, {Key: "publishedAt", Value: -1}}},
		},
		"comments": {
			{Keys: bson.D{{Key: "blog_id", Value: 1}, {Key: "isReply", Value: 1}, {Key: "commentedAt", Value: -1}}},
		},
		"notifications": {
			{Keys: bson.D{{Key: "notification_for", Value: 1}, {Key: "seen", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "blog", Value: 1}, {Key: "user", Value: 1}, {Key: "type", Value: 1}}},
			{Keys: bson.D{{Key: "comment", Value: 1}}},
			{Keys: bson.D{{Key: "reply", Value: 1}}},
		},
		"users": {
			{Keys: bson.D{{Key: "personal_info.username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, idx := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}

// MongoLedger implements Ledger with one document per claimed key.
type MongoLedger struct {
	collection *mongo.Collection
}

func NewMongoLedger(db *mongo.Database) *MongoLedger {
	return &MongoLedger{collection: db.Collection("bookkeeping_ledger")}
}

func (l *MongoLedger) Claim(ctx context.Context, key string) (bool, error) {
	_, err := l.collection.InsertOne(ctx, models.LedgerEntry{Key: key, ClaimedAt: time.Now()})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (l *MongoLedger) Release(ctx context.Context, key string) error {
	_, err := l.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}
