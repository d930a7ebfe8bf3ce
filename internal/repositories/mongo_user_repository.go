package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/quillpress/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}
	if user.JoinedAt.IsZero() {
		user.JoinedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

// EnsureUser upserts with $setOnInsert so an existing profile and its
// counters stay untouched
func (r *MongoUserRepository) EnsureUser(ctx context.Context, user *models.User) (bool, error) {
	if user.JoinedAt.IsZero() {
		user.JoinedAt = time.Now()
	}
	update := bson.M{"$setOnInsert": bson.M{
		"personal_info": user.PersonalInfo,
		"account_info":  user.AccountInfo,
		"joinedAt":      user.JoinedAt,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// IncrementAccount adds delta to one account counter of a user
func (r *MongoUserRepository) IncrementAccount(ctx context.Context, id string, field models.AccountField, delta int) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"account_info." + string(field): delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id string, info models.PersonalInfo) error {
	taken, err := r.collection.CountDocuments(ctx, bson.M{
		"personal_info.username": info.Username,
		"_id":                    bson.M{"$ne": id},
	})
	if err != nil {
		return err
	}
	if taken > 0 {
		return fmt.Errorf("%s: %w", info.Username, ErrUsernameTaken)
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"personal_info": info}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}
