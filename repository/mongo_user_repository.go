package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rayhandestian/quickbites/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoUserRepository struct {
	collection *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database, collection string) *MongoUserRepository {
	return &MongoUserRepository{
		collection: db.Collection(collection),
	}
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	opts := options.FindOne().SetProjection(bson.M{"fcmToken": 1})

	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find user %s: %w", id, err)
	}
	return &user, nil
}
