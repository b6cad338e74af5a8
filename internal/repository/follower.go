package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/twitter-api/internal/model"
)

// FollowerRepository stores directed follow edges.
type FollowerRepository interface {
	CreateFollower(ctx context.Context, follower *model.Follower) (*model.Follower, error)
	GetFollower(ctx context.Context, userID, followedUserID string) (*model.Follower, error)
	DeleteFollower(ctx context.Context, userID, followedUserID string) (int64, error)
}

const followerCollection = "followers"

type followerMongoRepository struct {
	db *mongo.Database
}

func NewFollowerMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) FollowerRepository {
	collection := db.Collection(followerCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "followed_user_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create follower indexes")
	}

	return &followerMongoRepository{db: db}
}

func (r *followerMongoRepository) CreateFollower(
	ctx context.Context,
	follower *model.Follower,
) (*model.Follower, error) {
	follower.CreatedAt = time.Now()

	result, err := r.db.Collection(followerCollection).InsertOne(ctx, follower)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		follower.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return follower, nil
}

func (r *followerMongoRepository) GetFollower(
	ctx context.Context,
	userID, followedUserID string,
) (*model.Follower, error) {
	filter, err := followerFilter(userID, followedUserID)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(followerCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var follower model.Follower
	if err := result.Decode(&follower); err != nil {
		return nil, err
	}

	return &follower, nil
}

func (r *followerMongoRepository) DeleteFollower(
	ctx context.Context,
	userID, followedUserID string,
) (int64, error) {
	filter, err := followerFilter(userID, followedUserID)
	if err != nil {
		return 0, err
	}

	result, err := r.db.Collection(followerCollection).DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}

func followerFilter(userID, followedUserID string) (bson.M, error) {
	userObjectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	followedObjectID, err := bson.ObjectIDFromHex(followedUserID)
	if err != nil {
		return nil, err
	}

	return bson.M{
		"user_id":          userObjectID,
		"followed_user_id": followedObjectID,
	}, nil
}
