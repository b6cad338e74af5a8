package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/twitter-api/internal/model"
)

// TweetRepository defines the interface for tweet-related database
// operations.
type TweetRepository interface {
	CreateTweet(ctx context.Context, tweet *model.Tweet) (*model.Tweet, error)
	GetTweet(ctx context.Context, id string) (*model.Tweet, error)

	// IncreaseViews bumps the appropriate view counter atomically and returns
	// the post-update document.
	IncreaseViews(ctx context.Context, id string, authenticated bool) (*model.Tweet, error)
}

const tweetCollection = "tweets"

type tweetMongoRepository struct {
	db *mongo.Database
}

func NewTweetMongoRepository(db *mongo.Database) TweetRepository {
	return &tweetMongoRepository{db: db}
}

func (r *tweetMongoRepository) CreateTweet(ctx context.Context, tweet *model.Tweet) (*model.Tweet, error) {
	now := time.Now()
	tweet.CreatedAt = now
	tweet.UpdatedAt = now

	if tweet.Hashtags == nil {
		tweet.Hashtags = []bson.ObjectID{}
	}
	if tweet.Mentions == nil {
		tweet.Mentions = []bson.ObjectID{}
	}
	if tweet.Medias == nil {
		tweet.Medias = []model.Media{}
	}

	result, err := r.db.Collection(tweetCollection).InsertOne(ctx, tweet)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		tweet.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return tweet, nil
}

func (r *tweetMongoRepository) GetTweet(ctx context.Context, id string) (*model.Tweet, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(tweetCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var tweet model.Tweet
	if err := result.Decode(&tweet); err != nil {
		return nil, err
	}

	return &tweet, nil
}

func (r *tweetMongoRepository) IncreaseViews(
	ctx context.Context,
	id string,
	authenticated bool,
) (*model.Tweet, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	inc := bson.M{"guest_views": 1}
	if authenticated {
		inc = bson.M{"user_views": 1}
	}

	result := r.db.Collection(tweetCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{
			"$inc": inc,
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var tweet model.Tweet
	if err := result.Decode(&tweet); err != nil {
		return nil, err
	}

	return &tweet, nil
}
