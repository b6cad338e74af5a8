package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/twitter-api/internal/model"
)

// BookmarkRepository stores bookmark edges. Upsert semantics make
// bookmarking idempotent, a repeated bookmark never creates a duplicate
// document.
type BookmarkRepository interface {
	UpsertBookmark(ctx context.Context, userID, tweetID string) (*model.Bookmark, error)
	DeleteBookmark(ctx context.Context, userID, tweetID string) (int64, error)
}

const bookmarkCollection = "bookmarks"

type bookmarkMongoRepository struct {
	db *mongo.Database
}

func NewBookmarkMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) BookmarkRepository {
	collection := db.Collection(bookmarkCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "tweet_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create bookmark indexes")
	}

	return &bookmarkMongoRepository{db: db}
}

func (r *bookmarkMongoRepository) UpsertBookmark(ctx context.Context, userID, tweetID string) (*model.Bookmark, error) {
	filter, err := bookmarkFilter(userID, tweetID)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(bookmarkCollection).FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$setOnInsert": bson.M{"created_at": time.Now()}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var bookmark model.Bookmark
	if err := result.Decode(&bookmark); err != nil {
		return nil, err
	}

	return &bookmark, nil
}

func (r *bookmarkMongoRepository) DeleteBookmark(ctx context.Context, userID, tweetID string) (int64, error) {
	filter, err := bookmarkFilter(userID, tweetID)
	if err != nil {
		return 0, err
	}

	result, err := r.db.Collection(bookmarkCollection).DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}

func bookmarkFilter(userID, tweetID string) (bson.M, error) {
	userObjectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	tweetObjectID, err := bson.ObjectIDFromHex(tweetID)
	if err != nil {
		return nil, err
	}

	return bson.M{
		"user_id":  userObjectID,
		"tweet_id": tweetObjectID,
	}, nil
}
