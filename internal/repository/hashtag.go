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

// HashtagRepository resolves hashtag names to documents, creating them on
// first use.
type HashtagRepository interface {
	// FindOrCreateHashtag upserts a hashtag by name and returns the
	// post-update document.
	FindOrCreateHashtag(ctx context.Context, name string) (*model.Hashtag, error)
}

const hashtagCollection = "hashtags"

type hashtagMongoRepository struct {
	db *mongo.Database
}

func NewHashtagMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) HashtagRepository {
	collection := db.Collection(hashtagCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create hashtag indexes")
	}

	return &hashtagMongoRepository{db: db}
}

func (r *hashtagMongoRepository) FindOrCreateHashtag(ctx context.Context, name string) (*model.Hashtag, error) {
	result := r.db.Collection(hashtagCollection).FindOneAndUpdate(
		ctx,
		bson.M{"name": name},
		bson.M{"$setOnInsert": bson.M{
			"name":       name,
			"created_at": time.Now(),
		}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var hashtag model.Hashtag
	if err := result.Decode(&hashtag); err != nil {
		return nil, err
	}

	return &hashtag, nil
}
