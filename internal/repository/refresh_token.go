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

// RefreshTokenRepository is the single source of truth for refresh-token
// liveness. A signature-valid token that has no document here is not
// redeemable.
type RefreshTokenRepository interface {
	CreateRefreshToken(ctx context.Context, token *model.RefreshToken) (*model.RefreshToken, error)
	GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error)

	// DeleteRefreshToken removes a token document. Deleting a token that does
	// not exist is not an error, which makes logout idempotent.
	DeleteRefreshToken(ctx context.Context, token string) error

	// DeleteRefreshTokensByUserID revokes every outstanding refresh token of
	// one user.
	DeleteRefreshTokensByUserID(ctx context.Context, userID string) (int64, error)
}

const refreshTokenCollection = "refresh_tokens"

type refreshTokenMongoRepository struct {
	db *mongo.Database
}

func NewRefreshTokenMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) RefreshTokenRepository {
	collection := db.Collection(refreshTokenCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create refresh token indexes")
	}

	return &refreshTokenMongoRepository{db: db}
}

func (r *refreshTokenMongoRepository) CreateRefreshToken(
	ctx context.Context,
	token *model.RefreshToken,
) (*model.RefreshToken, error) {
	token.CreatedAt = time.Now()

	result, err := r.db.Collection(refreshTokenCollection).InsertOne(ctx, token)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		token.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return token, nil
}

func (r *refreshTokenMongoRepository) GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	result := r.db.Collection(refreshTokenCollection).FindOne(ctx, bson.M{"token": token})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var refreshToken model.RefreshToken
	if err := result.Decode(&refreshToken); err != nil {
		return nil, err
	}

	return &refreshToken, nil
}

func (r *refreshTokenMongoRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.Collection(refreshTokenCollection).DeleteOne(ctx, bson.M{"token": token})
	return err
}

func (r *refreshTokenMongoRepository) DeleteRefreshTokensByUserID(ctx context.Context, userID string) (int64, error) {
	objectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return 0, err
	}

	result, err := r.db.Collection(refreshTokenCollection).DeleteMany(ctx, bson.M{"user_id": objectID})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}
