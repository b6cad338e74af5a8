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
	"github.com/vasapolrittideah/twitter-api/pkg/auth"
)

// UserRepository defines the interface for user-related database operations.
// Every mutation is a single atomic document update; the verify-email
// transition in particular clears the one-time token and advances the status
// in one update rather than read-modify-write.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*model.User, error)
	SetEmailVerifyToken(ctx context.Context, id string, token string) error
	MarkVerified(ctx context.Context, id string) error
	SetForgotPasswordToken(ctx context.Context, id string, token string) error
	ResetPassword(ctx context.Context, id string, passwordHash string) error
}

// UpdateUserParams defines the optional parameters for updating a user.
// Only the fields that are not nil will be updated.
type UpdateUserParams struct {
	Name         *string
	DateOfBirth  *time.Time
	Bio          *string
	Location     *string
	Website      *string
	Username     *string
	Avatar       *string
	CoverPhoto   *string
	PasswordHash *string
}

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Verify = auth.Unverified

	if user.TwitterCircle == nil {
		user.TwitterCircle = []bson.ObjectID{}
	}

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userMongoRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *userMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) UpdateUser(
	ctx context.Context,
	id string,
	params UpdateUserParams,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	// Build update query
	updateMap := bson.M{}
	if params.Name != nil {
		updateMap["name"] = *params.Name
	}
	if params.DateOfBirth != nil {
		updateMap["date_of_birth"] = *params.DateOfBirth
	}
	if params.Bio != nil {
		updateMap["bio"] = *params.Bio
	}
	if params.Location != nil {
		updateMap["location"] = *params.Location
	}
	if params.Website != nil {
		updateMap["website"] = *params.Website
	}
	if params.Username != nil {
		updateMap["username"] = *params.Username
	}
	if params.Avatar != nil {
		updateMap["avatar"] = *params.Avatar
	}
	if params.CoverPhoto != nil {
		updateMap["cover_photo"] = *params.CoverPhoto
	}
	if params.PasswordHash != nil {
		updateMap["password_hash"] = *params.PasswordHash
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no user fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) SetEmailVerifyToken(ctx context.Context, id string, token string) error {
	return r.setFields(ctx, id, bson.M{"email_verify_token": token})
}

// MarkVerified clears the email-verify token and advances the status to
// Verified in a single atomic update.
func (r *userMongoRepository) MarkVerified(ctx context.Context, id string) error {
	return r.setFields(ctx, id, bson.M{
		"email_verify_token": "",
		"verify":             auth.Verified,
	})
}

func (r *userMongoRepository) SetForgotPasswordToken(ctx context.Context, id string, token string) error {
	return r.setFields(ctx, id, bson.M{"forgot_password_token": token})
}

// ResetPassword sets the new password hash and consumes the live
// forgot-password token in one update.
func (r *userMongoRepository) ResetPassword(ctx context.Context, id string, passwordHash string) error {
	return r.setFields(ctx, id, bson.M{
		"password_hash":         passwordHash,
		"forgot_password_token": "",
	})
}

func (r *userMongoRepository) setFields(ctx context.Context, id string, fields bson.M) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	fields["updated_at"] = time.Now()

	_, err = r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": fields},
	)

	return err
}
