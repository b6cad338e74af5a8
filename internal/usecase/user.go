package usecase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/twitter-api/internal/model"
	"github.com/vasapolrittideah/twitter-api/internal/repository"
)

// UserUsecase covers the profile and follow-graph operations.
type UserUsecase interface {
	GetMe(ctx context.Context, userID string) (*model.User, error)
	GetProfile(ctx context.Context, username string) (*model.User, error)
	UpdateMe(ctx context.Context, userID string, params UpdateMeParams) (*model.User, error)

	// Follow and Unfollow are idempotent set-membership toggles. The
	// returned flag reports whether the state actually changed; "already in
	// the desired state" is a status signal, not an error.
	Follow(ctx context.Context, userID, followedUserID string) (bool, error)
	Unfollow(ctx context.Context, userID, followedUserID string) (bool, error)
}

// UpdateMeParams defines the optional profile fields of a partial update.
type UpdateMeParams struct {
	Name        *string
	DateOfBirth *time.Time
	Bio         *string
	Location    *string
	Website     *string
	Username    *string
	Avatar      *string
	CoverPhoto  *string
}

type userUsecase struct {
	userRepo     repository.UserRepository
	followerRepo repository.FollowerRepository
}

func NewUserUsecase(
	userRepo repository.UserRepository,
	followerRepo repository.FollowerRepository,
) UserUsecase {
	return &userUsecase{
		userRepo:     userRepo,
		followerRepo: followerRepo,
	}
}

func (u *userUsecase) GetMe(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

func (u *userUsecase) GetProfile(ctx context.Context, username string) (*model.User, error) {
	user, err := u.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

func (u *userUsecase) UpdateMe(ctx context.Context, userID string, params UpdateMeParams) (*model.User, error) {
	return u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{
		Name:        params.Name,
		DateOfBirth: params.DateOfBirth,
		Bio:         params.Bio,
		Location:    params.Location,
		Website:     params.Website,
		Username:    params.Username,
		Avatar:      params.Avatar,
		CoverPhoto:  params.CoverPhoto,
	})
}

func (u *userUsecase) Follow(ctx context.Context, userID, followedUserID string) (bool, error) {
	if _, err := u.followerRepo.GetFollower(ctx, userID, followedUserID); err == nil {
		return false, nil
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, err
	}

	userObjectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return false, err
	}

	followedObjectID, err := bson.ObjectIDFromHex(followedUserID)
	if err != nil {
		return false, err
	}

	if _, err := u.followerRepo.CreateFollower(ctx, &model.Follower{
		UserID:         userObjectID,
		FollowedUserID: followedObjectID,
	}); err != nil {
		// A concurrent follow hit the unique index first; the desired state
		// holds either way.
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (u *userUsecase) Unfollow(ctx context.Context, userID, followedUserID string) (bool, error) {
	deleted, err := u.followerRepo.DeleteFollower(ctx, userID, followedUserID)
	if err != nil {
		return false, err
	}

	return deleted > 0, nil
}
