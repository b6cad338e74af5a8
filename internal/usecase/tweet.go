package usecase

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/twitter-api/internal/message"
	"github.com/vasapolrittideah/twitter-api/internal/model"
	"github.com/vasapolrittideah/twitter-api/internal/repository"
	"github.com/vasapolrittideah/twitter-api/pkg/apperror"
	"github.com/vasapolrittideah/twitter-api/pkg/auth"
)

// TweetUsecase covers tweet creation and reading.
type TweetUsecase interface {
	CreateTweet(ctx context.Context, userID string, params CreateTweetParams) (*model.Tweet, error)

	// GetTweet checks the audience gate and bumps the guest or user view
	// counter, returning the post-update document.
	GetTweet(ctx context.Context, tweetID string, viewer *auth.TokenClaims) (*model.Tweet, error)
}

// CreateTweetParams defines the parameters for creating a tweet. Hashtags
// arrive as names and are resolved to documents; mentions arrive as user id
// hex strings already validated by the schema.
type CreateTweetParams struct {
	Type     model.TweetType
	Audience model.TweetAudience
	Content  string
	ParentID *string
	Hashtags []string
	Mentions []string
	Medias   []model.Media
}

var ErrTweetNotFound = errors.New("tweet not found")

type tweetUsecase struct {
	tweetRepo   repository.TweetRepository
	hashtagRepo repository.HashtagRepository
	userRepo    repository.UserRepository
}

func NewTweetUsecase(
	tweetRepo repository.TweetRepository,
	hashtagRepo repository.HashtagRepository,
	userRepo repository.UserRepository,
) TweetUsecase {
	return &tweetUsecase{
		tweetRepo:   tweetRepo,
		hashtagRepo: hashtagRepo,
		userRepo:    userRepo,
	}
}

func (u *tweetUsecase) CreateTweet(
	ctx context.Context,
	userID string,
	params CreateTweetParams,
) (*model.Tweet, error) {
	userObjectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	hashtagIDs := make([]bson.ObjectID, 0, len(params.Hashtags))
	for _, name := range params.Hashtags {
		hashtag, err := u.hashtagRepo.FindOrCreateHashtag(ctx, name)
		if err != nil {
			return nil, err
		}
		hashtagIDs = append(hashtagIDs, hashtag.ID)
	}

	mentionIDs := make([]bson.ObjectID, 0, len(params.Mentions))
	for _, mention := range params.Mentions {
		mentionID, err := bson.ObjectIDFromHex(mention)
		if err != nil {
			return nil, err
		}
		mentionIDs = append(mentionIDs, mentionID)
	}

	var parentID *bson.ObjectID
	if params.ParentID != nil {
		id, err := bson.ObjectIDFromHex(*params.ParentID)
		if err != nil {
			return nil, err
		}
		parentID = &id
	}

	return u.tweetRepo.CreateTweet(ctx, &model.Tweet{
		UserID:   userObjectID,
		Type:     params.Type,
		Audience: params.Audience,
		Content:  params.Content,
		ParentID: parentID,
		Hashtags: hashtagIDs,
		Mentions: mentionIDs,
		Medias:   params.Medias,
	})
}

func (u *tweetUsecase) GetTweet(
	ctx context.Context,
	tweetID string,
	viewer *auth.TokenClaims,
) (*model.Tweet, error) {
	tweet, err := u.tweetRepo.GetTweet(ctx, tweetID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTweetNotFound
		}

		return nil, err
	}

	if err := u.checkAudience(ctx, tweet, viewer); err != nil {
		return nil, err
	}

	return u.tweetRepo.IncreaseViews(ctx, tweetID, viewer != nil)
}

// checkAudience enforces the visibility gate for circle-scoped tweets:
// anonymous viewers are rejected with 401, a missing or banned owner hides
// the tweet with 404, and a viewer who is neither the owner nor a circle
// member gets 403. The owner always passes.
func (u *tweetUsecase) checkAudience(
	ctx context.Context,
	tweet *model.Tweet,
	viewer *auth.TokenClaims,
) error {
	if tweet.Audience != model.TwitterCircle {
		return nil
	}

	if viewer == nil {
		return apperror.New(http.StatusUnauthorized, message.AccessTokenRequired)
	}

	owner, err := u.userRepo.GetUser(ctx, tweet.UserID.Hex())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperror.NotFound(message.UserNotFound)
		}

		return err
	}

	if owner.Verify == auth.Banned {
		return apperror.NotFound(message.UserNotFound)
	}

	if viewer.UserID == owner.ID.Hex() {
		return nil
	}

	viewerID, err := bson.ObjectIDFromHex(viewer.UserID)
	if err != nil {
		return err
	}

	if !owner.InCircle(viewerID) {
		return apperror.Forbidden(message.TweetIsNotPublic)
	}

	return nil
}
