package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/twitter-api/internal/httputil"
	"github.com/vasapolrittideah/twitter-api/internal/message"
	"github.com/vasapolrittideah/twitter-api/internal/middleware"
	"github.com/vasapolrittideah/twitter-api/internal/model"
	"github.com/vasapolrittideah/twitter-api/internal/usecase"
	"github.com/vasapolrittideah/twitter-api/internal/validate"
	"github.com/vasapolrittideah/twitter-api/pkg/apperror"
	"github.com/vasapolrittideah/twitter-api/pkg/auth"
)

// TweetHandler serves tweet creation and lookup.
type TweetHandler struct {
	tweetUsecase usecase.TweetUsecase
	jwtAuth      *auth.JWTAuthenticator
	logger       *zerolog.Logger
}

func NewTweetHandler(
	tweetUsecase usecase.TweetUsecase,
	jwtAuth *auth.JWTAuthenticator,
	logger *zerolog.Logger,
) *TweetHandler {
	return &TweetHandler{
		tweetUsecase: tweetUsecase,
		jwtAuth:      jwtAuth,
		logger:       logger,
	}
}

func (h *TweetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	authed := middleware.RequireAccessToken(h.jwtAuth)

	r.With(authed, middleware.RequireVerified).
		Post("/", validated(createTweetSchema(), h.CreateTweet))

	// Anonymous lookups are allowed; a bearer token, when present, decides
	// circle membership and which view counter to bump.
	r.With(middleware.OptionalAuth(authed)).
		Get("/{tweet_id}", validated(tweetIDSchema(), h.GetTweet))

	return r
}

func (h *TweetHandler) CreateTweet(w http.ResponseWriter, r *http.Request) {
	req := validate.FromContext(r.Context())
	claims := middleware.ClaimsFromContext(r.Context())

	tweet, err := h.tweetUsecase.CreateTweet(r.Context(), claims.UserID, createTweetParams(req))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.OK(w, message.CreateTweetSuccessful, tweet)
}

func (h *TweetHandler) GetTweet(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.ClaimsFromContext(r.Context())

	tweet, err := h.tweetUsecase.GetTweet(r.Context(), chi.URLParam(r, "tweet_id"), viewer)
	if err != nil {
		if errors.Is(err, usecase.ErrTweetNotFound) {
			httputil.Error(w, apperror.NotFound(message.TweetNotFound))
			return
		}

		h.fail(w, r, err)
		return
	}

	httputil.OK(w, message.GetTweetSuccessful, tweet)
}

func (h *TweetHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}

	httputil.Error(w, err)
}

// createTweetParams lifts the validated body into usecase parameters. The
// schema has already rejected every shape these conversions would choke on.
func createTweetParams(req *validate.Request) usecase.CreateTweetParams {
	tweetType, _ := validate.AsInt(mustBodyValue(req, "type"))
	audience, _ := validate.AsInt(mustBodyValue(req, "audience"))
	hashtags, _ := validate.StringSlice(mustBodyValue(req, "hashtags"))
	mentions, _ := validate.StringSlice(mustBodyValue(req, "mentions"))
	medias, _ := mediaSlice(mustBodyValue(req, "medias"))

	params := usecase.CreateTweetParams{
		Type:     model.TweetType(tweetType),
		Audience: model.TweetAudience(audience),
		Content:  req.BodyString("content"),
		Hashtags: hashtags,
		Mentions: mentions,
		Medias:   medias,
	}

	if parentID, ok := mustBodyValue(req, "parent_id").(string); ok {
		params.ParentID = &parentID
	}

	return params
}

func mustBodyValue(req *validate.Request, name string) any {
	value, _ := req.BodyValue(name)
	return value
}

func createTweetSchema() validate.Schema {
	return validate.Schema{
		validate.Body("type", tweetTypeRule()),
		validate.Body("audience", tweetAudienceRule()),
		validate.Body("parent_id", parentIDRule()),
		validate.Body("content", contentRule()),
		validate.Body("hashtags", hashtagsRule()),
		validate.Body("mentions", mentionsRule()),
		validate.Body("medias", mediasRule()),
	}
}

func tweetIDSchema() validate.Schema {
	return validate.Schema{
		validate.Param("tweet_id", tweetIDRule()),
	}
}

func tweetIDRule() validate.Rule {
	return func(_ context.Context, _ *validate.Request, _ string, value any) error {
		id, ok := value.(string)
		if !ok {
			return apperror.New(http.StatusBadRequest, message.InvalidTweetID)
		}
		if _, err := bson.ObjectIDFromHex(id); err != nil {
			return apperror.New(http.StatusBadRequest, message.InvalidTweetID)
		}

		return nil
	}
}

func tweetTypeRule() validate.Rule {
	return func(_ context.Context, _ *validate.Request, _ string, value any) error {
		n, ok := validate.AsInt(value)
		if !ok || !model.ValidTweetType(model.TweetType(n)) {
			return errors.New(message.InvalidTweetType)
		}

		return nil
	}
}

func tweetAudienceRule() validate.Rule {
	return func(_ context.Context, _ *validate.Request, _ string, value any) error {
		n, ok := validate.AsInt(value)
		if !ok || !model.ValidTweetAudience(model.TweetAudience(n)) {
			return errors.New(message.InvalidTweetAudience)
		}

		return nil
	}
}

// parentIDRule ties the parent reference to the tweet type: derived kinds
// point at an existing-looking tweet id, a plain tweet carries null.
func parentIDRule() validate.Rule {
	idRule := validate.ObjectIDHex(message.ParentIDMustBeValidTweetID)

	return func(ctx context.Context, r *validate.Request, field string, value any) error {
		if bodyTweetType(r) == model.NormalTweet {
			if value != nil {
				return errors.New(message.ParentIDMustBeNull)
			}

			return nil
		}

		return idRule(ctx, r, field, value)
	}
}

// contentRule enforces the per-type content contract: a retweet carries no
// text of its own, everything else needs text unless it is nothing but
// hashtags and mentions.
func contentRule() validate.Rule {
	return func(_ context.Context, r *validate.Request, _ string, value any) error {
		content, ok := value.(string)
		if !ok {
			return errors.New(message.ContentMustNotBeEmpty)
		}

		if bodyTweetType(r) == model.Retweet {
			if content != "" {
				return errors.New(message.ContentMustBeEmpty)
			}

			return nil
		}

		hashtags, _ := validate.StringSlice(mustBodyValue(r, "hashtags"))
		mentions, _ := validate.StringSlice(mustBodyValue(r, "mentions"))
		if len(hashtags) == 0 && len(mentions) == 0 && strings.TrimSpace(content) == "" {
			return errors.New(message.ContentMustNotBeEmpty)
		}

		return nil
	}
}

func hashtagsRule() validate.Rule {
	return func(_ context.Context, _ *validate.Request, _ string, value any) error {
		if _, err := validate.StringSlice(value); err != nil {
			return errors.New(message.HashtagsMustBeStrings)
		}

		return nil
	}
}

func mentionsRule() validate.Rule {
	idRule := validate.ObjectIDHex(message.MentionsMustBeUserIDs)

	return func(ctx context.Context, r *validate.Request, field string, value any) error {
		ids, err := validate.StringSlice(value)
		if err != nil {
			return errors.New(message.MentionsMustBeUserIDs)
		}

		for _, id := range ids {
			if err := idRule(ctx, r, field, id); err != nil {
				return err
			}
		}

		return nil
	}
}

func mediasRule() validate.Rule {
	return func(_ context.Context, _ *validate.Request, _ string, value any) error {
		if _, ok := mediaSlice(value); !ok {
			return errors.New(message.MediasMustBeMediaObjects)
		}

		return nil
	}
}

// mediaSlice decodes the raw medias array. A nil value is an empty list.
func mediaSlice(value any) ([]model.Media, bool) {
	if value == nil {
		return nil, true
	}

	items, ok := value.([]any)
	if !ok {
		return nil, false
	}

	medias := make([]model.Media, 0, len(items))

	for _, item := range items {
		object, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}

		url, ok := object["url"].(string)
		if !ok || url == "" {
			return nil, false
		}

		mediaType, ok := validate.AsInt(object["type"])
		if !ok || model.MediaType(mediaType) < model.Image || model.MediaType(mediaType) > model.Video {
			return nil, false
		}

		medias = append(medias, model.Media{URL: url, Type: model.MediaType(mediaType)})
	}

	return medias, true
}

func bodyTweetType(r *validate.Request) model.TweetType {
	t, _ := validate.AsInt(mustBodyValue(r, "type"))
	return model.TweetType(t)
}
