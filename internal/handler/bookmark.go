package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/twitter-api/internal/httputil"
	"github.com/vasapolrittideah/twitter-api/internal/message"
	"github.com/vasapolrittideah/twitter-api/internal/middleware"
	"github.com/vasapolrittideah/twitter-api/internal/repository"
	"github.com/vasapolrittideah/twitter-api/internal/usecase"
	"github.com/vasapolrittideah/twitter-api/internal/validate"
	"github.com/vasapolrittideah/twitter-api/pkg/apperror"
	"github.com/vasapolrittideah/twitter-api/pkg/auth"
)

// BookmarkHandler serves saving and unsaving tweets.
type BookmarkHandler struct {
	bookmarkUsecase usecase.BookmarkUsecase
	tweetRepo       repository.TweetRepository
	jwtAuth         *auth.JWTAuthenticator
	logger          *zerolog.Logger
}

func NewBookmarkHandler(
	bookmarkUsecase usecase.BookmarkUsecase,
	tweetRepo repository.TweetRepository,
	jwtAuth *auth.JWTAuthenticator,
	logger *zerolog.Logger,
) *BookmarkHandler {
	return &BookmarkHandler{
		bookmarkUsecase: bookmarkUsecase,
		tweetRepo:       tweetRepo,
		jwtAuth:         jwtAuth,
		logger:          logger,
	}
}

func (h *BookmarkHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequireAccessToken(h.jwtAuth), middleware.RequireVerified)

	r.Post("/", validated(h.bookmarkSchema(), h.Bookmark))
	r.Delete("/tweets/{tweet_id}", validated(h.unbookmarkSchema(), h.Unbookmark))

	return r
}

func (h *BookmarkHandler) Bookmark(w http.ResponseWriter, r *http.Request) {
	req := validate.FromContext(r.Context())
	claims := middleware.ClaimsFromContext(r.Context())

	bookmark, err := h.bookmarkUsecase.BookmarkTweet(r.Context(), claims.UserID, req.BodyString("tweet_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.OK(w, message.BookmarkSuccessful, bookmark)
}

func (h *BookmarkHandler) Unbookmark(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	if err := h.bookmarkUsecase.UnbookmarkTweet(r.Context(), claims.UserID, chi.URLParam(r, "tweet_id")); err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.OK(w, message.UnbookmarkSuccessful, nil)
}

func (h *BookmarkHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}

	httputil.Error(w, err)
}

func (h *BookmarkHandler) bookmarkSchema() validate.Schema {
	return validate.Schema{
		validate.Body("tweet_id", h.tweetExistsRule()),
	}
}

func (h *BookmarkHandler) unbookmarkSchema() validate.Schema {
	return validate.Schema{
		validate.Param("tweet_id", h.tweetExistsRule()),
	}
}

// tweetExistsRule rejects a malformed id outright and confirms the tweet is
// actually there, so a bookmark can never dangle.
func (h *BookmarkHandler) tweetExistsRule() validate.Rule {
	return func(ctx context.Context, _ *validate.Request, _ string, value any) error {
		id, ok := value.(string)
		if !ok {
			return apperror.New(http.StatusBadRequest, message.InvalidTweetID)
		}
		if _, err := bson.ObjectIDFromHex(id); err != nil {
			return apperror.New(http.StatusBadRequest, message.InvalidTweetID)
		}

		if _, err := h.tweetRepo.GetTweet(ctx, id); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return apperror.NotFound(message.TweetNotFound)
			}

			return apperror.New(http.StatusInternalServerError, message.InternalError)
		}

		return nil
	}
}
