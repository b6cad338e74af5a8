package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

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

// ConversationHandler serves the private message history and sending.
type ConversationHandler struct {
	conversationUsecase usecase.ConversationUsecase
	userRepo            repository.UserRepository
	jwtAuth             *auth.JWTAuthenticator
	logger              *zerolog.Logger
}

func NewConversationHandler(
	conversationUsecase usecase.ConversationUsecase,
	userRepo repository.UserRepository,
	jwtAuth *auth.JWTAuthenticator,
	logger *zerolog.Logger,
) *ConversationHandler {
	return &ConversationHandler{
		conversationUsecase: conversationUsecase,
		userRepo:            userRepo,
		jwtAuth:             jwtAuth,
		logger:              logger,
	}
}

func (h *ConversationHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequireAccessToken(h.jwtAuth), middleware.RequireVerified)

	r.Get("/receivers/{receiver_id}", validated(h.listSchema(), h.GetConversations))
	r.Post("/receivers/{receiver_id}", validated(h.sendSchema(), h.SendMessage))

	return r
}

func (h *ConversationHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	limit, _ := strconv.ParseUint(r.URL.Query().Get("limit"), 10, 64)
	page, _ := strconv.ParseUint(r.URL.Query().Get("page"), 10, 64)

	conversations, err := h.conversationUsecase.GetConversations(r.Context(), usecase.GetConversationsParams{
		SenderID:   claims.UserID,
		ReceiverID: chi.URLParam(r, "receiver_id"),
		Limit:      limit,
		Page:       page,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.OK(w, message.GetConversationsSuccessful, conversations)
}

func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	req := validate.FromContext(r.Context())
	claims := middleware.ClaimsFromContext(r.Context())

	conversation, err := h.conversationUsecase.SendMessage(
		r.Context(),
		claims.UserID,
		chi.URLParam(r, "receiver_id"),
		req.BodyString("content"),
	)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.OK(w, message.SendMessageSuccessful, conversation)
}

func (h *ConversationHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}

	httputil.Error(w, err)
}

func (h *ConversationHandler) listSchema() validate.Schema {
	return validate.Schema{
		validate.Param("receiver_id", h.receiverRule()),
		validate.Query("limit", boundedUintRule(1, 100, message.LimitInvalid)),
		validate.Query("page", boundedUintRule(1, 1<<31, message.PageInvalid)),
	}
}

func (h *ConversationHandler) sendSchema() validate.Schema {
	return validate.Schema{
		validate.Param("receiver_id", h.receiverRule()),
		validate.Body("content",
			validate.NotEmpty(message.ContentIsRequired),
			validate.IsString(message.ContentIsRequired),
		),
	}
}

// receiverRule resolves the other party, hiding unknown and banned accounts
// behind the same not-found answer.
func (h *ConversationHandler) receiverRule() validate.Rule {
	return func(ctx context.Context, _ *validate.Request, _ string, value any) error {
		id, ok := value.(string)
		if !ok {
			return apperror.NotFound(message.InvalidUserID)
		}
		if _, err := bson.ObjectIDFromHex(id); err != nil {
			return apperror.NotFound(message.InvalidUserID)
		}

		user, err := h.userRepo.GetUser(ctx, id)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return apperror.NotFound(message.UserNotFound)
			}

			return apperror.New(http.StatusInternalServerError, message.InternalError)
		}

		if user.Verify == auth.Banned {
			return apperror.NotFound(message.UserNotFound)
		}

		return nil
	}
}

// boundedUintRule validates a numeric query-string value within [min, max].
func boundedUintRule(min, max uint64, msg string) validate.Rule {
	return func(_ context.Context, _ *validate.Request, _ string, value any) error {
		raw, ok := value.(string)
		if !ok {
			return errors.New(msg)
		}

		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || n < min || n > max {
			return errors.New(msg)
		}

		return nil
	}
}
