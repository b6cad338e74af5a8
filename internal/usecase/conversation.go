package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/twitter-api/internal/model"
	"github.com/vasapolrittideah/twitter-api/internal/notifier"
	"github.com/vasapolrittideah/twitter-api/internal/registry"
	"github.com/vasapolrittideah/twitter-api/internal/repository"
)

// ConversationUsecase covers the private-messaging layer: message history
// and sending a message onto the push channel.
type ConversationUsecase interface {
	GetConversations(ctx context.Context, params GetConversationsParams) ([]*model.Conversation, error)
	SendMessage(ctx context.Context, senderID, receiverID, content string) (*model.Conversation, error)
}

// GetConversationsParams defines the parameters for paging through the
// history between two users.
type GetConversationsParams struct {
	SenderID   string
	ReceiverID string
	Limit      uint64
	Page       uint64
}

type conversationUsecase struct {
	conversationRepo repository.ConversationRepository
	sessions         registry.SessionRegistry
	notifier         notifier.Notifier
	logger           *zerolog.Logger
}

func NewConversationUsecase(
	conversationRepo repository.ConversationRepository,
	sessions registry.SessionRegistry,
	notifier notifier.Notifier,
	logger *zerolog.Logger,
) ConversationUsecase {
	return &conversationUsecase{
		conversationRepo: conversationRepo,
		sessions:         sessions,
		notifier:         notifier,
		logger:           logger,
	}
}

func (u *conversationUsecase) GetConversations(
	ctx context.Context,
	params GetConversationsParams,
) ([]*model.Conversation, error) {
	return u.conversationRepo.ListConversations(ctx, repository.ListConversationsParams{
		SenderID:   params.SenderID,
		ReceiverID: params.ReceiverID,
		Limit:      params.Limit,
		Page:       params.Page,
	})
}

// SendMessage persists the message, then pushes an event onto the
// notification channel. The push is best-effort: a publish failure is
// logged and does not fail the send, the message is already stored.
func (u *conversationUsecase) SendMessage(
	ctx context.Context,
	senderID, receiverID, content string,
) (*model.Conversation, error) {
	senderObjectID, err := bson.ObjectIDFromHex(senderID)
	if err != nil {
		return nil, err
	}

	receiverObjectID, err := bson.ObjectIDFromHex(receiverID)
	if err != nil {
		return nil, err
	}

	conversation, err := u.conversationRepo.CreateConversation(ctx, &model.Conversation{
		SenderID:   senderObjectID,
		ReceiverID: receiverObjectID,
		Content:    content,
	})
	if err != nil {
		return nil, err
	}

	handle, err := u.sessions.Lookup(ctx, receiverID)
	if err != nil && !errors.Is(err, registry.ErrNotRegistered) {
		u.logger.Error().Err(err).Msg("failed to look up receiver session")
	}

	if err := u.notifier.Publish(ctx, notifier.MessageEvent{
		ConversationID: conversation.ID.Hex(),
		SenderID:       senderID,
		ReceiverID:     receiverID,
		ReceiverHandle: handle,
		Content:        content,
		SentAt:         conversation.CreatedAt,
	}); err != nil {
		u.logger.Error().Err(err).Msg("failed to publish message event")
	}

	return conversation, nil
}
