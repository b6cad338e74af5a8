package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/twitter-api/internal/model"
)

// ConversationRepository stores private messages between pairs of users.
type ConversationRepository interface {
	CreateConversation(ctx context.Context, conversation *model.Conversation) (*model.Conversation, error)
	ListConversations(ctx context.Context, params ListConversationsParams) ([]*model.Conversation, error)
}

// ListConversationsParams defines the parameters for paginating the message
// history between two users, newest first.
type ListConversationsParams struct {
	SenderID   string
	ReceiverID string
	Limit      uint64
	Page       uint64
}

const conversationCollection = "conversations"

type conversationMongoRepository struct {
	db *mongo.Database
}

func NewConversationMongoRepository(db *mongo.Database) ConversationRepository {
	return &conversationMongoRepository{db: db}
}

func (r *conversationMongoRepository) CreateConversation(
	ctx context.Context,
	conversation *model.Conversation,
) (*model.Conversation, error) {
	now := time.Now()
	conversation.CreatedAt = now
	conversation.UpdatedAt = now

	result, err := r.db.Collection(conversationCollection).InsertOne(ctx, conversation)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		conversation.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return conversation, nil
}

func (r *conversationMongoRepository) ListConversations(
	ctx context.Context,
	params ListConversationsParams,
) ([]*model.Conversation, error) {
	senderObjectID, err := bson.ObjectIDFromHex(params.SenderID)
	if err != nil {
		return nil, err
	}

	receiverObjectID, err := bson.ObjectIDFromHex(params.ReceiverID)
	if err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit == 0 {
		limit = 20
	}

	page := params.Page
	if page == 0 {
		page = 1
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	filter := bson.M{
		"$or": []bson.M{
			{"sender_id": senderObjectID, "receiver_id": receiverObjectID},
			{"sender_id": receiverObjectID, "receiver_id": senderObjectID},
		},
	}

	cursor, err := r.db.Collection(conversationCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var conversations []*model.Conversation
	for cursor.Next(ctx) {
		var conversation model.Conversation
		if err := cursor.Decode(&conversation); err != nil {
			return nil, err
		}
		conversations = append(conversations, &conversation)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return conversations, nil
}
