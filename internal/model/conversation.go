package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Conversation is one private message between two users.
type Conversation struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	SenderID   bson.ObjectID `bson:"sender_id"     json:"sender_id"`
	ReceiverID bson.ObjectID `bson:"receiver_id"   json:"receiver_id"`
	Content    string        `bson:"content"       json:"content"`
	CreatedAt  time.Time     `bson:"created_at"    json:"created_at"`
	UpdatedAt  time.Time     `bson:"updated_at"    json:"updated_at"`
}
