package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Follower is one directed follow edge.
type Follower struct {
	ID             bson.ObjectID `bson:"_id,omitempty"    json:"_id"`
	UserID         bson.ObjectID `bson:"user_id"          json:"user_id"`
	FollowedUserID bson.ObjectID `bson:"followed_user_id" json:"followed_user_id"`
	CreatedAt      time.Time     `bson:"created_at"       json:"created_at"`
}
