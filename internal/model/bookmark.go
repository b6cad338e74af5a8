package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Bookmark marks one tweet as bookmarked by one user.
type Bookmark struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    bson.ObjectID `bson:"user_id"       json:"user_id"`
	TweetID   bson.ObjectID `bson:"tweet_id"      json:"tweet_id"`
	CreatedAt time.Time     `bson:"created_at"    json:"created_at"`
}
