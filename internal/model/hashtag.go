package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Hashtag is one hashtag document, created lazily the first time a tweet
// uses it.
type Hashtag struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string        `bson:"name"          json:"name"`
	CreatedAt time.Time     `bson:"created_at"    json:"created_at"`
}
