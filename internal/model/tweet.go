package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// TweetType tells a plain tweet apart from the derived kinds.
type TweetType int

const (
	NormalTweet TweetType = iota
	Retweet
	Comment
	QuoteTweet
)

// ValidTweetType reports whether t is a known tweet type.
func ValidTweetType(t TweetType) bool {
	return t >= NormalTweet && t <= QuoteTweet
}

// TweetAudience controls who can see a tweet.
type TweetAudience int

const (
	Everyone TweetAudience = iota
	TwitterCircle
)

// ValidTweetAudience reports whether a is a known audience.
func ValidTweetAudience(a TweetAudience) bool {
	return a == Everyone || a == TwitterCircle
}

// MediaType distinguishes attached media.
type MediaType int

const (
	Image MediaType = iota
	Video
)

// Media is one attachment on a tweet.
type Media struct {
	URL  string    `bson:"url"  json:"url"`
	Type MediaType `bson:"type" json:"type"`
}

// Tweet is one tweet document. Hashtags and mentions are stored resolved, as
// ids into the hashtags and users collections.
type Tweet struct {
	ID         bson.ObjectID   `bson:"_id,omitempty" json:"_id"`
	UserID     bson.ObjectID   `bson:"user_id"       json:"user_id"`
	Type       TweetType       `bson:"type"          json:"type"`
	Audience   TweetAudience   `bson:"audience"      json:"audience"`
	Content    string          `bson:"content"       json:"content"`
	ParentID   *bson.ObjectID  `bson:"parent_id"     json:"parent_id"`
	Hashtags   []bson.ObjectID `bson:"hashtags"      json:"hashtags"`
	Mentions   []bson.ObjectID `bson:"mentions"      json:"mentions"`
	Medias     []Media         `bson:"medias"        json:"medias"`
	GuestViews int64           `bson:"guest_views"   json:"guest_views"`
	UserViews  int64           `bson:"user_views"    json:"user_views"`
	CreatedAt  time.Time       `bson:"created_at"    json:"created_at"`
	UpdatedAt  time.Time       `bson:"updated_at"    json:"updated_at"`
}
