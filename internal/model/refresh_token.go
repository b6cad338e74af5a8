package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// RefreshToken represents one outstanding refresh token. A document exists if
// and only if the token is currently redeemable; deleting it is the sole
// revocation mechanism.
type RefreshToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    bson.ObjectID `bson:"user_id"       json:"user_id"`
	Token     string        `bson:"token"         json:"token"`
	CreatedAt time.Time     `bson:"created_at"    json:"created_at"`
}
