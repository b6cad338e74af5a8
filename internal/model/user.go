package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/twitter-api/pkg/auth"
)

// User represents one account. The email-verify and forgot-password tokens
// are stored on the document itself: a one-time token is valid only while it
// matches the stored value and is cleared on successful consumption.
type User struct {
	ID                  bson.ObjectID         `bson:"_id,omitempty"         json:"_id"`
	Name                string                `bson:"name"                  json:"name"`
	Email               string                `bson:"email"                 json:"email"`
	DateOfBirth         time.Time             `bson:"date_of_birth"         json:"date_of_birth"`
	PasswordHash        string                `bson:"password_hash"         json:"-"`
	Verify              auth.UserVerifyStatus `bson:"verify"                json:"verify"`
	EmailVerifyToken    string                `bson:"email_verify_token"    json:"-"`
	ForgotPasswordToken string                `bson:"forgot_password_token" json:"-"`
	Bio                 string                `bson:"bio"                   json:"bio"`
	Location            string                `bson:"location"              json:"location"`
	Website             string                `bson:"website"               json:"website"`
	Username            string                `bson:"username"              json:"username"`
	Avatar              string                `bson:"avatar"                json:"avatar"`
	CoverPhoto          string                `bson:"cover_photo"           json:"cover_photo"`
	TwitterCircle       []bson.ObjectID       `bson:"twitter_circle"        json:"twitter_circle"`
	CreatedAt           time.Time             `bson:"created_at"            json:"created_at"`
	UpdatedAt           time.Time             `bson:"updated_at"            json:"updated_at"`
}

// InCircle reports whether the given user id belongs to this user's circle.
func (u *User) InCircle(id bson.ObjectID) bool {
	for _, member := range u.TwitterCircle {
		if member == id {
			return true
		}
	}

	return false
}
