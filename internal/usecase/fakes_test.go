package usecase

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/twitter-api/internal/model"
	"github.com/vasapolrittideah/twitter-api/internal/repository"
	"github.com/vasapolrittideah/twitter-api/pkg/auth"
)

// duplicateKeyErr mimics the server response to a unique-index violation.
var duplicateKeyErr = mongo.WriteException{
	WriteErrors: []mongo.WriteError{{Code: 11000}},
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.users {
		if existing.Email == user.Email {
			return nil, duplicateKeyErr
		}
	}

	user.ID = bson.NewObjectID()
	user.Verify = auth.Unverified
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	f.users[user.ID.Hex()] = user

	return user, nil
}

func (f *fakeUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	copied := *user

	return &copied, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) UpdateUser(
	_ context.Context,
	id string,
	params repository.UpdateUserParams,
) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.DateOfBirth != nil {
		user.DateOfBirth = *params.DateOfBirth
	}
	if params.Bio != nil {
		user.Bio = *params.Bio
	}
	if params.Location != nil {
		user.Location = *params.Location
	}
	if params.Website != nil {
		user.Website = *params.Website
	}
	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.Avatar != nil {
		user.Avatar = *params.Avatar
	}
	if params.CoverPhoto != nil {
		user.CoverPhoto = *params.CoverPhoto
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
	}

	user.UpdatedAt = time.Now()
	copied := *user

	return &copied, nil
}

func (f *fakeUserRepo) SetEmailVerifyToken(_ context.Context, id, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}

	user.EmailVerifyToken = token

	return nil
}

func (f *fakeUserRepo) MarkVerified(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}

	user.EmailVerifyToken = ""
	user.Verify = auth.Verified

	return nil
}

func (f *fakeUserRepo) SetForgotPasswordToken(_ context.Context, id, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}

	user.ForgotPasswordToken = token

	return nil
}

func (f *fakeUserRepo) ResetPassword(_ context.Context, id, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}

	user.PasswordHash = passwordHash
	user.ForgotPasswordToken = ""

	return nil
}

type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*model.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: map[string]*model.RefreshToken{}}
}

func (f *fakeRefreshTokenRepo) CreateRefreshToken(
	_ context.Context,
	token *model.RefreshToken,
) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.tokens[token.Token]; exists {
		return nil, duplicateKeyErr
	}

	token.ID = bson.NewObjectID()
	f.tokens[token.Token] = token

	return token, nil
}

func (f *fakeRefreshTokenRepo) GetRefreshToken(_ context.Context, token string) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.tokens[token]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	return stored, nil
}

func (f *fakeRefreshTokenRepo) DeleteRefreshToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.tokens, token)

	return nil
}

func (f *fakeRefreshTokenRepo) DeleteRefreshTokensByUserID(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var deleted int64
	for key, token := range f.tokens {
		if token.UserID.Hex() == userID {
			delete(f.tokens, key)
			deleted++
		}
	}

	return deleted, nil
}

func (f *fakeRefreshTokenRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.tokens)
}

func (f *fakeRefreshTokenRepo) has(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.tokens[token]

	return ok
}

type fakeFollowerRepo struct {
	mu    sync.Mutex
	edges map[string]*model.Follower
}

func newFakeFollowerRepo() *fakeFollowerRepo {
	return &fakeFollowerRepo{edges: map[string]*model.Follower{}}
}

func edgeKey(userID, followedUserID string) string {
	return userID + "/" + followedUserID
}

func (f *fakeFollowerRepo) CreateFollower(_ context.Context, follower *model.Follower) (*model.Follower, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := edgeKey(follower.UserID.Hex(), follower.FollowedUserID.Hex())
	if _, exists := f.edges[key]; exists {
		return nil, duplicateKeyErr
	}

	follower.ID = bson.NewObjectID()
	f.edges[key] = follower

	return follower, nil
}

func (f *fakeFollowerRepo) GetFollower(_ context.Context, userID, followedUserID string) (*model.Follower, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	edge, ok := f.edges[edgeKey(userID, followedUserID)]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	return edge, nil
}

func (f *fakeFollowerRepo) DeleteFollower(_ context.Context, userID, followedUserID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := edgeKey(userID, followedUserID)
	if _, ok := f.edges[key]; !ok {
		return 0, nil
	}

	delete(f.edges, key)

	return 1, nil
}

type recordingMailer struct {
	mu    sync.Mutex
	sends []string
}

func (m *recordingMailer) SendVerifyEmail(email, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sends = append(m.sends, "verify:"+email)

	return nil
}

func (m *recordingMailer) SendForgotPasswordEmail(email, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sends = append(m.sends, "forgot:"+email)

	return nil
}

func (m *recordingMailer) sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.sends...)
}
