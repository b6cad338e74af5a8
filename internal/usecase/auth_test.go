package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/twitter-api/internal/model"
	"github.com/vasapolrittideah/twitter-api/pkg/auth"
	"github.com/vasapolrittideah/twitter-api/pkg/security"
)

type authFixture struct {
	usecase     AuthUsecase
	userRepo    *fakeUserRepo
	refreshRepo *fakeRefreshTokenRepo
	mailer      *recordingMailer
	jwtAuth     *auth.JWTAuthenticator
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	userRepo := newFakeUserRepo()
	refreshRepo := newFakeRefreshTokenRepo()
	mail := &recordingMailer{}
	logger := zerolog.Nop()

	jwtAuth := auth.NewJWTAuthenticator("twitter-api", "twitter-api", map[auth.TokenType]auth.KindSecret{
		auth.AccessToken:         {Secret: "access", ExpiresIn: time.Hour},
		auth.RefreshToken:        {Secret: "refresh", ExpiresIn: time.Hour},
		auth.EmailVerifyToken:    {Secret: "verify", ExpiresIn: time.Hour},
		auth.ForgotPasswordToken: {Secret: "forgot", ExpiresIn: time.Hour},
	})

	return &authFixture{
		usecase:     NewAuthUsecase(userRepo, refreshRepo, jwtAuth, mail, &logger),
		userRepo:    userRepo,
		refreshRepo: refreshRepo,
		mailer:      mail,
		jwtAuth:     jwtAuth,
	}
}

func (f *authFixture) register(t *testing.T, email string) (*RegisterResult, *model.User) {
	t.Helper()

	result, err := f.usecase.Register(context.Background(), RegisterParams{
		Name:        "Alice Example",
		Email:       email,
		Password:    "S3cret!pass",
		DateOfBirth: time.Date(2000, time.January, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	user, err := f.userRepo.GetUserByEmail(context.Background(), email)
	require.NoError(t, err)

	return result, user
}

func TestRegister(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)

	result, user := f.register(t, "alice@example.com")

	assert.Equal(t, auth.Unverified, user.Verify)
	assert.Equal(t, result.EmailVerifyToken, user.EmailVerifyToken)

	ok, err := security.VerifyPassword("S3cret!pass", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	claims, err := f.jwtAuth.Verify(result.AccessToken, auth.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, auth.Unverified, claims.Verify)

	assert.True(t, f.refreshRepo.has(result.RefreshToken))

	require.Eventually(t, func() bool {
		return len(f.mailer.sent()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "verify:alice@example.com", f.mailer.sent()[0])
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.register(t, "alice@example.com")

	_, err := f.usecase.Register(context.Background(), RegisterParams{
		Name:        "Alice Again",
		Email:       "alice@example.com",
		Password:    "S3cret!pass",
		DateOfBirth: time.Date(2000, time.January, 2, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestRefreshTokenRotationInvalidatesOldToken(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	result, user := f.register(t, "alice@example.com")

	claims, err := f.jwtAuth.Verify(result.RefreshToken, auth.RefreshToken)
	require.NoError(t, err)

	pair, err := f.usecase.RefreshToken(context.Background(), result.RefreshToken, claims)
	require.NoError(t, err)

	assert.NotEqual(t, result.RefreshToken, pair.RefreshToken)
	assert.False(t, f.refreshRepo.has(result.RefreshToken))
	assert.True(t, f.refreshRepo.has(pair.RefreshToken))
	assert.Equal(t, 1, f.refreshRepo.count())

	newClaims, err := f.jwtAuth.Verify(pair.RefreshToken, auth.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), newClaims.UserID)
}

func TestLogoutIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	result, _ := f.register(t, "alice@example.com")

	require.NoError(t, f.usecase.Logout(context.Background(), result.RefreshToken))
	assert.False(t, f.refreshRepo.has(result.RefreshToken))

	// Replaying the same logout is fine.
	require.NoError(t, f.usecase.Logout(context.Background(), result.RefreshToken))
}

func TestVerifyEmail(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	_, user := f.register(t, "alice@example.com")

	pair, err := f.usecase.VerifyEmail(context.Background(), user.ID.Hex())
	require.NoError(t, err)

	verified, err := f.userRepo.GetUser(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, auth.Verified, verified.Verify)
	assert.Empty(t, verified.EmailVerifyToken)

	// The fresh pair already carries the verified status.
	claims, err := f.jwtAuth.Verify(pair.AccessToken, auth.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.Verified, claims.Verify)
}

func TestResendVerifyEmailReplacesToken(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	result, user := f.register(t, "alice@example.com")

	// Sign-time resolution is one second; make sure the new token differs.
	time.Sleep(1100 * time.Millisecond)

	require.NoError(t, f.usecase.ResendVerifyEmail(context.Background(), user.ID.Hex(), user.Email))

	updated, err := f.userRepo.GetUser(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.NotEmpty(t, updated.EmailVerifyToken)
	assert.NotEqual(t, result.EmailVerifyToken, updated.EmailVerifyToken)
}

func TestForgotPasswordThenReset(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	_, user := f.register(t, "alice@example.com")

	err := f.usecase.ForgotPassword(context.Background(), user.ID.Hex(), user.Verify, user.Email)
	require.NoError(t, err)

	withToken, err := f.userRepo.GetUser(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	require.NotEmpty(t, withToken.ForgotPasswordToken)

	require.NoError(t, f.usecase.ResetPassword(context.Background(), user.ID.Hex(), "N3w!password"))

	reset, err := f.userRepo.GetUser(context.Background(), user.ID.Hex())
	require.NoError(t, err)

	// Consuming the reset clears the one-time token.
	assert.Empty(t, reset.ForgotPasswordToken)

	ok, err := security.VerifyPassword("N3w!password", reset.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = security.VerifyPassword("S3cret!pass", reset.PasswordHash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	_, user := f.register(t, "alice@example.com")

	require.NoError(t, f.usecase.ChangePassword(context.Background(), user.ID.Hex(), "N3w!password"))

	updated, err := f.userRepo.GetUser(context.Background(), user.ID.Hex())
	require.NoError(t, err)

	ok, err := security.VerifyPassword("N3w!password", updated.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}
