package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthenticator() *JWTAuthenticator {
	return NewJWTAuthenticator("twitter-api", "twitter-api", map[TokenType]KindSecret{
		AccessToken:         {Secret: "access-secret", ExpiresIn: time.Hour},
		RefreshToken:        {Secret: "refresh-secret", ExpiresIn: time.Hour},
		EmailVerifyToken:    {Secret: "verify-secret", ExpiresIn: time.Hour},
		ForgotPasswordToken: {Secret: "forgot-secret", ExpiresIn: time.Hour},
	})
}

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	a := testAuthenticator()

	token, err := a.Sign("user-1", Unverified, AccessToken)
	require.NoError(t, err)

	claims, err := a.Verify(token, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, Unverified, claims.Verify)
	assert.Equal(t, AccessToken, claims.TokenType)
}

func TestVerifyRejectsWrongKind(t *testing.T) {
	t.Parallel()

	a := testAuthenticator()

	token, err := a.Sign("user-1", Verified, RefreshToken)
	require.NoError(t, err)

	// Same shape, wrong secret for the expected kind.
	_, err = a.Verify(token, AccessToken)
	require.Error(t, err)
}

func TestVerifyRejectsEmbeddedKindMismatch(t *testing.T) {
	t.Parallel()

	// Two kinds sharing one secret: the signature check passes, so only
	// the kind claim can tell them apart.
	a := NewJWTAuthenticator("twitter-api", "twitter-api", map[TokenType]KindSecret{
		AccessToken:  {Secret: "shared", ExpiresIn: time.Hour},
		RefreshToken: {Secret: "shared", ExpiresIn: time.Hour},
	})

	token, err := a.Sign("user-1", Verified, RefreshToken)
	require.NoError(t, err)

	_, err = a.Verify(token, AccessToken)
	require.ErrorIs(t, err, ErrWrongTokenType)
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	a := NewJWTAuthenticator("twitter-api", "twitter-api", map[TokenType]KindSecret{
		AccessToken: {Secret: "secret", ExpiresIn: -time.Minute},
	})

	token, err := a.Sign("user-1", Verified, AccessToken)
	require.NoError(t, err)

	_, err = a.Verify(token, AccessToken)
	require.Error(t, err)
	assert.True(t, IsExpired(err))
}

func TestVerifyRejectsTampered(t *testing.T) {
	t.Parallel()

	a := testAuthenticator()

	token, err := a.Sign("user-1", Verified, AccessToken)
	require.NoError(t, err)

	_, err = a.Verify(token+"x", AccessToken)
	require.Error(t, err)
	assert.False(t, IsExpired(err))
}

func TestVerifyRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	a := NewJWTAuthenticator("twitter-api", "twitter-api", nil)

	_, err := a.Sign("user-1", Verified, AccessToken)
	require.ErrorIs(t, err, ErrUnknownKind)

	_, err = a.Verify("whatever", AccessToken)
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestErrorMessageCapitalizes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Token is expired", ErrorMessage(jwt.ErrTokenExpired))
	assert.Equal(t, "", ErrorMessage(errEmpty{}))
}

type errEmpty struct{}

func (errEmpty) Error() string { return "" }
