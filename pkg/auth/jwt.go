package auth

import (
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the payload carried by every token the service issues.
type TokenClaims struct {
	UserID    string           `json:"user_id"`
	Verify    UserVerifyStatus `json:"verify"`
	TokenType TokenType        `json:"token_type"`
	jwt.RegisteredClaims
}

// KindSecret holds the signing secret and lifetime for one token kind.
type KindSecret struct {
	Secret    string
	ExpiresIn time.Duration
}

var (
	ErrWrongTokenType = errors.New("token type mismatch")
	ErrUnknownKind    = errors.New("unknown token kind")
)

// JWTAuthenticator signs and verifies HS256 tokens. Each token kind has its
// own secret and expiry horizon, and the kind itself is part of the signed
// claims.
type JWTAuthenticator struct {
	issuer   string
	audience string
	kinds    map[TokenType]KindSecret
}

// NewJWTAuthenticator creates a new JWTAuthenticator instance.
func NewJWTAuthenticator(issuer, audience string, kinds map[TokenType]KindSecret) *JWTAuthenticator {
	return &JWTAuthenticator{
		issuer:   issuer,
		audience: audience,
		kinds:    kinds,
	}
}

// Sign mints a token of the given kind for a user.
func (a *JWTAuthenticator) Sign(userID string, verify UserVerifyStatus, kind TokenType) (string, error) {
	ks, ok := a.kinds[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	now := time.Now()
	claims := TokenClaims{
		UserID:    userID,
		Verify:    verify,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    a.issuer,
			Audience:  jwt.ClaimStrings{a.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ks.ExpiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(ks.Secret))
}

// Verify parses a token and checks it against the secret of the expected
// kind. A signature-valid token whose embedded kind differs from the expected
// one fails with ErrWrongTokenType. Expiry failures keep their jwt error
// identity so callers can tell them apart from tampering.
func (a *JWTAuthenticator) Verify(tokenStr string, kind TokenType) (*TokenClaims, error) {
	ks, ok := a.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(ks.Secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(a.issuer),
		jwt.WithAudience(a.audience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	if claims.TokenType != kind {
		return nil, ErrWrongTokenType
	}

	return claims, nil
}

// ErrorMessage renders a token verification error as the user-facing message
// for a 401 response, capitalized the way clients expect.
func ErrorMessage(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}

	runes := []rune(msg)
	runes[0] = unicode.ToUpper(runes[0])

	return string(runes)
}

// IsExpired reports whether verification failed only because the token's
// lifetime ran out.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
