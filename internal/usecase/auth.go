package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/vasapolrittideah/twitter-api/internal/model"
	"github.com/vasapolrittideah/twitter-api/internal/repository"
	"github.com/vasapolrittideah/twitter-api/pkg/auth"
	"github.com/vasapolrittideah/twitter-api/pkg/mailer"
	"github.com/vasapolrittideah/twitter-api/pkg/security"
)

// AuthUsecase orchestrates the token lifecycle: issuance pairs, rotation,
// logout invalidation and the verification-state transitions. It never
// re-checks credentials; authentication happens in the validation pipeline
// and this layer only issues.
type AuthUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*RegisterResult, error)
	Login(ctx context.Context, userID string, verify auth.UserVerifyStatus) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, oldToken string, claims *auth.TokenClaims) (*TokenPair, error)
	VerifyEmail(ctx context.Context, userID string) (*TokenPair, error)
	ResendVerifyEmail(ctx context.Context, userID, email string) error
	ForgotPassword(ctx context.Context, userID string, verify auth.UserVerifyStatus, email string) error
	ResetPassword(ctx context.Context, userID, newPassword string) error
	ChangePassword(ctx context.Context, userID, newPassword string) error
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Name        string
	Email       string
	Password    string
	DateOfBirth time.Time
}

// RegisterResult carries the three tokens minted at registration.
type RegisterResult struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	EmailVerifyToken string `json:"email_verify_token"`
}

// TokenPair is one freshly minted access/refresh pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
)

type authUsecase struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtAuth          *auth.JWTAuthenticator
	mailer           mailer.Sender
	logger           *zerolog.Logger
}

func NewAuthUsecase(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	jwtAuth *auth.JWTAuthenticator,
	mailer mailer.Sender,
	logger *zerolog.Logger,
) AuthUsecase {
	return &authUsecase{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtAuth:          jwtAuth,
		mailer:           mailer,
		logger:           logger,
	}
}

// Register creates the account in Unverified state, mints all three tokens,
// persists the refresh record and the email-verify token, and dispatches the
// verification email. The email-uniqueness check before insert is a
// check-then-act race tolerated by this design; the unique index on the
// email field backstops it.
func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*RegisterResult, error) {
	if _, err := u.userRepo.GetUserByEmail(ctx, params.Email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Name:         params.Name,
		Email:        params.Email,
		DateOfBirth:  params.DateOfBirth,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailAlreadyExists
		}

		return nil, err
	}

	userID := user.ID.Hex()

	pair, err := u.issuePair(ctx, userID, auth.Unverified)
	if err != nil {
		return nil, err
	}

	emailVerifyToken, err := u.jwtAuth.Sign(userID, auth.Unverified, auth.EmailVerifyToken)
	if err != nil {
		return nil, err
	}

	if err := u.userRepo.SetEmailVerifyToken(ctx, userID, emailVerifyToken); err != nil {
		return nil, err
	}

	u.dispatch(func() error {
		return u.mailer.SendVerifyEmail(params.Email, emailVerifyToken)
	})

	return &RegisterResult{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		EmailVerifyToken: emailVerifyToken,
	}, nil
}

// Login mints a pair and persists the refresh record. Credentials were
// already authenticated by the login validation schema.
func (u *authUsecase) Login(ctx context.Context, userID string, verify auth.UserVerifyStatus) (*TokenPair, error) {
	return u.issuePair(ctx, userID, verify)
}

// Logout deletes the matching refresh record. Deleting a token that no
// longer exists is not an error, so a second logout with the same token
// succeeds too.
func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	return u.refreshTokenRepo.DeleteRefreshToken(ctx, refreshToken)
}

// RefreshToken rotates a refresh token: the new pair is inserted before the
// old record is deleted. If the process dies between the two steps the old
// token stays redeemable for one extra window, which is the safer failure
// than locking the user out with neither token valid.
func (u *authUsecase) RefreshToken(
	ctx context.Context,
	oldToken string,
	claims *auth.TokenClaims,
) (*TokenPair, error) {
	pair, err := u.issuePair(ctx, claims.UserID, claims.Verify)
	if err != nil {
		return nil, err
	}

	if err := u.refreshTokenRepo.DeleteRefreshToken(ctx, oldToken); err != nil {
		return nil, err
	}

	return pair, nil
}

// VerifyEmail clears the email-verify token and advances the account to
// Verified in one atomic document update, minting the fresh pair
// concurrently. The caller has already short-circuited the already-verified
// case.
func (u *authUsecase) VerifyEmail(ctx context.Context, userID string) (*TokenPair, error) {
	var pair *TokenPair

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		pair, err = u.issuePair(gctx, userID, auth.Verified)
		return err
	})

	g.Go(func() error {
		return u.userRepo.MarkVerified(gctx, userID)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return pair, nil
}

// ResendVerifyEmail mints a new email-verify token. Only the latest stored
// value is ever compared, so re-issuing invalidates the previous one.
func (u *authUsecase) ResendVerifyEmail(ctx context.Context, userID, email string) error {
	token, err := u.jwtAuth.Sign(userID, auth.Unverified, auth.EmailVerifyToken)
	if err != nil {
		return err
	}

	if err := u.userRepo.SetEmailVerifyToken(ctx, userID, token); err != nil {
		return err
	}

	u.dispatch(func() error {
		return u.mailer.SendVerifyEmail(email, token)
	})

	return nil
}

// ForgotPassword mints a forgot-password token, persists it on the record
// and dispatches the reset email.
func (u *authUsecase) ForgotPassword(
	ctx context.Context,
	userID string,
	verify auth.UserVerifyStatus,
	email string,
) error {
	token, err := u.jwtAuth.Sign(userID, verify, auth.ForgotPasswordToken)
	if err != nil {
		return err
	}

	if err := u.userRepo.SetForgotPasswordToken(ctx, userID, token); err != nil {
		return err
	}

	u.dispatch(func() error {
		return u.mailer.SendForgotPasswordEmail(email, token)
	})

	return nil
}

// ResetPassword sets the new password hash and clears the forgot-password
// token in one update. It is reachable only after the validation pipeline
// matched the supplied token against the stored value, so a superseded
// token cannot replay here.
func (u *authUsecase) ResetPassword(ctx context.Context, userID, newPassword string) error {
	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return u.userRepo.ResetPassword(ctx, userID, passwordHash)
}

// ChangePassword sets a new password hash. The old-password check happened
// in the validation pipeline.
func (u *authUsecase) ChangePassword(ctx context.Context, userID, newPassword string) error {
	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	_, err = u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	})

	return err
}

// issuePair mints an access/refresh pair and persists the refresh record.
func (u *authUsecase) issuePair(
	ctx context.Context,
	userID string,
	verify auth.UserVerifyStatus,
) (*TokenPair, error) {
	accessToken, err := u.jwtAuth.Sign(userID, verify, auth.AccessToken)
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.jwtAuth.Sign(userID, verify, auth.RefreshToken)
	if err != nil {
		return nil, err
	}

	objectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	if _, err := u.refreshTokenRepo.CreateRefreshToken(ctx, &model.RefreshToken{
		UserID: objectID,
		Token:  refreshToken,
	}); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// dispatch runs an email send without blocking the happy-path response.
// Failures are logged, not retried.
func (u *authUsecase) dispatch(send func() error) {
	go func() {
		if err := send(); err != nil {
			u.logger.Error().Err(err).Msg("failed to send email")
		}
	}()
}
