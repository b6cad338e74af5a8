package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/twitter-api/internal/message"
	"github.com/vasapolrittideah/twitter-api/internal/middleware"
	"github.com/vasapolrittideah/twitter-api/internal/validate"
	"github.com/vasapolrittideah/twitter-api/pkg/apperror"
	"github.com/vasapolrittideah/twitter-api/pkg/auth"
	"github.com/vasapolrittideah/twitter-api/pkg/security"
)

// Usernames are 4-15 word characters. The all-digit form is rejected
// separately because it would collide with numeric ids.
var (
	usernameRegexp   = regexp.MustCompile(`^[A-Za-z0-9_]{4,15}$`)
	digitsOnlyRegexp = regexp.MustCompile(`^[0-9]+$`)
)

func passwordRules() []validate.Rule {
	return []validate.Rule{
		validate.NotEmpty(message.PasswordIsRequired),
		validate.Length(6, 50, message.PasswordLength),
		validate.StrongPassword(message.PasswordMustBeStrong),
	}
}

func confirmPasswordRules(mustMatch string) []validate.Rule {
	return []validate.Rule{
		validate.NotEmpty(message.PasswordIsRequired),
		validate.Length(6, 50, message.PasswordLength),
		validate.StrongPassword(message.PasswordMustBeStrong),
		validate.MatchesField(mustMatch, message.ConfirmPasswordMatch),
	}
}

func nameRules() []validate.Rule {
	return []validate.Rule{
		validate.NotEmpty(message.NameIsRequired),
		validate.IsString(message.NameMustBeString),
		validate.Length(5, 100, message.NameLength),
	}
}

func (h *UserHandler) registerSchema() validate.Schema {
	return validate.Schema{
		validate.Body("name", nameRules()...),
		validate.Body("email",
			validate.NotEmpty(message.EmailIsRequired),
			validate.Email(message.EmailIsInvalid),
			h.emailNotTakenRule(),
		),
		validate.Body("password", passwordRules()...),
		validate.Body("confirm_password", confirmPasswordRules("password")...),
		validate.Body("date_of_birth", validate.ISO8601(message.DateOfBirthMustBeISO)),
	}
}

// emailNotTakenRule rejects registration with an email that already has an
// account. This is a check-then-act race by design; the unique index on
// email is the backstop.
func (h *UserHandler) emailNotTakenRule() validate.Rule {
	return func(ctx context.Context, _ *validate.Request, _ string, value any) error {
		email, _ := value.(string)

		_, err := h.userRepo.GetUserByEmail(ctx, email)
		if err == nil {
			return errors.New(message.EmailAlreadyExists)
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return apperror.New(http.StatusInternalServerError, message.InternalError)
		}

		return nil
	}
}

func (h *UserHandler) loginSchema() validate.Schema {
	return validate.Schema{
		validate.Body("email",
			validate.NotEmpty(message.EmailIsRequired),
			validate.Email(message.EmailIsInvalid),
			h.credentialsRule(),
		),
		validate.Body("password", passwordRules()...),
	}
}

// credentialsRule authenticates email+password and stashes the matched
// user for the handler. An unknown email and a wrong password produce the
// same message, so the response does not reveal whether the email exists.
func (h *UserHandler) credentialsRule() validate.Rule {
	return func(ctx context.Context, r *validate.Request, _ string, value any) error {
		email, _ := value.(string)

		user, err := h.userRepo.GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return errors.New(message.EmailOrPasswordWrong)
			}

			return apperror.New(http.StatusInternalServerError, message.InternalError)
		}

		ok, err := security.VerifyPassword(r.BodyString("password"), user.PasswordHash)
		if err != nil || !ok {
			return errors.New(message.EmailOrPasswordWrong)
		}

		r.Set(stashUser, user)

		return nil
	}
}

func (h *UserHandler) refreshTokenSchema() validate.Schema {
	return validate.Schema{
		validate.Body("refresh_token",
			validate.NotEmpty(message.RefreshTokenRequired),
			h.refreshTokenRule(),
		),
	}
}

// refreshTokenRule verifies the token signature and its presence in the
// token store concurrently. The store is authoritative: a store miss is
// UsedOrNonexistentToken no matter what the signature check said.
func (h *UserHandler) refreshTokenRule() validate.Rule {
	return func(ctx context.Context, r *validate.Request, _ string, value any) error {
		tokenStr, _ := value.(string)

		var (
			claims    *auth.TokenClaims
			verifyErr error
			storeErr  error
			wg        sync.WaitGroup
		)

		wg.Add(2)

		go func() {
			defer wg.Done()
			claims, verifyErr = h.jwtAuth.Verify(tokenStr, auth.RefreshToken)
		}()

		go func() {
			defer wg.Done()
			_, storeErr = h.refreshTokenRepo.GetRefreshToken(ctx, tokenStr)
		}()

		wg.Wait()

		if storeErr != nil {
			if errors.Is(storeErr, mongo.ErrNoDocuments) {
				return apperror.Unauthorized(message.UsedOrNonexistentToken)
			}

			return apperror.New(http.StatusInternalServerError, message.InternalError)
		}

		if verifyErr != nil {
			return apperror.Unauthorized(auth.ErrorMessage(verifyErr))
		}

		r.Set(stashRefreshTokenClaims, claims)

		return nil
	}
}

func (h *UserHandler) logoutSchema() validate.Schema {
	return validate.Schema{
		validate.Body("refresh_token",
			validate.NotEmpty(message.RefreshTokenRequired),
			h.logoutTokenRule(),
		),
	}
}

// logoutTokenRule checks only the token's signature and kind. The store is
// not consulted: a token already deleted by an earlier logout still passes,
// and the delete that follows is a no-op, so retrying logout succeeds.
func (h *UserHandler) logoutTokenRule() validate.Rule {
	return func(_ context.Context, _ *validate.Request, _ string, value any) error {
		tokenStr, _ := value.(string)

		if _, err := h.jwtAuth.Verify(tokenStr, auth.RefreshToken); err != nil {
			return apperror.Unauthorized(auth.ErrorMessage(err))
		}

		return nil
	}
}

func (h *UserHandler) emailVerifyTokenSchema() validate.Schema {
	return validate.Schema{
		validate.Body("email_verify_token",
			validate.NotEmpty(message.EmailVerifyTokenNeeded),
			h.emailVerifyTokenRule(),
		),
	}
}

func (h *UserHandler) emailVerifyTokenRule() validate.Rule {
	return func(_ context.Context, r *validate.Request, _ string, value any) error {
		tokenStr, _ := value.(string)

		claims, err := h.jwtAuth.Verify(tokenStr, auth.EmailVerifyToken)
		if err != nil {
			return apperror.Unauthorized(auth.ErrorMessage(err))
		}

		r.Set(stashEmailVerifyClaims, claims)

		return nil
	}
}

func (h *UserHandler) forgotPasswordSchema() validate.Schema {
	return validate.Schema{
		validate.Body("email",
			validate.NotEmpty(message.EmailIsRequired),
			validate.Email(message.EmailIsInvalid),
			h.knownEmailRule(),
		),
	}
}

func (h *UserHandler) knownEmailRule() validate.Rule {
	return func(ctx context.Context, r *validate.Request, _ string, value any) error {
		email, _ := value.(string)

		user, err := h.userRepo.GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return errors.New(message.UserNotFound)
			}

			return apperror.New(http.StatusInternalServerError, message.InternalError)
		}

		r.Set(stashUser, user)

		return nil
	}
}

func (h *UserHandler) verifyForgotPasswordSchema() validate.Schema {
	return validate.Schema{
		validate.Body("forgot_password_token", h.forgotPasswordTokenRule()),
	}
}

func (h *UserHandler) resetPasswordSchema() validate.Schema {
	return validate.Schema{
		validate.Body("password", passwordRules()...),
		validate.Body("confirm_password", confirmPasswordRules("password")...),
		validate.Body("forgot_password_token", h.forgotPasswordTokenRule()),
	}
}

// forgotPasswordTokenRule accepts only a token that both verifies and
// matches the value currently stored on the account. A token superseded by
// a newer reset request, or one already consumed, no longer matches and is
// rejected, which is what makes the reset single-use.
func (h *UserHandler) forgotPasswordTokenRule() validate.Rule {
	return func(ctx context.Context, r *validate.Request, _ string, value any) error {
		tokenStr, _ := value.(string)
		if tokenStr == "" {
			return apperror.Unauthorized(message.ForgotTokenRequired)
		}

		claims, err := h.jwtAuth.Verify(tokenStr, auth.ForgotPasswordToken)
		if err != nil {
			return apperror.Unauthorized(auth.ErrorMessage(err))
		}

		user, err := h.userRepo.GetUser(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return apperror.Unauthorized(message.UserNotFound)
			}

			return apperror.New(http.StatusInternalServerError, message.InternalError)
		}

		if user.ForgotPasswordToken != tokenStr {
			return apperror.Unauthorized(message.ForgotTokenInvalid)
		}

		r.Set(stashForgotPasswordClaim, claims)

		return nil
	}
}

func (h *UserHandler) changePasswordSchema() validate.Schema {
	oldPassword := append(passwordRules(), h.oldPasswordRule())

	return validate.Schema{
		validate.Body("old_password", oldPassword...),
		validate.Body("new_password", passwordRules()...),
		validate.Body("confirm_new_password", confirmPasswordRules("new_password")...),
	}
}

func (h *UserHandler) oldPasswordRule() validate.Rule {
	return func(ctx context.Context, _ *validate.Request, _ string, value any) error {
		claims := middleware.ClaimsFromContext(ctx)
		if claims == nil {
			return apperror.Unauthorized(message.AccessTokenRequired)
		}

		user, err := h.userRepo.GetUser(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return apperror.NotFound(message.UserNotFound)
			}

			return apperror.New(http.StatusInternalServerError, message.InternalError)
		}

		password, _ := value.(string)

		ok, err := security.VerifyPassword(password, user.PasswordHash)
		if err != nil || !ok {
			return apperror.Unauthorized(message.OldPasswordIncorrect)
		}

		return nil
	}
}

func (h *UserHandler) updateMeSchema() validate.Schema {
	return validate.Schema{
		validate.OptionalBody("name",
			validate.IsString(message.NameMustBeString),
			validate.Length(5, 100, message.NameLength),
		),
		validate.OptionalBody("date_of_birth", validate.ISO8601(message.DateOfBirthMustBeISO)),
		validate.OptionalBody("bio",
			validate.IsString(message.BioMustBeString),
			validate.Length(1, 200, message.BioLength),
		),
		validate.OptionalBody("location",
			validate.IsString(message.LocationMustBeString),
			validate.Length(1, 200, message.LocationLength),
		),
		validate.OptionalBody("website", validate.URL(message.WebsiteMustBeURL)),
		validate.OptionalBody("username",
			validate.IsString(message.UsernameMustBeString),
			h.usernameRule(),
		),
		validate.OptionalBody("avatar", validate.URL(message.AvatarMustBeURL)),
		validate.OptionalBody("cover_photo", validate.URL(message.AvatarMustBeURL)),
	}
}

func (h *UserHandler) usernameRule() validate.Rule {
	return func(ctx context.Context, _ *validate.Request, _ string, value any) error {
		username, _ := value.(string)
		if !usernameRegexp.MatchString(username) || digitsOnlyRegexp.MatchString(username) {
			return errors.New(message.UsernameInvalid)
		}

		_, err := h.userRepo.GetUserByUsername(ctx, username)
		if err == nil {
			return errors.New(message.UsernameExists)
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return apperror.New(http.StatusInternalServerError, message.InternalError)
		}

		return nil
	}
}

func (h *UserHandler) followSchema() validate.Schema {
	return validate.Schema{
		validate.Body("followed_user_id", h.userIDRule()),
	}
}

func (h *UserHandler) unfollowSchema() validate.Schema {
	return validate.Schema{
		validate.Param("user_id", h.userIDRule()),
	}
}

// userIDRule resolves a user id, failing 404 for a malformed id or an
// unknown user. A banned user is hidden the same way.
func (h *UserHandler) userIDRule() validate.Rule {
	return func(ctx context.Context, _ *validate.Request, _ string, value any) error {
		id, ok := value.(string)
		if !ok {
			return apperror.NotFound(message.InvalidUserID)
		}
		if _, err := bson.ObjectIDFromHex(id); err != nil {
			return apperror.NotFound(message.InvalidUserID)
		}

		user, err := h.userRepo.GetUser(ctx, id)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return apperror.NotFound(message.UserNotFound)
			}

			return apperror.New(http.StatusInternalServerError, message.InternalError)
		}

		if user.Verify == auth.Banned {
			return apperror.NotFound(message.UserNotFound)
		}

		return nil
	}
}
