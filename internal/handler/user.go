package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/twitter-api/internal/httputil"
	"github.com/vasapolrittideah/twitter-api/internal/message"
	"github.com/vasapolrittideah/twitter-api/internal/middleware"
	"github.com/vasapolrittideah/twitter-api/internal/model"
	"github.com/vasapolrittideah/twitter-api/internal/repository"
	"github.com/vasapolrittideah/twitter-api/internal/usecase"
	"github.com/vasapolrittideah/twitter-api/internal/validate"
	"github.com/vasapolrittideah/twitter-api/pkg/apperror"
	"github.com/vasapolrittideah/twitter-api/pkg/auth"
)

// UserHandler serves the account, session and social-graph endpoints.
type UserHandler struct {
	authUsecase      usecase.AuthUsecase
	userUsecase      usecase.UserUsecase
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtAuth          *auth.JWTAuthenticator
	logger           *zerolog.Logger
}

func NewUserHandler(
	authUsecase usecase.AuthUsecase,
	userUsecase usecase.UserUsecase,
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	jwtAuth *auth.JWTAuthenticator,
	logger *zerolog.Logger,
) *UserHandler {
	return &UserHandler{
		authUsecase:      authUsecase,
		userUsecase:      userUsecase,
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtAuth:          jwtAuth,
		logger:           logger,
	}
}

func (h *UserHandler) Routes() chi.Router {
	r := chi.NewRouter()

	authed := middleware.RequireAccessToken(h.jwtAuth)

	r.Post("/register", validated(h.registerSchema(), h.Register))
	r.Post("/login", validated(h.loginSchema(), h.Login))
	r.Post("/refresh-token", validated(h.refreshTokenSchema(), h.RefreshToken))
	r.Post("/verify-email", validated(h.emailVerifyTokenSchema(), h.VerifyEmail))
	r.Post("/forgot-password", validated(h.forgotPasswordSchema(), h.ForgotPassword))
	r.Post("/verify-forgot-password", validated(h.verifyForgotPasswordSchema(), h.VerifyForgotPassword))
	r.Post("/reset-password", validated(h.resetPasswordSchema(), h.ResetPassword))
	r.Get("/{username}", h.GetProfile)

	r.Group(func(r chi.Router) {
		r.Use(authed)

		r.Post("/logout", validated(h.logoutSchema(), h.Logout))
		r.Post("/resend-verify-email", h.ResendVerifyEmail)
		r.Put("/change-password", validated(h.changePasswordSchema(), h.ChangePassword))
		r.Get("/me", h.GetMe)
	})

	r.Group(func(r chi.Router) {
		r.Use(authed, middleware.RequireVerified)

		r.Patch("/me", validated(h.updateMeSchema(), h.UpdateMe))
		r.Post("/follow", validated(h.followSchema(), h.Follow))
		r.Delete("/follow/{user_id}", validated(h.unfollowSchema(), h.Unfollow))
	})

	return r
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	req := validate.FromContext(r.Context())

	dateOfBirth, err := time.Parse(time.RFC3339, req.BodyString("date_of_birth"))
	if err != nil {
		httputil.Error(w, validate.Errors{"date_of_birth": message.DateOfBirthMustBeISO})
		return
	}

	result, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Name:        req.BodyString("name"),
		Email:       req.BodyString("email"),
		Password:    req.BodyString("password"),
		DateOfBirth: dateOfBirth,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrEmailAlreadyExists) {
			// Lost the race against a concurrent registration with the
			// same email; report it the way the schema would have.
			httputil.Error(w, validate.Errors{"email": message.EmailAlreadyExists})
			return
		}

		h.fail(w, r, err)
		return
	}

	httputil.OK(w, message.RegisterSuccessful, result)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	req := validate.FromContext(r.Context())

	user := mustStashedUser(req)

	pair, err := h.authUsecase.Login(r.Context(), user.ID.Hex(), user.Verify)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.OK(w, message.LoginSuccessful, pair)
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	req := validate.FromContext(r.Context())

	if err := h.authUsecase.Logout(r.Context(), req.BodyString("refresh_token")); err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.OK(w, message.LogoutSuccessful, nil)
}

func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	req := validate.FromContext(r.Context())

	claims, _ := req.Get(stashRefreshTokenClaims)

	pair, err := h.authUsecase.RefreshToken(r.Context(), req.BodyString("refresh_token"), claims.(*auth.TokenClaims))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.OK(w, message.RefreshTokenSuccessful, pair)
}

func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	req := validate.FromContext(r.Context())

	stashed, _ := req.Get(stashEmailVerifyClaims)
	claims := stashed.(*auth.TokenClaims)

	user, err := h.userRepo.GetUser(r.Context(), claims.UserID)
	if err != nil {
		h.fail(w, r, apperror.NotFound(message.UserNotFound))
		return
	}

	if user.Verify == auth.Verified {
		httputil.Error(w, apperror.New(http.StatusBadRequest, message.EmailAlreadyVerified))
		return
	}

	// Only the token most recently mailed out is honored, so a resend
	// invalidates every earlier one even before it expires.
	if user.EmailVerifyToken != req.BodyString("email_verify_token") {
		httputil.Error(w, apperror.Unauthorized(message.EmailVerifyTokenInvalid))
		return
	}

	pair, err := h.authUsecase.VerifyEmail(r.Context(), claims.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.OK(w, message.VerifyEmailSuccessful, pair)
}

func (h *UserHandler) ResendVerifyEmail(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	user, err := h.userRepo.GetUser(r.Context(), claims.UserID)
	if err != nil {
		h.fail(w, r, apperror.NotFound(message.UserNotFound))
		return
	}

	if user.Verify == auth.Verified {
		httputil.OK(w, message.EmailAlreadyVerified, nil)
		return
	}

	if err := h.authUsecase.ResendVerifyEmail(r.Context(), claims.UserID, user.Email); err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.OK(w, message.ResendVerifyEmailSuccessful, nil)
}

func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	req := validate.FromContext(r.Context())

	user := mustStashedUser(req)

	if err := h.authUsecase.ForgotPassword(r.Context(), user.ID.Hex(), user.Verify, user.Email); err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.OK(w, message.CheckEmailToResetPassword, nil)
}

// VerifyForgotPassword lets the client check a reset token before showing
// the new-password form. The schema has already done all the work.
func (h *UserHandler) VerifyForgotPassword(w http.ResponseWriter, _ *http.Request) {
	httputil.OK(w, message.VerifyForgotPasswordOK, nil)
}

func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	req := validate.FromContext(r.Context())

	stashed, _ := req.Get(stashForgotPasswordClaim)
	claims := stashed.(*auth.TokenClaims)

	if err := h.authUsecase.ResetPassword(r.Context(), claims.UserID, req.BodyString("password")); err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.OK(w, message.ResetPasswordSuccessful, nil)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	req := validate.FromContext(r.Context())
	claims := middleware.ClaimsFromContext(r.Context())

	if err := h.authUsecase.ChangePassword(r.Context(), claims.UserID, req.BodyString("new_password")); err != nil {
		h.fail(w, r, err)
		return
	}

	httputil.OK(w, message.ChangePasswordSuccessful, nil)
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	user, err := h.userUsecase.GetMe(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			httputil.Error(w, apperror.NotFound(message.UserNotFound))
			return
		}

		h.fail(w, r, err)
		return
	}

	httputil.OK(w, message.GetMeSuccessful, user)
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.userUsecase.GetProfile(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			httputil.Error(w, apperror.NotFound(message.UserNotFound))
			return
		}

		h.fail(w, r, err)
		return
	}

	httputil.OK(w, message.GetProfileSuccessful, user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	req := validate.FromContext(r.Context())
	claims := middleware.ClaimsFromContext(r.Context())

	params := usecase.UpdateMeParams{
		Name:       optionalString(req, "name"),
		Bio:        optionalString(req, "bio"),
		Location:   optionalString(req, "location"),
		Website:    optionalString(req, "website"),
		Username:   optionalString(req, "username"),
		Avatar:     optionalString(req, "avatar"),
		CoverPhoto: optionalString(req, "cover_photo"),
	}

	if raw := optionalString(req, "date_of_birth"); raw != nil {
		dateOfBirth, err := time.Parse(time.RFC3339, *raw)
		if err != nil {
			httputil.Error(w, validate.Errors{"date_of_birth": message.DateOfBirthMustBeISO})
			return
		}
		params.DateOfBirth = &dateOfBirth
	}

	user, err := h.userUsecase.UpdateMe(r.Context(), claims.UserID, params)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			httputil.Error(w, apperror.NotFound(message.UserNotFound))
			return
		}

		h.fail(w, r, err)
		return
	}

	httputil.OK(w, message.UpdateMeSuccessful, user)
}

func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	req := validate.FromContext(r.Context())
	claims := middleware.ClaimsFromContext(r.Context())

	changed, err := h.userUsecase.Follow(r.Context(), claims.UserID, req.BodyString("followed_user_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if !changed {
		httputil.OK(w, message.AlreadyFollowed, nil)
		return
	}

	httputil.OK(w, message.FollowSuccessful, nil)
}

func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	changed, err := h.userUsecase.Unfollow(r.Context(), claims.UserID, chi.URLParam(r, "user_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if !changed {
		httputil.OK(w, message.AlreadyUnfollowed, nil)
		return
	}

	httputil.OK(w, message.UnfollowSuccessful, nil)
}

func (h *UserHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}

	httputil.Error(w, err)
}

func mustStashedUser(req *validate.Request) *model.User {
	stashed, _ := req.Get(stashUser)
	return stashed.(*model.User)
}

func optionalString(req *validate.Request, name string) *string {
	value, ok := req.BodyValue(name)
	if !ok {
		return nil
	}

	s, ok := value.(string)
	if !ok {
		return nil
	}

	return &s
}
