package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/twitter-api/internal/httputil"
	"github.com/vasapolrittideah/twitter-api/internal/message"
	"github.com/vasapolrittideah/twitter-api/internal/middleware"
	"github.com/vasapolrittideah/twitter-api/internal/usecase"
	"github.com/vasapolrittideah/twitter-api/pkg/apperror"
	"github.com/vasapolrittideah/twitter-api/pkg/auth"
)

// maxImageSize caps a single uploaded image.
const maxImageSize = 300 << 10

// MediaHandler serves file uploads.
type MediaHandler struct {
	mediaUsecase usecase.MediaUsecase
	jwtAuth      *auth.JWTAuthenticator
	logger       *zerolog.Logger
}

func NewMediaHandler(
	mediaUsecase usecase.MediaUsecase,
	jwtAuth *auth.JWTAuthenticator,
	logger *zerolog.Logger,
) *MediaHandler {
	return &MediaHandler{
		mediaUsecase: mediaUsecase,
		jwtAuth:      jwtAuth,
		logger:       logger,
	}
}

func (h *MediaHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequireAccessToken(h.jwtAuth), middleware.RequireVerified)

	r.Post("/upload-image", h.UploadImage)

	return r
}

func (h *MediaHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+4096)

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		httputil.Error(w, apperror.New(http.StatusRequestEntityTooLarge, message.FileTooLarge))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.Error(w, apperror.New(http.StatusBadRequest, message.ImageFileRequired))
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		httputil.Error(w, apperror.New(http.StatusRequestEntityTooLarge, message.FileTooLarge))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		httputil.Error(w, apperror.New(http.StatusBadRequest, message.FileTypeInvalid))
		return
	}

	media, err := h.mediaUsecase.UploadImage(r.Context(), header.Filename, contentType, file)
	if err != nil {
		var appErr *apperror.Error
		if !errors.As(err, &appErr) {
			h.logger.Error().Err(err).Str("filename", header.Filename).Msg("upload failed")
		}

		httputil.Error(w, err)
		return
	}

	httputil.OK(w, message.UploadSuccessful, media)
}
