package usecase

import (
	"context"
	"io"
	"path/filepath"

	"github.com/vasapolrittideah/twitter-api/internal/model"
	"github.com/vasapolrittideah/twitter-api/internal/storage"
)

// MediaUsecase uploads media files to the object store and hands back the
// public URLs tweets reference.
type MediaUsecase interface {
	UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (*model.Media, error)
}

type mediaUsecase struct {
	blobs storage.BlobStorage
}

func NewMediaUsecase(blobs storage.BlobStorage) MediaUsecase {
	return &mediaUsecase{blobs: blobs}
}

func (u *mediaUsecase) UploadImage(
	ctx context.Context,
	filename, contentType string,
	body io.Reader,
) (*model.Media, error) {
	key := storage.RandomKey("images", filepath.Ext(filename))

	url, err := u.blobs.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, err
	}

	return &model.Media{
		URL:  url,
		Type: model.Image,
	}, nil
}
