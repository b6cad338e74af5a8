// Package storage wraps the object store the media endpoints upload to. The
// core consumes it as a black box: store a binary blob, get back a URL.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/vasapolrittideah/twitter-api/internal/config"
)

// BlobStorage stores binary blobs and returns public URLs for them.
type BlobStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

type s3Storage struct {
	client *s3.Client
	bucket string
	base   string
}

// NewS3Storage creates a BlobStorage backed by S3 (or any S3-compatible
// endpoint such as MinIO when BaseEndpoint is set).
func NewS3Storage(ctx context.Context, cfg config.S3Config) (BlobStorage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	base := cfg.BaseEndpoint
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	} else {
		base = strings.TrimSuffix(base, "/") + "/" + cfg.Bucket
	}

	return &s3Storage{
		client: client,
		bucket: cfg.Bucket,
		base:   base,
	}, nil
}

func (s *s3Storage) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}

	return s.base + "/" + key, nil
}

// RandomKey builds a date-partitioned object key under the given prefix.
func RandomKey(prefix, ext string) string {
	d := time.Now()
	return fmt.Sprintf("%s/%d/%02d/%02d/%s%s", prefix, d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}
