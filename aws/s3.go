package aws

import (
	"context"
	"fmt"
	"io"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// FileStorage abstracts blob storage for component images and payment
// slips.
type FileStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// S3Storage implements FileStorage on an S3 bucket.
type S3Storage struct {
	client *s3.Client
	bucket string
	// baseURL prefixes returned object URLs, e.g. a CDN or the
	// LocalStack edge. Defaults to the virtual-hosted S3 URL.
	baseURL string
}

// NewS3Storage creates a new instance of S3Storage
func NewS3Storage(cfg sdkaws.Config, bucket, baseURL string) *S3Storage {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, cfg.Region)
	}
	return &S3Storage{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// Upload stores the object and returns its public URL.
func (s *S3Storage) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        body,
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}
