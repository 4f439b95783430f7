package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// Storage archives a generated export and returns a location string,
// an S3 URL or a local path depending on deployment.
type Storage interface {
	Store(ctx context.Context, filename string, data []byte) (string, error)
}

type StorageConfig struct {
	UseS3     bool
	S3Bucket  string
	AWSRegion string
	LocalDir  string
}

func NewStorage(config StorageConfig) (Storage, error) {
	if config.UseS3 {
		sess := session.Must(session.NewSession(&aws.Config{
			Region: aws.String(config.AWSRegion),
		}))
		return &s3Storage{client: s3.New(sess), bucket: config.S3Bucket}, nil
	}

	if err := os.MkdirAll(config.LocalDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return &localStorage{dir: config.LocalDir}, nil
}

type s3Storage struct {
	client *s3.S3
	bucket string
}

func (s *s3Storage) Store(ctx context.Context, filename string, data []byte) (string, error) {
	key := fmt.Sprintf("exports/%s-%s", uuid.New().String(), filename)

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key), nil
}

type localStorage struct {
	dir string
}

func (s *localStorage) Store(ctx context.Context, filename string, data []byte) (string, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("%s-%s", uuid.New().String(), filename))

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}
