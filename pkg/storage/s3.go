package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/jwalitptl/memory-api/pkg/circuitbreaker"
)

// S3Config holds the bucket and credentials of an S3Storage
type S3Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// BaseURL is the CDN origin placed in front of the bucket
	BaseURL string
	// Endpoint overrides the AWS endpoint, for S3-compatible stores
	Endpoint string
}

// S3Storage implements Storage on an S3 bucket
type S3Storage struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	cb       *circuitbreaker.CircuitBreaker
	bucket   string
	baseURL  string
}

// NewS3Storage creates a new S3 storage instance
func NewS3Storage(cfg S3Config, cb *circuitbreaker.CircuitBreaker) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required for S3 storage")
	}

	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	if cb == nil {
		cb = circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:    "s3",
			Timeout: 30 * time.Second,
		})
	}

	return &S3Storage{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		cb:       cb,
		bucket:   cfg.Bucket,
		baseURL:  baseURL,
	}, nil
}

// Put uploads a file to S3
func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	err := s.cb.Execute(func() error {
		_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        body,
			ContentType: aws.String(contentType),
		})
		return err
	})
	if err != nil {
		return &Error{Op: "put", Key: key, Err: err}
	}
	return nil
}

// Delete removes a file from S3
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	err := s.cb.Execute(func() error {
		_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		return err
	})
	if err != nil {
		return &Error{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (s *S3Storage) URL(key string) string {
	return joinURL(s.baseURL, key)
}

func (s *S3Storage) KeyFromURL(url string) (string, bool) {
	return splitURL(s.baseURL, url)
}
