package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds configuration for S3MediaStore.
type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string // custom endpoint for MinIO, LocalStack, etc.
	PublicBaseURL string // optional CDN or bucket website URL
}

// S3MediaStore uploads images to an S3 compatible bucket.
type S3MediaStore struct {
	client  s3API
	bucket  string
	baseURL string
}

// NewS3MediaStore loads the default AWS credential chain and builds a client.
func NewS3MediaStore(ctx context.Context, cfg S3Config) (*S3MediaStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3MediaStore(client, cfg), nil
}

func newS3MediaStore(client s3API, cfg S3Config) *S3MediaStore {
	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		switch {
		case cfg.Endpoint != "":
			baseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		default:
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return &S3MediaStore{client: client, bucket: cfg.Bucket, baseURL: baseURL}
}

// Upload puts the object under a generated key and returns its public URL.
func (s *S3MediaStore) Upload(ctx context.Context, obj Object) (*UploadResult, error) {
	if obj.Body == nil {
		return nil, fmt.Errorf("media body missing")
	}
	key := ObjectKey(obj.Folder, obj.Filename, obj.ContentType)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        obj.Body,
		ContentType: aws.String(obj.ContentType),
	}
	if obj.Size > 0 {
		input.ContentLength = aws.Int64(obj.Size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("s3 put failed: %w", err)
	}
	return &UploadResult{Key: key, URL: s.baseURL + "/" + key}, nil
}

// Delete removes an uploaded object.
func (s *S3MediaStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete failed for %s: %w", key, err)
	}
	return nil
}
