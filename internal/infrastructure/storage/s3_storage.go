package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"travel-booking-service/internal/domain/repository"
)

// S3Config selects the bucket; Endpoint is set for S3-compatible servers such as MinIO
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	URLExpiry time.Duration
}

// S3Storage issues presigned upload URLs for visa documents
type S3Storage struct {
	presignClient *s3.PresignClient
	bucket        string
	expiry        time.Duration
}

// NewS3Storage creates an S3 storage. Without explicit keys the default AWS
// credential chain is used.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}
	if cfg.Endpoint != "" && (cfg.AccessKey == "" || cfg.SecretKey == "") {
		return nil, fmt.Errorf("access key and secret key are required for a custom S3 endpoint")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &S3Storage{
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		expiry:        expiry,
	}, nil
}

// PresignUpload implements repository.ObjectStorage
func (s *S3Storage) PresignUpload(ctx context.Context, key, contentType string) (*repository.PresignedUpload, error) {
	req, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload for %s: %w", key, err)
	}

	headers := map[string]string{"Content-Type": contentType}
	for name, values := range req.SignedHeader {
		if name == "Host" || len(values) == 0 {
			continue
		}
		headers[name] = values[0]
	}

	return &repository.PresignedUpload{
		URL:       req.URL,
		Method:    req.Method,
		Key:       key,
		Headers:   headers,
		ExpiresAt: time.Now().UTC().Add(s.expiry),
	}, nil
}
