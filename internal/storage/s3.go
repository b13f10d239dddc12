package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/setlistr/setlistr/internal/config"
	"github.com/setlistr/setlistr/internal/pkg/metrics"
)

// S3Provider presigns URLs against an S3 bucket or an S3-compatible endpoint.
type S3Provider struct {
	bucket    string
	presigner *s3.PresignClient
}

// NewS3Provider loads AWS configuration. Static keys are used when set,
// otherwise the default credential chain.
func NewS3Provider(ctx context.Context, cfg config.StorageConfig) (*S3Provider, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(nonEmpty(cfg.Region, "us-east-1")),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Provider{
		bucket:    cfg.Bucket,
		presigner: s3.NewPresignClient(client),
	}, nil
}

func (p *S3Provider) Name() string { return "s3" }

// PresignUpload signs a PUT for key
func (p *S3Provider) PresignUpload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := p.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	metrics.RecordIntegrationCall("s3", err)
	if err != nil {
		return "", fmt.Errorf("failed to presign upload: %w", err)
	}
	return req.URL, nil
}

// PresignDownload signs a GET for key
func (p *S3Provider) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := p.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	metrics.RecordIntegrationCall("s3", err)
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return req.URL, nil
}

func nonEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
