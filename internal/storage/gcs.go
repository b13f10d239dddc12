package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/setlistr/setlistr/internal/config"
	"github.com/setlistr/setlistr/internal/pkg/metrics"
)

// GCSProvider signs V4 URLs for a Cloud Storage bucket.
type GCSProvider struct {
	bucket     *gcs.BucketHandle
	bucketName string
	accessID   string
	privateKey []byte
	now        func() time.Time
}

type serviceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// NewGCSProvider opens a storage client. With a credentials file the service
// account key signs URLs locally; without one the client falls back to the
// IAM signBlob API of the ambient credentials.
func NewGCSProvider(ctx context.Context, cfg config.StorageConfig) (*GCSProvider, error) {
	var opts []option.ClientOption
	var sa serviceAccount
	if cfg.GCSCredentialsFile != "" {
		raw, err := os.ReadFile(cfg.GCSCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read gcs credentials: %w", err)
		}
		if err := json.Unmarshal(raw, &sa); err != nil {
			return nil, fmt.Errorf("failed to parse gcs credentials: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(raw))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs client: %w", err)
	}

	return newGCSProvider(client, cfg.Bucket, sa.ClientEmail, []byte(sa.PrivateKey)), nil
}

func newGCSProvider(client *gcs.Client, bucket, accessID string, key []byte) *GCSProvider {
	return &GCSProvider{
		bucket:     client.Bucket(bucket),
		bucketName: bucket,
		accessID:   accessID,
		privateKey: key,
		now:        time.Now,
	}
}

func (p *GCSProvider) Name() string { return "gcs" }

// PresignUpload signs a PUT for key
func (p *GCSProvider) PresignUpload(_ context.Context, key string, expiry time.Duration) (string, error) {
	return p.sign(key, http.MethodPut, expiry)
}

// PresignDownload signs a GET for key
func (p *GCSProvider) PresignDownload(_ context.Context, key string, expiry time.Duration) (string, error) {
	return p.sign(key, http.MethodGet, expiry)
}

func (p *GCSProvider) sign(key, method string, expiry time.Duration) (string, error) {
	opts := &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  method,
		Expires: p.now().Add(expiry),
	}
	if p.accessID != "" && len(p.privateKey) > 0 {
		opts.GoogleAccessID = p.accessID
		opts.PrivateKey = p.privateKey
	}

	url, err := p.bucket.SignedURL(key, opts)
	metrics.RecordIntegrationCall("gcs", err)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s url for %s/%s: %w", method, p.bucketName, key, err)
	}
	return url, nil
}
