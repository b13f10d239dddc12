package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/setlistr/setlistr/internal/config"
	"github.com/setlistr/setlistr/internal/pkg/logger"
)

// ErrDisabled is returned when no object store is configured.
var ErrDisabled = errors.New("object storage is not configured")

const keyPrefix = "uploads/"

// Provider signs direct upload and download URLs for object keys.
type Provider interface {
	// Name identifies the backend for logs and metrics
	Name() string
	PresignUpload(ctx context.Context, key string, expiry time.Duration) (string, error)
	PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// NewStorageID returns a fresh storage id.
func NewStorageID() string {
	return uuid.NewString()
}

// ObjectKey maps a storage id to its object key. Ids that are not uuids are
// rejected so callers cannot address arbitrary keys.
func ObjectKey(storageID string) (string, bool) {
	id, err := uuid.Parse(storageID)
	if err != nil {
		return "", false
	}
	return keyPrefix + id.String(), true
}

// Disabled is the provider used when STORAGE_BACKEND is none.
type Disabled struct{}

func (Disabled) Name() string { return "none" }

func (Disabled) PresignUpload(context.Context, string, time.Duration) (string, error) {
	return "", ErrDisabled
}

func (Disabled) PresignDownload(context.Context, string, time.Duration) (string, error) {
	return "", ErrDisabled
}

// New builds the provider selected by cfg.
func New(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (Provider, error) {
	switch cfg.Backend {
	case "s3":
		return NewS3Provider(ctx, cfg)
	case "gcs":
		return NewGCSProvider(ctx, cfg)
	default:
		log.Info("Object storage disabled")
		return Disabled{}, nil
	}
}
