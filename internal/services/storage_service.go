package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/pkg/errors"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/storage"
)

// UploadTicket is a presigned upload target.
type UploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	StorageID string `json:"storageId"`
}

// StorageService signs upload and download URLs for file attachments
type StorageService struct {
	provider storage.Provider
	expiry   time.Duration
	logger   *logger.Logger
}

// NewStorageService creates a new storage service
func NewStorageService(provider storage.Provider, expiry time.Duration, log *logger.Logger) *StorageService {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &StorageService{
		provider: provider,
		expiry:   expiry,
		logger:   log,
	}
}

// GenerateUploadURL reserves a fresh storage id and signs an upload to it
func (s *StorageService) GenerateUploadURL(ctx context.Context, actor auth.Actor) (*UploadTicket, error) {
	if _, err := requireOwner(actor); err != nil {
		return nil, err
	}

	id := storage.NewStorageID()
	key, _ := storage.ObjectKey(id)
	url, err := s.provider.PresignUpload(ctx, key, s.expiry)
	if err != nil {
		return nil, s.wrap(err)
	}

	s.logger.WithFields(map[string]interface{}{
		"storage_id": id,
		"backend":    s.provider.Name(),
	}).Debug("Upload URL issued")

	return &UploadTicket{UploadURL: url, StorageID: id}, nil
}

// GetURL signs a download of storageID. Malformed ids give nil.
func (s *StorageService) GetURL(ctx context.Context, actor auth.Actor, storageID string) (*string, error) {
	if _, err := requireOwner(actor); err != nil {
		return nil, err
	}
	return s.download(ctx, storageID)
}

// GetURLs signs a download for every id. Each malformed id maps to nil.
func (s *StorageService) GetURLs(ctx context.Context, actor auth.Actor, storageIDs []string) (map[string]*string, error) {
	if _, err := requireOwner(actor); err != nil {
		return nil, err
	}

	out := make(map[string]*string, len(storageIDs))
	for _, id := range storageIDs {
		url, err := s.download(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = url
	}
	return out, nil
}

func (s *StorageService) download(ctx context.Context, storageID string) (*string, error) {
	key, ok := storage.ObjectKey(storageID)
	if !ok {
		return nil, nil
	}

	url, err := s.provider.PresignDownload(ctx, key, s.expiry)
	if err != nil {
		return nil, s.wrap(err)
	}
	return &url, nil
}

func (s *StorageService) wrap(err error) error {
	if stderrors.Is(err, storage.ErrDisabled) {
		return errors.ServiceUnavailable("File storage is not configured")
	}
	s.logger.ErrorWithErr(err, "Failed to sign storage URL")
	return errors.UpstreamError(s.provider.Name(), err)
}
