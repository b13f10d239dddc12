package song

import (
	"context"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/pkg/patch"
)

// Service defines song operations
type Service interface {
	List(ctx context.Context, actor auth.Actor, bandID string) ([]*Song, error)
	Get(ctx context.Context, actor auth.Actor, id string) (*Song, error)
	Create(ctx context.Context, actor auth.Actor, bandID string, s *Song) (string, error)
	Update(ctx context.Context, actor auth.Actor, id string, fields patch.Fields) error
	Delete(ctx context.Context, actor auth.Actor, id string) error
}
