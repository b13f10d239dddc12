package member

import (
	"context"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/pkg/patch"
)

// Service defines member operations
type Service interface {
	List(ctx context.Context, actor auth.Actor, bandID string) ([]*Member, error)
	Get(ctx context.Context, actor auth.Actor, id string) (*Member, error)

	// Create adds a member with a fresh access token and sends it by email
	// when the member has an address
	Create(ctx context.Context, actor auth.Actor, bandID string, m *Member) (string, error)

	Update(ctx context.Context, actor auth.Actor, id string, fields patch.Fields) error
	Delete(ctx context.Context, actor auth.Actor, id string) error

	// RegenerateToken revokes the current token and returns a new one
	RegenerateToken(ctx context.Context, actor auth.Actor, id string) (string, error)

	// ResolveSession returns the member holding token and its band, or nil
	// when no member holds it
	ResolveSession(ctx context.Context, token string) (*Session, error)
}
