package band

import (
	"context"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/pkg/patch"
)

// Service defines band operations
type Service interface {
	// List returns the actor's bands, or an empty list for non-owners
	List(ctx context.Context, actor auth.Actor) ([]*Band, error)

	// Get returns a band the actor may read, or nil
	Get(ctx context.Context, actor auth.Actor, id string) (*Band, error)

	// GetBySlug returns a band the actor may read, or nil
	GetBySlug(ctx context.Context, actor auth.Actor, slug string) (*Band, error)

	// Create creates a band owned by the actor. An empty slug is derived
	// from the name.
	Create(ctx context.Context, actor auth.Actor, name, slug string) (string, error)

	// Update applies a name/slug patch
	Update(ctx context.Context, actor auth.Actor, id string, fields patch.Fields) error

	// Delete removes a band and everything it owns
	Delete(ctx context.Context, actor auth.Actor, id string) error
}
