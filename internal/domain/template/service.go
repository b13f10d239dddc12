package template

import (
	"context"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/pkg/patch"
)

// InstantiateInput names the setlist created from a template.
type InstantiateInput struct {
	Name  string
	Venue string
	Date  string
}

// Service defines template operations
type Service interface {
	// List returns the band's templates by name, or an empty list when the
	// actor may not read the band
	List(ctx context.Context, actor auth.Actor, bandID string) ([]*Template, error)

	// Get returns the template, or nil when missing or not readable
	Get(ctx context.Context, actor auth.Actor, id string) (*Template, error)

	// Create inserts a template and returns its id
	Create(ctx context.Context, actor auth.Actor, bandID, name string, sets []SetConfig) (string, error)

	// Update applies a name/setsConfig patch. An empty patch writes nothing.
	Update(ctx context.Context, actor auth.Actor, id string, fields patch.Fields) error

	// Delete removes the template
	Delete(ctx context.Context, actor auth.Actor, id string) error

	// CreateFromSetlist derives a template from a setlist's pinned slots
	CreateFromSetlist(ctx context.Context, actor auth.Actor, setlistID, name string) (string, error)

	// Instantiate creates a setlist from a template
	Instantiate(ctx context.Context, actor auth.Actor, templateID string, in InstantiateInput) (string, error)
}
