package setlist

import (
	"context"
	"io"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/pkg/patch"
)

// Service defines setlist operations
type Service interface {
	List(ctx context.Context, actor auth.Actor, bandID string) ([]*Setlist, error)

	// Get returns the setlist with its items, or nil
	Get(ctx context.Context, actor auth.Actor, id string) (*Setlist, error)

	// Create inserts a setlist with an empty slot for every position
	Create(ctx context.Context, actor auth.Actor, bandID string, s *Setlist) (string, error)

	// Update applies a patch. Changing setsConfig reconciles the items.
	Update(ctx context.Context, actor auth.Actor, id string, fields patch.Fields) error

	Delete(ctx context.Context, actor auth.Actor, id string) error

	// ReplaceItems overwrites the slots of a setlist
	ReplaceItems(ctx context.Context, actor auth.Actor, id string, items []Item) error

	// TogglePin flips the pin flag of one slot and returns the new value
	TogglePin(ctx context.Context, actor auth.Actor, id string, setIndex, position int) (bool, error)

	// ExportPDF renders the setlist to w and returns a file name for it
	ExportPDF(ctx context.Context, actor auth.Actor, id string, w io.Writer) (string, error)
}
