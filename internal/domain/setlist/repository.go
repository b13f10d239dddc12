package setlist

import "context"

// Repository defines the interface for setlist data access
type Repository interface {
	// Create inserts a setlist and its items in one transaction
	Create(ctx context.Context, s *Setlist) error

	// GetByID retrieves a setlist without its items
	GetByID(ctx context.Context, id string) (*Setlist, error)

	// Items retrieves a setlist's items ordered by set index and position
	Items(ctx context.Context, setlistID string) ([]Item, error)

	// ListByBand retrieves a band's setlists ordered by name, case-insensitively
	ListByBand(ctx context.Context, bandID string) ([]*Setlist, error)

	// Update updates the setlist row. When items is non-nil the setlist's
	// items are replaced in the same transaction.
	Update(ctx context.Context, s *Setlist, items []Item) error

	// ReplaceItems replaces all items of a setlist
	ReplaceItems(ctx context.Context, setlistID string, items []Item) error

	// SetPinned sets the pin flag of one slot
	SetPinned(ctx context.Context, setlistID string, setIndex, position int, pinned bool) error

	// Delete deletes a setlist and its items
	Delete(ctx context.Context, id string) error
}
