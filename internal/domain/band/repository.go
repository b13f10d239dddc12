package band

import "context"

// Repository defines the interface for band data access
type Repository interface {
	// Create inserts a band. The slug must be free.
	Create(ctx context.Context, b *Band) error

	// GetByID retrieves a band by ID
	GetByID(ctx context.Context, id string) (*Band, error)

	// GetBySlug retrieves a band by slug
	GetBySlug(ctx context.Context, slug string) (*Band, error)

	// ListByOwner retrieves an owner's bands ordered by name
	ListByOwner(ctx context.Context, ownerID int64) ([]*Band, error)

	// SlugExists reports whether slug is taken
	SlugExists(ctx context.Context, slug string) (bool, error)

	// Update updates name and slug
	Update(ctx context.Context, b *Band) error

	// Delete removes a band together with its songs, setlists, setlist
	// items, templates and members
	Delete(ctx context.Context, id string) error

	// DeleteByOwner removes every band an owner has, with the same cascade
	DeleteByOwner(ctx context.Context, ownerID int64) error
}
