package song

import "context"

// Repository defines the interface for song data access
type Repository interface {
	// Create inserts a song
	Create(ctx context.Context, s *Song) error

	// GetByID retrieves a song by ID
	GetByID(ctx context.Context, id string) (*Song, error)

	// ListByBand retrieves a band's songs ordered by title, case-insensitively
	ListByBand(ctx context.Context, bandID string) ([]*Song, error)

	// ExistingIDs returns which of ids are songs of bandID
	ExistingIDs(ctx context.Context, bandID string, ids []string) (map[string]bool, error)

	// Update updates a song
	Update(ctx context.Context, s *Song) error

	// Delete deletes a song and clears it from setlist slots
	Delete(ctx context.Context, id string) error
}
