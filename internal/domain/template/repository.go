package template

import "context"

// Repository defines the interface for template data access
type Repository interface {
	// Create inserts a template
	Create(ctx context.Context, t *Template) error

	// GetByID retrieves a template by ID
	GetByID(ctx context.Context, id string) (*Template, error)

	// ListByBand retrieves a band's templates ordered by name, case-insensitively
	ListByBand(ctx context.Context, bandID string) ([]*Template, error)

	// Update updates name and setsConfig
	Update(ctx context.Context, t *Template) error

	// Delete deletes a template
	Delete(ctx context.Context, id string) error
}
