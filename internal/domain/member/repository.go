package member

import "context"

// Repository defines the interface for member data access
type Repository interface {
	// Create inserts a member
	Create(ctx context.Context, m *Member) error

	// GetByID retrieves a member by ID
	GetByID(ctx context.Context, id string) (*Member, error)

	// GetByToken retrieves the member holding token
	GetByToken(ctx context.Context, token string) (*Member, error)

	// ListByBand retrieves a band's members ordered by name, case-insensitively
	ListByBand(ctx context.Context, bandID string) ([]*Member, error)

	// Update updates name, email and role
	Update(ctx context.Context, m *Member) error

	// UpdateToken replaces a member's access token
	UpdateToken(ctx context.Context, id, token string) error

	// Delete deletes a member
	Delete(ctx context.Context, id string) error
}

// SessionCache remembers which member a token resolved to. Entries are hints
// only; the store stays authoritative.
type SessionCache interface {
	Get(ctx context.Context, token string) (memberID string, ok bool, err error)
	Set(ctx context.Context, token, memberID string) error
	Delete(ctx context.Context, token string) error
}
