package user

import (
	"context"
	"time"
)

// Repository defines the interface for user data access
type Repository interface {
	// Create inserts u and sets its ID
	Create(ctx context.Context, u *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByCustomerID retrieves a user by payment customer id
	GetByCustomerID(ctx context.Context, customerID string) (*User, error)

	// Update updates a user
	Update(ctx context.Context, u *User) error

	// Delete deletes a user
	Delete(ctx context.Context, id int64) error

	// ExpireLapsed marks trials and subscriptions that ended before now as
	// expired and returns how many rows changed
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)
}
