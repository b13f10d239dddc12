package user

import (
	"context"

	"github.com/setlistr/setlistr/internal/auth"
)

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Service defines account operations
type Service interface {
	// Register creates an account and returns a token pair
	Register(ctx context.Context, in RegisterInput) (*User, auth.TokenPair, error)

	// Login checks credentials and returns a token pair
	Login(ctx context.Context, email, password string) (*User, auth.TokenPair, error)

	// Refresh exchanges a refresh token for a new pair
	Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error)

	// Me returns the signed-in user
	Me(ctx context.Context, actor auth.Actor) (*User, error)

	// UpdateProfile changes the user's name
	UpdateProfile(ctx context.Context, actor auth.Actor, name string) (*User, error)

	// DeleteAccount removes the user and everything their bands own
	DeleteAccount(ctx context.Context, actor auth.Actor) error
}

// SubscriptionService manages trials and paid plans
type SubscriptionService interface {
	// Status returns the current subscription view
	Status(ctx context.Context, actor auth.Actor) (*Subscription, error)

	// StartTrial moves a user with no plan into a trial
	StartTrial(ctx context.Context, actor auth.Actor) (*Subscription, error)

	// Checkout creates a payment session and returns its URL
	Checkout(ctx context.Context, actor auth.Actor) (string, error)

	// HandleWebhook verifies and applies a payment provider event
	HandleWebhook(ctx context.Context, payload []byte, signature string) error

	// RequireAccess fails with PaymentRequired unless userID is trialing or active
	RequireAccess(ctx context.Context, userID int64) error

	// Sweep persists lapsed trials and periods as expired
	Sweep(ctx context.Context) (int64, error)
}
