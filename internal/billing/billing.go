package billing

import (
	"context"
	"time"
)

// Event kinds the subscription service acts on.
const (
	EventCheckoutCompleted    = "checkout.completed"
	EventSubscriptionUpdated  = "subscription.updated"
	EventSubscriptionCanceled = "subscription.canceled"
)

// Event is a verified payment provider notification reduced to what the
// subscription state machine needs.
type Event struct {
	Kind       string
	UserID     int64 // set on checkout events only
	CustomerID string
	Active     bool
	PeriodEnd  *time.Time
}

// CheckoutRequest describes a subscription checkout for one user.
type CheckoutRequest struct {
	UserID     int64
	Email      string
	CustomerID string
	SuccessURL string
	CancelURL  string
}

// Provider is a payment backend.
type Provider interface {
	// CreateCheckout starts a hosted checkout and returns its URL
	CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error)

	// ParseWebhook verifies a webhook payload. Events that need no action
	// return nil, nil.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error)
}
