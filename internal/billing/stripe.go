package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/setlistr/setlistr/internal/config"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/metrics"
)

const metadataUserIDKey = "user_id"

// ErrInvalidSignature is returned for webhooks that fail verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// StripeProvider implements Provider with Stripe Checkout and webhooks.
type StripeProvider struct {
	api           *client.API
	priceID       string
	webhookSecret string
	log           *logger.Logger

	// fetchSubscription is replaced in tests
	fetchSubscription func(ctx context.Context, id string) (*stripe.Subscription, error)
}

// NewStripeProvider creates a Stripe provider from cfg
func NewStripeProvider(cfg config.BillingConfig, log *logger.Logger) *StripeProvider {
	api := &client.API{}
	api.Init(cfg.StripeSecretKey, nil)

	p := &StripeProvider{
		api:           api,
		priceID:       cfg.StripePriceID,
		webhookSecret: cfg.StripeWebhookSecret,
		log:           log,
	}
	p.fetchSubscription = func(ctx context.Context, id string) (*stripe.Subscription, error) {
		params := &stripe.SubscriptionParams{}
		params.Context = ctx
		return p.api.Subscriptions.Get(id, params)
	}
	return p
}

// CreateCheckout creates a subscription-mode checkout session
func (p *StripeProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error) {
	userID := strconv.FormatInt(req.UserID, 10)
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(userID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{metadataUserIDKey: userID},
		},
	}
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	} else {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.Context = ctx

	sess, err := p.api.CheckoutSessions.New(params)
	metrics.RecordIntegrationCall("stripe", err)
	if err != nil {
		p.log.ErrorWithErr(err, "Failed to create checkout session")
		return "", fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	p.log.WithFields(map[string]interface{}{
		"user_id":    req.UserID,
		"session_id": sess.ID,
	}).Info("Checkout session created")

	return sess.URL, nil
}

// ParseWebhook verifies the Stripe-Signature header and maps the event
func (p *StripeProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if event.Data == nil {
		return nil, nil
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("stripe: failed to decode checkout session: %w", err)
		}
		return p.checkoutEvent(ctx, &sess)

	case "customer.subscription.updated", "customer.subscription.created":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("stripe: failed to decode subscription: %w", err)
		}
		ev := subscriptionEvent(&sub)
		ev.Kind = EventSubscriptionUpdated
		return ev, nil

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("stripe: failed to decode subscription: %w", err)
		}
		ev := subscriptionEvent(&sub)
		ev.Kind = EventSubscriptionCanceled
		ev.Active = false
		return ev, nil
	}

	p.log.With("event_type", string(event.Type)).Debug("Ignoring webhook event")
	return nil, nil
}

func (p *StripeProvider) checkoutEvent(ctx context.Context, sess *stripe.CheckoutSession) (*Event, error) {
	userID, err := strconv.ParseInt(sess.ClientReferenceID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("stripe: checkout session %s has no user reference", sess.ID)
	}

	ev := &Event{Kind: EventCheckoutCompleted, UserID: userID, Active: true}
	if sess.Customer != nil {
		ev.CustomerID = sess.Customer.ID
	}

	if sess.Subscription != nil && sess.Subscription.ID != "" {
		sub, err := p.fetchSubscription(ctx, sess.Subscription.ID)
		metrics.RecordIntegrationCall("stripe", err)
		if err != nil {
			return nil, fmt.Errorf("stripe: failed to load subscription: %w", err)
		}
		ev.PeriodEnd = unixPtr(sub.CurrentPeriodEnd)
	}
	return ev, nil
}

func subscriptionEvent(sub *stripe.Subscription) *Event {
	ev := &Event{
		Active:    sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing,
		PeriodEnd: unixPtr(sub.CurrentPeriodEnd),
	}
	if sub.Customer != nil {
		ev.CustomerID = sub.Customer.ID
	}
	return ev
}

func unixPtr(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
