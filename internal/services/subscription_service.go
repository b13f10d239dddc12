package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/billing"
	"github.com/setlistr/setlistr/internal/config"
	"github.com/setlistr/setlistr/internal/domain/user"
	"github.com/setlistr/setlistr/internal/pkg/errors"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/metrics"
)

// DefaultTrialDays is used when no trial length is configured.
const DefaultTrialDays = 14

// SubscriptionService implements user.SubscriptionService
type SubscriptionService struct {
	repo        user.Repository
	provider    billing.Provider
	tx          Transactor
	trialDays   int
	frontendURL string
	logger      *logger.Logger
	now         func() time.Time
}

// NewSubscriptionService creates a new subscription service. A nil provider
// disables checkout and webhooks.
func NewSubscriptionService(repo user.Repository, provider billing.Provider, tx Transactor, cfg config.BillingConfig, frontendURL string, log *logger.Logger) *SubscriptionService {
	days := cfg.TrialDays
	if days <= 0 {
		days = DefaultTrialDays
	}
	return &SubscriptionService{
		repo:        repo,
		provider:    provider,
		tx:          tx,
		trialDays:   days,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      log,
		now:         time.Now,
	}
}

// Status returns the subscription view of the signed-in user
func (s *SubscriptionService) Status(ctx context.Context, actor auth.Actor) (*user.Subscription, error) {
	id, err := requireOwner(actor)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.SubscriptionOf(u, s.now()), nil
}

// StartTrial starts the one trial a user gets
func (s *SubscriptionService) StartTrial(ctx context.Context, actor auth.Actor) (*user.Subscription, error) {
	id, err := requireOwner(actor)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var u *user.User
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u.SubscriptionStatus != user.StatusNone && u.SubscriptionStatus != "" {
			return errors.Conflict("Trial already used")
		}

		ends := now.Add(time.Duration(s.trialDays) * 24 * time.Hour)
		u.SubscriptionStatus = user.StatusTrialing
		u.TrialEndsAt = &ends
		return s.repo.Update(ctx, u)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":       id,
		"trial_ends_at": u.TrialEndsAt,
	}).Info("Trial started")

	return user.SubscriptionOf(u, now), nil
}

// Checkout opens a payment session for the signed-in user
func (s *SubscriptionService) Checkout(ctx context.Context, actor auth.Actor) (string, error) {
	id, err := requireOwner(actor)
	if err != nil {
		return "", err
	}
	if s.provider == nil {
		return "", errors.ServiceUnavailable("Billing is not configured")
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	url, err := s.provider.CreateCheckout(ctx, billing.CheckoutRequest{
		UserID:     u.ID,
		Email:      u.Email,
		CustomerID: u.PaymentCustomerID,
		SuccessURL: s.frontendURL + "/billing?checkout=success",
		CancelURL:  s.frontendURL + "/billing?checkout=cancel",
	})
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to create checkout session")
		return "", errors.UpstreamError("payments", err)
	}
	return url, nil
}

// HandleWebhook verifies a provider event and applies it to the matching
// user. Events for unknown users are logged and acknowledged.
func (s *SubscriptionService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.provider == nil {
		return errors.ServiceUnavailable("Billing is not configured")
	}

	ev, err := s.provider.ParseWebhook(ctx, payload, signature)
	if err != nil {
		if stderrors.Is(err, billing.ErrInvalidSignature) {
			return errors.BadRequest("Invalid webhook signature")
		}
		return errors.BadRequest("Invalid webhook payload")
	}
	if ev == nil {
		return nil
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.subject(ctx, ev)
		if err != nil {
			return err
		}

		switch ev.Kind {
		case billing.EventCheckoutCompleted:
			u.SubscriptionStatus = user.StatusActive
			if ev.CustomerID != "" {
				u.PaymentCustomerID = ev.CustomerID
			}
			if ev.PeriodEnd != nil {
				u.CurrentPeriodEnd = ev.PeriodEnd
			}
		case billing.EventSubscriptionUpdated:
			if ev.Active {
				u.SubscriptionStatus = user.StatusActive
			} else {
				u.SubscriptionStatus = user.StatusExpired
			}
			if ev.PeriodEnd != nil {
				u.CurrentPeriodEnd = ev.PeriodEnd
			}
		case billing.EventSubscriptionCanceled:
			u.SubscriptionStatus = user.StatusExpired
		}
		return s.repo.Update(ctx, u)
	})
	if errors.IsNotFound(err) {
		s.logger.WithFields(map[string]interface{}{
			"event":       ev.Kind,
			"customer_id": ev.CustomerID,
		}).Warn("Webhook event for unknown user")
		return nil
	}
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to apply webhook event")
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"event":       ev.Kind,
		"customer_id": ev.CustomerID,
	}).Info("Subscription updated from webhook")
	return nil
}

func (s *SubscriptionService) subject(ctx context.Context, ev *billing.Event) (*user.User, error) {
	if ev.UserID != 0 {
		return s.repo.GetByID(ctx, ev.UserID)
	}
	if ev.CustomerID == "" {
		return nil, errors.NotFound("User")
	}
	return s.repo.GetByCustomerID(ctx, ev.CustomerID)
}

// RequireAccess fails with PaymentRequired unless userID is trialing or
// active
func (s *SubscriptionService) RequireAccess(ctx context.Context, userID int64) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !u.HasAccess(s.now()) {
		return errors.PaymentRequired("An active subscription or trial is required")
	}
	return nil
}

// Sweep stores lapsed trials and periods as expired
func (s *SubscriptionService) Sweep(ctx context.Context) (int64, error) {
	start := time.Now()
	n, err := s.repo.ExpireLapsed(ctx, s.now())
	if err != nil {
		s.logger.ErrorWithErr(err, "Subscription sweep failed")
		return 0, err
	}

	metrics.RecordSubscriptionSweep(int(n), time.Since(start))
	if n > 0 {
		s.logger.WithFields(map[string]interface{}{
			"expired": n,
		}).Info("Expired lapsed subscriptions")
	}
	return n, nil
}
