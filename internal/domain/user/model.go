package user

import (
	"math"
	"time"
)

// User is an account holder. Users own bands.
type User struct {
	ID                 int64      `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	PasswordHash       string     `json:"-"`
	SubscriptionStatus string     `json:"subscriptionStatus"`
	TrialEndsAt        *time.Time `json:"trialEndsAt,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"currentPeriodEnd,omitempty"`
	PaymentCustomerID  string     `json:"-"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// Subscription statuses
const (
	StatusNone     = "none"
	StatusTrialing = "trialing"
	StatusActive   = "active"
	StatusExpired  = "expired"
)

// EffectiveStatus is the stored status with lapsed trials and periods read
// as expired.
func (u *User) EffectiveStatus(now time.Time) string {
	switch u.SubscriptionStatus {
	case StatusTrialing:
		if u.TrialEndsAt != nil && !now.Before(*u.TrialEndsAt) {
			return StatusExpired
		}
	case StatusActive:
		if u.CurrentPeriodEnd != nil && !now.Before(*u.CurrentPeriodEnd) {
			return StatusExpired
		}
	case "":
		return StatusNone
	}
	return u.SubscriptionStatus
}

// HasAccess reports whether paid features are available.
func (u *User) HasAccess(now time.Time) bool {
	s := u.EffectiveStatus(now)
	return s == StatusTrialing || s == StatusActive
}

// Subscription is the public view of a user's plan.
type Subscription struct {
	Status           string     `json:"status"`
	TrialEndsAt      *time.Time `json:"trialEndsAt,omitempty"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd,omitempty"`
	DaysRemaining    int        `json:"daysRemaining"`
	CanStartTrial    bool       `json:"canStartTrial"`
}

// SubscriptionOf builds the public view at now.
func SubscriptionOf(u *User, now time.Time) *Subscription {
	sub := &Subscription{
		Status:           u.EffectiveStatus(now),
		TrialEndsAt:      u.TrialEndsAt,
		CurrentPeriodEnd: u.CurrentPeriodEnd,
		CanStartTrial:    u.SubscriptionStatus == StatusNone || u.SubscriptionStatus == "",
	}

	var end *time.Time
	switch sub.Status {
	case StatusTrialing:
		end = u.TrialEndsAt
	case StatusActive:
		end = u.CurrentPeriodEnd
	}
	if end != nil {
		// partial days count as a whole day
		sub.DaysRemaining = int(math.Ceil(end.Sub(now).Hours() / 24))
	}
	return sub
}
