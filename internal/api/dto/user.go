package dto

import (
	"time"

	"github.com/setlistr/setlistr/internal/domain/user"
)

// UserDTO is the public view of an account
type UserDTO struct {
	ID                 int64     `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	SubscriptionStatus string    `json:"subscriptionStatus"`
	CreatedAt          time.Time `json:"createdAt"`
}

// UpdateProfileRequest changes the account's display name
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"max=100"`
}

// ToUserDTO converts a user to its public view at now
func ToUserDTO(u *user.User, now time.Time) *UserDTO {
	return &UserDTO{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		SubscriptionStatus: u.EffectiveStatus(now),
		CreatedAt:          u.CreatedAt,
	}
}
