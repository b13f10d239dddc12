package services

import (
	"context"
	"net/mail"
	"strings"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/config"
	"github.com/setlistr/setlistr/internal/domain/band"
	"github.com/setlistr/setlistr/internal/domain/user"
	"github.com/setlistr/setlistr/internal/pkg/errors"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/patch"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// UserService implements user.Service
type UserService struct {
	repo   user.Repository
	bands  band.Repository
	tx     Transactor
	cfg    config.AuthConfig
	logger *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(repo user.Repository, bands band.Repository, tx Transactor, cfg config.AuthConfig, log *logger.Logger) user.Service {
	return &UserService{
		repo:   repo,
		bands:  bands,
		tx:     tx,
		cfg:    cfg,
		logger: log,
	}
}

// Register creates an account and signs it in
func (s *UserService) Register(ctx context.Context, in user.RegisterInput) (*user.User, auth.TokenPair, error) {
	email := normalizeEmail(in.Email)

	var problems []patch.FieldError
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		problems = append(problems, patch.FieldError{Field: "email", Message: "email must be a valid email address"})
	}
	if len(in.Password) < MinPasswordLength {
		problems = append(problems, patch.FieldError{Field: "password", Message: "password must be at least 8 characters long"})
	}
	if err := validationError(problems); err != nil {
		return nil, auth.TokenPair{}, err
	}

	hash, err := auth.HashPassword(in.Password, s.cfg.BCryptCost)
	if err != nil {
		return nil, auth.TokenPair{}, errors.Internal("Failed to hash password", err)
	}

	u := &user.User{
		Email:              email,
		Name:               strings.TrimSpace(in.Name),
		PasswordHash:       hash,
		SubscriptionStatus: user.StatusNone,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if !errors.Is(err, errors.ErrCodeConflict) {
			s.logger.ErrorWithErr(err, "Failed to create user")
		}
		return nil, auth.TokenPair{}, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": u.ID,
		"email":   u.Email,
	}).Info("User registered")

	tokens, err := s.mint(u)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}
	return u, tokens, nil
}

// Login checks credentials
func (s *UserService) Login(ctx context.Context, email, password string) (*user.User, auth.TokenPair, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, auth.TokenPair{}, errors.Unauthorized("Invalid email or password")
		}
		return nil, auth.TokenPair{}, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, auth.TokenPair{}, errors.Unauthorized("Invalid email or password")
	}

	tokens, err := s.mint(u)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": u.ID,
	}).Info("User logged in")

	return u, tokens, nil
}

// Refresh exchanges a refresh token for a new pair
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	claims, err := auth.ParseRefresh(refreshToken, s.cfg.JWTSecret)
	if err != nil {
		return auth.TokenPair{}, errors.Unauthorized("Invalid refresh token")
	}

	u, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.IsNotFound(err) {
			return auth.TokenPair{}, errors.Unauthorized("Invalid refresh token")
		}
		return auth.TokenPair{}, err
	}
	return s.mint(u)
}

// Me returns the signed-in user
func (s *UserService) Me(ctx context.Context, actor auth.Actor) (*user.User, error) {
	id, err := requireOwner(actor)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile changes the display name
func (s *UserService) UpdateProfile(ctx context.Context, actor auth.Actor, name string) (*user.User, error) {
	id, err := requireOwner(actor)
	if err != nil {
		return nil, err
	}

	var u *user.User
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		u.Name = strings.TrimSpace(name)
		return s.repo.Update(ctx, u)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": id,
	}).Info("User profile updated")

	return u, nil
}

// DeleteAccount removes the user, its bands and everything they own
func (s *UserService) DeleteAccount(ctx context.Context, actor auth.Actor) error {
	id, err := requireOwner(actor)
	if err != nil {
		return err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.bands.DeleteByOwner(ctx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to delete account")
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": id,
	}).Info("User account deleted")

	return nil
}

func (s *UserService) mint(u *user.User) (auth.TokenPair, error) {
	tokens, err := auth.MintTokens(u.ID, u.Email, s.cfg.JWTSecret, s.cfg.AccessTokenExpiry, s.cfg.RefreshTokenExpiry)
	if err != nil {
		return auth.TokenPair{}, errors.Internal("Failed to issue tokens", err)
	}
	return tokens, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
