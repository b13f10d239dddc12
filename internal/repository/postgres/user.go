package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/setlistr/setlistr/internal/domain/user"
	"github.com/setlistr/setlistr/internal/pkg/errors"
)

const userColumns = `id, email, name, password_hash, subscription_status, trial_ends_at,
	current_period_end, payment_customer_id, created_at, updated_at`

// UserRepository implements user.Repository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) user.Repository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	now := time.Now().UTC().Truncate(time.Second)
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.SubscriptionStatus == "" {
		u.SubscriptionStatus = user.StatusNone
	}

	query := `
		INSERT INTO users (email, name, password_hash, subscription_status, trial_ends_at,
			current_period_end, payment_customer_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	err := r.db.queryRow(ctx, "users", query,
		u.Email, u.Name, u.PasswordHash, u.SubscriptionStatus, nullTime(u.TrialEndsAt),
		nullTime(u.CurrentPeriodEnd), nullCustomer(u.PaymentCustomerID), now.Unix(), now.Unix(),
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("Email already registered")
		}
		return errors.DatabaseError("Failed to create user", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

// GetByCustomerID retrieves a user by payment customer id
func (r *UserRepository) GetByCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE payment_customer_id = ?", customerID)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*user.User, error) {
	var u user.User
	var trialEnds, periodEnd sql.NullInt64
	var customer sql.NullString
	var createdAt, updatedAt int64

	err := r.db.queryRow(ctx, "users", query, arg).Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.SubscriptionStatus, &trialEnds,
		&periodEnd, &customer, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("User")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get user", err)
	}

	u.TrialEndsAt = timePtr(trialEnds)
	u.CurrentPeriodEnd = timePtr(periodEnd)
	u.PaymentCustomerID = customer.String
	u.CreatedAt = unix(createdAt)
	u.UpdatedAt = unix(updatedAt)

	return &u, nil
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	u.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	query := `
		UPDATE users
		SET email = ?, name = ?, password_hash = ?, subscription_status = ?, trial_ends_at = ?,
			current_period_end = ?, payment_customer_id = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.exec(ctx, "users", query,
		u.Email, u.Name, u.PasswordHash, u.SubscriptionStatus, nullTime(u.TrialEndsAt),
		nullTime(u.CurrentPeriodEnd), nullCustomer(u.PaymentCustomerID), u.UpdatedAt.Unix(), u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("Email already registered")
		}
		return errors.DatabaseError("Failed to update user", err)
	}

	return checkAffected(result, "User")
}

// Delete deletes a user
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.exec(ctx, "users", `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return errors.DatabaseError("Failed to delete user", err)
	}

	return checkAffected(result, "User")
}

// ExpireLapsed marks lapsed trials and subscriptions as expired
func (r *UserRepository) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE users
		SET subscription_status = ?, updated_at = ?
		WHERE (subscription_status = ? AND trial_ends_at IS NOT NULL AND trial_ends_at <= ?)
		   OR (subscription_status = ? AND current_period_end IS NOT NULL AND current_period_end <= ?)
	`

	ts := now.Unix()
	result, err := r.db.exec(ctx, "users", query,
		user.StatusExpired, ts,
		user.StatusTrialing, ts,
		user.StatusActive, ts,
	)
	if err != nil {
		return 0, errors.DatabaseError("Failed to expire subscriptions", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get affected rows", err)
	}
	return n, nil
}

func nullCustomer(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}
