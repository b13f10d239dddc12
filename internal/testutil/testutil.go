package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/domain/band"
	"github.com/setlistr/setlistr/internal/domain/user"
	"github.com/setlistr/setlistr/internal/repository/postgres"
	"github.com/setlistr/setlistr/migrations"
)

// NewTestDB creates an in-memory SQLite database with the migrations applied
func NewTestDB(t *testing.T) *postgres.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", postgres.SQLiteDSN(":memory:"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// :memory: is per connection
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	t.Cleanup(func() { CleanupDB(sqlDB) })

	db := postgres.Wrap(sqlDB, postgres.DriverSQLite)
	fsys, err := migrations.GetFS(postgres.DriverSQLite)
	if err != nil {
		t.Fatalf("Failed to load migrations: %v", err)
	}
	if _, err := postgres.RunMigrations(context.Background(), db, fsys); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// CleanupDB closes the test database
func CleanupDB(db *sql.DB) {
	if db != nil {
		db.Close()
	}
}

// CreateUser inserts a user with a throwaway password hash and returns an
// owner actor for it
func CreateUser(t *testing.T, repo user.Repository, email string) (*user.User, auth.Owner) {
	t.Helper()

	u := &user.User{
		Email:              email,
		Name:               "Test User",
		PasswordHash:       "x",
		SubscriptionStatus: user.StatusNone,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return u, auth.Owner{UserID: u.ID}
}

// CreateBand inserts a band owned by ownerID
func CreateBand(t *testing.T, repo band.Repository, ownerID int64, name, slug string) *band.Band {
	t.Helper()

	b := &band.Band{OwnerID: ownerID, Name: name, Slug: slug}
	if err := repo.Create(context.Background(), b); err != nil {
		t.Fatalf("Failed to create band: %v", err)
	}
	return b
}

// StrPtr returns a pointer to s
func StrPtr(s string) *string { return &s }
