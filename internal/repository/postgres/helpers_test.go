package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/setlistr/setlistr/migrations"
)

// newTestDB opens an in-memory SQLite database with the migrations applied.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", SQLiteDSN(":memory:"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	t.Cleanup(func() { sqlDB.Close() })

	db := Wrap(sqlDB, DriverSQLite)
	fsys, err := migrations.GetFS(DriverSQLite)
	if err != nil {
		t.Fatalf("Failed to load migrations: %v", err)
	}
	if _, err := RunMigrations(context.Background(), db, fsys); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }
