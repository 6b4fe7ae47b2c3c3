package testutil

import (
	"database/sql"
	"testing"

	"github.com/metricops/anomalyd/internal/repository/postgres"
	"github.com/metricops/anomalyd/migrations"

	_ "modernc.org/sqlite"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	migrationsFS, err := migrations.GetFS("sqlite")
	if err != nil {
		db.Close()
		t.Fatalf("Failed to load migrations: %v", err)
	}
	if _, err := postgres.RunMigrations(db, migrationsFS); err != nil {
		db.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// CleanupDB closes the test database
func CleanupDB(db *sql.DB) {
	if db != nil {
		db.Close()
	}
}
