package dbtest

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"

	"github.com/umar/usergroups/internal/database"
)

var (
	migrateOnce sync.Once
	migrateErr  error
)

// DatabaseURL returns TEST_DATABASE_URL, or "" when PostgreSQL tests are off.
func DatabaseURL() string {
	return os.Getenv("TEST_DATABASE_URL")
}

// OpenTx migrates the test database once per process, then begins a
// transaction that is rolled back when t finishes. Tests are skipped when
// TEST_DATABASE_URL is not set.
func OpenTx(t testing.TB) *sql.Tx {
	t.Helper()

	url := DatabaseURL()
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	migrateOnce.Do(func() { migrateErr = database.RunMigrations(url) })
	if migrateErr != nil {
		t.Fatalf("failed to migrate test database: %v", migrateErr)
	}

	db, err := database.InitDB(url)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		db.Close()
		t.Fatalf("failed to begin transaction: %v", err)
	}
	t.Cleanup(func() {
		tx.Rollback()
		db.Close()
	})
	return tx
}
