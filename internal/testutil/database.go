// Package testutil provides shared fixtures and an isolated database for
// ledger tests.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/the-ledger-must-balance/internal/storage"
)

// SetupTestDB creates a new in-memory database with every migration
// applied. It is closed when the test ends.
//
// Example:
//
//	store := testutil.SetupTestDB(t)
//	manager := categories.New(gw, categories.WithStore(store))
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	return store
}
