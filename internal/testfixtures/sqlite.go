package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/booking-admin/internal/persistence/sqlite"
)

// NewSQLiteStore opens a migrated token store in a temporary directory. It is
// closed when the test ends.
func NewSQLiteStore(tb testing.TB) *sqlite.Storage {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "dashboard.db")
	storage, err := sqlite.Open(context.Background(), path, nil)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	tb.Cleanup(func() {
		_ = storage.Close()
	})
	return storage
}
