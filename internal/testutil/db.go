package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/jobtrack/internal/store"
)

// TempDBPath returns a database path inside a per-test temporary directory.
func TempDBPath(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "jobtrack.db")
}

// OpenStores opens a fresh database with the schema created. The database is
// closed when the test ends.
func OpenStores(t testing.TB) *store.Stores {
	t.Helper()

	db, err := store.Open(TempDBPath(t))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := store.NewStores(db)
	if err := s.CreateTables(context.Background()); err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}
	return s
}
