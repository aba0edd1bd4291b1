package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tally/internal/common"
)

// newTestStore creates a migrated store in a temp directory using the
// repository's schema script.
func newTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	migrationsDir := filepath.Join(tmpDir, "migrations")
	if err := os.MkdirAll(migrationsDir, 0750); err != nil {
		t.Fatalf("Failed to create migrations dir: %v", err)
	}

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_init.sql"))
	if err != nil {
		t.Fatalf("Failed to read schema script: %v", err)
	}
	if err := os.WriteFile(filepath.Join(migrationsDir, "001_init.sql"), schema, 0600); err != nil {
		t.Fatalf("Failed to write schema script: %v", err)
	}

	if _, err := ApplyMigrations(context.Background(), dbPath, migrationsDir); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := store.Open(); err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func TestStoreOpenIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Open(); err != nil {
		t.Fatalf("First open failed: %v", err)
	}
	if err := store.Open(); err != nil {
		t.Errorf("Second open should be a no-op, got %v", err)
	}
}

func TestStoreCloseIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := store.Open(); err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("First close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Second close should be a no-op, got %v", err)
	}
}

func TestStoreNotConnected(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	ctx := context.Background()

	if _, err := store.QueryRecords(ctx, QueryOptions{}); !errors.Is(err, common.ErrNotConnected) {
		t.Errorf("QueryRecords on closed store: want ErrNotConnected, got %v", err)
	}
	if _, err := store.ListCategories(ctx); !errors.Is(err, common.ErrNotConnected) {
		t.Errorf("ListCategories on closed store: want ErrNotConnected, got %v", err)
	}
	if err := store.ExecScript(ctx, "SELECT 1"); !errors.Is(err, common.ErrNotConnected) {
		t.Errorf("ExecScript on closed store: want ErrNotConnected, got %v", err)
	}
}

func TestStoreNewStoreEmptyPath(t *testing.T) {
	if _, err := NewStore("  "); !errors.Is(err, common.ErrValidation) {
		t.Errorf("want ErrValidation for empty path, got %v", err)
	}
}
