package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"tally/internal/common"
	"tally/internal/model"
)

// Writes on an open store sit in the WAL until a checkpoint; Backup must
// checkpoint first so the copy carries every committed transaction.
func TestBackupIncludesUncheckpointedWrites(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.AddCategory(ctx, model.Category{ID: "cat_food", Name: "Food", Kind: model.KindExpenditure, IsCustom: true}); err != nil {
		t.Fatalf("Failed to seed category: %v", err)
	}
	catID := "cat_food"
	rec := &model.Record{
		ID:         "rec_1",
		Kind:       model.KindExpenditure,
		Amount:     12.50,
		Date:       "2026-01-15T10:00:00",
		CategoryID: &catID,
	}
	if err := store.SaveRecord(ctx, rec); err != nil {
		t.Fatalf("Failed to save record: %v", err)
	}

	// Destination has a missing parent directory; Backup must create it.
	dst := filepath.Join(t.TempDir(), "nested", "copy.db")
	if err := store.Backup(ctx, dst); err != nil {
		t.Fatalf("Backup failed: %v", err)
	}

	restored, err := NewStore(dst)
	if err != nil {
		t.Fatalf("Failed to create store on backup: %v", err)
	}
	if err := restored.Open(); err != nil {
		t.Fatalf("Failed to open backup: %v", err)
	}
	defer func() { _ = restored.Close() }()

	records, err := restored.QueryRecords(ctx, QueryOptions{})
	if err != nil {
		t.Fatalf("Failed to query records from backup: %v", err)
	}
	if len(records) != 1 || records[0].ID != "rec_1" {
		t.Errorf("Backup records = %v, want the saved record", records)
	}

	categories, err := restored.ListCategories(ctx)
	if err != nil {
		t.Fatalf("Failed to list categories from backup: %v", err)
	}
	if len(categories) != 1 || categories[0].ID != "cat_food" {
		t.Errorf("Backup categories = %v, want the seeded category", categories)
	}
}

func TestBackupRequiresOpenStore(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.Backup(context.Background(), filepath.Join(t.TempDir(), "copy.db")); !errors.Is(err, common.ErrNotConnected) {
		t.Errorf("want ErrNotConnected, got %v", err)
	}
}
