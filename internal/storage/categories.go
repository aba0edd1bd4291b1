package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"tally/internal/common"
	"tally/internal/model"

	"github.com/mattn/go-sqlite3"
)

// DeleteStrategy decides what happens to records referencing a category
// when that category is deleted.
type DeleteStrategy string

const (
	// DeleteSetNull clears the category reference on affected records,
	// leaving them uncategorized.
	DeleteSetNull DeleteStrategy = "SET_NULL"
	// DeleteMoveToOther repoints affected records at another category.
	DeleteMoveToOther DeleteStrategy = "MOVE_TO_OTHER"
)

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, type, is_custom
		FROM categories
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query categories: %v", common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Kind, &cat.IsCustom); err != nil {
			return nil, fmt.Errorf("%w: failed to scan category: %v", common.ErrDatabase, err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating categories: %v", common.ErrDatabase, err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategory returns the category with the given id, or nil if no such
// category exists. A miss is an absent value, not an error.
func (s *Store) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	var cat model.Category
	err = db.QueryRowContext(ctx, `
		SELECT id, name, type, is_custom
		FROM categories
		WHERE id = ?`, id).Scan(&cat.ID, &cat.Name, &cat.Kind, &cat.IsCustom)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query category: %v", common.ErrDatabase, err)
	}

	return &cat, nil
}

// AddCategory inserts a new category. An existing category with the same
// id surfaces as ErrDuplicate.
func (s *Store) AddCategory(ctx context.Context, cat model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(cat.ID, "category id"); err != nil {
		return err
	}
	db, err := s.handle()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO categories (id, name, type, is_custom)
		VALUES (?, ?, ?, ?)`,
		cat.ID, cat.Name, string(cat.Kind), cat.IsCustom)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: category %s already exists", common.ErrDuplicate, cat.ID)
		}
		return fmt.Errorf("%w: failed to insert category: %v", common.ErrDatabase, err)
	}

	slog.Info("added category", "id", cat.ID, "name", cat.Name)
	return nil
}

// UpdateCategory replaces a category's name, kind and custom flag by id.
// The id itself is immutable. Changing the kind does not re-validate
// records already associated with the category.
func (s *Store) UpdateCategory(ctx context.Context, cat model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(cat.ID, "category id"); err != nil {
		return err
	}
	db, err := s.handle()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, type = ?, is_custom = ?
		WHERE id = ?`,
		cat.Name, string(cat.Kind), cat.IsCustom, cat.ID)
	if err != nil {
		return fmt.Errorf("%w: failed to update category: %v", common.ErrDatabase, err)
	}
	return nil
}

// DeleteCategory removes a category after disposing of the records that
// reference it. DeleteSetNull clears their references; DeleteMoveToOther
// repoints them at reassignTo, which must be non-empty and must exist.
// Deleting an unknown category is ErrNotFound. The record update and the
// category delete commit as one transaction, so the pair is never
// observable half-applied.
func (s *Store) DeleteCategory(ctx context.Context, id string, strategy DeleteStrategy, reassignTo string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	switch strategy {
	case DeleteSetNull:
	case DeleteMoveToOther:
		if reassignTo == "" {
			return fmt.Errorf("%w: reassignment target required for MOVE_TO_OTHER", common.ErrPrecondition)
		}
	default:
		return fmt.Errorf("%w: unknown delete strategy %q", common.ErrValidation, strategy)
	}

	db, err := s.handle()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", common.ErrDatabase, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := categoryExists(ctx, tx, id); err != nil {
		return err
	}

	if strategy == DeleteMoveToOther {
		if err := categoryExists(ctx, tx, reassignTo); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE records SET category_id = ? WHERE category_id = ?`,
			reassignTo, id); err != nil {
			return fmt.Errorf("%w: failed to reassign records: %v", common.ErrDatabase, err)
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			`UPDATE records SET category_id = NULL WHERE category_id = ?`,
			id); err != nil {
			return fmt.Errorf("%w: failed to clear record references: %v", common.ErrDatabase, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: failed to delete category: %v", common.ErrDatabase, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit category deletion: %v", common.ErrDatabase, err)
	}

	slog.Info("deleted category", "id", id, "strategy", string(strategy))
	return nil
}

// categoryExists returns ErrNotFound if no category has the given id.
func categoryExists(ctx context.Context, tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: category %s", common.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("%w: failed to look up category: %v", common.ErrDatabase, err)
	}
	return nil
}

// isConstraintError reports whether err is a SQLite primary-key or unique
// constraint violation. Other constraint classes (foreign key, check, not
// null) are not duplicates and fall through to the generic database error.
func isConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
