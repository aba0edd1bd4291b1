package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tally/internal/common"
)

// migrationsTable is the append-only ledger of applied schema scripts.
const migrationsTable = "meta_migrations"

// ApplyMigrations brings the database at dbPath up to date with the schema
// scripts in migrationsDir. Scripts are applied in filename-lexical order,
// so zero-padded numeric prefixes are the ordering contract. Each script is
// committed together with its ledger row; a failing script aborts the rest
// of the sequence but leaves earlier scripts of this run committed, so
// every script must be self-consistent on its own.
//
// If the database file already exists and at least one script is pending,
// the file is first copied verbatim to
// <db-dir>/backups/<stem>_pre_migration_<UTC-timestamp>.db. That copy is
// the sole recovery mechanism for a bad migration.
//
// The migrations directory is taken literally: if it does not exist the
// run fails with a configuration error. Returns the names of the scripts
// actually applied; an empty result means the schema was already current.
//
// Migrations open their own connection and must not run concurrently with
// any other access to the store; run this once at startup before handing
// the store to readers and writers.
func ApplyMigrations(ctx context.Context, dbPath, migrationsDir string) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}
	if err := validateString(migrationsDir, "migrationsDir"); err != nil {
		return nil, err
	}

	info, err := os.Stat(migrationsDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: migrations directory not found: %s", common.ErrConfig, migrationsDir)
	}

	_, statErr := os.Stat(dbPath)
	dbExisted := statErr == nil

	store, err := NewStore(dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Open(); err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	db, err := store.handle()
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+migrationsTable+` (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`); err != nil {
		return nil, fmt.Errorf("%w: failed to create migration ledger: %v", common.ErrDatabase, err)
	}

	applied := make(map[string]bool)
	rows, err := db.QueryContext(ctx, `SELECT version FROM `+migrationsTable)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read migration ledger: %v", common.ErrDatabase, err)
	}
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("%w: failed to scan migration version: %v", common.ErrDatabase, err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("%w: error iterating migration ledger: %v", common.ErrDatabase, err)
	}
	_ = rows.Close()

	scripts, err := listMigrationScripts(migrationsDir)
	if err != nil {
		return nil, err
	}

	var pending []string
	for _, name := range scripts {
		if !applied[name] {
			pending = append(pending, name)
		}
	}
	if len(pending) == 0 {
		return []string{}, nil
	}

	if dbExisted {
		// Fold any WAL content left by a previous process into the main
		// file so the snapshot is the full pre-migration state.
		if _, err := db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
			return nil, fmt.Errorf("%w: failed to checkpoint WAL: %v", common.ErrDatabase, err)
		}
		backupPath, backupErr := preMigrationBackup(dbPath)
		if backupErr != nil {
			return nil, backupErr
		}
		slog.Info("created pre-migration backup", "path", backupPath)
	}

	appliedNow := make([]string, 0, len(pending))
	for _, name := range pending {
		script, readErr := os.ReadFile(filepath.Join(migrationsDir, name))
		if readErr != nil {
			return appliedNow, fmt.Errorf("%w: failed to read migration %s: %v", common.ErrConfig, name, readErr)
		}

		tx, txErr := db.BeginTx(ctx, nil)
		if txErr != nil {
			return appliedNow, fmt.Errorf("%w: failed to begin transaction: %v", common.ErrDatabase, txErr)
		}

		if _, execErr := tx.ExecContext(ctx, string(script)); execErr != nil {
			_ = tx.Rollback()
			return appliedNow, fmt.Errorf("%w: migration %s failed: %v", common.ErrDatabase, name, execErr)
		}

		if _, insErr := tx.ExecContext(ctx,
			`INSERT INTO `+migrationsTable+` (version, applied_at) VALUES (?, ?)`,
			name, time.Now().UTC().Format(time.RFC3339),
		); insErr != nil {
			_ = tx.Rollback()
			return appliedNow, fmt.Errorf("%w: failed to record migration %s: %v", common.ErrDatabase, name, insErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return appliedNow, fmt.Errorf("%w: failed to commit migration %s: %v", common.ErrDatabase, name, commitErr)
		}

		appliedNow = append(appliedNow, name)
		slog.Info("applied migration", "version", name)
	}

	return appliedNow, nil
}

// listMigrationScripts returns the .sql filenames in dir, sorted lexically.
func listMigrationScripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list migrations directory: %v", common.ErrConfig, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// preMigrationBackup copies the database file into a sibling backups
// directory and returns the backup path.
func preMigrationBackup(dbPath string) (string, error) {
	backupsDir := filepath.Join(filepath.Dir(dbPath), "backups")
	stem := strings.TrimSuffix(filepath.Base(dbPath), filepath.Ext(dbPath))
	ts := time.Now().UTC().Format("20060102150405")
	backupPath := filepath.Join(backupsDir, fmt.Sprintf("%s_pre_migration_%s.db", stem, ts))

	if err := copyFile(dbPath, backupPath); err != nil {
		return "", fmt.Errorf("failed to create pre-migration backup: %w", err)
	}
	return backupPath, nil
}
