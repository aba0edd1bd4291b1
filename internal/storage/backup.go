package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"tally/internal/common"
)

// Backup copies the live database file to dst, creating parent directories
// as needed. The WAL is checkpointed into the main file first, so the copy
// includes every committed transaction.
//
// The copy reads the file directly, so it must not run while a write
// transaction is in flight; a copy taken mid-write can be torn. Callers
// are responsible for quiescing writers first, typically by running
// backups from the same goroutine that owns all mutations.
func (s *Store) Backup(ctx context.Context, dst string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(dst, "dst"); err != nil {
		return err
	}
	db, err := s.handle()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("%w: failed to checkpoint WAL: %v", common.ErrDatabase, err)
	}

	if err := copyFile(s.dbPath, dst); err != nil {
		return fmt.Errorf("failed to back up database: %w", err)
	}
	return nil
}

// copyFile copies src to dst verbatim, creating dst's parent directories.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy file: %w", err)
	}
	return out.Close()
}
