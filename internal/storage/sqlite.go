package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"tally/internal/common"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Store owns the single connection to the on-disk SQLite database. All
// statements carrying caller-supplied values go through bound parameters;
// ExecScript is reserved for schema DDL and never sees user data.
//
// The ledger assumes exactly one writer process. Within the process the
// Store serializes access through a single connection, so statements
// execute in issue order.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// NewStore creates a store for the database at dbPath. The connection is
// not opened until Open is called.
func NewStore(dbPath string) (*Store, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}
	return &Store{dbPath: dbPath}, nil
}

// Open opens the database connection. It is a no-op if the store is
// already open. Parent directories are created as needed and foreign-key
// enforcement is switched on.
func (s *Store) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	dir := filepath.Dir(s.dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", s.dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("%w: failed to open database: %v", common.ErrDatabase, err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: failed to ping database: %v", common.ErrDatabase, err)
	}

	s.db = db
	return nil
}

// Close closes the database connection. Closing an already-closed store
// is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the on-disk location of the database file.
func (s *Store) Path() string {
	return s.dbPath
}

// handle returns the open database handle or ErrNotConnected.
func (s *Store) handle() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, common.ErrNotConnected
	}
	return s.db, nil
}

// BeginTx starts a new database transaction.
func (s *Store) BeginTx(ctx context.Context) (*sql.Tx, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", common.ErrDatabase, err)
	}
	return tx, nil
}

// ExecScript executes a multi-statement SQL text without parameter
// binding. It exists for schema scripts only; routing user data through
// it would bypass the placeholder boundary.
func (s *Store) ExecScript(ctx context.Context, script string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	db, err := s.handle()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("%w: failed to execute script: %v", common.ErrDatabase, err)
	}
	return nil
}
