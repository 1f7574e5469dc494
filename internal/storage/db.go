// Package storage is the durable persistence layer: a single local SQLite
// database holding the exercises, workouts, and sets collections.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	liftlog "github.com/claude/liftlog"
	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle and provides repository methods.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the SQLite database at the given path. The
// connection pool is capped at one connection: mutations are serialized by
// the caller anyway, and a single connection guarantees readers never observe
// a grouped write mid-flight.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir %s: %w", dir, err)
		}
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{sql: db}, nil
}

// Close closes the database handle.
func (db *DB) Close() error {
	return db.sql.Close()
}

// RunMigrations applies all pending schema migrations from the embedded
// migrations directory.
func (db *DB) RunMigrations() error {
	src, err := iofs.New(liftlog.MigrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading embedded migrations: %w", err)
	}
	driver, err := sqlitemigrate.WithInstance(db.sql, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error. Grouped writes go through here so readers see either the
// pre-state or the full post-state, never an intermediate one.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
