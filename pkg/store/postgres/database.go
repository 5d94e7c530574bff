// Package postgres stores the identity cache in PostgreSQL.
//
// Writes are collected in a transaction that is opened on the first write
// and committed by Flush. Reads issued while a batch is open see its rows.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"sync"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store is the PostgreSQL identity store.
type Store struct {
	conn   *sql.DB
	logger *log.Logger

	mu sync.Mutex
	tx *sql.Tx
}

// Open connects to dsn, checks the connection and applies pending migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := New(db)
	if err := s.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection pool. Migrations are not run.
func New(db *sql.DB) *Store {
	return &Store{
		conn:   db,
		logger: log.New(log.Writer(), "[store] ", log.LstdFlags),
	}
}

// SetLogger replaces the store logger.
func (s *Store) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

// HealthCheck pings the database with a short timeout.
func (s *Store) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return s.conn.PingContext(ctx)
}

// RunMigrations applies every embedded migration not yet recorded in
// schema_migrations, in file name order.
func (s *Store) RunMigrations(ctx context.Context) error {
	s.logger.Println("Running database migrations...")

	if err := s.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.runMigration(ctx, name); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", name, err)
		}
	}

	s.logger.Printf("Applied migrations (%d known)", len(names))
	return nil
}

// createMigrationsTable creates a table to track which migrations have been run
func (s *Store) createMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := s.conn.ExecContext(ctx, query)
	return err
}

// runMigration runs a single migration file if it hasn't been applied yet
func (s *Store) runMigration(ctx context.Context, path string) error {
	version := path[len("migrations/"):]

	var exists bool
	err := s.conn.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Printf("Skipping %s (already applied)", version)
		return nil
	}

	content, err := migrationFiles.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Printf("Applied %s", version)
	return nil
}

// Flush commits the open write batch, if any.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		return fmt.Errorf("committing identity batch: %w", err)
	}
	return nil
}

// Close flushes pending writes and closes the pool.
func (s *Store) Close() error {
	flushErr := s.Flush(context.Background())
	if err := s.conn.Close(); err != nil {
		return err
	}
	return flushErr
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// reader returns the open batch or the pool. Callers hold s.mu.
func (s *Store) reader() querier {
	if s.tx != nil {
		return s.tx
	}
	return s.conn
}

// write runs fn inside the batch transaction under a savepoint, so a failed
// statement only discards its own record. Callers hold s.mu.
func (s *Store) write(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if s.tx == nil {
		tx, err := s.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("opening identity batch: %w", err)
		}
		s.tx = tx
	}

	if _, err := s.tx.ExecContext(ctx, "SAVEPOINT identity_write"); err != nil {
		return fmt.Errorf("setting savepoint: %w", err)
	}
	if err := fn(s.tx); err != nil {
		if _, rbErr := s.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT identity_write"); rbErr != nil {
			s.logger.Printf("Rolling back to savepoint: %v", rbErr)
		}
		return err
	}
	if _, err := s.tx.ExecContext(ctx, "RELEASE SAVEPOINT identity_write"); err != nil {
		return fmt.Errorf("releasing savepoint: %w", err)
	}
	return nil
}
