// Package sqlite provides the SQLite score ledger for resonance.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrClosed is returned by ledger calls on a closed Store.
var ErrClosed = errors.New("sqlite ledger closed")

// stmt names one of the ledger's prepared statements.
type stmt int

const (
	stmtInsertScore stmt = iota
	stmtRecentScores
	stmtScoreStats
	stmtPruneScores
)

const scoreColumns = `id, kind, subject, label, score, inputs, created_at_epoch`

// statements are prepared once when the store opens.
var statements = map[stmt]string{
	stmtInsertScore: `
		INSERT INTO score_records (` + scoreColumns + `, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	stmtRecentScores: `
		SELECT ` + scoreColumns + `
		FROM score_records
		WHERE ? = '' OR kind = ?
		ORDER BY created_at_epoch DESC, rowid DESC
		LIMIT ?`,
	// Label-only records carry a negative score and stay out of the aggregates.
	stmtScoreStats: `
		SELECT COUNT(*),
		       COALESCE(AVG(CASE WHEN score >= 0 THEN score END), 0),
		       COALESCE(MIN(CASE WHEN score >= 0 THEN score END), 0),
		       COALESCE(MAX(CASE WHEN score >= 0 THEN score END), 0)
		FROM score_records
		WHERE kind = ?`,
	stmtPruneScores: `DELETE FROM score_records WHERE created_at_epoch < ?`,
}

// Store is a migrated SQLite database with the ledger statements prepared.
type Store struct {
	db *sql.DB

	mu    sync.RWMutex
	stmts map[stmt]*sql.Stmt
}

// StoreConfig holds configuration for the database store.
type StoreConfig struct {
	Path     string
	MaxConns int
}

// NewStore opens the database at cfg.Path in WAL mode, applies pending
// migrations and prepares the ledger statements.
func NewStore(cfg StoreConfig) (*Store, error) {
	dsn := cfg.Path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 4
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := NewMigrationManager(db).RunMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{db: db, stmts: make(map[stmt]*sql.Stmt, len(statements))}
	for name, query := range statements {
		prepared, err := db.Prepare(query)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("prepare ledger statement %d: %w", name, err)
		}
		s.stmts[name] = prepared
	}
	return s, nil
}

// Close closes the prepared statements and the database. Later ledger
// calls return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stmts == nil {
		return nil
	}
	for _, prepared := range s.stmts {
		_ = prepared.Close()
	}
	s.stmts = nil
	return s.db.Close()
}

func (s *Store) prepared(name stmt) (*sql.Stmt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stmts == nil {
		return nil, ErrClosed
	}
	return s.stmts[name], nil
}

func (s *Store) exec(ctx context.Context, name stmt, args ...any) (sql.Result, error) {
	prepared, err := s.prepared(name)
	if err != nil {
		return nil, err
	}
	return prepared.ExecContext(ctx, args...)
}

func (s *Store) query(ctx context.Context, name stmt, args ...any) (*sql.Rows, error) {
	prepared, err := s.prepared(name)
	if err != nil {
		return nil, err
	}
	return prepared.QueryContext(ctx, args...)
}

func (s *Store) queryRow(ctx context.Context, name stmt, args ...any) (*sql.Row, error) {
	prepared, err := s.prepared(name)
	if err != nil {
		return nil, err
	}
	return prepared.QueryRowContext(ctx, args...), nil
}

// Optimize refreshes query planner statistics and truncates the WAL.
// Run it after bulk deletes.
func (s *Store) Optimize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		return fmt.Errorf("optimize: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("checkpoint wal: %w", err)
	}
	return nil
}

// Ping checks if the database connection is alive.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}
