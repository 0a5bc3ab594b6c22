package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"outlay/internal/core"

	_ "modernc.org/sqlite"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx. Queries that may run inside
// or outside a unit of work take it instead of a concrete handle.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// SQLite allows a single writer; serializing through one connection
	// avoids SQLITE_BUSY on concurrent mutations.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// WithTx runs fn inside one transaction. The transaction is rolled back on
// any error (including context cancellation) and committed otherwise; it
// never stays open past the return.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// appendDateRange adds inclusive date bounds to a WHERE clause. Each bound is
// applied independently; an open side imposes no constraint.
func appendDateRange(conds []string, args []any, rng core.DateRange) ([]string, []any) {
	if !rng.Start.IsZero() {
		conds = append(conds, "e.date >= ?")
		args = append(args, rng.Start.String())
	}
	if !rng.End.IsZero() {
		conds = append(conds, "e.date <= ?")
		args = append(args, rng.End.String())
	}
	return conds, args
}

// orderClause renders a validated sort spec through a fixed column map.
// Request text never reaches the SQL string.
func orderClause(spec core.SortSpec, columns map[string]string) (string, error) {
	col, ok := columns[spec.Key]
	if !ok {
		return "", core.ErrInvalidSort
	}
	dir := "ASC"
	if spec.Descending {
		dir = "DESC"
	}
	return col + " " + dir, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
