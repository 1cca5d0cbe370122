// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/MatrixManAtYrService/rhizome-sub001/internal/schema"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

type options struct {
	foreignKeys bool
	busyTimeout int
}

// Option configures a SQLiteStore.
type Option func(*options)

// WithForeignKeys toggles foreign key enforcement (on by default).
// Fixture sinks turn it off so tables can be filled in any order.
func WithForeignKeys(enabled bool) Option {
	return func(o *options) { o.foreignKeys = enabled }
}

// WithBusyTimeout sets how long a connection waits on a locked database, in milliseconds.
func WithBusyTimeout(ms int) Option {
	return func(o *options) { o.busyTimeout = ms }
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string, opts ...Option) (*SQLiteStore, error) {
	o := options{foreignKeys: true, busyTimeout: 5000}
	for _, opt := range opts {
		opt(&o)
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	db, err := sql.Open("sqlite", dsn(dbPath, o))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func dsn(dbPath string, o options) string {
	fk := 0
	if o.foreignKeys {
		fk = 1
	}
	query := url.Values{}
	query.Add("_pragma", fmt.Sprintf("foreign_keys(%d)", fk))
	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", o.busyTimeout))
	return "file:" + dbPath + "?" + query.Encode()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quoteIdents(names ...string) ([]string, error) {
	quoted := make([]string, len(names))
	for i, name := range names {
		if !identPattern.MatchString(name) {
			return nil, fmt.Errorf("invalid identifier %q", name)
		}
		quoted[i] = `"` + name + `"`
	}
	return quoted, nil
}

// ScanRows streams the selected columns of every row in table, in insertion order.
func (s *SQLiteStore) ScanRows(ctx context.Context, table string, columns []string, fn func(schema.Row) error) error {
	if len(columns) == 0 {
		return fmt.Errorf("no columns selected from %s", table)
	}
	quotedTable, err := quoteIdents(table)
	if err != nil {
		return err
	}
	quotedColumns, err := quoteIdents(columns...)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", strings.Join(quotedColumns, ", "), quotedTable[0])
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	values := make([]any, len(columns))
	targets := make([]any, len(columns))
	for i := range values {
		targets[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(targets...); err != nil {
			return fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		row := make(schema.Row, len(columns))
		for i, name := range columns {
			row[name] = values[i]
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate %s rows: %w", table, err)
	}
	return nil
}

// InsertRows inserts rows into table in a single transaction.
// Columns absent from a row are inserted as NULL.
func (s *SQLiteStore) InsertRows(ctx context.Context, table string, columns []string, rows []schema.Row) error {
	if len(rows) == 0 {
		return nil
	}
	quotedTable, err := quoteIdents(table)
	if err != nil {
		return err
	}
	quotedColumns, err := quoteIdents(columns...)
	if err != nil {
		return err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quotedTable[0], strings.Join(quotedColumns, ", "), placeholders)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert into %s: %w", table, err)
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	for _, row := range rows {
		for i, name := range columns {
			args[i] = row[name]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	return &ni.Int64
}
