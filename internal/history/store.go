// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite ledger of conversion attempts so that
// past runs (and their error codes) can be listed after the fact.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/conver/pkg/types"
)

const (
	appDir          = "conver"
	dbFile          = "history.db"
	defaultMaxLimit = 20

	// timeLayout is fixed-width so that stored timestamps sort as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// DefaultPath returns <user cache dir>/conver/history.db.
func DefaultPath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating cache directory: %w", err)
	}
	return filepath.Join(base, appDir, dbFile), nil
}

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating its
// directory and schema if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			platform TEXT NOT NULL,
			input TEXT NOT NULL,
			output TEXT NOT NULL,
			keep_open INTEGER NOT NULL,
			status TEXT NOT NULL,
			error_code INTEGER NOT NULL,
			message TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_started_at ON conversions(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_input ON conversions(input)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends one conversion attempt.
func (s *Store) Record(ctx context.Context, rec types.Record) error {
	keepOpen := 0
	if rec.KeepOpen {
		keepOpen = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (started_at, duration_ms, platform, input, output, keep_open, status, error_code, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.StartedAt.UTC().Format(timeLayout),
		rec.Duration.Milliseconds(),
		rec.Platform,
		rec.Input,
		rec.Output,
		keepOpen,
		string(rec.Status),
		int(rec.ErrorCode),
		rec.Message,
	)
	if err != nil {
		return fmt.Errorf("recording conversion of %s: %w", rec.Input, err)
	}
	return nil
}

// QueryOptions filters List.
type QueryOptions struct {
	// Limit caps the number of records. Zero uses the default (20); a
	// negative value returns everything.
	Limit int

	// FailedOnly keeps attempts with a non-zero error code.
	FailedOnly bool

	// Input keeps attempts for this input path.
	Input string
}

// List returns recorded attempts, newest first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]types.Record, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT id, started_at, duration_ms, platform, input, output, keep_open, status, error_code, message
		FROM conversions
		WHERE 1=1`)

	if opts.FailedOnly {
		qb.WriteString(` AND error_code != 0`)
	}
	if opts.Input != "" {
		qb.WriteString(` AND input = ?`)
		args = append(args, opts.Input)
	}
	qb.WriteString(` ORDER BY started_at DESC, id DESC`)

	limit := opts.Limit
	if limit == 0 {
		limit = defaultMaxLimit
	}
	if limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []types.Record
	for rows.Next() {
		var (
			rec       types.Record
			startedAt string
			durMS     int64
			keepOpen  int
			status    string
			code      int
		)
		if err := rows.Scan(&rec.ID, &startedAt, &durMS, &rec.Platform, &rec.Input, &rec.Output,
			&keepOpen, &status, &code, &rec.Message); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		rec.StartedAt, err = time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing started_at %q: %w", startedAt, err)
		}
		rec.Duration = time.Duration(durMS) * time.Millisecond
		rec.KeepOpen = keepOpen != 0
		rec.Status = types.Status(status)
		rec.ErrorCode = types.ErrorCode(code)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return records, nil
}

// Prune deletes attempts that started before cutoff and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM conversions WHERE started_at < ?`,
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned rows: %w", err)
	}
	return n, nil
}
