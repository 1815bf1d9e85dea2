// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite ledger of archive operations so moved
// tasks can be traced back to the file and run they came from.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/task-archiver/pkg/types"
)

// defaultLimit caps List when QueryOptions.Limit is zero.
const defaultLimit = 50

// timeLayout has a fixed width so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path, creating its directory and
// schema as needed.
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
		`CREATE TABLE IF NOT EXISTS archives (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			run_id TEXT NOT NULL,
			time TEXT NOT NULL,
			source TEXT NOT NULL,
			destination TEXT,
			rule INTEGER NOT NULL,
			tasks INTEGER NOT NULL,
			content TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_archives_source ON archives(source)`,
		`CREATE INDEX IF NOT EXISTS idx_archives_run_id ON archives(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores records in one transaction. Records without an ID get a
// fresh one.
func (s *Store) Record(ctx context.Context, records []types.ArchiveRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO archives (id, run_id, time, source, destination, rule, tasks, content)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		id := r.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err := stmt.ExecContext(ctx,
			id, r.RunID, r.Time.UTC().Format(timeLayout),
			r.Source, r.Destination, r.Rule, r.Tasks, r.Content,
		)
		if err != nil {
			return fmt.Errorf("inserting record for %s: %w", r.Source, err)
		}
	}

	return tx.Commit()
}

// QueryOptions filters List and the exports.
type QueryOptions struct {
	// Source limits results to one source file.
	Source string

	// RunID limits results to one archive run.
	RunID string

	// Contains matches records whose archived text contains the string.
	Contains string

	// Since drops records older than this time.
	Since time.Time

	// Limit caps the number of records. Zero uses a default; negative
	// means no limit.
	Limit int
}

// List returns matching records, newest first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]types.ArchiveRecord, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT id, run_id, time, source, destination, rule, tasks, content
		FROM archives WHERE 1=1`)

	if opts.Source != "" {
		qb.WriteString(` AND source = ?`)
		args = append(args, opts.Source)
	}
	if opts.RunID != "" {
		qb.WriteString(` AND run_id = ?`)
		args = append(args, opts.RunID)
	}
	if opts.Contains != "" {
		qb.WriteString(` AND instr(content, ?) > 0`)
		args = append(args, opts.Contains)
	}
	if !opts.Since.IsZero() {
		qb.WriteString(` AND time >= ?`)
		args = append(args, opts.Since.UTC().Format(timeLayout))
	}
	qb.WriteString(` ORDER BY time DESC, rowid DESC`)

	limit := opts.Limit
	if limit == 0 {
		limit = defaultLimit
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

	var records []types.ArchiveRecord
	for rows.Next() {
		var (
			r           types.ArchiveRecord
			ts          string
			destination sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.RunID, &ts, &r.Source, &destination, &r.Rule, &r.Tasks, &r.Content); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		r.Destination = destination.String
		if r.Time, err = time.Parse(timeLayout, ts); err != nil {
			return nil, fmt.Errorf("parsing time of record %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
