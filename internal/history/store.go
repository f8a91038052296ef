package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Record is one completed commit run.
type Record struct {
	ID         string
	Root       string
	Dest       string
	Method     string
	Committed  int
	Failed     int
	Deleted    int
	Message    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store persists commit history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS commits (
    id TEXT PRIMARY KEY,
    root TEXT NOT NULL,
    dest TEXT NOT NULL,
    method TEXT NOT NULL,
    committed INTEGER NOT NULL,
    failed INTEGER NOT NULL,
    deleted INTEGER NOT NULL,
    message TEXT,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_commits_finished_at ON commits(finished_at);
`

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts a completed commit run. A missing ID is filled in.
func (s *Store) Record(ctx context.Context, rec Record) (Record, error) {
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = uuid.NewString()
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now().UTC()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = rec.FinishedAt
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO commits (
            id, root, dest, method, committed, failed, deleted,
            message, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Root,
		rec.Dest,
		rec.Method,
		rec.Committed,
		rec.Failed,
		rec.Deleted,
		nullableString(rec.Message),
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert commit record: %w", err)
	}
	return rec, nil
}

// List returns the most recent records, newest first. A limit of zero or
// less returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT id, root, dest, method, committed, failed, deleted,
        message, started_at, finished_at
        FROM commits ORDER BY finished_at DESC`
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list commit records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ForRoot returns records for one scanned directory, newest first.
func (s *Store) ForRoot(ctx context.Context, root string) ([]Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, root, dest, method, committed, failed, deleted,
            message, started_at, finished_at
            FROM commits WHERE root = ? ORDER BY finished_at DESC`,
		root,
	)
	if err != nil {
		return nil, fmt.Errorf("list commits for root: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetByID fetches one record, or nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, root, dest, method, committed, failed, deleted,
            message, started_at, finished_at
            FROM commits WHERE id = ?`,
		id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get commit record: %w", err)
	}
	return &rec, nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (Record, error) {
	var (
		rec         Record
		message     sql.NullString
		startedRaw  string
		finishedRaw string
	)
	if err := scanner.Scan(
		&rec.ID,
		&rec.Root,
		&rec.Dest,
		&rec.Method,
		&rec.Committed,
		&rec.Failed,
		&rec.Deleted,
		&message,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return Record{}, err
	}
	rec.Message = message.String
	if started, err := time.Parse(time.RFC3339Nano, startedRaw); err == nil {
		rec.StartedAt = started
	}
	if finished, err := time.Parse(time.RFC3339Nano, finishedRaw); err == nil {
		rec.FinishedAt = finished
	}
	return rec, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
