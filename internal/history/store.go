package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultLimit = 20

// Store is the SQLite journal of launcher runs.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or connects to the journal at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordOutcome appends an application stage result.
func (s *Store) RecordOutcome(ctx context.Context, outcome Outcome) error {
	if s == nil {
		return nil
	}
	created := outcome.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO app_events (run_id, app, stage, result, detail, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		outcome.RunID,
		outcome.App,
		outcome.Stage,
		outcome.Result,
		nullableString(outcome.Detail),
		created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert app event: %w", err)
	}
	return nil
}

// RecordRender appends a renderer launch.
func (s *Store) RecordRender(ctx context.Context, entry RenderEntry) error {
	if s == nil {
		return nil
	}
	created := entry.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	var pid any
	if entry.PID > 0 {
		pid = entry.PID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO renders (run_id, replay_path, output_name, settings, pid, error, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.ReplayPath,
		entry.OutputName,
		entry.Settings,
		pid,
		nullableString(entry.Error),
		created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert render: %w", err)
	}
	return nil
}

// RecentOutcomes returns up to limit outcomes, newest first.
func (s *Store) RecentOutcomes(ctx context.Context, limit int) ([]Outcome, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, app, stage, result, detail, created_at
        FROM app_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query app events: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var (
			o       Outcome
			detail  sql.NullString
			created string
		)
		if err := rows.Scan(&o.ID, &o.RunID, &o.App, &o.Stage, &o.Result, &detail, &created); err != nil {
			return nil, fmt.Errorf("scan app event: %w", err)
		}
		o.Detail = detail.String
		o.CreatedAt = parseTime(created)
		out = append(out, o)
	}
	return out, rows.Err()
}

// RecentRenders returns up to limit renders, newest first.
func (s *Store) RecentRenders(ctx context.Context, limit int) ([]RenderEntry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, replay_path, output_name, settings, pid, error, created_at
        FROM renders ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query renders: %w", err)
	}
	defer rows.Close()

	var out []RenderEntry
	for rows.Next() {
		var (
			r       RenderEntry
			pid     sql.NullInt64
			errText sql.NullString
			created string
		)
		if err := rows.Scan(&r.ID, &r.RunID, &r.ReplayPath, &r.OutputName, &r.Settings, &pid, &errText, &created); err != nil {
			return nil, fmt.Errorf("scan render: %w", err)
		}
		r.PID = int(pid.Int64)
		r.Error = errText.String
		r.CreatedAt = parseTime(created)
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func parseTime(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}
