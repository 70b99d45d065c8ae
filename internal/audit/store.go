// Package audit keeps a SQLite history of reconciliation results.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"grimm.is/converge/internal/config"
	"grimm.is/converge/internal/reconcile"
)

// Event is one stored reconciliation result.
type Event struct {
	ID        int64     `json:"id" yaml:"id"`
	RunID     string    `json:"run_id" yaml:"run_id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Kind      string    `json:"kind" yaml:"kind"`
	Name      string    `json:"name" yaml:"name"`
	State     string    `json:"state" yaml:"state"`
	Changed   bool      `json:"changed" yaml:"changed"`
	DryRun    bool      `json:"dry_run" yaml:"dry_run"`
	Failed    bool      `json:"failed" yaml:"failed"`
	ErrorKind string    `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Msg       string    `json:"msg,omitempty" yaml:"msg,omitempty"`
	Commands  []string  `json:"commands,omitempty" yaml:"commands,omitempty"`
}

// Result rebuilds the reconciliation result the event was recorded from.
func (e Event) Result() reconcile.Result {
	return reconcile.Result{
		State:    config.State(e.State),
		Name:     e.Name,
		Kind:     reconcile.ResourceKind(e.Kind),
		Changed:  e.Changed,
		Commands: e.Commands,
		Msg:      e.Msg,
		Failed:   e.Failed,
	}
}

// Filter narrows Query. Zero fields match everything.
type Filter struct {
	RunID string
	Kind  string
	Name  string
	Since time.Time
	Limit int
}

// Store provides persistent storage for reconciliation events.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open opens (creating if needed) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS reconciliations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			state TEXT NOT NULL,
			changed INTEGER NOT NULL DEFAULT 0,
			dry_run INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			error_kind TEXT,
			msg TEXT,
			commands TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_reconciliations_timestamp ON reconciliations(timestamp);
		CREATE INDEX IF NOT EXISTS idx_reconciliations_run ON reconciliations(run_id);
		CREATE INDEX IF NOT EXISTS idx_reconciliations_resource ON reconciliations(kind, name);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create audit table: %w", err)
	}

	return &Store{db: db}, nil
}

// Record implements reconcile.Recorder.
func (s *Store) Record(ctx context.Context, entry reconcile.Entry) error {
	res := entry.Result

	var commands []byte
	if len(res.Commands) > 0 {
		var err error
		commands, err = json.Marshal(res.Commands)
		if err != nil {
			return fmt.Errorf("encode commands: %w", err)
		}
	}

	var errorKind string
	if res.FailureTrace != nil {
		errorKind = string(res.FailureTrace.Kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reconciliations (run_id, timestamp, kind, name, state, changed, dry_run, failed, error_kind, msg, commands)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.RunID, entry.At.UTC(), string(res.Kind), res.Name, string(res.State),
		res.Changed, entry.DryRun, res.Failed, errorKind, res.Msg, string(commands))
	if err != nil {
		return fmt.Errorf("insert reconciliation: %w", err)
	}
	return nil
}

// Query returns events matching f, newest first.
func (s *Store) Query(ctx context.Context, f Filter) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, run_id, timestamp, kind, name, state, changed, dry_run, failed, error_kind, msg, commands
		FROM reconciliations WHERE 1=1`
	var args []any

	if f.RunID != "" {
		query += " AND run_id = ?"
		args = append(args, f.RunID)
	}
	if f.Kind != "" {
		query += " AND kind = ?"
		args = append(args, f.Kind)
	}
	if f.Name != "" {
		query += " AND name = ?"
		args = append(args, f.Name)
	}
	if !f.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, f.Since.UTC())
	}

	query += " ORDER BY timestamp DESC, id DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reconciliations: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var evt Event
		var errorKind, msg, commands sql.NullString

		err := rows.Scan(&evt.ID, &evt.RunID, &evt.Timestamp, &evt.Kind, &evt.Name, &evt.State,
			&evt.Changed, &evt.DryRun, &evt.Failed, &errorKind, &msg, &commands)
		if err != nil {
			return nil, fmt.Errorf("scan reconciliation: %w", err)
		}

		evt.ErrorKind = errorKind.String
		evt.Msg = msg.String
		if commands.Valid && commands.String != "" {
			if err := json.Unmarshal([]byte(commands.String), &evt.Commands); err != nil {
				return nil, fmt.Errorf("decode commands of event %d: %w", evt.ID, err)
			}
		}

		events = append(events, evt)
	}
	return events, rows.Err()
}

// Prune removes events recorded before cutoff.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM reconciliations WHERE timestamp < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune reconciliations: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
