// Package history records every anvil invocation in a SQLite database under
// the output base. The history command reads it back; nothing else depends
// on it, so recording failures never fail the invocation.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver registration
)

// ErrNotFound is returned when an invocation doesn't exist.
var ErrNotFound = errors.New("invocation not found")

// Invocation is one recorded command invocation.
type Invocation struct {
	ID       string
	Started  time.Time
	Command  string
	Args     []string
	ExitCode int
	Duration time.Duration
}

// Store provides invocation storage using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates an invocation store at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS invocations (
			id          TEXT PRIMARY KEY,
			started     TEXT NOT NULL,
			command     TEXT NOT NULL,
			args        TEXT NOT NULL,
			exit_code   INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_invocations_started ON invocations(started);
		CREATE INDEX IF NOT EXISTS idx_invocations_command ON invocations(command);
	`)
	return err
}

// NewID returns a fresh invocation id.
func NewID() string {
	return uuid.NewString()
}

// Record stores one invocation.
func (s *Store) Record(inv Invocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inv.ID == "" {
		inv.ID = NewID()
	}
	if inv.Started.IsZero() {
		inv.Started = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO invocations (id, started, command, args, exit_code, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.Started.UTC().Format(time.RFC3339Nano), inv.Command,
		strings.Join(inv.Args, "\x00"), inv.ExitCode, inv.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("inserting invocation: %w", err)
	}
	return nil
}

// ListOptions filters List results.
type ListOptions struct {
	// Limit caps the number of rows returned, newest first. 0 means all.
	Limit int
	// FailedOnly keeps only invocations with a non-zero exit code.
	FailedOnly bool
}

// List returns recorded invocations, newest first.
func (s *Store) List(opts ListOptions) ([]Invocation, error) {
	query := `SELECT id, started, command, args, exit_code, duration_ms FROM invocations`
	var params []any
	if opts.FailedOnly {
		query += ` WHERE exit_code != 0`
	}
	query += ` ORDER BY started DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		params = append(params, opts.Limit)
	}

	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("querying invocations: %w", err)
	}
	defer rows.Close()

	var out []Invocation
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// Get retrieves an invocation by id.
func (s *Store) Get(id string) (*Invocation, error) {
	row := s.db.QueryRow(`
		SELECT id, started, command, args, exit_code, duration_ms
		FROM invocations WHERE id = ?
	`, id)
	inv, err := scanInvocation(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Prune deletes invocations older than the cutoff, returning how many were
// removed.
func (s *Store) Prune(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM invocations WHERE started < ?`,
		cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("pruning invocations: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInvocation(row scanner) (Invocation, error) {
	var inv Invocation
	var started, args string
	var durationMS int64
	if err := row.Scan(&inv.ID, &started, &inv.Command, &args, &inv.ExitCode, &durationMS); err != nil {
		if err == sql.ErrNoRows {
			return inv, err
		}
		return inv, fmt.Errorf("scanning invocation: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return inv, fmt.Errorf("parsing timestamp %q: %w", started, err)
	}
	inv.Started = t
	if args != "" {
		inv.Args = strings.Split(args, "\x00")
	}
	inv.Duration = time.Duration(durationMS) * time.Millisecond
	return inv, nil
}
