/*
PURPOSE:
  Keeps a history of sweeps in a local SQLite database so runs can be
  compared later without re-running them (`qr-bench history`).

REQUIREMENTS:
  User-specified:
  - Same rows as the CSV output, plus which run they belong to.

  Implementation-discovered:
  - modernc.org/sqlite is CGO-free, so the binary cross-compiles.
  - SQLite has one writer; the pool is pinned to one connection.
  - Seeds are uint64 and SQLite integers are signed; they are stored as the
    same 64 bits and converted back on read.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (run --save, history)
  - Implements: output.RowWriter
  - Dependencies: modernc.org/sqlite

ERROR HANDLING:
  - All errors wrapped with context.
  - Results for an unknown run return ErrRunNotFound.

USAGE:
  db, err := store.Open(dir, store.DefaultOptions())
  db.SaveRun(ctx, run)
  db.Write(result)
  run, err := db.Run(ctx, id)

RELATED FILES:
  - internal/model/types.go
*/

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/daryltucker/qr-bench/internal/model"
)

// FileName is the database file created inside the history directory.
const FileName = "history.db"

// ErrRunNotFound is returned when a run id has no record.
var ErrRunNotFound = errors.New("run not found")

// Store is the SQLite-backed run history.
type Store struct {
	db   *sql.DB
	path string
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool

	// EnableWAL switches the journal to write-ahead logging.
	EnableWAL bool
}

// DefaultOptions creates the database on demand with WAL enabled.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database inside dir.
func Open(dir string, opts Options) (*Store, error) {
	path := filepath.Join(dir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", path)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := path + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = path + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, path: path}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Path is the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		seed INTEGER NOT NULL,
		config TEXT
	);

	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		timestamp TEXT NOT NULL,
		background TEXT NOT NULL,
		border_color TEXT NOT NULL,
		box_size INTEGER NOT NULL,
		ec_level TEXT NOT NULL,
		jpeg_quality INTEGER NOT NULL,
		size TEXT NOT NULL,
		preprocess INTEGER NOT NULL,
		iterations INTEGER NOT NULL,
		successes INTEGER NOT NULL,
		total_read_ns INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun records the start of a sweep.
func (s *Store) SaveRun(ctx context.Context, run model.Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, seed, config) VALUES (?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		int64(run.Seed), //nolint:gosec // stored bit-for-bit
		run.Config,
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// Write stores one result row. The run must have been saved first.
func (s *Store) Write(r model.Result) error {
	_, err := s.db.ExecContext(context.Background(), `
	INSERT INTO results (run_id, timestamp, background, border_color, box_size, ec_level,
		jpeg_quality, size, preprocess, iterations, successes, total_read_ns)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.RunID,
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		r.Background,
		r.BorderColor,
		r.BoxSize,
		r.ECLevel.String(),
		r.Quality,
		r.Size.String(),
		r.Preprocess,
		r.Iterations,
		r.Successes,
		int64(r.TotalReadTime),
	)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

// RunSummary is a stored run plus how many rows it produced.
type RunSummary struct {
	model.Run
	Rows int
}

// ListRuns returns the most recent runs first. limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
	SELECT r.id, r.started_at, r.seed, COALESCE(r.config, ''), COUNT(res.id)
	FROM runs r
	LEFT JOIN results res ON res.run_id = r.id
	GROUP BY r.id
	ORDER BY r.started_at DESC
	`
	args := make([]interface{}, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			rs      RunSummary
			started string
			seed    int64
		)
		if err := rows.Scan(&rs.ID, &started, &seed, &rs.Config, &rs.Rows); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rs.StartedAt = parseTimestamp(started)
		rs.Seed = uint64(seed) //nolint:gosec // stored bit-for-bit
		runs = append(runs, rs)
	}
	return runs, rows.Err()
}

// Run returns one stored run.
func (s *Store) Run(ctx context.Context, id string) (model.Run, error) {
	var (
		run     model.Run
		started string
		seed    int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, seed, COALESCE(config, '') FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &started, &seed, &run.Config)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return model.Run{}, fmt.Errorf("failed to get run: %w", err)
	}
	run.StartedAt = parseTimestamp(started)
	run.Seed = uint64(seed) //nolint:gosec // stored bit-for-bit
	return run, nil
}

// Results returns a run's rows grouped into tables in insertion order.
func (s *Store) Results(ctx context.Context, runID string) ([]model.Group, error) {
	if _, err := s.Run(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT run_id, timestamp, background, border_color, box_size, ec_level, jpeg_quality,
		size, preprocess, iterations, successes, total_read_ns
	FROM results
	WHERE run_id = ?
	ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var groups []model.Group
	for rows.Next() {
		var (
			r         model.Result
			timestamp string
			level     string
			size      string
			readNanos int64
		)
		err := rows.Scan(
			&r.RunID,
			&timestamp,
			&r.Background,
			&r.BorderColor,
			&r.BoxSize,
			&level,
			&r.Quality,
			&size,
			&r.Preprocess,
			&r.Iterations,
			&r.Successes,
			&readNanos,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.Timestamp = parseTimestamp(timestamp)
		r.TotalReadTime = time.Duration(readNanos)
		if r.ECLevel, err = model.ParseECLevel(level); err != nil {
			return nil, fmt.Errorf("corrupt result row: %w", err)
		}
		if r.Size, err = model.ParseSize(size); err != nil {
			return nil, fmt.Errorf("corrupt result row: %w", err)
		}

		n := len(groups)
		if n == 0 || groups[n-1].Background != r.Background || groups[n-1].BorderColor != r.BorderColor {
			groups = append(groups, model.Group{Background: r.Background, BorderColor: r.BorderColor})
			n++
		}
		groups[n-1].Rows = append(groups[n-1].Rows, r)
	}
	return groups, rows.Err()
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
