// Package store persists named target functions and their evaluation runs.
//
// It uses SQLite through database/sql with two tables: functions holds the
// inline source of each named function, and runs logs every evaluation,
// gradient, Hessian, check or minimization performed on one of them.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ErrNotFound is returned when no function has the requested name.
var ErrNotFound = errors.New("store: function not found")

// Function is a stored target function.
type Function struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	Inputs    int       `json:"inputs"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Run is one logged operation on a stored function.
type Run struct {
	ID         string          `json:"id"`
	FunctionID string          `json:"function_id"`
	Kind       string          `json:"kind"`
	Point      []float64       `json:"point"`
	Result     json.RawMessage `json:"result"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Store is a SQLite-backed function library.
type Store struct {
	db  *sql.DB
	log *logrus.Entry
}

// New opens (creating if needed) the database at path and runs migrations.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}

	db, err := openDB("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	s := &Store{db: db, log: logrus.WithField("component", "store")}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}

	s.log.WithField("path", path).Debug("function library opened")
	return s, nil
}

// connPragmas are applied by the driver to every pooled connection.
var connPragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(1)",
}

// dsn builds the modernc.org/sqlite data source name for path.
func dsn(path string) string {
	return path + "?_pragma=" + strings.Join(connPragmas, "&_pragma=")
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS functions (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL UNIQUE,
			source     TEXT NOT NULL,
			inputs     INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			function_id TEXT NOT NULL REFERENCES functions(id) ON DELETE CASCADE,
			kind        TEXT NOT NULL,
			point       TEXT NOT NULL,
			result      TEXT NOT NULL,
			created_at  TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_function ON runs(function_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save inserts a function or replaces the source of the one with the same
// name, keeping its id and run history.
func (s *Store) Save(name, source string, inputs int) (*Function, error) {
	if name == "" {
		return nil, errors.New("store: empty function name")
	}

	now := time.Now().UTC()
	existing, err := s.Get(name)
	switch {
	case errors.Is(err, ErrNotFound):
		fn := &Function{
			ID:        uuid.NewString(),
			Name:      name,
			Source:    source,
			Inputs:    inputs,
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, err := s.db.Exec(
			`INSERT INTO functions (id, name, source, inputs, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			fn.ID, fn.Name, fn.Source, fn.Inputs, formatTime(now), formatTime(now),
		)
		if err != nil {
			return nil, fmt.Errorf("store: insert %s: %w", name, err)
		}
		s.log.WithFields(logrus.Fields{"function": name, "id": fn.ID}).Debug("function saved")
		return fn, nil

	case err != nil:
		return nil, err
	}

	_, err = s.db.Exec(
		`UPDATE functions SET source = ?, inputs = ?, updated_at = ? WHERE id = ?`,
		source, inputs, formatTime(now), existing.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: update %s: %w", name, err)
	}
	existing.Source = source
	existing.Inputs = inputs
	existing.UpdatedAt = now
	s.log.WithFields(logrus.Fields{"function": name, "id": existing.ID}).Debug("function updated")
	return existing, nil
}

// Get returns the function called name.
func (s *Store) Get(name string) (*Function, error) {
	row := s.db.QueryRow(
		`SELECT id, name, source, inputs, created_at, updated_at FROM functions WHERE name = ?`, name)

	fn, err := scanFunction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", name, err)
	}
	return fn, nil
}

// List returns every stored function ordered by name.
func (s *Store) List() ([]*Function, error) {
	rows, err := s.db.Query(
		`SELECT id, name, source, inputs, created_at, updated_at FROM functions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []*Function
	for rows.Next() {
		fn, err := scanFunction(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list: %w", err)
		}
		out = append(out, fn)
	}
	return out, rows.Err()
}

// Delete removes the function called name and its runs.
func (s *Store) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM functions WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	s.log.WithField("function", name).Debug("function deleted")
	return nil
}

// RecordRun logs an operation of the given kind on the function called
// name. result is stored as JSON.
func (s *Store) RecordRun(name, kind string, point []float64, result any) (*Run, error) {
	fn, err := s.Get(name)
	if err != nil {
		return nil, err
	}

	pointJSON, err := json.Marshal(point)
	if err != nil {
		return nil, fmt.Errorf("store: encode point: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("store: encode result: %w", err)
	}

	run := &Run{
		ID:         uuid.NewString(),
		FunctionID: fn.ID,
		Kind:       kind,
		Point:      append([]float64(nil), point...),
		Result:     resultJSON,
		CreatedAt:  time.Now().UTC(),
	}
	_, err = s.db.Exec(
		`INSERT INTO runs (id, function_id, kind, point, result, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.FunctionID, run.Kind, string(pointJSON), string(resultJSON), formatTime(run.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("store: record run: %w", err)
	}
	return run, nil
}

// Runs returns the most recent runs of the function called name, newest
// first. limit <= 0 returns all of them.
func (s *Store) Runs(name string, limit int) ([]*Run, error) {
	fn, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(
		`SELECT id, function_id, kind, point, result, created_at FROM runs
		 WHERE function_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, fn.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: runs %s: %w", name, err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		var (
			run              Run
			point, createdAt string
			result           string
		)
		if err := rows.Scan(&run.ID, &run.FunctionID, &run.Kind, &point, &result, &createdAt); err != nil {
			return nil, fmt.Errorf("store: runs %s: %w", name, err)
		}
		if err := json.Unmarshal([]byte(point), &run.Point); err != nil {
			return nil, fmt.Errorf("store: decode point of run %s: %w", run.ID, err)
		}
		run.Result = json.RawMessage(result)
		if run.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, &run)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFunction(row scanner) (*Function, error) {
	var (
		fn                   Function
		createdAt, updatedAt string
	)
	if err := row.Scan(&fn.ID, &fn.Name, &fn.Source, &fn.Inputs, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if fn.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if fn.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &fn, nil
}

// timeLayout is fixed-width so that timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: bad timestamp %q: %w", s, err)
	}
	return t, nil
}
