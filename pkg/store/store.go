// Package store persists appearance results in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leowmjw/go-temporal-appearance/pkg/temporal"

	_ "modernc.org/sqlite"
)

// Store is a temporal.ResultStore backed by a SQLite database in WAL mode.
type Store struct {
	db *sql.DB
}

var _ temporal.ResultStore = (*Store)(nil)

// New opens (or creates) the SQLite database and initializes the schema.
// path may be a file name, a file: URI with its own query parameters, or :memory:.
func New(path string) (*Store, error) {
	dsn, inMemory := buildDSN(path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if inMemory {
		// Every connection to an in-memory database gets its own empty copy
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

const pragmas = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_pragma=synchronous(NORMAL)"

// buildDSN appends the connection pragmas to path and reports whether it names an in-memory database.
func buildDSN(path string) (string, bool) {
	inMemory := path == ":memory:" || strings.HasPrefix(path, "file::memory:") || strings.Contains(path, "mode=memory")

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + pragmas, inMemory
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS appearance_results (
		lesson_id   TEXT PRIMARY KEY,
		seconds     INTEGER NOT NULL,
		payload     TEXT NOT NULL,
		computed_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveResult upserts the result for its lesson.
func (s *Store) SaveResult(ctx context.Context, result *temporal.AppearanceResult) error {
	if result.LessonID == "" {
		return errors.New("result has no lesson id")
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result %s: %w", result.LessonID, err)
	}

	return retryOnContention(func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO appearance_results (lesson_id, seconds, payload, computed_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(lesson_id) DO UPDATE SET
			   seconds = excluded.seconds,
			   payload = excluded.payload,
			   computed_at = excluded.computed_at`,
			result.LessonID, result.Seconds, string(payload),
			result.ComputedAt.UTC().Format(time.RFC3339Nano),
		)
		return err
	})
}

// GetResult returns the stored result for a lesson, or temporal.ErrResultNotFound.
func (s *Store) GetResult(ctx context.Context, lessonID string) (*temporal.AppearanceResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM appearance_results WHERE lesson_id = ?`, lessonID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", temporal.ErrResultNotFound, lessonID)
	}
	if err != nil {
		return nil, fmt.Errorf("get result %s: %w", lessonID, err)
	}
	return decodeResult(lessonID, payload)
}

// ListResults returns all stored results ordered by lesson id.
func (s *Store) ListResults(ctx context.Context) ([]*temporal.AppearanceResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lesson_id, payload FROM appearance_results ORDER BY lesson_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*temporal.AppearanceResult
	for rows.Next() {
		var lessonID, payload string
		if err := rows.Scan(&lessonID, &payload); err != nil {
			return nil, err
		}
		result, err := decodeResult(lessonID, payload)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func decodeResult(lessonID, payload string) (*temporal.AppearanceResult, error) {
	var result temporal.AppearanceResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("decode result %s: %w", lessonID, err)
	}
	return &result, nil
}
