package issued

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists the set of words known to have a tracking issue, so repeat
// runs skip the remote search for them. Backed by SQLite; an absent database
// file is an empty set.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the issued-words database.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) applyMigrations(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS issued_words (
            word       TEXT PRIMARY KEY,
            issued_at  TEXT NOT NULL
        )`)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Has reports whether word is already recorded.
func (s *Store) Has(ctx context.Context, word string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT 1 FROM issued_words WHERE word = ?`, word)
	var one int
	err := row.Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup issued word: %w", err)
	}
	return true, nil
}

// Add records word as issued. Recording an already-known word is a no-op, so
// a pass interrupted mid-run can be replayed safely.
func (s *Store) Add(ctx context.Context, word string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO issued_words (word, issued_at) VALUES (?, ?)
         ON CONFLICT(word) DO NOTHING`,
		word,
		timestamp,
	)
	if err != nil {
		return fmt.Errorf("record issued word: %w", err)
	}
	return nil
}

// Remove drops a word, allowing a future run to re-query the tracker for it.
func (s *Store) Remove(ctx context.Context, word string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM issued_words WHERE word = ?`, word); err != nil {
		return fmt.Errorf("remove issued word: %w", err)
	}
	return nil
}

// All returns every recorded word in insertion-time order.
func (s *Store) All(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word FROM issued_words ORDER BY issued_at, word`)
	if err != nil {
		return nil, fmt.Errorf("list issued words: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("scan issued word: %w", err)
		}
		words = append(words, word)
	}
	return words, rows.Err()
}

// Count returns the number of recorded words.
func (s *Store) Count(ctx context.Context) (int, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM issued_words`)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count issued words: %w", err)
	}
	return count, nil
}
