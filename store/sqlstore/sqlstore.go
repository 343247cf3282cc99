// Package sqlstore persists analyzed strings in SQLite.
//
// Uniqueness is enforced by the table's PRIMARY KEY (content key) and UNIQUE
// (value) constraints. contains_character is evaluated against the stored
// frequency map when the JSON1 functions are available and falls back to a
// case-sensitive substring match on the value otherwise.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/jacentio/lexicon/analysis"
	"github.com/jacentio/lexicon/query"
	"github.com/jacentio/lexicon/store"
)

const schema = `CREATE TABLE IF NOT EXISTS entries (
	id TEXT PRIMARY KEY,
	value TEXT NOT NULL UNIQUE,
	length INTEGER NOT NULL,
	is_palindrome BOOLEAN NOT NULL,
	unique_characters INTEGER NOT NULL,
	word_count INTEGER NOT NULL,
	character_frequency_map TEXT NOT NULL,
	created_at TEXT NOT NULL
)`

const entryColumns = "id, value, length, is_palindrome, unique_characters, word_count, character_frequency_map, created_at"

const createdAtLayout = time.RFC3339

// Open opens a SQLite database at path with WAL and a busy timeout.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for concurrent reads during writes
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set busy timeout to 5 seconds
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)
	return db, nil
}

// Store is a SQLite-backed repository.
type Store struct {
	db     *sql.DB
	mode   query.ContainsMode
	logger *slog.Logger
}

// New creates the entries table if needed and checks for JSON1 support.
// A nil logger discards output.
func New(ctx context.Context, db *sql.DB, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s := &Store{db: db, mode: query.ContainsFrequency, logger: logger}
	var ok bool
	if err := db.QueryRowContext(ctx, "SELECT json_valid('{}')").Scan(&ok); err != nil || !ok {
		s.mode = query.ContainsSubstring
		logger.Warn("JSON1 unavailable, contains_character falls back to substring match", "error", err)
	}
	return s, nil
}

// ContainsMode reports how Scan evaluates contains_character.
func (s *Store) ContainsMode() query.ContainsMode {
	return s.mode
}

// Create inserts e, stamping a zero CreatedAt.
func (s *Store) Create(ctx context.Context, e analysis.Entry) (analysis.Entry, error) {
	e = e.Stamp(time.Now())
	freq, err := json.Marshal(e.CharacterFrequency)
	if err != nil {
		return analysis.Entry{}, fmt.Errorf("marshal frequency map: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO entries ("+entryColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		e.Key, e.Value, e.Length, e.IsPalindrome, e.UniqueCharacters, e.WordCount,
		string(freq), e.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return analysis.Entry{}, mapInsertError(err)
	}
	return e, nil
}

// mapInsertError translates constraint violations to store errors.
func mapInsertError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey:
			return store.ErrAlreadyExists
		case sqlite3.ErrConstraintUnique:
			return store.ErrDuplicateValue
		}
	}
	return fmt.Errorf("failed to insert entry: %w", err)
}

// Get returns the entry with the given key.
func (s *Store) Get(ctx context.Context, key string) (analysis.Entry, error) {
	return s.getOne(ctx, "id", key)
}

// GetByValue returns the entry whose value is exactly value.
func (s *Store) GetByValue(ctx context.Context, value string) (analysis.Entry, error) {
	return s.getOne(ctx, "value", value)
}

func (s *Store) getOne(ctx context.Context, column, arg string) (analysis.Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM entries WHERE "+column+" = ?", arg)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return analysis.Entry{}, store.ErrNotFound
	}
	return e, err
}

// Delete removes the entry with the given key.
func (s *Store) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Scan returns the entries matching filters, ordered by key.
func (s *Store) Scan(ctx context.Context, filters query.Filters) ([]analysis.Entry, error) {
	q, args := selectQuery(filters, s.mode)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []analysis.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (analysis.Entry, error) {
	var e analysis.Entry
	var freq, created string
	err := row.Scan(&e.Key, &e.Value, &e.Length, &e.IsPalindrome, &e.UniqueCharacters, &e.WordCount, &freq, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return analysis.Entry{}, err
	}
	if err != nil {
		return analysis.Entry{}, fmt.Errorf("failed to scan entry: %w", err)
	}
	if err := json.Unmarshal([]byte(freq), &e.CharacterFrequency); err != nil {
		return analysis.Entry{}, fmt.Errorf("failed to decode frequency map: %w", err)
	}
	if e.CreatedAt, err = time.Parse(createdAtLayout, created); err != nil {
		return analysis.Entry{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return e, nil
}
