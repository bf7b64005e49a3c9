// Package sqlite provides a content-addressed binary store backed by SQLite
// that implements resolver.Resolver. Ids are the hex blake2b-192 digest of the
// content, so storing the same bytes twice yields the same id.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"

	"github.com/zostay/go-mailjson/resolver"
)

// Memory is the DSN for a private in-memory database.
const Memory = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS binaries (
	id           TEXT PRIMARY KEY,
	content_type TEXT NOT NULL DEFAULT '',
	size         INTEGER NOT NULL,
	data         BLOB NOT NULL,
	created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// Store is a SQLite-backed binary store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at the given path and
// initializes the schema. Pass Memory for a throwaway database.
func Open(path string) (*Store, error) {
	dsn := path
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// an in-memory database exists per connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db}, nil
}

// ContentID returns the id the store assigns to the given bytes.
func ContentID(data []byte) string {
	h, err := blake2b.New(24, nil)
	if err != nil {
		// only fails for an invalid size or key
		panic(err)
	}
	_, _ = h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Put stores the data and returns its content id. Storing bytes that are
// already present returns the existing id without writing again.
func (s *Store) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	id := ContentID(data)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO binaries (id, content_type, size, data)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, contentType, len(data), data)
	if err != nil {
		return "", fmt.Errorf("failed to store binary: %w", err)
	}
	return id, nil
}

// Delete removes the id. It returns false if it was not present.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM binaries WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete binary: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete binary: %w", err)
	}
	return n > 0, nil
}

// Resolve implements resolver.Resolver.
func (s *Store) Resolve(ctx context.Context, id string) (io.ReadCloser, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM binaries WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite store %q: %w", id, resolver.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read binary %q: %w", id, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Lookup implements resolver.Resolver.
func (s *Store) Lookup(ctx context.Context, id string) (resolver.Handle, error) {
	h := resolver.Handle{ID: id}
	err := s.db.QueryRowContext(ctx,
		"SELECT size, content_type FROM binaries WHERE id = ?", id).Scan(&h.Size, &h.ContentType)
	if errors.Is(err, sql.ErrNoRows) {
		return resolver.Handle{}, fmt.Errorf("sqlite store %q: %w", id, resolver.ErrNotFound)
	}
	if err != nil {
		return resolver.Handle{}, fmt.Errorf("failed to look up binary %q: %w", id, err)
	}
	return h, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
