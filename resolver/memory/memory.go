// Package memory provides an in-memory binary store implementing
// resolver.Resolver. It is handy for tests and for short-lived tools that
// need to hand out references to bytes they already hold.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/zostay/go-mailjson/resolver"
)

type blob struct {
	data        []byte
	contentType string
}

// Store keeps binaries in memory keyed by id. The zero value is ready to use
// and is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	blobs map[string]blob

	resolves map[string]int
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Put stores a copy of the data under a new random id and returns the id.
func (s *Store) Put(data []byte, contentType string) string {
	id := uuid.NewString()
	s.PutWithID(id, data, contentType)
	return id
}

// PutWithID stores a copy of the data under the given id, replacing anything
// already stored there.
func (s *Store) PutWithID(id string, data []byte, contentType string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blobs == nil {
		s.blobs = make(map[string]blob)
	}
	s.blobs[id] = blob{bytes.Clone(data), contentType}
}

// Delete removes the id. It returns false if it was not present.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[id]; !ok {
		return false
	}
	delete(s.blobs, id)
	return true
}

// Resolves reports how many times Resolve has succeeded for the id.
func (s *Store) Resolves(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolves[id]
}

// Resolve implements resolver.Resolver.
func (s *Store) Resolve(ctx context.Context, id string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blobs[id]
	if !ok {
		return nil, fmt.Errorf("memory store %q: %w", id, resolver.ErrNotFound)
	}

	if s.resolves == nil {
		s.resolves = make(map[string]int)
	}
	s.resolves[id]++

	return io.NopCloser(bytes.NewReader(b.data)), nil
}

// Lookup implements resolver.Resolver.
func (s *Store) Lookup(ctx context.Context, id string) (resolver.Handle, error) {
	if err := ctx.Err(); err != nil {
		return resolver.Handle{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[id]
	if !ok {
		return resolver.Handle{}, fmt.Errorf("memory store %q: %w", id, resolver.ErrNotFound)
	}

	return resolver.Handle{
		ID:          id,
		Size:        int64(len(b.data)),
		ContentType: b.contentType,
	}, nil
}
