// Package registry provides the ranked, ordered handler collections used for
// header and content codecs. A registry is safe for concurrent use: adding or
// removing handlers publishes a new immutable snapshot, and lookups always
// work against one snapshot without taking a lock.
package registry

import (
	"sync"
	"sync/atomic"
)

// Ranked is implemented by every handler kept in a Registry.
type Ranked interface {
	// Rank returns the priority of the handler. The handler with the highest
	// rank among those that match is selected.
	Rank() int
}

// ID identifies one registration. It is returned by Add and accepted by
// Remove.
type ID uint64

type entry[T Ranked] struct {
	id      ID
	handler T
}

// Registry is an ordered collection of handlers. The zero value is an empty
// registry ready to use.
type Registry[T Ranked] struct {
	mu      sync.Mutex
	nextID  ID
	entries atomic.Pointer[[]entry[T]]
}

// New returns a registry holding the given handlers in order.
func New[T Ranked](handlers ...T) *Registry[T] {
	r := &Registry[T]{}
	for _, h := range handlers {
		r.Add(h)
	}
	return r
}

func (r *Registry[T]) load() []entry[T] {
	if es := r.entries.Load(); es != nil {
		return *es
	}
	return nil
}

// Add appends a handler to the registry and returns its registration ID.
func (r *Registry[T]) Add(h T) ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	old := r.load()
	es := make([]entry[T], len(old), len(old)+1)
	copy(es, old)
	es = append(es, entry[T]{r.nextID, h})
	r.entries.Store(&es)

	return r.nextID
}

// Remove deletes the registration with the given ID. It returns false if no
// such registration exists.
func (r *Registry[T]) Remove(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.load()
	for i, e := range old {
		if e.id != id {
			continue
		}

		es := make([]entry[T], 0, len(old)-1)
		es = append(es, old[:i]...)
		es = append(es, old[i+1:]...)
		r.entries.Store(&es)
		return true
	}

	return false
}

// Len returns the number of registered handlers.
func (r *Registry[T]) Len() int {
	return len(r.load())
}

// Snapshot returns the handlers in registration order. The returned slice is
// a copy owned by the caller.
func (r *Registry[T]) Snapshot() []T {
	es := r.load()
	hs := make([]T, len(es))
	for i, e := range es {
		hs[i] = e.handler
	}
	return hs
}

// Select picks a handler from the current snapshot. See Select.
func (r *Registry[T]) Select(match func(T) bool) (T, bool) {
	return Select(r.Snapshot(), match)
}

// Select returns the handler with the strictly highest rank among the
// handlers for which match returns true. When several matching handlers share
// that rank, the earliest in the slice wins. The second value is false if
// nothing matched.
func Select[T Ranked](handlers []T, match func(T) bool) (T, bool) {
	var (
		best  T
		found bool
		rank  int
	)

	for _, h := range handlers {
		if !match(h) {
			continue
		}

		if r := h.Rank(); !found || r > rank {
			best, rank, found = h, r, true
		}
	}

	return best, found
}
