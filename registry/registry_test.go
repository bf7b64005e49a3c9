package registry_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mailjson/registry"
)

type handler struct {
	name   string
	rank   int
	prefix string
}

func (h *handler) Rank() int { return h.rank }

func matching(key string) func(*handler) bool {
	return func(h *handler) bool { return strings.HasPrefix(key, h.prefix) }
}

func TestSelect(t *testing.T) {
	t.Parallel()

	hs := []*handler{
		{"generic-a", 0, ""},
		{"generic-b", 0, ""},
		{"x-low", 5, "x-"},
		{"x-high", 10, "x-"},
		{"x-high-late", 10, "x-"},
	}

	tests := []struct {
		key  string
		want string
	}{
		{"x-foo", "x-high"},
		{"subject", "generic-a"},
	}

	for _, test := range tests {
		// repeated calls always agree
		for i := 0; i < 5; i++ {
			h, ok := registry.Select(hs, matching(test.key))
			require.True(t, ok)
			assert.Equal(t, test.want, h.name)
		}
	}

	_, ok := registry.Select(hs, func(*handler) bool { return false })
	assert.False(t, ok)

	_, ok = registry.Select([]*handler{}, matching("x"))
	assert.False(t, ok)
}

func TestSelect_NegativeRanks(t *testing.T) {
	t.Parallel()

	hs := []*handler{
		{"a", -10, ""},
		{"b", -5, ""},
		{"c", -5, ""},
	}

	h, ok := registry.Select(hs, matching("anything"))
	require.True(t, ok)
	assert.Equal(t, "b", h.name)
}

func TestRegistry_AddRemove(t *testing.T) {
	t.Parallel()

	r := registry.New(&handler{"first", 1, ""})
	second := r.Add(&handler{"second", 1, ""})
	third := r.Add(&handler{"third", 2, ""})

	assert.Equal(t, 3, r.Len())

	h, ok := r.Select(matching("k"))
	require.True(t, ok)
	assert.Equal(t, "third", h.name)

	assert.True(t, r.Remove(third))
	assert.False(t, r.Remove(third))

	h, ok = r.Select(matching("k"))
	require.True(t, ok)
	assert.Equal(t, "first", h.name)

	assert.True(t, r.Remove(second))
	names := []string{}
	for _, h := range r.Snapshot() {
		names = append(names, h.name)
	}
	assert.Equal(t, []string{"first"}, names)
}

func TestRegistry_SnapshotIsolation(t *testing.T) {
	t.Parallel()

	r := &registry.Registry[*handler]{}
	assert.Equal(t, 0, r.Len())

	r.Add(&handler{"a", 0, ""})
	snap := r.Snapshot()
	r.Add(&handler{"b", 0, ""})

	assert.Len(t, snap, 1)
	assert.Len(t, r.Snapshot(), 2)
}

func TestRegistry_Concurrent(t *testing.T) {
	t.Parallel()

	r := &registry.Registry[*handler]{}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			id := r.Add(&handler{"h", 1, ""})
			r.Remove(id)
		}()
		go func() {
			defer wg.Done()
			_, _ = r.Select(matching("x"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len())
}
