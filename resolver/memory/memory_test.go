package memory_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mailjson/resolver"
	"github.com/zostay/go-mailjson/resolver/memory"
)

func TestStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memory.New()

	id := s.Put([]byte("hello"), "text/plain")
	assert.NotEmpty(t, id)

	h, err := s.Lookup(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, resolver.Handle{ID: id, Size: 5, ContentType: "text/plain"}, h)
	assert.Equal(t, 0, s.Resolves(id))

	data, err := resolver.ReadAll(ctx, s, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, 1, s.Resolves(id))

	assert.True(t, s.Delete(id))
	assert.False(t, s.Delete(id))

	_, err = s.Resolve(ctx, id)
	assert.ErrorIs(t, err, resolver.ErrNotFound)

	_, err = s.Lookup(ctx, id)
	assert.ErrorIs(t, err, resolver.ErrNotFound)
}

func TestStore_PutWithIDCopies(t *testing.T) {
	t.Parallel()

	s := &memory.Store{}
	buf := []byte("abc")
	s.PutWithID("f1", buf, "")
	buf[0] = 'X'

	rc, err := s.Resolve(context.Background(), "f1")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
}

func TestStore_Canceled(t *testing.T) {
	t.Parallel()

	s := memory.New()
	s.PutWithID("f1", []byte("x"), "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Resolve(ctx, "f1")
	assert.ErrorIs(t, err, context.Canceled)
}
