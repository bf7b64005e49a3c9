// Package resolver defines the binary reference indirection used when binary
// content is carried by an opaque id rather than inline base64. The
// transcoder only consumes the Resolver interface. The memory and sqlite
// sub-packages provide stores that implement it.
package resolver

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned by a Resolver when the id is unknown.
var ErrNotFound = errors.New("binary reference not found")

// Handle describes a stored binary without reading it.
type Handle struct {
	ID          string
	Size        int64
	ContentType string
}

// Resolver maps an opaque reference id to a byte stream.
type Resolver interface {
	// Resolve opens the stream for the given id. The caller must close it.
	// It returns an error wrapping ErrNotFound if the id is unknown.
	Resolve(ctx context.Context, id string) (io.ReadCloser, error)

	// Lookup returns metadata about the given id without reading it. It
	// returns an error wrapping ErrNotFound if the id is unknown.
	Lookup(ctx context.Context, id string) (Handle, error)
}

type timeoutResolver struct {
	r Resolver
	d time.Duration
}

// WithTimeout wraps a Resolver so that every call is bounded by the given
// duration. For Resolve, the bound covers opening the stream and reading it:
// the context is released when the returned stream is closed.
func WithTimeout(r Resolver, d time.Duration) Resolver {
	if d <= 0 {
		return r
	}
	return &timeoutResolver{r, d}
}

// Resolve implements Resolver.
func (t *timeoutResolver) Resolve(ctx context.Context, id string) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	rc, err := t.r.Resolve(ctx, id)
	if err != nil {
		cancel()
		return nil, err
	}
	return &cancelCloser{ReadCloser: rc, ctx: ctx, cancel: cancel}, nil
}

// Lookup implements Resolver.
func (t *timeoutResolver) Lookup(ctx context.Context, id string) (Handle, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.r.Lookup(ctx, id)
}

// cancelCloser stops reads once its context is done and releases the context
// on Close.
type cancelCloser struct {
	io.ReadCloser
	ctx    context.Context
	cancel context.CancelFunc
}

// Read fails with the context error after the deadline passes.
func (c *cancelCloser) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.ReadCloser.Read(p)
}

// Close closes the stream and releases the context.
func (c *cancelCloser) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

// ReadAll resolves the id and reads the whole stream.
func ReadAll(ctx context.Context, r Resolver, id string) ([]byte, error) {
	rc, err := r.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return io.ReadAll(rc)
}
