package mailjson

import (
	"log/slog"
	"time"

	"github.com/zostay/go-mailjson/codec"
	"github.com/zostay/go-mailjson/display"
	"github.com/zostay/go-mailjson/resolver"
)

// DefaultMaxDepth is the default depth to which multipart bodies may nest.
const DefaultMaxDepth = 10

// Option refers to options that may be passed to New to modify how the
// Transcoder works.
type Option func(t *Transcoder)

// WithHeaderCodecs is an Option that sets the header codec registry. The
// registry may be shared with other transcoders and may be changed while in
// use. The default is a fresh codec.NewHeaderCodecs().
func WithHeaderCodecs(hc *codec.HeaderCodecs) Option {
	return func(t *Transcoder) { t.headers = hc }
}

// WithContentCodecs is an Option that sets the content codec registry, just
// as WithHeaderCodecs does for headers.
func WithContentCodecs(cc *codec.ContentCodecs) Option {
	return func(t *Transcoder) { t.contents = cc }
}

// WithResolver is an Option that sets the resolver used to read binary
// content given by reference. Without one, every reference fails to resolve.
func WithResolver(r resolver.Resolver) Option {
	return func(t *Transcoder) { t.resolver = r }
}

// WithResolveTimeout is an Option that bounds each resolver call. Zero, the
// default, leaves the calls bounded only by the context given to Parse or
// Write.
func WithResolveTimeout(d time.Duration) Option {
	return func(t *Transcoder) { t.resolveTimeout = d }
}

// DeferReferences is an Option that leaves binary content given by reference
// unread during Parse. Such content is parsed as *message.Reference holding
// the metadata from resolver.Resolver.Lookup.
func DeferReferences() Option {
	return func(t *Transcoder) { t.deferRefs = true }
}

// WithMaxDepth is an Option that controls how deep multipart bodies may nest.
// A part nested deeper is kept with an empty body and reported through a
// *PartialError. Zero or less means there is no limit. This is set to
// DefaultMaxDepth by default.
func WithMaxDepth(maxDepth int) Option {
	return func(t *Transcoder) { t.maxDepth = maxDepth }
}

// WithLogger is an Option that sets the logger. Parts and headers that could
// not be decoded are logged at warning level, and bodies no codec claims at
// debug level. Nothing is logged by default.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transcoder) { t.logger = l }
}

// DecodeHeaderWords is an Option that decodes RFC 2047 encoded words in the
// text of generic headers during Parse.
func DecodeHeaderWords() Option {
	return func(t *Transcoder) { t.decodeWords = true }
}

// WithFolderPrefix is an Option that sets a prefix to join to the message
// folder with a slash on Write.
func WithFolderPrefix(prefix string) Option {
	return func(t *Transcoder) { t.folderPrefix = prefix }
}

// WithDisplayMode is an Option that sets the display mode used when writing
// text bodies.
func WithDisplayMode(m display.Mode) Option {
	return func(t *Transcoder) { t.mode = m }
}

// WithRenderer is an Option that sets the renderer used in display mode. The
// default is display.NewSanitizer().
func WithRenderer(r display.Renderer) Option {
	return func(t *Transcoder) { t.renderer = r }
}

// InlineBinary is an Option that writes every binary body as base64, reading
// unread references through the resolver if needed.
func InlineBinary() Option {
	return func(t *Transcoder) { t.inline = true }
}

// WithIndent is an Option that indents the output of Write with the given
// string per level.
func WithIndent(indent string) Option {
	return func(t *Transcoder) { t.indent = indent }
}
