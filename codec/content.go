package codec

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/zostay/go-mailjson/display"
	"github.com/zostay/go-mailjson/message"
	"github.com/zostay/go-mailjson/registry"
	"github.com/zostay/go-mailjson/resolver"
)

// ParseContext carries what a ContentParser may need beyond the part and its
// JSON value. A new one is made for each body parsed.
type ParseContext struct {
	// Resolver reads binary content given by reference. It may be nil.
	Resolver resolver.Resolver

	// DeferReferences leaves binary content given by reference unread,
	// producing *message.Reference instead of *message.Binary.
	DeferReferences bool

	// Section locates the part whose body is being parsed.
	Section string

	// Depth is the nesting depth of the part, 0 for the root.
	Depth int

	// MaxDepth is the deepest a part may be nested. Zero or less means there
	// is no limit.
	MaxDepth int

	// Logger receives codec diagnostics. It may be nil.
	Logger *slog.Logger

	// ParsePart parses the i-th (zero-based) element of a multipart body as
	// a complete part, headers and body. It returns a nil part and no error
	// when the element was dropped as undecodable.
	ParsePart func(ctx context.Context, i int, raw json.RawMessage) (*message.Part, error)
}

// WriteContext carries what a ContentWriter may need beyond the part and its
// content. One is shared by a whole write.
type WriteContext struct {
	// Resolver reads *message.Reference content when it must be inlined. It
	// may be nil.
	Resolver resolver.Resolver

	// Inline writes binary content as base64 even when a reference is known.
	Inline bool

	// Mode and Renderer control the rendering of text content.
	Mode     display.Mode
	Renderer display.Renderer

	// Logger receives codec diagnostics. It may be nil.
	Logger *slog.Logger

	// WritePart renders a child part as a complete JSON object.
	WritePart func(ctx context.Context, p *message.Part) (any, error)
}

// ContentParser decodes the JSON body of a part.
type ContentParser interface {
	registry.Ranked

	// Handles returns true if this parser can decode the body of part.
	Handles(part *message.Part, raw json.RawMessage) bool

	// Parse decodes raw as the body of part.
	Parse(ctx context.Context, pc *ParseContext, part *message.Part, raw json.RawMessage) (message.Content, error)
}

// ContentWriter renders the content of a part as a JSON value.
type ContentWriter interface {
	registry.Ranked

	// Handles returns true if this writer can render c as the body of part.
	Handles(part *message.Part, c message.Content) bool

	// Write returns a value that marshals to the JSON for the body.
	Write(ctx context.Context, wc *WriteContext, part *message.Part, c message.Content) (any, error)
}

// ContentParserEntry builds a ContentParser from plain values.
type ContentParserEntry struct {
	Match   func(part *message.Part, raw json.RawMessage) bool
	Ranking int
	Decode  func(ctx context.Context, pc *ParseContext, part *message.Part, raw json.RawMessage) (message.Content, error)
}

var _ ContentParser = (*ContentParserEntry)(nil)

// Rank returns Ranking.
func (e *ContentParserEntry) Rank() int { return e.Ranking }

// Handles calls Match.
func (e *ContentParserEntry) Handles(part *message.Part, raw json.RawMessage) bool {
	return e.Match(part, raw)
}

// Parse calls Decode.
func (e *ContentParserEntry) Parse(
	ctx context.Context,
	pc *ParseContext,
	part *message.Part,
	raw json.RawMessage,
) (message.Content, error) {
	return e.Decode(ctx, pc, part, raw)
}

// ContentWriterEntry builds a ContentWriter from plain values.
type ContentWriterEntry struct {
	Match   func(part *message.Part, c message.Content) bool
	Ranking int
	Encode  func(ctx context.Context, wc *WriteContext, part *message.Part, c message.Content) (any, error)
}

var _ ContentWriter = (*ContentWriterEntry)(nil)

// Rank returns Ranking.
func (e *ContentWriterEntry) Rank() int { return e.Ranking }

// Handles calls Match.
func (e *ContentWriterEntry) Handles(part *message.Part, c message.Content) bool {
	return e.Match(part, c)
}

// Write calls Encode.
func (e *ContentWriterEntry) Write(
	ctx context.Context,
	wc *WriteContext,
	part *message.Part,
	c message.Content,
) (any, error) {
	return e.Encode(ctx, wc, part, c)
}

// ContentCodecs is the registry of content parsers and writers. It is safe
// for concurrent use. The zero value has no codecs registered.
type ContentCodecs struct {
	parsers registry.Registry[ContentParser]
	writers registry.Registry[ContentWriter]
}

// NewContentCodecs returns a registry holding the built-in codecs for text,
// multipart, and binary content.
func NewContentCodecs() *ContentCodecs {
	cc := &ContentCodecs{}
	cc.AddContentParser(TextParser{})
	cc.AddContentParser(MultipartParser{})
	cc.AddContentParser(BinaryParser{})
	cc.AddContentWriter(TextWriter{})
	cc.AddContentWriter(MultipartWriter{})
	cc.AddContentWriter(BinaryWriter{})
	return cc
}

// AddContentParser registers p and returns an id for removing it.
func (cc *ContentCodecs) AddContentParser(p ContentParser) registry.ID {
	return cc.parsers.Add(p)
}

// RemoveContentParser removes a parser registered by AddContentParser.
func (cc *ContentCodecs) RemoveContentParser(id registry.ID) bool {
	return cc.parsers.Remove(id)
}

// AddContentWriter registers w and returns an id for removing it.
func (cc *ContentCodecs) AddContentWriter(w ContentWriter) registry.ID {
	return cc.writers.Add(w)
}

// RemoveContentWriter removes a writer registered by AddContentWriter.
func (cc *ContentCodecs) RemoveContentWriter(id registry.ID) bool {
	return cc.writers.Remove(id)
}

// Snapshot returns the codecs registered right now.
func (cc *ContentCodecs) Snapshot() *ContentSet {
	return &ContentSet{
		Parsers: cc.parsers.Snapshot(),
		Writers: cc.writers.Snapshot(),
	}
}

// ContentSet is a fixed list of content codecs in registration order.
type ContentSet struct {
	Parsers []ContentParser
	Writers []ContentWriter
}

// SelectParser returns the winning parser for the body of part, if any.
func (cs *ContentSet) SelectParser(part *message.Part, raw json.RawMessage) (ContentParser, bool) {
	return registry.Select(cs.Parsers, func(p ContentParser) bool {
		return p.Handles(part, raw)
	})
}

// SelectWriter returns the winning writer for the content of part, if any.
func (cs *ContentSet) SelectWriter(part *message.Part, c message.Content) (ContentWriter, bool) {
	return registry.Select(cs.Writers, func(w ContentWriter) bool {
		return w.Handles(part, c)
	})
}

var discard = slog.New(slog.DiscardHandler)

// Log returns the logger to use, which discards when Logger is nil.
func (pc *ParseContext) Log() *slog.Logger {
	if pc.Logger == nil {
		return discard
	}
	return pc.Logger.With("section", pc.Section)
}

// Log returns the logger to use, which discards when Logger is nil.
func (wc *WriteContext) Log() *slog.Logger {
	if wc.Logger == nil {
		return discard
	}
	return wc.Logger
}
