package codec

import (
	"encoding/json"

	"github.com/zostay/go-mailjson/header"
	"github.com/zostay/go-mailjson/header/field"
	"github.com/zostay/go-mailjson/internal/jsonx"
	"github.com/zostay/go-mailjson/registry"
)

// BuiltinRank is the rank of every built-in codec. Register a codec with a
// higher rank to override a built-in one.
const BuiltinRank = 0

// HeaderParser decodes the JSON value of a named header into header fields.
type HeaderParser interface {
	registry.Ranked

	// Handles returns true if this parser can decode the named header.
	Handles(name string, raw json.RawMessage) bool

	// Parse decodes raw and adds one or more fields named name to h.
	Parse(h *header.Header, name string, raw json.RawMessage) error
}

// HeaderWriter renders every instance of one header name as a JSON value.
type HeaderWriter interface {
	registry.Ranked

	// Handles returns true if this writer can render the entry.
	Handles(e header.Entry) bool

	// Write returns a value that marshals to the JSON for the entry.
	Write(e header.Entry) (any, error)
}

// HeaderParserEntry builds a HeaderParser from plain values.
type HeaderParserEntry struct {
	Match   func(name string, raw json.RawMessage) bool
	Ranking int
	Decode  func(h *header.Header, name string, raw json.RawMessage) error
}

var _ HeaderParser = (*HeaderParserEntry)(nil)

// Rank returns Ranking.
func (e *HeaderParserEntry) Rank() int { return e.Ranking }

// Handles calls Match.
func (e *HeaderParserEntry) Handles(name string, raw json.RawMessage) bool {
	return e.Match(name, raw)
}

// Parse calls Decode.
func (e *HeaderParserEntry) Parse(h *header.Header, name string, raw json.RawMessage) error {
	return e.Decode(h, name, raw)
}

// HeaderWriterEntry builds a HeaderWriter from plain values.
type HeaderWriterEntry struct {
	Match   func(e header.Entry) bool
	Ranking int
	Encode  func(e header.Entry) (any, error)
}

var _ HeaderWriter = (*HeaderWriterEntry)(nil)

// Rank returns Ranking.
func (e *HeaderWriterEntry) Rank() int { return e.Ranking }

// Handles calls Match.
func (e *HeaderWriterEntry) Handles(he header.Entry) bool {
	return e.Match(he)
}

// Write calls Encode.
func (e *HeaderWriterEntry) Write(he header.Entry) (any, error) {
	return e.Encode(he)
}

// HeaderOption changes how HeaderSet.ParseAndAdd treats headers no parser
// claims.
type HeaderOption func(*headerOpts)

type headerOpts struct {
	decodeWords bool
}

// DecodeWords decodes RFC 2047 encoded words found in generic headers.
func DecodeWords(decode bool) HeaderOption {
	return func(o *headerOpts) {
		o.decodeWords = decode
	}
}

// HeaderCodecs is the registry of header parsers and writers. It is safe for
// concurrent use. The zero value has no codecs registered, so every header is
// treated as generic.
type HeaderCodecs struct {
	parsers registry.Registry[HeaderParser]
	writers registry.Registry[HeaderWriter]
}

// NewHeaderCodecs returns a registry holding the built-in codecs for address,
// Content-Type, Content-Disposition, and date headers.
func NewHeaderCodecs() *HeaderCodecs {
	hc := &HeaderCodecs{}
	hc.AddHeaderParser(AddressParser{})
	hc.AddHeaderParser(ParamParser{header.ContentType})
	hc.AddHeaderParser(ParamParser{header.ContentDisposition})
	hc.AddHeaderParser(DateParser{})
	hc.AddHeaderWriter(AddressWriter{})
	hc.AddHeaderWriter(ParamWriter{header.ContentType})
	hc.AddHeaderWriter(ParamWriter{header.ContentDisposition})
	return hc
}

// AddHeaderParser registers p and returns an id for removing it.
func (hc *HeaderCodecs) AddHeaderParser(p HeaderParser) registry.ID {
	return hc.parsers.Add(p)
}

// RemoveHeaderParser removes a parser registered by AddHeaderParser.
func (hc *HeaderCodecs) RemoveHeaderParser(id registry.ID) bool {
	return hc.parsers.Remove(id)
}

// AddHeaderWriter registers w and returns an id for removing it.
func (hc *HeaderCodecs) AddHeaderWriter(w HeaderWriter) registry.ID {
	return hc.writers.Add(w)
}

// RemoveHeaderWriter removes a writer registered by AddHeaderWriter.
func (hc *HeaderCodecs) RemoveHeaderWriter(id registry.ID) bool {
	return hc.writers.Remove(id)
}

// Snapshot returns the codecs registered right now. Later registration
// changes do not affect the returned set.
func (hc *HeaderCodecs) Snapshot() *HeaderSet {
	return &HeaderSet{
		Parsers: hc.parsers.Snapshot(),
		Writers: hc.writers.Snapshot(),
	}
}

// ParseAndAdd is a shortcut for Snapshot().ParseAndAdd().
func (hc *HeaderCodecs) ParseAndAdd(
	h *header.Header,
	name string,
	raw json.RawMessage,
	opts ...HeaderOption,
) error {
	return hc.Snapshot().ParseAndAdd(h, name, raw, opts...)
}

// WriteEntry is a shortcut for Snapshot().WriteEntry().
func (hc *HeaderCodecs) WriteEntry(e header.Entry) (any, error) {
	return hc.Snapshot().WriteEntry(e)
}

// HeaderSet is a fixed list of header codecs in registration order.
type HeaderSet struct {
	Parsers []HeaderParser
	Writers []HeaderWriter
}

// SelectParser returns the winning parser for the header, if any.
func (hs *HeaderSet) SelectParser(name string, raw json.RawMessage) (HeaderParser, bool) {
	return registry.Select(hs.Parsers, func(p HeaderParser) bool {
		return p.Handles(name, raw)
	})
}

// SelectWriter returns the winning writer for the entry, if any.
func (hs *HeaderSet) SelectWriter(e header.Entry) (HeaderWriter, bool) {
	return registry.Select(hs.Writers, func(w HeaderWriter) bool {
		return w.Handles(e)
	})
}

// ParseAndAdd decodes the raw JSON value of the named header and adds the
// result to h. The winning parser does the work if there is one. Otherwise
// the value becomes generic text fields as described by ParseGeneric.
//
// A parser failure is returned as a *DecodeError naming the header, and h is
// left as it was.
func (hs *HeaderSet) ParseAndAdd(
	h *header.Header,
	name string,
	raw json.RawMessage,
	opts ...HeaderOption,
) error {
	p, ok := hs.SelectParser(name, raw)
	if !ok {
		o := &headerOpts{}
		for _, opt := range opts {
			opt(o)
		}
		ParseGeneric(h, name, raw, o.decodeWords)
		return nil
	}

	// the parser works on a scratch header so a failure adds nothing
	scratch := &header.Header{}
	if err := p.Parse(scratch, name, raw); err != nil {
		return &DecodeError{Header: name, Err: err}
	}
	h.Add(scratch.Fields()...)
	return nil
}

// WriteEntry renders the entry with the winning writer. With no winner, an
// entry of a single field is written as its body string and an entry of
// several fields as an array of body strings.
func (hs *HeaderSet) WriteEntry(e header.Entry) (any, error) {
	if w, ok := hs.SelectWriter(e); ok {
		v, err := w.Write(e)
		if err != nil {
			return nil, &DecodeError{Header: e.Name, Err: err}
		}
		return v, nil
	}

	return WriteGeneric(e), nil
}

// ParseGeneric adds raw to h as generic text. A string is added as one field.
// An array adds one field per element. A null adds nothing. Any other value
// is added as its compact JSON text. If decodeWords is set, RFC 2047 encoded
// words in strings are decoded, with undecodable strings kept as given.
func ParseGeneric(h *header.Header, name string, raw json.RawMessage, decodeWords bool) {
	add := func(raw json.RawMessage) {
		switch jsonx.KindOf(raw) {
		case jsonx.Null, jsonx.Invalid:
			return
		case jsonx.String:
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				h.AddText(name, string(raw))
				return
			}
			if decodeWords {
				if d, err := field.Decode(s); err == nil {
					s = d
				}
			}
			h.AddText(name, s)
		default:
			h.AddText(name, compact(raw))
		}
	}

	if jsonx.KindOf(raw) == jsonx.Array {
		elems, err := jsonx.ParseArray(raw)
		if err == nil {
			for _, e := range elems {
				add(e)
			}
			return
		}
	}

	add(raw)
}

// WriteGeneric renders the entry as a string or an array of strings.
func WriteGeneric(e header.Entry) any {
	if e.Len() <= 1 {
		if e.Len() == 0 {
			return ""
		}
		return e.Fields[0].Body()
	}

	vs := make([]string, e.Len())
	for i, f := range e.Fields {
		vs[i] = f.Body()
	}
	return vs
}
