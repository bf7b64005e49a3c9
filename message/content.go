package message

import (
	"bytes"

	"github.com/zostay/go-mailjson/resolver"
)

// Content is the body of a Part. The set of implementations is closed: a
// Content is always one of *Text, *Binary, *Reference, or *Multipart, so a
// type switch over those four is exhaustive.
type Content interface {
	// Kind names the variant.
	Kind() ContentKind

	content()
}

// ContentKind identifies a Content variant.
type ContentKind int

const (
	TextContent ContentKind = iota + 1
	BinaryContent
	ReferenceContent
	MultipartContent
)

// String returns a short lower-case name for the kind.
func (k ContentKind) String() string {
	switch k {
	case TextContent:
		return "text"
	case BinaryContent:
		return "binary"
	case ReferenceContent:
		return "reference"
	case MultipartContent:
		return "multipart"
	}
	return "unknown"
}

// Text is decoded character content, used for text/* parts.
type Text struct {
	Text string
}

// NewText returns text content.
func NewText(s string) *Text {
	return &Text{s}
}

// Kind returns TextContent.
func (*Text) Kind() ContentKind { return TextContent }

func (*Text) content() {}

// Binary is content held in memory as raw bytes.
type Binary struct {
	Data []byte

	// Ref is the reference id the bytes were resolved from, if any. Writing
	// a Binary with a Ref emits the reference rather than the bytes unless
	// inline output is requested.
	Ref string
}

// NewBinary returns binary content holding a copy of data.
func NewBinary(data []byte) *Binary {
	return &Binary{Data: bytes.Clone(data)}
}

// Len returns the number of bytes held.
func (b *Binary) Len() int64 {
	return int64(len(b.Data))
}

// Kind returns BinaryContent.
func (*Binary) Kind() ContentKind { return BinaryContent }

func (*Binary) content() {}

// Reference is binary content that has not been read into memory. It is
// identified by an opaque id understood by a resolver.Resolver.
type Reference struct {
	ID string

	// Handle holds metadata from resolver.Resolver.Lookup, if it was
	// consulted.
	Handle *resolver.Handle
}

// NewReference returns reference content for the id.
func NewReference(id string) *Reference {
	return &Reference{ID: id}
}

// Kind returns ReferenceContent.
func (*Reference) Kind() ContentKind { return ReferenceContent }

func (*Reference) content() {}

// Multipart is an ordered list of child parts. The parts are owned by the
// Multipart.
type Multipart struct {
	Parts []*Part
}

// NewMultipart returns multipart content holding the given parts.
func NewMultipart(parts ...*Part) *Multipart {
	return &Multipart{Parts: parts}
}

// Len returns the number of child parts.
func (m *Multipart) Len() int {
	return len(m.Parts)
}

// Add appends parts.
func (m *Multipart) Add(parts ...*Part) {
	m.Parts = append(m.Parts, parts...)
}

// Kind returns MultipartContent.
func (*Multipart) Kind() ContentKind { return MultipartContent }

func (*Multipart) content() {}
