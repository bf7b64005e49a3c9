package message

import (
	"errors"
	"strings"

	"github.com/zostay/go-mailjson/header"
	"github.com/zostay/go-mailjson/param"
)

// DefaultMediaType is the media type assumed for a part that has no
// Content-Type header.
const DefaultMediaType = "text/plain"

// Part is one node of a message tree.
type Part struct {
	// Header will contain the header of the part.
	header.Header

	// Section locates the part within the tree, such as "1.2". It is empty
	// for the root.
	Section string

	// Disposition and Filename are the values carried alongside the part in
	// its multipart wrapper. They are kept separately from the header so that
	// they are written back exactly as read.
	Disposition string
	Filename    string

	// Size is the size of the part as reported by the producer of the
	// document. It is not computed.
	Size int64

	// Content is the body of the part. It is nil when the part has no body
	// or when the body could not be decoded.
	Content Content

	// Present records the document fields that were read for the part, so a
	// field holding its zero value is still written back.
	Present Fields
}

// Fields is a set of the optional document fields of a part or message.
type Fields uint16

// The optional document fields. The part fields are FieldID, FieldSize,
// FieldDisposition, and FieldFileName. The rest belong to a whole message.
const (
	FieldID Fields = 1 << iota
	FieldSize
	FieldDisposition
	FieldFileName
	FieldColorLabel
	FieldUserFlags
	FieldReceivedDate
	FieldThreadLevel
	FieldFolder
	FieldPicture
)

// Has returns true if every field of f2 is in the set.
func (f Fields) Has(f2 Fields) bool {
	return f&f2 == f2
}

// Set returns the set with the fields of f2 added.
func (f Fields) Set(f2 Fields) Fields {
	return f | f2
}

// NewPart returns a part with the given media type and content.
func NewPart(mediaType string, c Content) *Part {
	p := &Part{Content: c}
	p.SetContentType(param.New(mediaType))
	return p
}

// NewTextPart returns a part holding text of the given media type.
func NewTextPart(mediaType, text string) *Part {
	return NewPart(mediaType, NewText(text))
}

// NewBinaryPart returns a part holding a copy of data.
func NewBinaryPart(mediaType string, data []byte) *Part {
	return NewPart(mediaType, NewBinary(data))
}

// NewReferencePart returns a part holding a reference to the given id.
func NewReferencePart(mediaType, id string) *Part {
	return NewPart(mediaType, NewReference(id))
}

// GetHeader returns the header for the part.
func (p *Part) GetHeader() *header.Header {
	return &p.Header
}

// GetContent returns the content of the part, which may be nil.
func (p *Part) GetContent() Content {
	return p.Content
}

// MediaType returns the lower-cased media type of the part. A part with no
// usable Content-Type is treated as DefaultMediaType.
func (p *Part) MediaType() string {
	pv, err := p.GetContentType()
	if pv == nil || (err != nil && !errors.Is(err, header.ErrManyFields)) {
		return DefaultMediaType
	}

	if mt := strings.TrimSpace(pv.MediaType()); mt != "" {
		return strings.ToLower(mt)
	}
	return DefaultMediaType
}

// PrimaryType returns the part of MediaType before the slash, such as "text"
// or "multipart".
func (p *Part) PrimaryType() string {
	pv := param.New(p.MediaType())
	return pv.Type()
}

// IsMultipart returns true if the content is a *Multipart.
func (p *Part) IsMultipart() bool {
	_, ok := p.Content.(*Multipart)
	return ok
}

// GetParts returns the child parts of *Multipart content and nil for
// everything else.
func (p *Part) GetParts() []*Part {
	if mp, ok := p.Content.(*Multipart); ok {
		return mp.Parts
	}
	return nil
}

// Presentation returns the disposition carried with the part, falling back to
// the one in the Content-Disposition header.
func (p *Part) Presentation() string {
	if p.Disposition != "" {
		return p.Disposition
	}
	d, _ := p.GetPresentation()
	return d
}

// AttachmentName returns the filename carried with the part, falling back to
// the Content-Disposition filename and then the Content-Type name.
func (p *Part) AttachmentName() string {
	if p.Filename != "" {
		return p.Filename
	}

	if fn, _ := p.GetFilename(); fn != "" {
		return fn
	}

	if pv, _ := p.GetContentType(); pv != nil {
		return pv.Name()
	}
	return ""
}
