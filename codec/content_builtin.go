package codec

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/zostay/go-mailjson/display"
	"github.com/zostay/go-mailjson/internal/jsonx"
	"github.com/zostay/go-mailjson/message"
	"github.com/zostay/go-mailjson/resolver"
)

const (
	primaryText      = "text"
	primaryMultipart = "multipart"
)

func isBinaryType(part *message.Part) bool {
	pt := part.PrimaryType()
	return pt != primaryText && pt != primaryMultipart
}

// jsonRef is the by-reference form of binary content.
type jsonRef struct {
	Ref string `json:"ref"`
}

// TextParser decodes the body of a text/* part, which must be a JSON string.
type TextParser struct{}

// Rank returns BuiltinRank.
func (TextParser) Rank() int { return BuiltinRank }

// Handles returns true for text/* parts.
func (TextParser) Handles(part *message.Part, _ json.RawMessage) bool {
	return part.PrimaryType() == primaryText
}

// Parse implements ContentParser.
func (TextParser) Parse(
	_ context.Context,
	_ *ParseContext,
	_ *message.Part,
	raw json.RawMessage,
) (message.Content, error) {
	s, err := decodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("text body: %w", err)
	}
	return message.NewText(s), nil
}

// TextWriter writes *message.Text content of text/* parts as a JSON string.
// In display mode the text first goes through the renderer, if one is set.
type TextWriter struct{}

// Rank returns BuiltinRank.
func (TextWriter) Rank() int { return BuiltinRank }

// Handles returns true for text content of text/* parts.
func (TextWriter) Handles(part *message.Part, c message.Content) bool {
	_, isText := c.(*message.Text)
	return isText && part.PrimaryType() == primaryText
}

// Write implements ContentWriter.
func (TextWriter) Write(
	_ context.Context,
	wc *WriteContext,
	part *message.Part,
	c message.Content,
) (any, error) {
	text := c.(*message.Text).Text
	if wc.Mode == display.Display && wc.Renderer != nil {
		return wc.Renderer.Render(part.MediaType(), text)
	}
	return text, nil
}

// MultipartParser decodes the body of a multipart/* part, which must be an
// array of part objects. Each element is handed back to the caller through
// ParseContext.ParsePart.
type MultipartParser struct{}

// Rank returns BuiltinRank.
func (MultipartParser) Rank() int { return BuiltinRank }

// Handles returns true for multipart/* parts.
func (MultipartParser) Handles(part *message.Part, _ json.RawMessage) bool {
	return part.PrimaryType() == primaryMultipart
}

// Parse implements ContentParser.
func (MultipartParser) Parse(
	ctx context.Context,
	pc *ParseContext,
	_ *message.Part,
	raw json.RawMessage,
) (message.Content, error) {
	if pc.ParsePart == nil {
		return nil, errors.New("multipart body cannot be parsed without a part parser")
	}

	elems, err := jsonx.ParseArray(raw)
	if err != nil {
		return nil, fmt.Errorf("multipart body: %w", err)
	}

	if pc.MaxDepth > 0 && pc.Depth+1 > pc.MaxDepth && len(elems) > 0 {
		return nil, fmt.Errorf("%w: limit is %d", ErrMaxDepth, pc.MaxDepth)
	}

	mp := &message.Multipart{Parts: make([]*message.Part, 0, len(elems))}
	for i, elem := range elems {
		child, err := pc.ParsePart(ctx, i, elem)
		if err != nil {
			return nil, err
		}
		if child != nil {
			mp.Add(child)
		}
	}

	return mp, nil
}

// MultipartWriter writes *message.Multipart content of multipart/* parts as an
// array of part objects, rendering each with WriteContext.WritePart.
type MultipartWriter struct{}

// Rank returns BuiltinRank.
func (MultipartWriter) Rank() int { return BuiltinRank }

// Handles returns true for multipart content of multipart/* parts.
func (MultipartWriter) Handles(part *message.Part, c message.Content) bool {
	_, isMulti := c.(*message.Multipart)
	return isMulti && part.PrimaryType() == primaryMultipart
}

// Write implements ContentWriter.
func (MultipartWriter) Write(
	ctx context.Context,
	wc *WriteContext,
	_ *message.Part,
	c message.Content,
) (any, error) {
	if wc.WritePart == nil {
		return nil, errors.New("multipart body cannot be written without a part writer")
	}

	mp := c.(*message.Multipart)
	out := make([]any, 0, mp.Len())
	for _, child := range mp.Parts {
		v, err := wc.WritePart(ctx, child)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// BinaryParser decodes the body of every part that is neither text/* nor
// multipart/*. A string is decoded as base64, ignoring whitespace. An object
// of the form {"ref": "id"} is read through the resolver.
type BinaryParser struct{}

// Rank returns BuiltinRank.
func (BinaryParser) Rank() int { return BuiltinRank }

// Handles returns true for parts that are not text/* or multipart/*.
func (BinaryParser) Handles(part *message.Part, _ json.RawMessage) bool {
	return isBinaryType(part)
}

// Parse implements ContentParser.
func (BinaryParser) Parse(
	ctx context.Context,
	pc *ParseContext,
	_ *message.Part,
	raw json.RawMessage,
) (message.Content, error) {
	switch jsonx.KindOf(raw) {
	case jsonx.String:
		s, err := decodeString(raw)
		if err != nil {
			return nil, err
		}
		data, err := DecodeBase64(s)
		if err != nil {
			return nil, fmt.Errorf("binary body: %w", err)
		}
		if enc := base64.StdEncoding.EncodeToString(data); enc != s {
			pc.Log().Debug("binary body will be written as canonical base64",
				"size", len(data))
		}
		return &message.Binary{Data: data}, nil

	case jsonx.Object:
		var ref jsonRef
		if err := json.Unmarshal(raw, &ref); err != nil {
			return nil, fmt.Errorf("binary reference: %w", err)
		}
		if ref.Ref == "" {
			return nil, errors.New("binary reference is missing \"ref\"")
		}
		return resolveRef(ctx, pc, ref.Ref)
	}

	return nil, fmt.Errorf("binary body: expected a string or reference object, found %s", jsonx.KindOf(raw))
}

func resolveRef(ctx context.Context, pc *ParseContext, id string) (message.Content, error) {
	if pc.Resolver == nil {
		return nil, &UnresolvedReferenceError{Section: pc.Section, ID: id, Err: ErrNoResolver}
	}

	if pc.DeferReferences {
		h, err := pc.Resolver.Lookup(ctx, id)
		if err != nil {
			return nil, &UnresolvedReferenceError{Section: pc.Section, ID: id, Err: err}
		}
		return &message.Reference{ID: id, Handle: &h}, nil
	}

	data, err := resolver.ReadAll(ctx, pc.Resolver, id)
	if err != nil {
		return nil, &UnresolvedReferenceError{Section: pc.Section, ID: id, Err: err}
	}
	return &message.Binary{Data: data, Ref: id}, nil
}

// DecodeBase64 decodes standard base64 with or without padding. Whitespace,
// such as the line breaks of MIME base64, is ignored.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	if strings.HasSuffix(s, "=") || len(s)%4 == 0 {
		return base64.StdEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}

// BinaryWriter writes *message.Binary and *message.Reference content of parts
// that are neither text/* nor multipart/*. Content with a known reference is
// written as {"ref": "id"} unless WriteContext.Inline is set, in which case
// it is written as base64, reading *message.Reference content through the
// resolver.
type BinaryWriter struct{}

// Rank returns BuiltinRank.
func (BinaryWriter) Rank() int { return BuiltinRank }

// Handles returns true for binary or reference content of binary parts.
func (BinaryWriter) Handles(part *message.Part, c message.Content) bool {
	switch c.(type) {
	case *message.Binary, *message.Reference:
		return isBinaryType(part)
	}
	return false
}

// Write implements ContentWriter.
func (BinaryWriter) Write(
	ctx context.Context,
	wc *WriteContext,
	part *message.Part,
	c message.Content,
) (any, error) {
	switch c := c.(type) {
	case *message.Binary:
		if c.Ref != "" && !wc.Inline {
			return jsonRef{c.Ref}, nil
		}
		return base64.StdEncoding.EncodeToString(c.Data), nil

	case *message.Reference:
		if !wc.Inline {
			return jsonRef{c.ID}, nil
		}

		if wc.Resolver == nil {
			return nil, &UnresolvedReferenceError{Section: part.Section, ID: c.ID, Err: ErrNoResolver}
		}

		data, err := resolver.ReadAll(ctx, wc.Resolver, c.ID)
		if err != nil {
			return nil, &UnresolvedReferenceError{Section: part.Section, ID: c.ID, Err: err}
		}
		wc.Log().Debug("inlined binary reference",
			"section", part.Section, "id", c.ID, "size", len(data))
		return base64.StdEncoding.EncodeToString(data), nil
	}

	return nil, fmt.Errorf("unexpected %s content for a binary part", c.Kind())
}
