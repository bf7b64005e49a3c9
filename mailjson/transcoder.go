package mailjson

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zostay/go-mailjson/codec"
	"github.com/zostay/go-mailjson/display"
	"github.com/zostay/go-mailjson/header"
	"github.com/zostay/go-mailjson/internal/jsonx"
	"github.com/zostay/go-mailjson/message"
	"github.com/zostay/go-mailjson/message/walker"
	"github.com/zostay/go-mailjson/resolver"
)

// The keys of a message document.
const (
	KeyID           = "id"
	KeyColorLabel   = "colorLabel"
	KeyFlags        = "flags"
	KeyUserFlags    = "userFlags"
	KeyReceivedDate = "receivedDate"
	KeyThreadLevel  = "threadLevel"
	KeyFolder       = "folder"
	KeyPicture      = "picture"
	KeySize         = "size"
	KeyHeaders      = "headers"
	KeyBody         = "body"
	KeyDisposition  = "disposition"
	KeyFileName     = "fileName"
)

// Aliases maps the top-level keys of a message document that stand for a
// header to the name of that header. A header given by alias is used only
// when "headers" does not already hold that header.
var Aliases = map[string]string{
	"from":                 header.From,
	"to":                   header.To,
	"cc":                   header.Cc,
	"bcc":                  header.Bcc,
	"reply_to":             header.ReplyTo,
	"sender":               header.Sender,
	"subject":              header.Subject,
	"disp_notification_to": header.DispositionNotificationTo,
}

// Transcoder converts message documents to message.Message trees and back. It
// holds no per-call state, so one may serve concurrent calls.
type Transcoder struct {
	headers        *codec.HeaderCodecs
	contents       *codec.ContentCodecs
	resolver       resolver.Resolver
	resolveTimeout time.Duration
	deferRefs      bool
	maxDepth       int
	logger         *slog.Logger
	decodeWords    bool
	folderPrefix   string
	mode           display.Mode
	renderer       display.Renderer
	inline         bool
	indent         string
}

// New returns a Transcoder configured by the given options.
func New(opts ...Option) *Transcoder {
	t := &Transcoder{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(t)
	}

	if t.headers == nil {
		t.headers = codec.NewHeaderCodecs()
	}
	if t.contents == nil {
		t.contents = codec.NewContentCodecs()
	}
	if t.logger == nil {
		t.logger = slog.New(slog.DiscardHandler)
	}
	if t.renderer == nil {
		t.renderer = display.NewSanitizer()
	}

	return t
}

// With returns a copy of the Transcoder with more options applied. The copy
// shares the codec registries.
func (t *Transcoder) With(opts ...Option) *Transcoder {
	c := *t
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// HeaderCodecs returns the header codec registry.
func (t *Transcoder) HeaderCodecs() *codec.HeaderCodecs {
	return t.headers
}

// ContentCodecs returns the content codec registry.
func (t *Transcoder) ContentCodecs() *codec.ContentCodecs {
	return t.contents
}

// Parse is a shortcut for New(opts...).Parse(ctx, data).
func Parse(ctx context.Context, data []byte, opts ...Option) (*message.Message, error) {
	return New(opts...).Parse(ctx, data)
}

// Write is a shortcut for New(opts...).Write(ctx, msg).
func Write(ctx context.Context, msg *message.Message, opts ...Option) ([]byte, error) {
	return New(opts...).Write(ctx, msg)
}

func (t *Transcoder) boundResolver() resolver.Resolver {
	if t.resolver == nil {
		return nil
	}
	return resolver.WithTimeout(t.resolver, t.resolveTimeout)
}

// parseRun holds the state of one Parse call.
type parseRun struct {
	t    *Transcoder
	hs   *codec.HeaderSet
	cs   *codec.ContentSet
	res  resolver.Resolver
	errs []error
}

// Parse converts a message document into a message tree.
//
// If the document is not a JSON object or a message field has the wrong JSON
// type, it returns an error wrapping ErrMalformedDocument. If the body of the
// message as a whole cannot be decoded, it returns that error. If ctx ends
// before parsing is done, it returns the context error. In each of these
// cases no message is returned.
//
// Otherwise, a message is returned. If some headers or the bodies of some
// nested parts could not be decoded, those are left out as described by
// PartialError, which is returned with the message.
func (t *Transcoder) Parse(ctx context.Context, data []byte) (*message.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	obj, err := jsonx.ParseObject(data)
	if err != nil {
		return nil, malformed("%v", err)
	}

	r := &parseRun{
		t:   t,
		hs:  t.headers.Snapshot(),
		cs:  t.contents.Snapshot(),
		res: t.boundResolver(),
	}

	msg := &message.Message{}
	if err := r.parseEnvelope(msg, obj); err != nil {
		return nil, err
	}

	if err := r.parseHeaders(&msg.Part, obj, "", true); err != nil {
		return nil, err
	}

	if err := r.parseBody(ctx, &msg.Part, obj, "", 0); err != nil {
		return nil, err
	}

	if len(r.errs) > 0 {
		return msg, &PartialError{r.errs}
	}
	return msg, nil
}

func (r *parseRun) degrade(err error) {
	r.errs = append(r.errs, err)
	r.t.logger.Warn("message document only partly decoded", "error", err)
}

func decodeField(raw json.RawMessage, v any, want jsonx.Kind) error {
	if jsonx.IsNull(raw) {
		return nil
	}

	if k := jsonx.KindOf(raw); k != want {
		return fmt.Errorf("found %s", k)
	}
	return json.Unmarshal(raw, v)
}

func (r *parseRun) parseEnvelope(msg *message.Message, obj jsonx.Obj) error {
	var (
		flags     int
		userFlags []string
		received  *int64
	)

	fields := []struct {
		key   string
		v     any
		kind  jsonx.Kind
		field message.Fields
	}{
		{KeyID, &msg.ID, jsonx.String, message.FieldID},
		{KeyColorLabel, &msg.ColorLabel, jsonx.Number, message.FieldColorLabel},
		{KeyFlags, &flags, jsonx.Number, 0},
		{KeyUserFlags, &userFlags, jsonx.Array, message.FieldUserFlags},
		{KeyReceivedDate, &received, jsonx.Number, message.FieldReceivedDate},
		{KeyThreadLevel, &msg.ThreadLevel, jsonx.Number, message.FieldThreadLevel},
		{KeyFolder, &msg.Folder, jsonx.String, message.FieldFolder},
		{KeyPicture, &msg.Picture, jsonx.String, message.FieldPicture},
		{KeySize, &msg.Size, jsonx.Number, message.FieldSize},
	}

	for _, f := range fields {
		raw, ok := obj.Get(f.key)
		if !ok || jsonx.IsNull(raw) {
			continue
		}
		if err := decodeField(raw, f.v, f.kind); err != nil {
			return malformed("%q must be %s: %v", f.key, f.kind, err)
		}
		msg.Present = msg.Present.Set(f.field)
	}

	msg.Flags = message.Flags(flags)
	msg.AddUserFlag(userFlags...)
	if received != nil {
		msg.ReceivedDate = time.UnixMilli(*received).UTC()
	}

	return nil
}

// parseHeaders decodes the headers of p. Only the root takes headers from
// top-level aliases, and only for the root is an undecodable "headers" value
// fatal.
func (r *parseRun) parseHeaders(p *message.Part, obj jsonx.Obj, section string, root bool) error {
	var members jsonx.Obj
	if raw, ok := obj.Get(KeyHeaders); ok && !jsonx.IsNull(raw) {
		hobj, err := jsonx.ParseObject(raw)
		switch {
		case err != nil && root:
			return malformed("%q must be an object: %v", KeyHeaders, err)
		case err != nil:
			r.degrade(&codec.DecodeError{Section: section, Err: err})
		default:
			members = hobj
		}
	}

	if root {
		for _, m := range obj {
			name, isAlias := Aliases[m.Key]
			if isAlias && !hasHeader(members, name) {
				members = append(members, jsonx.Member{Key: name, Value: m.Value})
			}
		}
	}

	opt := codec.DecodeWords(r.t.decodeWords)
	for _, m := range members {
		err := r.hs.ParseAndAdd(&p.Header, m.Key, m.Value, opt)
		if err == nil {
			continue
		}

		r.degrade(codec.TagSection(err, section))
		if jsonx.KindOf(m.Value) == jsonx.String {
			codec.ParseGeneric(&p.Header, m.Key, m.Value, r.t.decodeWords)
		}
	}

	return nil
}

func hasHeader(members jsonx.Obj, name string) bool {
	for _, m := range members {
		if strings.EqualFold(m.Key, name) {
			return true
		}
	}
	return false
}

// parseBody decodes the body of p. The error returned is for the caller to
// treat as fatal or not.
func (r *parseRun) parseBody(
	ctx context.Context,
	p *message.Part,
	obj jsonx.Obj,
	section string,
	depth int,
) error {
	raw, ok := obj.Get(KeyBody)
	if !ok || jsonx.IsNull(raw) {
		return nil
	}

	cp, ok := r.cs.SelectParser(p, raw)
	if !ok {
		r.t.logger.Debug("no content parser for body",
			"section", section,
			"mediaType", p.MediaType())
		return nil
	}

	pc := &codec.ParseContext{
		Resolver:        r.res,
		DeferReferences: r.t.deferRefs,
		Section:         section,
		Depth:           depth,
		MaxDepth:        r.t.maxDepth,
		Logger:          r.t.logger,
		ParsePart: func(ctx context.Context, i int, raw json.RawMessage) (*message.Part, error) {
			return r.parsePart(ctx, raw, walker.SectionID(section, i), depth+1)
		},
	}

	c, err := cp.Parse(ctx, pc, p, raw)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return contentError(err, section)
	}

	p.Content = c
	return nil
}

func contentError(err error, section string) error {
	switch err.(type) {
	case *codec.DecodeError, *codec.UnresolvedReferenceError:
		return codec.TagSection(err, section)
	}
	return codec.TagSection(&codec.DecodeError{Section: section, Err: err}, section)
}

// parsePart decodes one element of a multipart body. The section given is
// used to report errors when the element does not carry its own id.
func (r *parseRun) parsePart(
	ctx context.Context,
	raw json.RawMessage,
	section string,
	depth int,
) (*message.Part, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	obj, err := jsonx.ParseObject(raw)
	if err != nil {
		r.degrade(&codec.DecodeError{Section: section, Err: err})
		return nil, nil
	}

	p := &message.Part{}
	fields := []struct {
		key   string
		v     any
		kind  jsonx.Kind
		field message.Fields
	}{
		{KeyID, &p.Section, jsonx.String, message.FieldID},
		{KeySize, &p.Size, jsonx.Number, message.FieldSize},
		{KeyDisposition, &p.Disposition, jsonx.String, message.FieldDisposition},
		{KeyFileName, &p.Filename, jsonx.String, message.FieldFileName},
	}

	for _, f := range fields {
		fraw, ok := obj.Get(f.key)
		if !ok || jsonx.IsNull(fraw) {
			continue
		}
		if err := decodeField(fraw, f.v, f.kind); err != nil {
			r.degrade(&codec.DecodeError{
				Section: section,
				Err:     fmt.Errorf("%q must be %s: %w", f.key, f.kind, err),
			})
			continue
		}
		p.Present = p.Present.Set(f.field)
	}

	if p.Section != "" {
		section = p.Section
	}

	if err := r.parseHeaders(p, obj, section, false); err != nil {
		return nil, err
	}

	if err := r.parseBody(ctx, p, obj, section, depth); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.degrade(err)
	}

	return p, nil
}
