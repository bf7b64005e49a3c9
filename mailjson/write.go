package mailjson

import (
	"context"

	"github.com/zostay/go-mailjson/codec"
	"github.com/zostay/go-mailjson/internal/jsonx"
	"github.com/zostay/go-mailjson/message"
)

// writeRun holds the state of one Write call.
type writeRun struct {
	t  *Transcoder
	hs *codec.HeaderSet
	cs *codec.ContentSet
	wc *codec.WriteContext
}

// Write converts a message tree into a message document.
//
// The "flags" key is always written. The other message and part fields are
// written when set or when they were present in the parsed document, even
// holding a zero value. A non-empty "folder" is joined to the folder prefix,
// if any. Headers
// are written by the header codecs, Content-Type and Content-Disposition
// always in object form. A body that no content writer claims is left out.
//
// Any error from a codec stops the write and is returned.
func (t *Transcoder) Write(ctx context.Context, msg *message.Message) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := &writeRun{
		t:  t,
		hs: t.headers.Snapshot(),
		cs: t.contents.Snapshot(),
	}

	r.wc = &codec.WriteContext{
		Resolver:  t.boundResolver(),
		Inline:    t.inline,
		Mode:      t.mode,
		Renderer:  t.renderer,
		Logger:    t.logger,
		WritePart: r.writePart,
	}

	obj, err := r.writeMessage(ctx, msg)
	if err != nil {
		return nil, err
	}

	return jsonx.MarshalIndent(obj, t.indent)
}

func (r *writeRun) writeMessage(ctx context.Context, msg *message.Message) (jsonx.Obj, error) {
	o := jsonx.Obj{}
	has := msg.Present.Has

	folder := msg.Folder
	if r.t.folderPrefix != "" && folder != "" {
		folder = r.t.folderPrefix + "/" + folder
	}

	var received int64
	if !msg.ReceivedDate.IsZero() {
		received = msg.ReceivedDate.UnixMilli()
	}

	userFlags := msg.UserFlags
	if userFlags == nil {
		userFlags = []string{}
	}

	for _, f := range []struct {
		key  string
		v    any
		when bool
	}{
		{KeyID, msg.ID, msg.ID != "" || has(message.FieldID)},
		{KeyColorLabel, msg.ColorLabel, msg.ColorLabel != 0 || has(message.FieldColorLabel)},
		{KeyFlags, int(msg.Flags), true},
		{KeyUserFlags, userFlags, len(msg.UserFlags) > 0 || has(message.FieldUserFlags)},
		{KeyReceivedDate, received, !msg.ReceivedDate.IsZero() || has(message.FieldReceivedDate)},
		{KeyThreadLevel, msg.ThreadLevel, msg.ThreadLevel != 0 || has(message.FieldThreadLevel)},
		{KeyFolder, folder, msg.Folder != "" || has(message.FieldFolder)},
		{KeyPicture, msg.Picture, msg.Picture != "" || has(message.FieldPicture)},
		{KeySize, msg.Size, msg.Size != 0 || has(message.FieldSize)},
	} {
		if !f.when {
			continue
		}
		if err := o.Set(f.key, f.v); err != nil {
			return nil, err
		}
	}

	if err := r.writeHeaders(o.Set, &msg.Part); err != nil {
		return nil, err
	}

	if err := r.writeBody(ctx, o.Set, &msg.Part); err != nil {
		return nil, err
	}

	return o, nil
}

// writePart renders a child part. It is handed to the content writers.
func (r *writeRun) writePart(ctx context.Context, p *message.Part) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := jsonx.Obj{}
	has := p.Present.Has

	if p.Section != "" || has(message.FieldID) {
		if err := o.Set(KeyID, p.Section); err != nil {
			return nil, err
		}
	}

	if p.Size != 0 || has(message.FieldSize) {
		if err := o.Set(KeySize, p.Size); err != nil {
			return nil, err
		}
	}

	if err := r.writeHeaders(o.Set, p); err != nil {
		return nil, err
	}

	if err := r.writeBody(ctx, o.Set, p); err != nil {
		return nil, err
	}

	if p.Disposition != "" || has(message.FieldDisposition) {
		if err := o.Set(KeyDisposition, p.Disposition); err != nil {
			return nil, err
		}
	}

	if p.Filename != "" || has(message.FieldFileName) {
		if err := o.Set(KeyFileName, p.Filename); err != nil {
			return nil, err
		}
	}

	return o, nil
}

func (r *writeRun) writeHeaders(set func(string, any) error, p *message.Part) error {
	if p.Len() == 0 {
		return nil
	}

	hobj := jsonx.Obj{}
	for _, e := range p.Entries() {
		v, err := r.hs.WriteEntry(e)
		if err != nil {
			return codec.TagSection(err, p.Section)
		}
		if err := hobj.Set(e.Name, v); err != nil {
			return err
		}
	}

	return set(KeyHeaders, hobj)
}

func (r *writeRun) writeBody(ctx context.Context, set func(string, any) error, p *message.Part) error {
	if p.Content == nil {
		return nil
	}

	w, ok := r.cs.SelectWriter(p, p.Content)
	if !ok {
		r.t.logger.Debug("no content writer for body",
			"section", p.Section,
			"mediaType", p.MediaType(),
			"content", p.Content.Kind().String())
		return nil
	}

	v, err := w.Write(ctx, r.wc, p, p.Content)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return contentError(err, p.Section)
	}

	return set(KeyBody, v)
}
