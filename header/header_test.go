package header_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mailjson/header"
	"github.com/zostay/go-mailjson/header/field"
	"github.com/zostay/go-mailjson/param"
)

func TestHeader_GetCaseInsensitive(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.AddText("X-Thing", "One")
	h.AddText("x-thing", "Two")
	h.AddText("Subject", "Hello World")

	s, err := h.Get("SUBJECT")
	assert.NoError(t, err)
	assert.Equal(t, "Hello World", s)

	s, err = h.Get("X-THING")
	assert.ErrorIs(t, err, header.ErrManyFields)
	assert.Equal(t, "One", s)

	all, err := h.GetAll("x-Thing")
	assert.NoError(t, err)
	assert.Equal(t, []string{"One", "Two"}, all)

	_, err = h.Get("Missing")
	assert.ErrorIs(t, err, header.ErrNoSuchField)

	_, err = h.GetAll("Missing")
	assert.ErrorIs(t, err, header.ErrNoSuchField)
}

func TestHeader_NamesAndEntries(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.AddText("Received", "a")
	h.AddText("Subject", "s")
	h.AddText("RECEIVED", "b")

	assert.Equal(t, []string{"Received", "Subject"}, h.Names())

	es := h.Entries()
	require.Len(t, es, 2)
	assert.Equal(t, "Received", es[0].Name)
	assert.Equal(t, 2, es[0].Len())
	assert.Equal(t, "b", es[0].Fields[1].Body())
	assert.Equal(t, "Subject", es[1].Name)
	assert.Equal(t, 1, es[1].Len())
}

func TestHeader_SetAndDelete(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.AddText("A", "1")
	h.AddText("B", "2")
	h.AddText("a", "3")

	h.SetText("A", "new")
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, "A: new", h.GetField(0).String())
	assert.Equal(t, "B: 2", h.GetField(1).String())

	h.AddText("b", "4")
	assert.Equal(t, 2, h.DeleteAll("B"))
	assert.Equal(t, 1, h.Len())
	assert.False(t, h.Has("b"))

	assert.ErrorIs(t, h.DeleteField(3), header.ErrIndexOutOfRange)
	assert.NoError(t, h.DeleteField(0))
	assert.Equal(t, 0, h.Len())
	assert.Nil(t, h.GetField(0))
}

func TestHeader_ContentType(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	_, err := h.GetContentType()
	assert.ErrorIs(t, err, header.ErrNoSuchField)

	h.AddText("content-type", "text/plain; charset=UTF-8")
	mt, err := h.GetMediaType()
	assert.NoError(t, err)
	assert.Equal(t, "text/plain", mt)

	cs, err := h.GetCharset()
	assert.NoError(t, err)
	assert.Equal(t, "UTF-8", cs)

	h.SetMediaType("text/html")
	pv, err := h.GetContentType()
	assert.NoError(t, err)
	assert.Equal(t, "text/html", pv.MediaType())
	assert.Equal(t, "UTF-8", pv.Charset())
	assert.Equal(t, field.KindParam, h.GetField(0).Kind())

	h = &header.Header{}
	h.SetContentType(param.New("image/png"))
	_, err = h.GetCharset()
	assert.ErrorIs(t, err, header.ErrNoSuchFieldParameter)

	h = &header.Header{}
	h.AddText("Content-Type", "bad:type")
	_, err = h.GetContentType()
	assert.Error(t, err)
}

func TestHeader_ContentDisposition(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.SetContentDisposition(param.NewWithParams("attachment",
		param.Param{Name: param.Filename, Value: "f.txt"}))

	d, err := h.GetPresentation()
	assert.NoError(t, err)
	assert.Equal(t, "attachment", d)

	fn, err := h.GetFilename()
	assert.NoError(t, err)
	assert.Equal(t, "f.txt", fn)
}

func TestHeader_Addresses(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.SetAddressList(header.From, field.Address{Personal: "A", Address: "a@example.com"})
	h.AddText("To", "b@example.com")
	h.AddText("to", "c@example.com")

	al, err := h.GetAddressList("from")
	assert.NoError(t, err)
	assert.Equal(t, field.AddressList{{Personal: "A", Address: "a@example.com"}}, al)

	al, err = h.GetAllAddresses("TO")
	assert.NoError(t, err)
	assert.Equal(t, field.AddressList{
		{Address: "b@example.com"},
		{Address: "c@example.com"},
	}, al)

	_, err = h.GetAllAddresses("Cc")
	assert.ErrorIs(t, err, header.ErrNoSuchField)
}

func TestHeader_Date(t *testing.T) {
	t.Parallel()

	when := time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC)

	h := &header.Header{}
	h.SetDate(when)
	d, err := h.GetDate()
	assert.NoError(t, err)
	assert.True(t, when.Equal(d))

	h = &header.Header{}
	h.AddText("Date", "Sat, 02 Jan 2021 03:04:05 +0000")
	d, err = h.GetDate()
	assert.NoError(t, err)
	assert.True(t, when.Equal(d))
}

func TestHeader_Clone(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.SetSubject("one")
	c := h.Clone()
	c.SetSubject("two")

	s, _ := h.GetSubject()
	assert.Equal(t, "one", s)
	s, _ = c.GetSubject()
	assert.Equal(t, "two", s)
}

func TestIsAddressHeader(t *testing.T) {
	t.Parallel()

	for _, n := range []string{"from", "TO", "Cc", "bcc", "Reply-To", "sender",
		"resent-from", "Resent-To", "Resent-Cc", "Resent-Bcc", "Resent-Reply-To",
		"Resent-Sender", "disposition-notification-to"} {
		assert.True(t, header.IsAddressHeader(n), n)
	}

	assert.False(t, header.IsAddressHeader("Subject"))
	assert.False(t, header.IsAddressHeader("X-From"))
}
