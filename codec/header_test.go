package codec_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mailjson/codec"
	"github.com/zostay/go-mailjson/header"
	"github.com/zostay/go-mailjson/header/field"
	"github.com/zostay/go-mailjson/internal/jsonx"
)

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func marshal(t *testing.T, v any) string {
	t.Helper()
	out, err := jsonx.Marshal(v)
	require.NoError(t, err)
	return string(out)
}

func bodies(h *header.Header, name string) []string {
	out := []string{}
	for _, f := range h.GetAllFieldsNamed(name) {
		out = append(out, f.Body())
	}
	return out
}

func tagParser(tag string, rank int) *codec.HeaderParserEntry {
	return &codec.HeaderParserEntry{
		Match:   func(name string, _ json.RawMessage) bool { return name == "X-Custom" },
		Ranking: rank,
		Decode: func(h *header.Header, name string, _ json.RawMessage) error {
			h.AddText(name, tag)
			return nil
		},
	}
}

func TestHeaderCodecs_SelectionDeterminism(t *testing.T) {
	t.Parallel()

	hc := &codec.HeaderCodecs{}
	hc.AddHeaderParser(tagParser("first", 1))
	hc.AddHeaderParser(tagParser("second", 1))

	for i := 0; i < 10; i++ {
		h := &header.Header{}
		require.NoError(t, hc.ParseAndAdd(h, "X-Custom", raw(`"v"`)))
		assert.Equal(t, []string{"first"}, bodies(h, "X-Custom"))
	}

	high := hc.AddHeaderParser(tagParser("high", 2))
	h := &header.Header{}
	require.NoError(t, hc.ParseAndAdd(h, "X-Custom", raw(`"v"`)))
	assert.Equal(t, []string{"high"}, bodies(h, "X-Custom"))

	assert.True(t, hc.RemoveHeaderParser(high))
	h = &header.Header{}
	require.NoError(t, hc.ParseAndAdd(h, "X-Custom", raw(`"v"`)))
	assert.Equal(t, []string{"first"}, bodies(h, "X-Custom"))
}

func TestHeaderCodecs_SnapshotIsolation(t *testing.T) {
	t.Parallel()

	hc := &codec.HeaderCodecs{}
	snap := hc.Snapshot()
	hc.AddHeaderParser(tagParser("late", 1))

	h := &header.Header{}
	require.NoError(t, snap.ParseAndAdd(h, "X-Custom", raw(`"v"`)))
	assert.Equal(t, []string{"v"}, bodies(h, "X-Custom"))
}

func TestParseGeneric(t *testing.T) {
	t.Parallel()

	hc := codec.NewHeaderCodecs()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"single string", `"hello"`, []string{"hello"}},
		{"array fans out", `["a", "b", "c"]`, []string{"a", "b", "c"}},
		{"empty array", `[]`, []string{}},
		{"null", `null`, []string{}},
		{"number", `42`, []string{"42"}},
		{"bool", `true`, []string{"true"}},
		{"object", `{"a": 1}`, []string{`{"a":1}`}},
		{"mixed array", `["a", 7, null]`, []string{"a", "7"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			h := &header.Header{}
			require.NoError(t, hc.ParseAndAdd(h, "X-Unknown", raw(test.raw)))
			assert.Equal(t, test.want, bodies(h, "x-unknown"))
			for _, f := range h.Fields() {
				assert.Equal(t, field.KindText, f.Kind())
				assert.Equal(t, "X-Unknown", f.Name())
			}
		})
	}
}

func TestParseGeneric_DecodeWords(t *testing.T) {
	t.Parallel()

	hc := codec.NewHeaderCodecs()
	enc := `"=?utf-8?q?caf=C3=A9?="`

	h := &header.Header{}
	require.NoError(t, hc.ParseAndAdd(h, "Subject", raw(enc)))
	assert.Equal(t, []string{"=?utf-8?q?caf=C3=A9?="}, bodies(h, "Subject"))

	h = &header.Header{}
	require.NoError(t, hc.ParseAndAdd(h, "Subject", raw(enc), codec.DecodeWords(true)))
	assert.Equal(t, []string{"café"}, bodies(h, "Subject"))
}

func TestAddressParser(t *testing.T) {
	t.Parallel()

	hc := codec.NewHeaderCodecs()

	h := &header.Header{}
	require.NoError(t, hc.ParseAndAdd(h, "from", raw(`{"address": "a@x.com", "personal": "A"}`)))
	al, err := h.GetAddressList(header.From)
	require.NoError(t, err)
	assert.Equal(t, field.AddressList{{Personal: "A", Address: "a@x.com"}}, al)

	h = &header.Header{}
	require.NoError(t, hc.ParseAndAdd(h, "To", raw(`[{"address": "b@x.com"}, "C <c@x.com>"]`)))
	al, err = h.GetAddressList(header.To)
	require.NoError(t, err)
	assert.Equal(t, field.AddressList{
		{Address: "b@x.com"},
		{Personal: "C", Address: "c@x.com"},
	}, al)

	h = &header.Header{}
	require.NoError(t, hc.ParseAndAdd(h, "Cc", raw(`"d@x.com, E <e@x.com>"`)))
	al, err = h.GetAddressList(header.Cc)
	require.NoError(t, err)
	assert.Len(t, al, 2)
}

func TestAddressParser_DecodeError(t *testing.T) {
	t.Parallel()

	hc := codec.NewHeaderCodecs()

	for _, bad := range []string{
		`{"address": 5}`,
		`{"personal": "No Address"}`,
		`[{"address": "a@x.com"}, 12]`,
	} {
		h := &header.Header{}
		err := hc.ParseAndAdd(h, "Reply-To", raw(bad))

		var de *codec.DecodeError
		require.True(t, errors.As(err, &de), bad)
		assert.Equal(t, "Reply-To", de.Header)
		assert.Contains(t, de.Error(), `header "Reply-To"`)
		assert.Equal(t, 0, h.Len(), "nothing added for %s", bad)
	}
}

func TestAddressWriter_FromQuirk(t *testing.T) {
	t.Parallel()

	hc := codec.NewHeaderCodecs()
	one := field.Address{Personal: "A", Address: "a@x.com"}
	two := field.Address{Address: "b@x.com"}

	tests := []struct {
		name  string
		field *field.Field
		want  string
	}{
		{"from one", field.NewAddressList("From", one), `{"personal":"A","address":"a@x.com"}`},
		{"from two", field.NewAddressList("From", one, two), `[{"personal":"A","address":"a@x.com"},{"address":"b@x.com"}]`},
		{"from none", field.NewAddressList("From"), `[]`},
		{"to one", field.NewAddressList("To", one), `[{"personal":"A","address":"a@x.com"}]`},
		{"resent-from one", field.NewAddressList("Resent-From", two), `[{"address":"b@x.com"}]`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			h := &header.Header{}
			h.Add(test.field)
			v, err := hc.WriteEntry(h.Entries()[0])
			require.NoError(t, err)
			assert.JSONEq(t, test.want, marshal(t, v))
		})
	}
}

func TestAddressWriter_TextFallsBackToGeneric(t *testing.T) {
	t.Parallel()

	hc := codec.NewHeaderCodecs()
	h := &header.Header{}
	h.AddText("From", "not really an address")

	v, err := hc.WriteEntry(h.Entries()[0])
	require.NoError(t, err)
	assert.Equal(t, "not really an address", v)
}

func TestParamParser(t *testing.T) {
	t.Parallel()

	hc := codec.NewHeaderCodecs()

	h := &header.Header{}
	require.NoError(t, hc.ParseAndAdd(h, "Content-Type",
		raw(`{"type": "text/plain", "params": {"name": "f.txt", "charset": "UTF-8"}}`)))
	pv, err := h.GetContentType()
	require.NoError(t, err)
	assert.Equal(t, "text/plain", pv.MediaType())
	assert.Equal(t, "UTF-8", pv.Charset())
	assert.Equal(t, "name", pv.Params()[0].Name)

	v, err := hc.WriteEntry(h.Entries()[0])
	require.NoError(t, err)
	assert.Equal(t, `{"type":"text/plain","params":{"name":"f.txt","charset":"UTF-8"}}`, marshal(t, v))

	h = &header.Header{}
	require.NoError(t, hc.ParseAndAdd(h, "content-type", raw(`"text/plain;charset=UTF-8"`)))
	v, err = hc.WriteEntry(h.Entries()[0])
	require.NoError(t, err)
	assert.Equal(t, `{"type":"text/plain","params":{"charset":"UTF-8"}}`, marshal(t, v))

	h = &header.Header{}
	require.NoError(t, hc.ParseAndAdd(h, "Content-Disposition",
		raw(`{"type": "attachment", "params": {"filename": "a.pdf", "size": 10}}`)))
	fn, err := h.GetFilename()
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", fn)

	h = &header.Header{}
	require.NoError(t, hc.ParseAndAdd(h, "Content-Disposition", raw(`{"type": "inline"}`)))
	v, err = hc.WriteEntry(h.Entries()[0])
	require.NoError(t, err)
	assert.Equal(t, `{"type":"inline"}`, marshal(t, v))
}

func TestParamParser_DecodeError(t *testing.T) {
	t.Parallel()

	hc := codec.NewHeaderCodecs()

	for _, bad := range []string{
		`{"params": {}}`,
		`{"type": 1}`,
		`{"type": "text/plain", "params": []}`,
		`{"type": "text/plain", "params": {"a": {}}}`,
		`"text/plain; ;;="`,
		`12`,
	} {
		h := &header.Header{}
		err := hc.ParseAndAdd(h, "Content-Type", raw(bad))

		var de *codec.DecodeError
		assert.True(t, errors.As(err, &de), bad)
		assert.Equal(t, 0, h.Len())
	}
}

func TestDateParser(t *testing.T) {
	t.Parallel()

	hc := codec.NewHeaderCodecs()

	h := &header.Header{}
	require.NoError(t, hc.ParseAndAdd(h, "Date", raw(`"Mon, 26 Feb 2024 10:00:00 +0000"`)))
	d, err := h.GetDate()
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2024, 2, 26, 10, 0, 0, 0, time.UTC)))

	v, err := hc.WriteEntry(h.Entries()[0])
	require.NoError(t, err)
	assert.Equal(t, "Mon, 26 Feb 2024 10:00:00 +0000", v)

	h = &header.Header{}
	require.NoError(t, hc.ParseAndAdd(h, "Date", raw(`1708941600000`)))
	d, err = h.GetDate()
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2024, 2, 26, 10, 0, 0, 0, time.UTC)))

	var de *codec.DecodeError
	err = hc.ParseAndAdd(&header.Header{}, "Date", raw(`"not a date at all"`))
	assert.True(t, errors.As(err, &de))
}

func TestHeaderWriterEntry(t *testing.T) {
	t.Parallel()

	hc := codec.NewHeaderCodecs()
	id := hc.AddHeaderWriter(&codec.HeaderWriterEntry{
		Match:   func(e header.Entry) bool { return e.Name == "X-Count" },
		Ranking: 5,
		Encode: func(e header.Entry) (any, error) {
			return e.Len(), nil
		},
	})

	h := &header.Header{}
	h.AddText("X-Count", "a")
	h.AddText("X-Count", "b")
	h.AddText("X-Other", "c")
	h.AddText("X-Other", "d")

	entries := h.Entries()
	v, err := hc.WriteEntry(entries[0])
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	v, err = hc.WriteEntry(entries[1])
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, v)

	require.True(t, hc.RemoveHeaderWriter(id))
	v, err = hc.WriteEntry(entries[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)

	hc.AddHeaderWriter(&codec.HeaderWriterEntry{
		Match:  func(header.Entry) bool { return true },
		Encode: func(header.Entry) (any, error) { return nil, errors.New("boom") },
	})
	_, err = hc.WriteEntry(entries[1])
	var de *codec.DecodeError
	assert.True(t, errors.As(err, &de))
}
