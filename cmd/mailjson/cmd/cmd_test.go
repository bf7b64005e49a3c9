package cmd_test

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mailjson/cmd/mailjson/cmd"
	"github.com/zostay/go-mailjson/mailjson"
	"github.com/zostay/go-mailjson/resolver"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := cmd.NewRootCommand()
	out := &bytes.Buffer{}
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	store := filepath.Join(t.TempDir(), "b.db")
	in := `{"headers": {"From": "A <a@x.com>", "Content-Type": "text/plain; charset=utf-8"}, "body": "hi", "folder": "INBOX"}`

	out, err := run(t, in, "normalize", "--store", store, "--indent", "", "--folder-prefix", "a")
	require.NoError(t, err)
	assert.Equal(t,
		`{"flags":0,"folder":"a/INBOX","headers":{"From":{"personal":"A","address":"a@x.com"},`+
			`"Content-Type":{"type":"text/plain","params":{"charset":"utf-8"}}},"body":"hi"}`+"\n",
		out)

	_, err = os.Stat(store)
	assert.ErrorIs(t, err, os.ErrNotExist, "normalize does not create the store")

	file := filepath.Join(t.TempDir(), "m.json")
	require.NoError(t, os.WriteFile(file, []byte(in), 0o644))
	fromFile, err := run(t, "", "normalize", "--store", store, "--indent", "", "--folder-prefix", "a", file)
	require.NoError(t, err)
	assert.Equal(t, out, fromFile)
}

func TestNormalize_Partial(t *testing.T) {
	t.Parallel()

	store := filepath.Join(t.TempDir(), "b.db")
	in := `{"headers": {"Content-Type": {"type": "multipart/mixed"}}, "body": [{"body": "ok"}, 7]}`

	out, err := run(t, in, "normalize", "--store", store, "--indent", "")
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"flags": 0, "headers": {"Content-Type": {"type": "multipart/mixed"}}, "body": [{"body": "ok"}]}`,
		out)

	_, err = run(t, in, "normalize", "--store", store, "--strict")
	var perr *mailjson.PartialError
	assert.ErrorAs(t, err, &perr)

	_, err = run(t, `[]`, "normalize", "--store", store)
	assert.ErrorIs(t, err, mailjson.ErrMalformedDocument)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	store := filepath.Join(t.TempDir(), "b.db")

	out, err := run(t, `{"body": "hi", "flags": 1}`, "check", "--store", store)
	require.NoError(t, err)
	assert.Equal(t, "round trip is clean\n", out)

	out, err = run(t, `{"flags": 0, "headers": {"From": "a@x.com"}}`, "check", "--store", store)
	assert.ErrorIs(t, err, cmd.ErrRoundTrip)
	assert.Contains(t, out, `-    "From": "a@x.com"`)
	assert.Contains(t, out, `+    "From": {`)

	out, err = run(t, `{"headers": {"Content-Type": {}}}`, "check", "--store", store)
	assert.Error(t, err)
	assert.Contains(t, out, `! header "Content-Type"`)
}

func TestStoreAndTree(t *testing.T) {
	t.Parallel()

	store := filepath.Join(t.TempDir(), "nested", "b.db")

	id, err := run(t, "hello", "store", "put", "--store", store, "--type", "image/png")
	require.NoError(t, err)
	id = strings.TrimSpace(id)
	assert.Len(t, id, 48)

	data, err := run(t, "", "store", "get", "--store", store, id)
	require.NoError(t, err)
	assert.Equal(t, "hello", data)

	doc := fmt.Sprintf(`{
		"headers": {"Content-Type": "multipart/mixed"},
		"body": [
			{"body": "hi"},
			{"headers": {"Content-Type": {"type": "image/png", "params": {"name": "a.png"}}}, "body": {"ref": %q}}
		]
	}`, id)

	out, err := run(t, doc, "tree", "--store", store)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf(`* multipart/mixed 2 parts
  1 text/plain 2 chars
  2 image/png 5 bytes ref=%s "a.png"
`, id), out)

	out, err = run(t, doc, "normalize", "--store", store, "--inline", "--indent", "")
	require.NoError(t, err)
	assert.Contains(t, out, `"body":"aGVsbG8="`)

	_, err = run(t, "", "store", "rm", "--store", store, id)
	require.NoError(t, err)

	_, err = run(t, "", "store", "get", "--store", store, id)
	assert.ErrorIs(t, err, resolver.ErrNotFound)

	out, err = run(t, doc, "tree", "--store", store)
	assert.ErrorIs(t, err, resolver.ErrNotFound)
	assert.Contains(t, out, "  2 image/png (empty)")
}

func TestStore_Missing(t *testing.T) {
	t.Parallel()

	store := filepath.Join(t.TempDir(), "b.db")

	_, err := run(t, "", "store", "get", "--store", store, "abc")
	assert.ErrorIs(t, err, resolver.ErrNotFound)

	_, err = run(t, "", "store", "rm", "--store", store, "abc")
	assert.NoError(t, err)

	_, err = os.Stat(store)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "mailjson v"+cmd.Version+"\n", out)

	_, err = run(t, "", "version", "--require", "0.0.1")
	assert.NoError(t, err)

	_, err = run(t, "", "version", "--require", "99.0.0")
	assert.Error(t, err)

	_, err = run(t, "", "version", "--require", "nope")
	assert.Error(t, err)
}
