package field

import (
	"fmt"
	"io"
	"mime"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

// CharsetReader is used when decoding MIME encoded words. It recognizes every
// charset known to golang.org/x/text/encoding/ianaindex, which is a far wider
// set than the mime package handles on its own.
func CharsetReader(charset string, input io.Reader) (io.Reader, error) {
	e, err := ianaindex.MIME.Encoding(charset)
	if err != nil {
		return nil, err
	}

	if e == nil {
		return nil, fmt.Errorf("no encoding found for charset %q", charset)
	}

	return e.NewDecoder().Reader(input), nil
}

// Decode transforms a single header field body and looks for MIME word encoded
// field values. When they are found, these are decoded into native unicode.
func Decode(body string) (string, error) {
	if !strings.Contains(body, "=?") {
		return body, nil
	}

	dec := &mime.WordDecoder{CharsetReader: CharsetReader}
	return dec.DecodeHeader(body)
}

// Encode transforms a single header field body by replacing any characters
// that cannot appear in a raw header with B-encoded words using UTF-8.
func Encode(body string) string {
	return mime.BEncoding.Encode("utf-8", body)
}
