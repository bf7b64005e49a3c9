package mailjson

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zostay/go-mailjson/codec"
)

// ErrMalformedDocument is returned by Parse when the document is not a JSON
// object or when one of the message fields has the wrong JSON type. Nothing
// is returned with it.
var ErrMalformedDocument = errors.New("malformed message document")

// DecodeError is returned when a header or body could not be decoded.
type DecodeError = codec.DecodeError

// UnresolvedReferenceError is returned when binary content given by reference
// could not be read.
type UnresolvedReferenceError = codec.UnresolvedReferenceError

// PartialError is returned by Parse along with the message when some headers
// or bodies could not be decoded. The message is complete except for those:
// an undecodable header is kept as generic text when it was given as a string
// and dropped otherwise, and an undecodable part body is left empty.
type PartialError struct {
	Errs []error
}

// Error lists the failures.
func (err *PartialError) Error() string {
	msgs := make([]string, len(err.Errs))
	for i, e := range err.Errs {
		msgs[i] = e.Error()
	}

	noun := "problems"
	if len(err.Errs) == 1 {
		noun = "problem"
	}

	return fmt.Sprintf("message parsed with %d %s: %s", len(err.Errs), noun, strings.Join(msgs, "; "))
}

// Unwrap returns the individual failures.
func (err *PartialError) Unwrap() []error {
	return err.Errs
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedDocument, fmt.Sprintf(format, args...))
}
