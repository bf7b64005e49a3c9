package codec

import (
	"errors"
	"fmt"
)

// Errors returned by the built-in codecs.
var (
	// ErrNoResolver is returned when a reference must be resolved but no
	// resolver was configured.
	ErrNoResolver = errors.New("no binary resolver configured")

	// ErrMaxDepth is returned when multipart content nests deeper than
	// permitted.
	ErrMaxDepth = errors.New("multipart nesting is too deep")
)

// DecodeError is returned when a header or content parser fails to decode its
// own structured JSON. Exactly one of Header or Section identifies what
// failed, except for headers of nested parts, which carry both.
type DecodeError struct {
	// Header names the header that failed.
	Header string

	// Section locates the part that failed. It is empty for the root.
	Section string

	Err error
}

// Error returns the error message.
func (err *DecodeError) Error() string {
	switch {
	case err.Header != "" && err.Section != "":
		return fmt.Sprintf("header %q of section %q: %v", err.Header, err.Section, err.Err)
	case err.Header != "":
		return fmt.Sprintf("header %q: %v", err.Header, err.Err)
	case err.Section != "":
		return fmt.Sprintf("content of section %q: %v", err.Section, err.Err)
	}
	return fmt.Sprintf("message content: %v", err.Err)
}

// Unwrap returns the underlying error.
func (err *DecodeError) Unwrap() error {
	return err.Err
}

// UnresolvedReferenceError is returned when binary content given by reference
// could not be read from the resolver.
type UnresolvedReferenceError struct {
	// Section locates the part whose content failed. It is empty for the root.
	Section string

	// ID is the reference that failed.
	ID string

	Err error
}

// Error returns the error message.
func (err *UnresolvedReferenceError) Error() string {
	if err.Section == "" {
		return fmt.Sprintf("unable to resolve reference %q: %v", err.ID, err.Err)
	}
	return fmt.Sprintf("unable to resolve reference %q in section %q: %v", err.ID, err.Section, err.Err)
}

// Unwrap returns the underlying error.
func (err *UnresolvedReferenceError) Unwrap() error {
	return err.Err
}

// TagSection sets the section on any DecodeError or UnresolvedReferenceError
// in err's chain that does not have one yet, and returns err.
func TagSection(err error, section string) error {
	if section == "" {
		return err
	}

	var de *DecodeError
	if errors.As(err, &de) && de.Section == "" {
		de.Section = section
	}

	var ure *UnresolvedReferenceError
	if errors.As(err, &ure) && ure.Section == "" {
		ure.Section = section
	}

	return err
}
