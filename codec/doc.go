// Package codec holds the pluggable parsers and writers that convert between
// JSON fragments and the header and content values of package message.
//
// There are two registries. HeaderCodecs decides how each named header is
// read from and written to JSON. ContentCodecs decides the same for the body
// of a part, keyed on the primary MIME type of the part's Content-Type. Each
// registered codec reports whether it Handles a given input and a Rank. When
// several codecs handle the same input, the one with the highest rank wins,
// and among equal ranks the one registered first wins.
//
// Parsing is total: a header no parser claims becomes a generic text header,
// and a body no parser claims is left empty. Writing may be partial: a body no
// writer claims is left out of the output.
package codec
