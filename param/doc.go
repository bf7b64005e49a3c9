// Package param provides the parsed form of parameterized header fields such
// as Content-type and Content-disposition. Both the RFC 822 text form
// ("text/plain; charset=UTF-8") and the JSON long form of those headers are
// decoded into the same immutable *Value, which keeps its parameters in the
// order they were given.
package param
