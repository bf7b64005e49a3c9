// Package mailjson converts mail messages between a JSON document form and a
// Go tree of headers and typed content. The JSON form is the one used by web
// mail clients and mail APIs: an envelope of flags, dates, and folder, a
// "headers" object, and a "body" that is a string, a {"ref": "id"} pointer to
// stored binary data, or an array of nested parts.
//
// The code is split up according to part of message. Package message holds
// the tree: a message.Message is a root message.Part plus envelope fields,
// and each part has a header.Header and at most one content value. Content is always one of
// message.Text, message.Binary, message.Reference, or message.Multipart, the
// last of which holds the child parts.
//
// Package codec decides how each header and each body is read from JSON and
// written back. The built-in codecs understand address headers, Content-Type
// and Content-Disposition, dates, text, base64 binary, references, and
// multipart bodies. Anything else falls back to plain text headers. You may
// register your own codecs with a rank to override the built-ins and remove
// them again at any time, even while messages are being converted.
//
// Package resolver describes where referenced binary data comes from. Two
// stores are provided: resolver/memory for tests and small tools, and
// resolver/sqlite for something that survives a restart.
//
// The mailjson subpackage ties it together. Its Transcoder parses whole
// documents and writes them back out. Parsing tries hard to give you a
// message even when some piece of the document is not understood: such
// pieces are reported together in a mailjson.PartialError returned alongside
// the message, so you can tell a degraded message from a complete one.
//
// As much as possible, I've tried to preserve round-tripping. If you parse a
// document and write it back out without changes, you get the same JSON,
// except that Content-Type and Content-Disposition are always written in
// object form and a From header holding one address is written as a single
// object.
package mailjson
