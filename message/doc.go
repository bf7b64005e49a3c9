// Package message holds the in-memory document model the transcoder builds
// when parsing and reads when writing. A Message is a root Part carrying
// envelope metadata. Every Part has a header and at most one Content, which is
// exactly one of *Text, *Binary, *Reference, or *Multipart. A *Multipart holds
// child parts, so a message forms a tree of parts:
//
//	msg := &message.Message{}
//	msg.SetMediaType("multipart/mixed")
//	msg.Content = message.NewMultipart(
//	  message.NewTextPart("text/plain", "hello"),
//	  message.NewBinaryPart("image/png", png),
//	)
//
// The tree is built top-down, so a part can only ever have one parent. The
// package has no behavior beyond construction and accessors; see package
// mailjson for turning these into JSON and back.
package message
