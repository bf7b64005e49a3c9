// Package mailjson converts message documents, the JSON form of a mail
// message, to message.Message trees and back.
//
// A message document is a JSON object like this:
//
//	{
//	  "id": "m-1",
//	  "flags": 32,
//	  "receivedDate": 1700000000000,
//	  "folder": "INBOX",
//	  "headers": {
//	    "From": {"personal": "Alice", "address": "alice@example.com"},
//	    "Content-Type": {"type": "multipart/mixed"}
//	  },
//	  "body": [
//	    {"headers": {"Content-Type": {"type": "text/plain"}}, "body": "Hi"},
//	    {"headers": {"Content-Type": {"type": "image/png"}}, "body": {"ref": "f1"}}
//	  ]
//	}
//
// The envelope fields are copied to and from the fields of message.Message.
// Each header is handed to the header codecs, and the body to the content
// codecs chosen by the Content-Type of the part, both from package codec.
// A few top-level keys, listed in Aliases, are accepted as headers too.
//
// Binary data given as {"ref": "id"} is read through a resolver.Resolver set
// with WithResolver. Each reference is read once per Parse.
package mailjson
