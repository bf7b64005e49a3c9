package message

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Flags is the system flag bitmask of a message.
type Flags int

// The system flags.
const (
	FlagAnswered Flags = 1 << iota
	FlagDeleted
	FlagDraft
	FlagFlagged
	FlagRecent
	FlagSeen
	FlagUser
	FlagSpam
	FlagForwarded
	FlagReadAck
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagAnswered, "Answered"},
	{FlagDeleted, "Deleted"},
	{FlagDraft, "Draft"},
	{FlagFlagged, "Flagged"},
	{FlagRecent, "Recent"},
	{FlagSeen, "Seen"},
	{FlagUser, "User"},
	{FlagSpam, "Spam"},
	{FlagForwarded, "Forwarded"},
	{FlagReadAck, "ReadAck"},
}

// Has returns true if every bit of f2 is set.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// Set returns the flags with the bits of f2 set.
func (f Flags) Set(f2 Flags) Flags {
	return f | f2
}

// Clear returns the flags with the bits of f2 cleared.
func (f Flags) Clear(f2 Flags) Flags {
	return f &^ f2
}

// String lists the names of the set flags joined by "|". Bits without a name
// are rendered in hex.
func (f Flags) String() string {
	if f == 0 {
		return "0"
	}

	names := []string{}
	rest := f
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
			rest = rest.Clear(fn.flag)
		}
	}

	if rest != 0 {
		names = append(names, fmt.Sprintf("%#x", int(rest)))
	}

	return strings.Join(names, "|")
}

// The color labels. A message has exactly one label and ColorNone means no
// label is set.
const (
	ColorNone = iota
	ColorRed
	ColorOrange
	ColorYellow
	ColorLightGreen
	ColorGreen
	ColorLightBlue
	ColorBlue
	ColorPurple
	ColorPink
	ColorGray
)

// Message is the root part of a message tree along with the envelope
// metadata that only a whole message carries. The message size is the Size
// of the embedded Part.
type Message struct {
	Part

	ID           string
	ReceivedDate time.Time
	Flags        Flags
	UserFlags    []string
	ColorLabel   int
	ThreadLevel  int

	// Folder is the folder the message was read from without any prefix.
	Folder string

	// Picture is a URL for an image to display with the message.
	Picture string
}

// GetRoot returns the root part.
func (m *Message) GetRoot() *Part {
	return &m.Part
}

// HasUserFlag returns true if the user flag is set.
func (m *Message) HasUserFlag(name string) bool {
	return slices.Contains(m.UserFlags, name)
}

// AddUserFlag sets the user flag. Setting a flag that is already set does
// nothing, so the order of first addition is kept.
func (m *Message) AddUserFlag(names ...string) {
	for _, n := range names {
		if !m.HasUserFlag(n) {
			m.UserFlags = append(m.UserFlags, n)
		}
	}
}

// RemoveUserFlag clears the user flag and reports whether it was set.
func (m *Message) RemoveUserFlag(name string) bool {
	ix := slices.Index(m.UserFlags, name)
	if ix < 0 {
		return false
	}
	m.UserFlags = slices.Delete(m.UserFlags, ix, ix+1)
	return true
}
