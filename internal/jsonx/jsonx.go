// Package jsonx provides the small amount of JSON handling that
// encoding/json does not: objects whose member order survives a decode and
// encode cycle, and cheap classification of raw values.
package jsonx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNotObject is returned when an object was expected.
var ErrNotObject = errors.New("JSON value is not an object")

// ErrNotArray is returned when an array was expected.
var ErrNotArray = errors.New("JSON value is not an array")

// Kind classifies a raw JSON value by its first significant byte.
type Kind int

const (
	Invalid Kind = iota
	Null
	Bool
	Number
	String
	Array
	Object
)

var kindNames = map[Kind]string{
	Invalid: "invalid",
	Null:    "null",
	Bool:    "boolean",
	Number:  "number",
	String:  "string",
	Array:   "array",
	Object:  "object",
}

// String returns a name suitable for error messages.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindOf reports the kind of the raw value. It does not validate the rest of
// the value.
func KindOf(raw json.RawMessage) Kind {
	raw = bytes.TrimLeft(raw, " \t\r\n")
	if len(raw) == 0 {
		return Invalid
	}

	switch c := raw[0]; {
	case c == 'n':
		return Null
	case c == 't' || c == 'f':
		return Bool
	case c == '"':
		return String
	case c == '[':
		return Array
	case c == '{':
		return Object
	case c == '-' || (c >= '0' && c <= '9'):
		return Number
	}
	return Invalid
}

// IsNull returns true for an absent or null value.
func IsNull(raw json.RawMessage) bool {
	k := KindOf(raw)
	return k == Null || (k == Invalid && len(bytes.TrimSpace(raw)) == 0)
}

// Member is one key of an object along with its undecoded value.
type Member struct {
	Key   string
	Value json.RawMessage
}

// Obj is a JSON object that remembers the order of its members. Duplicate
// keys found while parsing are kept; Get returns the first.
type Obj []Member

// ParseObject decodes data, which must hold exactly one JSON object.
func ParseObject(data []byte) (Obj, error) {
	if KindOf(data) != Object {
		return nil, fmt.Errorf("%w: found %s", ErrNotObject, KindOf(data))
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	o := Obj{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		key, isStr := tok.(string)
		if !isStr {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}

		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("object member %q: %w", key, err)
		}

		o = append(o, Member{key, v})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON object")
	}

	return o, nil
}

// ParseArray decodes raw, which must hold a JSON array, into its elements.
func ParseArray(raw json.RawMessage) ([]json.RawMessage, error) {
	if KindOf(raw) != Array {
		return nil, fmt.Errorf("%w: found %s", ErrNotArray, KindOf(raw))
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, err
	}
	return elems, nil
}

// Get returns the value of the first member with the given key.
func (o Obj) Get(key string) (json.RawMessage, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Has returns true if the key is present.
func (o Obj) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Keys lists the keys in order.
func (o Obj) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// SetRaw replaces the value for key, or appends it if absent.
func (o *Obj) SetRaw(key string, raw json.RawMessage) {
	for i, m := range *o {
		if m.Key == key {
			(*o)[i].Value = raw
			return
		}
	}
	*o = append(*o, Member{key, raw})
}

// Set marshals v and stores it under key as SetRaw does.
func (o *Obj) Set(key string, v any) error {
	raw, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("object member %q: %w", key, err)
	}
	o.SetRaw(key, raw)
	return nil
}

// MarshalJSON writes the members in order.
func (o Obj) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}

		k, err := Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		if len(m.Value) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(m.Value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Marshal is json.Marshal without HTML escaping, so mail bodies come back out
// the way they went in.
func Marshal(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// MarshalIndent is Marshal followed by indentation when indent is not empty.
func MarshalIndent(v any, indent string) ([]byte, error) {
	out, err := Marshal(v)
	if err != nil || indent == "" {
		return out, err
	}

	buf := &bytes.Buffer{}
	if err := json.Indent(buf, out, "", indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
