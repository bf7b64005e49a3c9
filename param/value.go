package param

import (
	"fmt"
	"mime"
	"strings"
)

const (
	// Charset is the name of the charset parameter that may be present in the
	// Content-type header.
	Charset = "charset"

	// Boundary is the name of the boundary parameter that may be present in the
	// Content-type header.
	Boundary = "boundary"

	// Name is the name of the name parameter that may be present in the
	// Content-type header to carry the filename of an attachment.
	Name = "name"

	// Filename is the name of the filename parameter that may be present in the
	// Content-disposition header.
	Filename = "filename"
)

// Param is a single named parameter of a Value.
type Param struct {
	Name  string
	Value string
}

// Value represents a parsed parameterized header field, such as is used in the
// Content-type and Content-disposition headers. A Value object is immutable:
// You cannot change it in place. However, a Modify() function is provided to
// perform transformation of a Value into a new Value.
//
// Unlike mime.ParseMediaType, a Value remembers the order in which its
// parameters were given. Parameter names are matched case-insensitively.
type Value struct {
	v  string
	ps []Param
}

// Parse takes a header field body, parses it as a Value and returns it. If an
// error occurs in the process, it returns an error.
func Parse(v string) (*Value, error) {
	mt, pm, err := mime.ParseMediaType(v)
	if err != nil {
		return nil, err
	}

	ps := make([]Param, 0, len(pm))
	for _, n := range paramOrder(v) {
		if pv, found := pm[n]; found {
			ps = append(ps, Param{n, pv})
			delete(pm, n)
		}
	}

	// anything we failed to locate in the text keeps a stable position at
	// the end
	for _, n := range sortedKeys(pm) {
		ps = append(ps, Param{n, pm[n]})
	}

	return &Value{mt, ps}, nil
}

// paramOrder returns the lower-cased parameter names in the order they occur
// in the given header body. RFC 2231 continuations (name*0, name*1*) are
// reported once under their base name.
func paramOrder(v string) []string {
	var (
		names  []string
		seen   = map[string]bool{}
		quoted bool
		escape bool
		start  = -1
	)

	segs := make([]string, 0, 4)
	for i, c := range v {
		switch {
		case escape:
			escape = false
		case c == '\\' && quoted:
			escape = true
		case c == '"':
			quoted = !quoted
		case c == ';' && !quoted:
			if start >= 0 {
				segs = append(segs, v[start:i])
			}
			start = i + 1
		}
	}
	if start >= 0 {
		segs = append(segs, v[start:])
	}

	for _, seg := range segs {
		ix := strings.IndexRune(seg, '=')
		if ix < 0 {
			continue
		}

		n := strings.ToLower(strings.TrimSpace(seg[:ix]))
		if star := strings.IndexRune(n, '*'); star >= 0 {
			n = n[:star]
		}

		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}

	return names
}

func sortedKeys(m map[string]string) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	for i := 1; i < len(ks); i++ {
		for j := i; j > 0 && ks[j] < ks[j-1]; j-- {
			ks[j], ks[j-1] = ks[j-1], ks[j]
		}
	}
	return ks
}

// New creates a new parameterized header field with no parameters.
func New(v string) *Value {
	return &Value{v, []Param{}}
}

// NewWithParams creates a new parameterized header field with the given
// parameters, kept in the order given.
func NewWithParams(v string, ps ...Param) *Value {
	cps := make([]Param, len(ps))
	copy(cps, ps)
	return &Value{v, cps}
}

// Modifier is a modification to apply to a Value when calling the Modify()
// function.
type Modifier func(*Value)

// Change is a Modifier that replaces the primary value of the Value.
func Change(value string) Modifier {
	return func(pv *Value) {
		pv.v = value
	}
}

// Set is a Modifier that sets a parameter with the given name on the Value.
// An existing parameter keeps its position; a new one is appended.
func Set(name, value string) Modifier {
	return func(pv *Value) {
		if ix := pv.index(name); ix >= 0 {
			pv.ps[ix].Value = value
			return
		}
		pv.ps = append(pv.ps, Param{name, value})
	}
}

// Delete is a Modifier that removes the parameter with the given name from the
// Value.
func Delete(name string) Modifier {
	return func(pv *Value) {
		if ix := pv.index(name); ix >= 0 {
			pv.ps = append(pv.ps[:ix], pv.ps[ix+1:]...)
		}
	}
}

// Modify clones a Value, applies the given modifications (if any) and returns
// the new Value. You can pass multiple changes to this function:
//
//	v, _ := param.Parse("multipart/mixed; boundary=abc123; charset=latin1")
//	nv := param.Modify(v, param.Change("multipart/alternate"), param.Set("charset", "utf-8"))
func Modify(pv *Value, changes ...Modifier) *Value {
	c := pv.Clone()
	for _, change := range changes {
		change(c)
	}
	return c
}

func (pv *Value) index(name string) int {
	for i, p := range pv.ps {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}

// Value returns the primary value of the Value. This is the value before the
// first semi-colon.
func (pv *Value) Value() string {
	return pv.v
}

// Disposition is a synonym for Value() and returns the Content-disposition,
// either "inline" or "attachment".
func (pv *Value) Disposition() string {
	return pv.v
}

// MediaType is a synonym for Value() and returns the Content-type value, e.g.,
// "text/html", "image/jpeg", "multipart/mixed", etc.
func (pv *Value) MediaType() string {
	return pv.v
}

// Type is only intended for use with the Content-type header. It searches the
// MediaType() for a slash. If found, it will return the lower-cased string
// before that slash. If no slash is found, it returns an empty string.
//
// For example, if MediaType() returns "image/jpeg", this method will return
// "image".
func (pv *Value) Type() string {
	if ix := strings.IndexRune(pv.v, '/'); ix >= 0 {
		return strings.ToLower(strings.TrimSpace(pv.v[:ix]))
	}
	return ""
}

// Subtype is only intended for use with the Content-type header. It searches
// the MediaType() for a slash. If found, it will return the lower-cased string
// after that slash. If no slash is found, it returns an empty string.
func (pv *Value) Subtype() string {
	if ix := strings.IndexRune(pv.v, '/'); ix >= 0 {
		return strings.ToLower(strings.TrimSpace(pv.v[ix+1:]))
	}
	return ""
}

// Params returns a copy of the parameters in order.
func (pv *Value) Params() []Param {
	ps := make([]Param, len(pv.ps))
	copy(ps, pv.ps)
	return ps
}

// Len returns the number of parameters.
func (pv *Value) Len() int {
	return len(pv.ps)
}

// Parameter returns the value of the parameter with the given name.
func (pv *Value) Parameter(k string) string {
	if ix := pv.index(k); ix >= 0 {
		return pv.ps[ix].Value
	}
	return ""
}

// HasParameter returns true if the named parameter is set, even to the empty
// string.
func (pv *Value) HasParameter(k string) bool {
	return pv.index(k) >= 0
}

// Filename returns the value of the "filename" parameter. It is intended for
// use with the Content-disposition header.
func (pv *Value) Filename() string {
	return pv.Parameter(Filename)
}

// Name returns the value of the "name" parameter. It is intended for use
// with the Content-type header.
func (pv *Value) Name() string {
	return pv.Parameter(Name)
}

// Charset returns the value of the "charset" parameter. It is intended for use
// with the Content-type header.
func (pv *Value) Charset() string {
	return pv.Parameter(Charset)
}

// Boundary returns the value of the "boundary" parameter. It is intended for
// use with the Content-type header.
func (pv *Value) Boundary() string {
	return pv.Parameter(Boundary)
}

// String returns the serialized value of the Value including the primary value
// and all parameters in order.
func (pv *Value) String() string {
	// mime.FormatMediaType sorts, so we only ask it to quote one at a time
	parts := make([]string, 0, len(pv.ps)+1)
	parts = append(parts, pv.v)
	for _, p := range pv.ps {
		one := mime.FormatMediaType("x/x", map[string]string{p.Name: p.Value})
		if one == "" {
			parts = append(parts, fmt.Sprintf("%s=%q", p.Name, p.Value))
			continue
		}
		parts = append(parts, strings.TrimPrefix(one, "x/x; "))
	}

	return strings.Join(parts, "; ")
}

// Bytes returns the serialized value of the Value including the primary value
// and all parameters.
func (pv *Value) Bytes() []byte {
	return []byte(pv.String())
}

// Clone returns a deep copy of the Value.
func (pv *Value) Clone() *Value {
	c := Value{v: pv.v, ps: make([]Param, len(pv.ps))}
	copy(c.ps, pv.ps)
	return &c
}

// Equal returns true if both values have the same primary value (compared
// case-insensitively) and the same parameters in the same order.
func (pv *Value) Equal(o *Value) bool {
	if pv == nil || o == nil {
		return pv == o
	}
	if !strings.EqualFold(pv.v, o.v) || len(pv.ps) != len(o.ps) {
		return false
	}
	for i := range pv.ps {
		if !strings.EqualFold(pv.ps[i].Name, o.ps[i].Name) || pv.ps[i].Value != o.ps[i].Value {
			return false
		}
	}
	return true
}
