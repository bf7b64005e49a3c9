package field

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/zostay/go-mailjson/param"
)

// Kind identifies which typed value a Field carries.
type Kind int

// The kinds of header field values.
const (
	KindText    Kind = iota // a generic string
	KindAddress             // a list of personal/address pairs
	KindParam               // a parameterized value (Content-type, Content-disposition)
	KindDate                // a point in time
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindAddress:
		return "address"
	case KindParam:
		return "param"
	case KindDate:
		return "date"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Address is a single personal name and email address pair.
type Address struct {
	Personal string
	Address  string
}

// String returns the address in RFC 5322 form, quoting and encoding the
// personal name as needed.
func (a Address) String() string {
	if a.Personal == "" {
		return a.Address
	}
	ma := mail.Address{Name: a.Personal, Address: a.Address}
	return ma.String()
}

// AddressList is an ordered list of addresses.
type AddressList []Address

// String returns the list joined with commas.
func (al AddressList) String() string {
	strs := make([]string, len(al))
	for i, a := range al {
		strs[i] = a.String()
	}
	return strings.Join(strs, ", ")
}

// Field is a single header field instance: a name and a typed value. The
// name keeps the case it was given in, though all lookups on a header match
// names case-insensitively.
//
// Fields are constructed with one of NewText, NewAddressList, NewParam, or
// NewDate and are not modified afterward, except through SetName.
type Field struct {
	name  string
	kind  Kind
	text  string
	addrs AddressList
	pv    *param.Value
	date  time.Time
}

// NewText returns a generic string field.
func NewText(name, body string) *Field {
	return &Field{name: name, kind: KindText, text: body}
}

// NewAddressList returns an address field.
func NewAddressList(name string, addrs ...Address) *Field {
	al := make(AddressList, len(addrs))
	copy(al, addrs)
	return &Field{name: name, kind: KindAddress, addrs: al}
}

// NewParam returns a parameterized field.
func NewParam(name string, pv *param.Value) *Field {
	return &Field{name: name, kind: KindParam, pv: pv}
}

// NewDate returns a date field. The original text is kept for rendering
// when it is not empty. Otherwise, the date is rendered using time.RFC1123Z.
func NewDate(name string, t time.Time, original string) *Field {
	return &Field{name: name, kind: KindDate, date: t, text: original}
}

// Name returns the name of the header field.
func (f *Field) Name() string {
	return f.name
}

// SetName updates the name of the header field.
func (f *Field) SetName(name string) {
	f.name = name
}

// Kind returns the kind of value held.
func (f *Field) Kind() Kind {
	return f.kind
}

// Is returns true if the field name matches the given name
// case-insensitively.
func (f *Field) Is(name string) bool {
	return strings.EqualFold(f.name, name)
}

// Body returns the value of the header field rendered as a string.
func (f *Field) Body() string {
	switch f.kind {
	case KindAddress:
		return f.addrs.String()
	case KindParam:
		if f.pv == nil {
			return ""
		}
		return f.pv.String()
	case KindDate:
		if f.text != "" {
			return f.text
		}
		return f.date.Format(time.RFC1123Z)
	}
	return f.text
}

// Addresses returns the address list of a KindAddress field. It returns nil
// for every other kind.
func (f *Field) Addresses() AddressList {
	if f.kind != KindAddress {
		return nil
	}
	return f.addrs
}

// Param returns the parameterized value of a KindParam field. It returns nil
// for every other kind.
func (f *Field) Param() *param.Value {
	if f.kind != KindParam {
		return nil
	}
	return f.pv
}

// Date returns the time of a KindDate field. The second value is false for
// every other kind.
func (f *Field) Date() (time.Time, bool) {
	if f.kind != KindDate {
		return time.Time{}, false
	}
	return f.date, true
}

// String returns the complete header field as a string.
func (f *Field) String() string {
	return fmt.Sprintf("%s: %s", f.name, f.Body())
}

// Clone returns a copy of the field.
func (f *Field) Clone() *Field {
	c := *f
	if f.addrs != nil {
		c.addrs = make(AddressList, len(f.addrs))
		copy(c.addrs, f.addrs)
	}
	if f.pv != nil {
		c.pv = f.pv.Clone()
	}
	return &c
}
