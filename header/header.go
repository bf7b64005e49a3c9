package header

import (
	"errors"
	"strings"
	"time"

	"github.com/zostay/go-mailjson/header/field"
	"github.com/zostay/go-mailjson/param"
)

// Errors returned by various header methods and functions.
var (
	// ErrNoSuchField is returned by Header methods when the operation
	// being performed failed because the header named does not exist.
	ErrNoSuchField = errors.New("no such header field")

	// ErrNoSuchFieldParameter is returned by Header methods when the
	// operation being performed failed because the header exists, but a
	// sub-field of the header does not exist.
	ErrNoSuchFieldParameter = errors.New("no such header field parameter")

	// ErrManyFields is returned by Header methods when the operation
	// being performed failed because the there are multiple fields with the
	// given name.
	ErrManyFields = errors.New("many header fields found")

	// ErrIndexOutOfRange is returned by DeleteField when the index given does
	// not refer to a field.
	ErrIndexOutOfRange = errors.New("header field index out of range")
)

// These are the standard header names this library gives special treatment.
const (
	Bcc                       = "Bcc"
	Cc                        = "Cc"
	ContentDisposition        = "Content-Disposition"
	ContentTransferEncoding   = "Content-Transfer-Encoding"
	ContentType               = "Content-Type"
	Date                      = "Date"
	DispositionNotificationTo = "Disposition-Notification-To"
	From                      = "From"
	InReplyTo                 = "In-Reply-To"
	MessageID                 = "Message-ID"
	References                = "References"
	ReplyTo                   = "Reply-To"
	ResentBcc                 = "Resent-Bcc"
	ResentCc                  = "Resent-Cc"
	ResentDate                = "Resent-Date"
	ResentFrom                = "Resent-From"
	ResentReplyTo             = "Resent-Reply-To"
	ResentSender              = "Resent-Sender"
	ResentTo                  = "Resent-To"
	Sender                    = "Sender"
	Subject                   = "Subject"
	To                        = "To"
)

// AddressHeaders lists the header names whose values are address lists.
var AddressHeaders = []string{
	From, To, Cc, Bcc, ReplyTo, Sender,
	ResentFrom, ResentTo, ResentCc, ResentBcc, ResentReplyTo, ResentSender,
	DispositionNotificationTo,
}

var addressHeaderSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(AddressHeaders))
	for _, n := range AddressHeaders {
		m[strings.ToLower(n)] = struct{}{}
	}
	return m
}()

// IsAddressHeader returns true if the named header carries addresses. The
// name is matched case-insensitively.
func IsAddressHeader(name string) bool {
	_, ok := addressHeaderSet[strings.ToLower(name)]
	return ok
}

// Entry groups every instance of one header name, in header order. Name is
// the name as spelled by the first instance.
type Entry struct {
	Name   string
	Fields []*field.Field
}

// Len returns the number of instances in the entry.
func (e Entry) Len() int {
	return len(e.Fields)
}

// Header is an ordered collection of header fields. Any number of fields may
// share a name and their order is preserved. Every lookup matches names
// case-insensitively while the name and value case is kept as given.
//
// The getter methods of this object will return an error if the field being
// fetched has not been set on the header. The error returned will be
// ErrNoSuchField.
//
// The zero value is an empty header ready to use.
type Header struct {
	fields []*field.Field
}

// Clone returns a deep copy of the header object.
func (h *Header) Clone() *Header {
	fs := make([]*field.Field, len(h.fields))
	for i, f := range h.fields {
		fs[i] = f.Clone()
	}
	return &Header{fields: fs}
}

// Len returns the number of fields in the header.
func (h *Header) Len() int {
	return len(h.fields)
}

// GetField returns the field at the given index or nil.
func (h *Header) GetField(i int) *field.Field {
	if i < 0 || i >= len(h.fields) {
		return nil
	}
	return h.fields[i]
}

// Fields returns a copy of the list of all fields in order.
func (h *Header) Fields() []*field.Field {
	fs := make([]*field.Field, len(h.fields))
	copy(fs, h.fields)
	return fs
}

// Add appends the given fields to the end of the header.
func (h *Header) Add(fs ...*field.Field) {
	h.fields = append(h.fields, fs...)
}

// AddText appends a generic string field.
func (h *Header) AddText(name, body string) {
	h.Add(field.NewText(name, body))
}

// GetIndexesNamed returns the indexes of every field with the given name.
func (h *Header) GetIndexesNamed(name string) []int {
	var ixs []int
	for i, f := range h.fields {
		if f.Is(name) {
			ixs = append(ixs, i)
		}
	}
	return ixs
}

// GetAllFieldsNamed returns every field with the given name in order.
func (h *Header) GetAllFieldsNamed(name string) []*field.Field {
	var fs []*field.Field
	for _, f := range h.fields {
		if f.Is(name) {
			fs = append(fs, f)
		}
	}
	return fs
}

// Has returns true if at least one field with the given name is present.
func (h *Header) Has(name string) bool {
	for _, f := range h.fields {
		if f.Is(name) {
			return true
		}
	}
	return false
}

// getOne returns the first field with the given name. It returns
// ErrNoSuchField if there is none. If there are several, the first is still
// returned along with ErrManyFields.
func (h *Header) getOne(name string) (*field.Field, error) {
	fs := h.GetAllFieldsNamed(name)
	if len(fs) == 0 {
		return nil, ErrNoSuchField
	}
	if len(fs) > 1 {
		return fs[0], ErrManyFields
	}
	return fs[0], nil
}

// Get retrieves the string value of the named field.
//
// If the named field is not set in the header, it will return an empty string
// with ErrNoSuchField. If there are multiple headers for the given named field,
// it will return the first value found and return ErrManyFields.
func (h *Header) Get(name string) (string, error) {
	f, err := h.getOne(name)
	if f == nil {
		return "", err
	}
	return f.Body(), err
}

// GetAll fetches all the header field bodies for fields with the given
// name and returns them as a slice of strings.
//
// It returns nil with ErrNoSuchField if no field with the given name is set on
// the header.
func (h *Header) GetAll(name string) ([]string, error) {
	fs := h.GetAllFieldsNamed(name)
	if len(fs) == 0 {
		return nil, ErrNoSuchField
	}

	bs := make([]string, len(fs))
	for i, f := range fs {
		bs[i] = f.Body()
	}
	return bs, nil
}

// Set will replace all existing header fields with the same name as the given
// field with that field. If the field already exists on the header, then the
// first occurrence will be replaced and any others deleted. If the field does
// not exist, it will be appended to the end of the header.
func (h *Header) Set(f *field.Field) {
	ixs := h.GetIndexesNamed(f.Name())
	if len(ixs) == 0 {
		h.Add(f)
		return
	}

	h.fields[ixs[0]] = f
	for i := len(ixs) - 1; i > 0; i-- {
		_ = h.DeleteField(ixs[i])
	}
}

// SetText replaces all fields with the given name with a single generic string
// field.
func (h *Header) SetText(name, body string) {
	h.Set(field.NewText(name, body))
}

// DeleteField removes the field at the given index.
func (h *Header) DeleteField(i int) error {
	if i < 0 || i >= len(h.fields) {
		return ErrIndexOutOfRange
	}
	h.fields = append(h.fields[:i], h.fields[i+1:]...)
	return nil
}

// DeleteAll removes every field with the given name and returns how many
// were removed.
func (h *Header) DeleteAll(name string) int {
	kept := h.fields[:0]
	n := 0
	for _, f := range h.fields {
		if f.Is(name) {
			n++
			continue
		}
		kept = append(kept, f)
	}
	for i := len(kept); i < len(h.fields); i++ {
		h.fields[i] = nil
	}
	h.fields = kept
	return n
}

// Names returns the distinct field names in order of first appearance, as
// spelled by the first instance of each.
func (h *Header) Names() []string {
	seen := make(map[string]struct{}, len(h.fields))
	names := make([]string, 0, len(h.fields))
	for _, f := range h.fields {
		k := strings.ToLower(f.Name())
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		names = append(names, f.Name())
	}
	return names
}

// Entries groups the fields by name, in order of first appearance.
func (h *Header) Entries() []Entry {
	index := make(map[string]int, len(h.fields))
	entries := make([]Entry, 0, len(h.fields))
	for _, f := range h.fields {
		k := strings.ToLower(f.Name())
		if i, ok := index[k]; ok {
			entries[i].Fields = append(entries[i].Fields, f)
			continue
		}
		index[k] = len(entries)
		entries = append(entries, Entry{Name: f.Name(), Fields: []*field.Field{f}})
	}
	return entries
}

// GetParamValue will return a param.Value for the header field matching the
// given name. A generic string field is parsed on demand.
//
// This will return an error if it is unable to parse a param.Value. This will
// ErrNoSuchField if no field with the given name is present. It will return
// ErrManyFields along with the first value if more than one field with the
// given name is found.
func (h *Header) GetParamValue(name string) (*param.Value, error) {
	f, err := h.getOne(name)
	if f == nil {
		return nil, err
	}

	if pv := f.Param(); pv != nil {
		return pv, err
	}

	pv, perr := param.Parse(f.Body())
	if perr != nil {
		return nil, perr
	}
	return pv, err
}

// GetContentType returns the Content-Type header as a param.Value.
func (h *Header) GetContentType() (*param.Value, error) {
	return h.GetParamValue(ContentType)
}

// SetContentType replaces the Content-Type with the given param.Value.
func (h *Header) SetContentType(v *param.Value) {
	h.Set(field.NewParam(ContentType, v))
}

// GetMediaType returns the MIME type set in the Content-Type header (other
// parameters will not be returned).
func (h *Header) GetMediaType() (string, error) {
	pv, err := h.GetContentType()
	if pv == nil {
		return "", err
	}
	return pv.MediaType(), err
}

// SetMediaType replaces the MIME type on the Content-Type header, creating it
// if it has not been set yet. Any parameters already set are preserved.
func (h *Header) SetMediaType(mt string) {
	pv, err := h.GetContentType()
	if pv == nil || (err != nil && !errors.Is(err, ErrManyFields)) {
		h.SetContentType(param.New(mt))
		return
	}
	h.SetContentType(param.Modify(pv, param.Change(mt)))
}

// GetCharset gets the charset from the Content-Type header field. It returns
// ErrNoSuchFieldParameter if the header is present without a charset.
func (h *Header) GetCharset() (string, error) {
	return h.getParamValueParam(ContentType, param.Charset)
}

// GetContentDisposition returns the Content-Disposition header as a
// param.Value.
func (h *Header) GetContentDisposition() (*param.Value, error) {
	return h.GetParamValue(ContentDisposition)
}

// SetContentDisposition sets the Content-Disposition to a new value from a
// param.Value.
func (h *Header) SetContentDisposition(v *param.Value) {
	h.Set(field.NewParam(ContentDisposition, v))
}

// GetPresentation returns the primary value of the Content-Disposition
// header, describing what the function of this part of the message is.
func (h *Header) GetPresentation() (string, error) {
	pv, err := h.GetContentDisposition()
	if pv == nil {
		return "", err
	}
	return pv.Disposition(), err
}

// GetFilename gets the filename parameter of the Content-Disposition header.
func (h *Header) GetFilename() (string, error) {
	return h.getParamValueParam(ContentDisposition, param.Filename)
}

func (h *Header) getParamValueParam(name, p string) (string, error) {
	pv, err := h.GetParamValue(name)
	if pv == nil {
		return "", err
	}

	if !pv.HasParameter(p) {
		return "", ErrNoSuchFieldParameter
	}

	return pv.Parameter(p), err
}

// GetAddressList will return the addresses for the named field. An address
// field is returned as-is and a generic string field is parsed with
// ParseAddressList.
//
// It will return nil and ErrNoSuchField if the field is not set on the header.
// It will return the first list with ErrManyFields if the field is set more
// than once on the header.
func (h *Header) GetAddressList(name string) (field.AddressList, error) {
	f, err := h.getOne(name)
	if f == nil {
		return nil, err
	}
	return addressesOf(f), err
}

// GetAllAddresses returns the addresses of every field with the given name
// joined into one list.
func (h *Header) GetAllAddresses(name string) (field.AddressList, error) {
	fs := h.GetAllFieldsNamed(name)
	if len(fs) == 0 {
		return nil, ErrNoSuchField
	}

	var al field.AddressList
	for _, f := range fs {
		al = append(al, addressesOf(f)...)
	}
	return al, nil
}

func addressesOf(f *field.Field) field.AddressList {
	if f.Kind() == field.KindAddress {
		return f.Addresses()
	}
	return ParseAddressList(f.Body())
}

// SetAddressList will replace all existing header fields with the given name
// with a single address field.
func (h *Header) SetAddressList(name string, addrs ...field.Address) {
	h.Set(field.NewAddressList(name, addrs...))
}

// GetTime gets the given date header field as a time.Time. A generic string
// field is parsed with ParseTime.
func (h *Header) GetTime(name string) (time.Time, error) {
	f, err := h.getOne(name)
	if f == nil {
		return time.Time{}, err
	}

	if t, ok := f.Date(); ok {
		return t, err
	}

	t, perr := ParseTime(f.Body())
	if perr != nil {
		return t, perr
	}
	return t, err
}

// GetDate retrieves the Date header as a time.Time value.
func (h *Header) GetDate() (time.Time, error) {
	return h.GetTime(Date)
}

// SetDate updates the Date header from the given time.Time value.
func (h *Header) SetDate(d time.Time) {
	h.Set(field.NewDate(Date, d, ""))
}

// GetSubject returns the value of the Subject header field.
func (h *Header) GetSubject() (string, error) {
	return h.Get(Subject)
}

// SetSubject replaces the Subject header field.
func (h *Header) SetSubject(s string) {
	h.SetText(Subject, s)
}
