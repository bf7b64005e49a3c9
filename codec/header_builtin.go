package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zostay/go-mailjson/header"
	"github.com/zostay/go-mailjson/header/field"
	"github.com/zostay/go-mailjson/internal/jsonx"
	"github.com/zostay/go-mailjson/param"
)

func compact(raw json.RawMessage) string {
	buf := &bytes.Buffer{}
	if err := json.Compact(buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func decodeString(raw json.RawMessage) (string, error) {
	if jsonx.KindOf(raw) != jsonx.String {
		return "", fmt.Errorf("expected a string, found %s", jsonx.KindOf(raw))
	}

	var s string
	err := json.Unmarshal(raw, &s)
	return s, err
}

// jsonAddress is the object form of one address.
type jsonAddress struct {
	Personal string `json:"personal,omitempty"`
	Address  string `json:"address"`
}

// AddressParser decodes the well-known address headers. A value may be an
// object with "address" and "personal" keys, an RFC 5322 address list string,
// or an array of either. All the addresses of one value go into one field.
type AddressParser struct{}

// Rank returns BuiltinRank.
func (AddressParser) Rank() int { return BuiltinRank }

// Handles returns true for the names in header.AddressHeaders.
func (AddressParser) Handles(name string, _ json.RawMessage) bool {
	return header.IsAddressHeader(name)
}

// Parse implements HeaderParser.
func (AddressParser) Parse(h *header.Header, name string, raw json.RawMessage) error {
	var addrs field.AddressList

	addOne := func(raw json.RawMessage) error {
		switch jsonx.KindOf(raw) {
		case jsonx.Null:
			return nil
		case jsonx.Object:
			var ja jsonAddress
			if err := json.Unmarshal(raw, &ja); err != nil {
				return err
			}
			if ja.Address == "" {
				return errors.New("address object is missing \"address\"")
			}
			addrs = append(addrs, field.Address{Personal: ja.Personal, Address: ja.Address})
			return nil
		case jsonx.String:
			s, err := decodeString(raw)
			if err != nil {
				return err
			}
			al := header.ParseAddressList(s)
			if len(al) == 0 && strings.TrimSpace(s) != "" {
				return fmt.Errorf("no addresses found in %q", s)
			}
			addrs = append(addrs, al...)
			return nil
		}
		return fmt.Errorf("expected an address object or string, found %s", jsonx.KindOf(raw))
	}

	if jsonx.KindOf(raw) == jsonx.Array {
		elems, err := jsonx.ParseArray(raw)
		if err != nil {
			return err
		}
		for _, e := range elems {
			if err := addOne(e); err != nil {
				return err
			}
		}
	} else if err := addOne(raw); err != nil {
		return err
	}

	h.Add(field.NewAddressList(name, addrs...))
	return nil
}

// AddressWriter renders the address headers as arrays of address objects.
// The one exception is a From header holding exactly one address, which is
// rendered as a single object.
type AddressWriter struct{}

// Rank returns BuiltinRank.
func (AddressWriter) Rank() int { return BuiltinRank }

// Handles returns true for an address header whose fields all hold parsed
// addresses.
func (AddressWriter) Handles(e header.Entry) bool {
	if !header.IsAddressHeader(e.Name) {
		return false
	}

	for _, f := range e.Fields {
		if f.Kind() != field.KindAddress {
			return false
		}
	}
	return true
}

// Write implements HeaderWriter.
func (AddressWriter) Write(e header.Entry) (any, error) {
	jas := []jsonAddress{}
	for _, f := range e.Fields {
		for _, a := range f.Addresses() {
			jas = append(jas, jsonAddress{a.Personal, a.Address})
		}
	}

	if strings.EqualFold(e.Name, header.From) && len(jas) == 1 {
		return jas[0], nil
	}
	return jas, nil
}

// ParamParser decodes a header holding a parameterized value, such as
// Content-Type or Content-Disposition. The value may be an object of the form
// {"type": "text/plain", "params": {"charset": "UTF-8"}} or a string of the
// form "text/plain; charset=UTF-8". Parameter order is kept either way.
type ParamParser struct {
	// Name is the header handled, matched case-insensitively.
	Name string
}

// Rank returns BuiltinRank.
func (ParamParser) Rank() int { return BuiltinRank }

// Handles returns true for the configured header name.
func (pp ParamParser) Handles(name string, _ json.RawMessage) bool {
	return strings.EqualFold(name, pp.Name)
}

// Parse implements HeaderParser.
func (ParamParser) Parse(h *header.Header, name string, raw json.RawMessage) error {
	parseOne := func(raw json.RawMessage) (*param.Value, error) {
		switch jsonx.KindOf(raw) {
		case jsonx.String:
			s, err := decodeString(raw)
			if err != nil {
				return nil, err
			}
			return param.Parse(s)
		case jsonx.Object:
			return parseParamObject(raw)
		}
		return nil, fmt.Errorf("expected an object or string, found %s", jsonx.KindOf(raw))
	}

	if jsonx.KindOf(raw) == jsonx.Array {
		elems, err := jsonx.ParseArray(raw)
		if err != nil {
			return err
		}
		for _, e := range elems {
			pv, err := parseOne(e)
			if err != nil {
				return err
			}
			h.Add(field.NewParam(name, pv))
		}
		return nil
	}

	pv, err := parseOne(raw)
	if err != nil {
		return err
	}
	h.Add(field.NewParam(name, pv))
	return nil
}

func parseParamObject(raw json.RawMessage) (*param.Value, error) {
	obj, err := jsonx.ParseObject(raw)
	if err != nil {
		return nil, err
	}

	rawType, ok := obj.Get("type")
	if !ok {
		return nil, errors.New("missing \"type\"")
	}
	v, err := decodeString(rawType)
	if err != nil {
		return nil, fmt.Errorf("\"type\": %w", err)
	}

	rawParams, ok := obj.Get("params")
	if !ok || jsonx.IsNull(rawParams) {
		return param.New(v), nil
	}

	pobj, err := jsonx.ParseObject(rawParams)
	if err != nil {
		return nil, fmt.Errorf("\"params\": %w", err)
	}

	ps := make([]param.Param, 0, len(pobj))
	for _, m := range pobj {
		switch jsonx.KindOf(m.Value) {
		case jsonx.Null:
			continue
		case jsonx.Number, jsonx.Bool:
			ps = append(ps, param.Param{Name: m.Key, Value: string(m.Value)})
		default:
			s, err := decodeString(m.Value)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", m.Key, err)
			}
			ps = append(ps, param.Param{Name: m.Key, Value: s})
		}
	}

	return param.NewWithParams(v, ps...), nil
}

// ParamWriter renders a parameterized header in object form. An entry of
// several fields is rendered as an array of objects.
type ParamWriter struct {
	// Name is the header handled, matched case-insensitively.
	Name string
}

// Rank returns BuiltinRank.
func (ParamWriter) Rank() int { return BuiltinRank }

// Handles returns true for the configured header name when every field holds
// a parsed value.
func (pw ParamWriter) Handles(e header.Entry) bool {
	if !strings.EqualFold(e.Name, pw.Name) {
		return false
	}

	for _, f := range e.Fields {
		if f.Kind() != field.KindParam {
			return false
		}
	}
	return true
}

// Write implements HeaderWriter.
func (ParamWriter) Write(e header.Entry) (any, error) {
	objs := make([]jsonx.Obj, 0, e.Len())
	for _, f := range e.Fields {
		obj, err := paramObject(f.Param())
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}

	if len(objs) == 1 {
		return objs[0], nil
	}
	return objs, nil
}

func paramObject(pv *param.Value) (jsonx.Obj, error) {
	obj := jsonx.Obj{}
	if err := obj.Set("type", pv.Value()); err != nil {
		return nil, err
	}

	if pv.Len() == 0 {
		return obj, nil
	}

	params := jsonx.Obj{}
	for _, p := range pv.Params() {
		if err := params.Set(p.Name, p.Value); err != nil {
			return nil, err
		}
	}

	if err := obj.Set("params", params); err != nil {
		return nil, err
	}
	return obj, nil
}

// DateParser decodes the Date and Resent-Date headers. A string is parsed
// leniently and kept verbatim for writing. A number is taken as milliseconds
// since the Unix epoch.
type DateParser struct{}

// Rank returns BuiltinRank.
func (DateParser) Rank() int { return BuiltinRank }

// Handles returns true for Date and Resent-Date.
func (DateParser) Handles(name string, _ json.RawMessage) bool {
	return strings.EqualFold(name, header.Date) || strings.EqualFold(name, header.ResentDate)
}

// Parse implements HeaderParser.
func (DateParser) Parse(h *header.Header, name string, raw json.RawMessage) error {
	switch jsonx.KindOf(raw) {
	case jsonx.String:
		s, err := decodeString(raw)
		if err != nil {
			return err
		}
		t, err := header.ParseTime(s)
		if err != nil {
			return err
		}
		h.Add(field.NewDate(name, t, s))
		return nil
	case jsonx.Number:
		var ms int64
		if err := json.Unmarshal(raw, &ms); err != nil {
			return err
		}
		h.Add(field.NewDate(name, time.UnixMilli(ms).UTC(), ""))
		return nil
	}
	return fmt.Errorf("expected a date string or number, found %s", jsonx.KindOf(raw))
}
