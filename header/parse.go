package header

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/go-mailjson/header/field"
)

// dateLayouts are tried in order after RFC 5322 and before the catch-all
// parser. RFC 3339 is what most JSON producers emit.
var dateLayouts = []string{
	time.RFC3339Nano,
	"Mon Jan 02 15:04:05 2006 MST",
}

// ParseTime parses a date header value. RFC 5322 dates are tried first, then
// RFC 3339 and a few other layouts, then anything dateparse understands.
func ParseTime(body string) (time.Time, error) {
	body = strings.TrimSpace(body)

	if t, err := mail.ParseDate(body); err == nil {
		return t, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, body); err == nil {
			return t, nil
		}
	}

	if t, err := dateparse.ParseAny(body); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("time string %q cannot be parsed", body)
}

// ParseAddressList parses an address header string. A strict parse is tried
// first. When that fails, the string is split up leniently, so some kind of
// list is returned for any input. Entries without an address are dropped.
func ParseAddressList(body string) field.AddressList {
	if strings.TrimSpace(body) == "" {
		return field.AddressList{}
	}

	al, err := addr.ParseEmailAddressList(body)
	if err != nil {
		return lenientAddressList(body)
	}

	out := make(field.AddressList, 0, len(al))
	for _, a := range al {
		if a.Address() == "" && a.DisplayName() == "" {
			continue
		}
		out = append(out, field.Address{
			Personal: a.DisplayName(),
			Address:  a.Address(),
		})
	}

	return out
}

// lenientAddressList splits v on commas found outside of quotes, angle
// brackets, and comments. In each entry the last word is the address and the
// words before it are the display name. A comment stands in for the display
// name when there is none, as in "bob@example.com (Bob)". Groups are not
// recognized.
func lenientAddressList(v string) field.AddressList {
	out := field.AddressList{}
	for _, entry := range splitAddresses(v) {
		clean, comment := stripComments(entry)

		words := strings.Fields(clean)
		if len(words) == 0 {
			continue
		}

		email := words[len(words)-1]
		email = strings.TrimSuffix(strings.TrimPrefix(email, "<"), ">")
		if email == "" {
			continue
		}

		personal := strings.Trim(strings.Join(words[:len(words)-1], " "), `"`)
		if personal == "" {
			personal = strings.TrimSpace(comment)
		}

		out = append(out, field.Address{Personal: personal, Address: email})
	}

	return out
}

func splitAddresses(v string) []string {
	var (
		entries []string
		quoted  bool
		escape  bool
		angle   int
		nest    int
		start   int
	)

	for i, c := range v {
		switch {
		case escape:
			escape = false
		case c == '\\' && quoted:
			escape = true
		case c == '"' && nest == 0:
			quoted = !quoted
		case quoted:
		case c == '(':
			nest++
		case c == ')' && nest > 0:
			nest--
		case nest > 0:
		case c == '<':
			angle++
		case c == '>' && angle > 0:
			angle--
		case c == ',' && angle == 0:
			entries = append(entries, v[start:i])
			start = i + 1
		}
	}

	return append(entries, v[start:])
}

// stripComments removes parenthesized comments from s and returns the rest
// along with the text of the outermost comments joined by spaces. An
// unbalanced ")" is kept as text.
func stripComments(s string) (string, string) {
	var clean, comment strings.Builder
	nest := 0
	for _, c := range s {
		switch {
		case c == '(':
			if nest > 0 {
				comment.WriteRune(c)
			} else if comment.Len() > 0 {
				comment.WriteRune(' ')
			}
			nest++
		case c == ')' && nest > 0:
			nest--
			if nest > 0 {
				comment.WriteRune(c)
			}
		case nest > 0:
			comment.WriteRune(c)
		default:
			clean.WriteRune(c)
		}
	}

	return clean.String(), comment.String()
}
