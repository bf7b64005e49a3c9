package header_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zostay/go-mailjson/header"
	"github.com/zostay/go-mailjson/header/field"
)

func TestParseAddressList(t *testing.T) {
	t.Parallel()

	al := header.ParseAddressList("Alice <alice@example.com>, bob@example.com")
	assert.Equal(t, field.AddressList{
		{Personal: "Alice", Address: "alice@example.com"},
		{Address: "bob@example.com"},
	}, al)

	assert.Len(t, header.ParseAddressList("   "), 0)
}

func TestParseAddressList_Lenient(t *testing.T) {
	t.Parallel()

	al := header.ParseAddressList("Alice Smith alice@example.com (work), <bob@example.com>")
	assert.Equal(t, field.AddressList{
		{Personal: "Alice Smith", Address: "alice@example.com"},
		{Address: "bob@example.com"},
	}, al)
}

func TestParseAddressList_LenientSplitting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want field.AddressList
	}{
		{
			name: "quoted comma",
			in:   `"Smith, John" <john@example.com>, Dave dave@example.com`,
			want: field.AddressList{
				{Personal: "Smith, John", Address: "john@example.com"},
				{Personal: "Dave", Address: "dave@example.com"},
			},
		},
		{
			name: "comment as name",
			in:   `carol@example.com (Carol (hr)), Dave dave@example.com`,
			want: field.AddressList{
				{Personal: "Carol (hr)", Address: "carol@example.com"},
				{Personal: "Dave", Address: "dave@example.com"},
			},
		},
		{
			name: "comma in comment",
			in:   `Dave dave@example.com (a, b)`,
			want: field.AddressList{
				{Personal: "Dave", Address: "dave@example.com"},
			},
		},
		{
			name: "empty entries",
			in:   `,, Dave dave@example.com, <>,`,
			want: field.AddressList{
				{Personal: "Dave", Address: "dave@example.com"},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.want, header.ParseAddressList(test.in))
		})
	}
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	want := time.Date(2019, 5, 6, 7, 8, 9, 0, time.UTC)

	for _, s := range []string{
		"Mon, 06 May 2019 07:08:09 +0000",
		"2019-05-06T07:08:09Z",
		"2019-05-06T09:08:09+02:00",
		"  Mon May 06 07:08:09 2019 UTC ",
	} {
		got, err := header.ParseTime(s)
		assert.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}

	_, err := header.ParseTime("not a date")
	assert.Error(t, err)
}
