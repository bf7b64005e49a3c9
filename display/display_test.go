package display_test

import (
	"strings"
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mailjson/display"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	m, err := display.ParseMode("Display")
	require.NoError(t, err)
	assert.Equal(t, display.Display, m)
	assert.Equal(t, "display", m.String())

	m, err = display.ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, display.Raw, m)

	_, err = display.ParseMode("pretty")
	assert.Error(t, err)

	assert.Equal(t, "Mode(7)", display.Mode(7).String())
}

func TestSanitizer(t *testing.T) {
	t.Parallel()

	s := display.NewSanitizer()

	tests := []struct {
		name             string
		mediaType        string
		input            string
		shouldContain    []string
		shouldNotContain []string
	}{
		{
			name:             "script tag removal",
			mediaType:        "text/html",
			input:            "<p>Hello</p><script>alert('XSS')</script>",
			shouldContain:    []string{"<p>Hello</p>"},
			shouldNotContain: []string{"<script>", "alert"},
		},
		{
			name:             "event handler removal",
			mediaType:        "TEXT/HTML",
			input:            `<img src="x" onerror="alert('XSS')">`,
			shouldNotContain: []string{"onerror"},
		},
		{
			name:          "safe content preservation",
			mediaType:     "text/html",
			input:         `<p>Safe text</p><a href="https://example.com">Link</a>`,
			shouldContain: []string{"<p>Safe text</p>", "https://example.com", "Link"},
		},
		{
			name:          "plain text untouched",
			mediaType:     "text/plain",
			input:         "<script>not html here</script>",
			shouldContain: []string{"<script>not html here</script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := s.Render(tt.mediaType, tt.input)
			require.NoError(t, err)

			for _, want := range tt.shouldContain {
				assert.Contains(t, out, want)
			}
			for _, notWant := range tt.shouldNotContain {
				assert.NotContains(t, out, notWant)
			}
		})
	}
}

func TestRendererFunc(t *testing.T) {
	t.Parallel()

	var r display.Renderer = display.RendererFunc(func(mt, text string) (string, error) {
		return strings.ToUpper(text), nil
	})
	out, err := r.Render("text/plain", "hi")
	require.NoError(t, err)
	assert.Equal(t, "HI", out)

	strict := display.NewSanitizerWithPolicy(bluemonday.StrictPolicy())
	out, err = strict.Render("text/html", "<b>bold</b>")
	require.NoError(t, err)
	assert.Equal(t, "bold", out)
}
