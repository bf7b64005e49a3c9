// Package display holds the rendering collaborator used when writing text
// content for presentation rather than for storage. In Raw mode text is
// written exactly as held. In Display mode the configured Renderer may
// rewrite it first, such as to strip active content from HTML.
package display

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Mode selects how text content is written.
type Mode int

const (
	// Raw writes text as held.
	Raw Mode = iota

	// Display passes text through the Renderer before writing it.
	Display
)

// String returns "raw" or "display".
func (m Mode) String() string {
	switch m {
	case Raw:
		return "raw"
	case Display:
		return "display"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode is the inverse of Mode.String. Case is ignored.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raw":
		return Raw, nil
	case "display":
		return Display, nil
	}
	return Raw, fmt.Errorf("unknown display mode %q", s)
}

// Renderer rewrites text of the given media type for display.
type Renderer interface {
	Render(mediaType, text string) (string, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(mediaType, text string) (string, error)

// Render calls f.
func (f RendererFunc) Render(mediaType, text string) (string, error) {
	return f(mediaType, text)
}

// Sanitizer is a Renderer that runs text/html through a bluemonday policy
// and leaves every other media type alone.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer returns a Sanitizer using the bluemonday user generated
// content policy, which keeps formatting and links but drops scripts, event
// handlers, and frames.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{bluemonday.UGCPolicy()}
}

// NewSanitizerWithPolicy returns a Sanitizer using the given policy.
func NewSanitizerWithPolicy(p *bluemonday.Policy) *Sanitizer {
	return &Sanitizer{p}
}

// Render implements Renderer.
func (s *Sanitizer) Render(mediaType, text string) (string, error) {
	if !strings.EqualFold(strings.TrimSpace(mediaType), "text/html") {
		return text, nil
	}
	return s.policy.Sanitize(text), nil
}
