// Package sanitize strips markup from user-authored template text.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// maxPasses bounds the decode and strip loop for deeply entity-encoded input.
const maxPasses = 8

// Text removes every HTML element from raw and returns the plain, unescaped
// text with surrounding whitespace trimmed. Script and style bodies are
// dropped entirely. Entities are decoded before stripping, so encoded markup
// is removed too, and Text(Text(s)) == Text(s).
func Text(raw string) string {
	current := strings.TrimSpace(raw)
	for range maxPasses {
		if !strings.ContainsAny(current, "<>&") {
			return current
		}
		next := strip(current)
		if next == current {
			return current
		}
		current = next
	}
	return current
}

func strip(text string) string {
	decoded := html.UnescapeString(text)
	cleaned := textSanitizer().Sanitize(decoded)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
