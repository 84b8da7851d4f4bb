// Package naming derives machine names from labels, keeps them unique across
// a document, and recognises the reserved system fields of the platform.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// GenerateName slugs label into a machine name: accents are folded to ASCII,
// the result is lower-cased, anything outside [a-z0-9 ] is dropped and runs of
// whitespace become a single underscore.
func GenerateName(label string) string {
	folded := strings.ToLower(Fold(label))

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSpace && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}
	return collapseUnderscores(b.String())
}

// Fold removes combining marks so "Electrónico" becomes "Electronico".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func collapseUnderscores(s string) string {
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}
