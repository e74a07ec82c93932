package content

import (
	"strings"
	"unicode"
)

// DeriveSlug turns a title into a URL-safe identifier: lower-case ASCII
// letters and digits separated by single hyphens.
func DeriveSlug(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pendingHyphen = true
		}
		// Every other rune is dropped without acting as a separator.
	}
	return b.String()
}
