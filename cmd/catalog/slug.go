package catalog

import (
	"strings"
	"unicode"
)

// Slug converts s to a lowercase URL slug: runs of non-alphanumeric characters
// collapse into a single hyphen, with no leading or trailing hyphen.
func Slug(s string) string {
	return normalize(s, '-')
}

// AttributeKey converts a human attribute label to a machine key in
// snake_case, e.g. "Bottle Size (ml)" -> "bottle_size_ml".
func AttributeKey(s string) string {
	return normalize(s, '_')
}

func normalize(s string, sep rune) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSep && b.Len() > 0 {
				b.WriteRune(sep)
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}
