package catalog

import (
	"strings"
	"unicode"
)

// SKU assembles a deterministic SKU from a brand code, a product name, and
// optional variant parts, e.g. SKU("ORC", "Amber Oud", "50ml") -> "ORC-AMBER-OUD-50ML".
// Empty parts are skipped so optional variant axes never leave double dashes.
func SKU(brand, product string, variantParts ...string) string {
	parts := make([]string, 0, 2+len(variantParts))
	for _, p := range append([]string{brand, product}, variantParts...) {
		if cp := skuPart(p); cp != "" {
			parts = append(parts, cp)
		}
	}
	return strings.Join(parts, "-")
}

// skuPart uppercases and strips a single component, collapsing internal
// separators to single hyphens.
func skuPart(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingSep := false
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}
