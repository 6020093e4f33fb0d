package regions

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize reduces a comarca name to a canonical lookup key: lowercase,
// diacritics stripped, everything but letters and digits removed.
// "Pla de l'Estany", "pla de l estany" and "PLA DE L'ESTANY" all map to
// the same key.
func Normalize(name string) string {
	flat, _, err := transform.String(deaccent, name)
	if err != nil {
		flat = name
	}

	var b strings.Builder
	b.Grow(len(flat))
	for _, r := range strings.ToLower(flat) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
