package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize strips diacritics, lowercases and collapses whitespace.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// transform.Chain keeps internal state, so build one per call.
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	lowered := strings.ToLower(s)
	folded, _, err := transform.String(folder, lowered)
	if err != nil {
		folded = lowered
	}
	return strings.Join(strings.Fields(folded), " ")
}

// Tokenize splits normalized text into word tokens. Hyphens stay inside
// tokens so names like "x-trail" survive.
func Tokenize(s string) []string {
	return strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-')
	})
}

// IsNumeric reports whether tok consists only of digits.
func IsNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
