package kobo

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical comparison key for a word: NFC composed,
// lowercased, with any trailing run of punctuation or symbols removed.
// Internal hyphens and apostrophes are kept, so "don't" and
// "mother-in-law" pass through unchanged.
func Normalize(raw string) string {
	// cases.Caser carries state, so a fresh chain is built per call.
	t := transform.Chain(norm.NFC, cases.Lower(language.Und), norm.NFC)
	s, _, err := transform.String(t, raw)
	if err != nil {
		s = strings.ToLower(norm.NFC.String(raw))
	}
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	return strings.TrimRightFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || !isWordRune(r)
	})
}

// isWordRune reports whether r may end a normalized word.
func isWordRune(r rune) bool {
	switch {
	case r == '\'', r == '-', r == '_':
		return true
	case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
		return true
	}
	return false
}
