package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify turns a display name into a URL-safe slug of at most max runes.
// Letters lose their diacritics, everything that is not a letter or digit
// collapses into a single dash.
func Slugify(name string, max int) string {
	// Transformers and casers keep state, so each call builds its own.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		folded = name
	}
	folded = cases.Lower(language.Und).String(folded)

	out := make([]rune, 0, len(folded))
	dash := false
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			out = append(out, r)
			dash = false
		case len(out) > 0 && !dash:
			out = append(out, '-')
			dash = true
		}
	}

	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return strings.Trim(string(out), "-")
}
