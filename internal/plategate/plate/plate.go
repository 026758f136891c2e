// Package plate validates and canonicalizes license plates and picks the
// plate out of OCR candidates.
package plate

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	mercosulPattern = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z0-9][0-9]{2}$`)
	legacyPattern   = regexp.MustCompile(`^[A-Z]{3}[0-9]{4}$`)
)

// Valid reports whether s is a Mercosul (AAA0A00) or legacy (AAA0000)
// plate. Matching is case-insensitive and anchored at both ends.
func Valid(s string) bool {
	s = strings.ToUpper(s)
	return mercosulPattern.MatchString(s) || legacyPattern.MatchString(s)
}

// IsMercosul reports whether s uses the Mercosul layout with a letter in
// the fifth position.
func IsMercosul(s string) bool {
	s = strings.ToUpper(s)
	return mercosulPattern.MatchString(s) && !legacyPattern.MatchString(s)
}

// Normalize drops every rune that is not a letter or digit and uppercases
// the rest: "abc-1d23" -> "ABC1D23".
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// Canonical normalizes raw and reports whether the result is a valid plate.
func Canonical(raw string) (string, bool) {
	p := Normalize(raw)
	return p, Valid(p)
}
