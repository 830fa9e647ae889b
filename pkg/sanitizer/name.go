package sanitizer

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Replacement is written in place of every rune SafeName rejects.
const Replacement = '_'

// IsSafeRune reports whether r may appear in a safe name: any Unicode letter or
// number (including superscripts and vulgar fractions such as '²' and '½'),
// '-' or '_'.
func IsSafeRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '_'
}

// SafeName normalizes s to NFC, replaces every rune outside the safe alphabet
// with '_' and truncates the result to at most maxRunes runes. A maxRunes of
// zero or less disables truncation.
//
// The mapping is one rune to one rune, so SafeName is idempotent and never turns
// a non-empty input into an empty one.
func SafeName(s string, maxRunes int) string {
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range s {
		if maxRunes > 0 && n == maxRunes {
			break
		}
		if !IsSafeRune(r) {
			r = Replacement
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// BaseName strips any directory components from a client supplied file name.
// Both '/' and '\' are treated as separators and NUL bytes are dropped.
// Returns "" when nothing usable remains ("", ".", "..", "/").
func BaseName(name string) string {
	name = strings.ReplaceAll(name, "\x00", "")
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	switch name {
	case ".", "..", "/":
		return ""
	}
	return name
}
