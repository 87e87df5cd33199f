// Package textnorm canonicalizes free-text transaction descriptions so the
// matching engines compare like with like.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes a description: lower-case, strip diacritics,
// replace punctuation with spaces, collapse whitespace, trim. Empty input
// returns an empty string. The function is idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToLower(s)
	s = stripDiacritics(s)
	s = nonWord.ReplaceAllString(s, " ")
	s = whitespace.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// stripDiacritics removes combining marks after canonical decomposition, so
// "transferência" becomes "transferencia".
func stripDiacritics(s string) string {
	// The transform chain is stateful, so build it per call to keep
	// Normalize safe for concurrent use.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
