package stages

import (
	"regexp"
	"unicode/utf8"
)

// Redacted replaces every capitalized word in redacted output.
const Redacted = "ANON"

// capitalizedWord matches a capitalized word: one upper-case letter followed
// by zero or more lower-case letters, on word boundaries.
var capitalizedWord = regexp.MustCompile(`\b[A-Z][a-z]*\b`)

// Redact replaces every capitalized word in text with the Redacted marker.
// Applying Redact twice yields the same result as once: the marker itself is
// all upper-case and never re-matches.
func Redact(text string) string {
	return capitalizedWord.ReplaceAllString(text, Redacted)
}

// Excerpt truncates s to at most n bytes for log lines, appending an
// ellipsis when truncated. The cut backs up to a rune boundary so a
// multi-byte character is never split.
func Excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
