package nlp

import (
	"regexp"
	"strings"
	"unicode"
)

var multiSpace = regexp.MustCompile(`\s+`)

// Squash collapses runs of whitespace into one space and trims the ends.
func Squash(s string) string {
	return strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
}

// ContainsAny reports whether text contains any of the substrings.
func ContainsAny(text string, subs []string) bool {
	for _, s := range subs {
		if s != "" && strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// StripAll removes every occurrence of each substring, in order.
func StripAll(text string, subs []string) string {
	for _, s := range subs {
		if s == "" {
			continue
		}
		text = strings.ReplaceAll(text, s, "")
	}
	return text
}

// HasWord reports whether s contains at least one letter or digit.
func HasWord(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}
