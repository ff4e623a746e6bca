package helpers

import (
	"strings"
	"unicode/utf8"
)

// AfterFirst returns the trimmed text following the first occurrence of sep.
// ok is false when sep does not occur in target.
func AfterFirst(target string, sep string) (string, bool) {
	_, after, found := strings.Cut(target, sep)
	if !found {
		return "", false
	}
	return strings.TrimSpace(after), true
}

// Truncate cuts s to at most n runes, appending "..." when something was cut
func Truncate(s string, n int) string {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
