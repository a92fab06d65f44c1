package utils

import "unicode/utf8"

// TruncateRunes returns s cut to at most max runes. Multi-byte characters
// are never split. A non-positive max leaves s unchanged.
func TruncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
