package room

import (
	"strings"
	"unicode"
)

// DefaultName is used when a display name has no usable characters.
const DefaultName = "Player"

// SanitizeName reduces a raw display name to letters, digits, spaces, hyphens,
// underscores and apostrophes, trimmed and capped at MaxNameLength runes.
func SanitizeName(raw string) string {
	var b strings.Builder
	count := 0
	for _, r := range strings.TrimSpace(raw) {
		if !allowedNameRune(r) {
			continue
		}
		b.WriteRune(r)
		count++
		if count == MaxNameLength {
			break
		}
	}

	if count == 0 {
		return DefaultName
	}
	return b.String()
}

func allowedNameRune(r rune) bool {
	switch r {
	case ' ', '-', '_', '\'':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
