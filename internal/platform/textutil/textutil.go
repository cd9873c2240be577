package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Clean normalises free text coming from callers: NFC form, control
// characters removed, surrounding whitespace trimmed and inner runs of
// whitespace collapsed.
func Clean(value string) string {
	value = norm.NFC.String(value)
	value = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, value)
	return strings.Join(strings.Fields(value), " ")
}

// CleanMultiline keeps line breaks, which matter for descriptions and
// commentary, while dropping other control characters.
func CleanMultiline(value string) string {
	value = norm.NFC.String(value)
	value = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' {
			return -1
		}
		return r
	}, value)
	return strings.TrimSpace(value)
}

// Truncate limits value to max runes.
func Truncate(value string, max int) string {
	if max <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}
