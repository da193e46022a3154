package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims, collapses inner whitespace runs to one space, drops
// control characters and cuts the result to maxLen runes (0 means no cap).
func SanitizeString(input string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(input))
	pendingSpace := false
	runes := 0
	for _, r := range input {
		if maxLen > 0 && runes >= maxLen {
			break
		}
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
			continue
		case unicode.IsControl(r):
			continue
		}
		if pendingSpace {
			if maxLen > 0 && runes+1 >= maxLen {
				break
			}
			b.WriteByte(' ')
			runes++
			pendingSpace = false
		}
		b.WriteRune(r)
		runes++
	}
	return b.String()
}

// SanitizeOptional applies SanitizeString to an optional field. Blank input
// collapses to nil so "clear" and "absent" look the same downstream.
func SanitizeOptional(value *string, maxLen int) *string {
	if value == nil {
		return nil
	}
	clean := SanitizeString(*value, maxLen)
	if clean == "" {
		return nil
	}
	return &clean
}
