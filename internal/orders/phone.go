package orders

import "strings"

const minPhoneDigits = 8

// NormalizePhone strips common separators and reports whether what remains
// is a plausible phone number. A leading plus sign is kept.
func NormalizePhone(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	plus := strings.HasPrefix(raw, "+")
	var digits strings.Builder
	for _, r := range strings.TrimPrefix(raw, "+") {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return "", false
		}
	}
	if digits.Len() < minPhoneDigits {
		return "", false
	}
	if plus {
		return "+" + digits.String(), true
	}
	return digits.String(), true
}
