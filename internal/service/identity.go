package service

import "strings"

const (
	phoneMinDigits   = 10
	phoneCountryCode = "1"
	phoneWithCountry = 11
)

// NormalizeEmail canonicalizes an email address for duplicate matching.
// Returns false when nothing usable remains.
func NormalizeEmail(raw string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", false
	}

	return normalized, true
}

// NormalizePhone strips everything but digits and drops a leading US country
// code from 11-digit numbers. Valid only when exactly ten digits remain, so
// "+1 (555) 123-4567" and "5551234567" normalize identically.
func NormalizePhone(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if len(digits) == phoneWithCountry && strings.HasPrefix(digits, phoneCountryCode) {
		digits = digits[1:]
	}

	if len(digits) != phoneMinDigits {
		return "", false
	}

	return digits, true
}
