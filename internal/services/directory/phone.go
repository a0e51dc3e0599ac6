package directory

import (
	"strings"
)

const (
	minE164Digits = 8
	maxE164Digits = 15
)

// NormalizePhone converts raw input to E.164 using countryCode for national
// numbers:
//
//	"(555) 123-4567"  -> "+15551234567"
//	"1-555-123-4567"  -> "+15551234567"
//	"+44 20 7946 0958" -> "+442079460958"
func NormalizePhone(raw, countryCode string) (string, error) {
	trimmed := strings.TrimSpace(raw)

	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	if strings.HasPrefix(trimmed, "+") {
		if len(d) < minE164Digits || len(d) > maxE164Digits {
			return "", ErrInvalidPhone
		}
		return "+" + d, nil
	}

	switch {
	case len(d) == 10:
		return "+" + countryCode + d, nil
	case len(d) == 10+len(countryCode) && strings.HasPrefix(d, countryCode):
		return "+" + d, nil
	default:
		return "", ErrInvalidPhone
	}
}

// MaskPhone hides all but the last four digits of an E.164 number
func MaskPhone(phone string) string {
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < 4 {
		return "***"
	}

	last4 := digits[len(digits)-4:]
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		return "+1***-***-" + last4
	}
	return "+***-" + last4
}
