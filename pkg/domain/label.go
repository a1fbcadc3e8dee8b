package domain

import (
	"strings"

	dErrors "nameledger/pkg/domain-errors"
)

// DefaultMaxLabelLength bounds labels when the deployment does not configure
// its own limit.
const DefaultMaxLabelLength = 255

// NormalizeLabel lowercases and trims a raw label. Validation is separate so
// callers can report the exact failure class.
func NormalizeLabel(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ValidateLabel checks a normalized label against the charset and length
// rules. Labels are limited to [a-z0-9-] and 1..maxLength runes; maxLength
// of 0 means DefaultMaxLabelLength.
func ValidateLabel(label string, maxLength int) error {
	if maxLength <= 0 {
		maxLength = DefaultMaxLabelLength
	}
	if len(label) == 0 {
		return dErrors.New(dErrors.CodeInvalidLength, "label must not be empty")
	}
	if len(label) > maxLength {
		return dErrors.New(dErrors.CodeInvalidLength, "label exceeds maximum length")
	}
	for _, c := range label {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return dErrors.New(dErrors.CodeInvalidName, "label may only contain a-z, 0-9 and hyphen")
		}
	}
	return nil
}
