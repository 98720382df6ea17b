package errors

import (
	"unicode"
	"unicode/utf8"
)

// MaxTextLength bounds free-text chart fields (titles, axis labels, zone names).
const MaxTextLength = 200

// ValidateText validates a free-text field that ends up in rendered output.
// Empty text is allowed; the field is simply not drawn.
//
// The validation rules are intentionally conservative:
//   - Valid UTF-8
//   - No control characters (tabs included)
//   - Maximum length of MaxTextLength runes
func ValidateText(field, s string) error {
	if !utf8.ValidString(s) {
		return New(ErrCodeInvalidOptions, "%s is not valid UTF-8", field)
	}
	if utf8.RuneCountInString(s) > MaxTextLength {
		return New(ErrCodeInvalidOptions, "%s too long (max %d characters)", field, MaxTextLength)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidOptions, "%s contains invalid control characters", field)
		}
	}
	return nil
}

// ValidateRange checks that v lies within [lo, hi].
func ValidateRange(field string, v, lo, hi float64) error {
	if v != v || v < lo || v > hi {
		return New(ErrCodeInvalidOptions, "%s must be between %g and %g, got %g", field, lo, hi, v)
	}
	return nil
}
