// Package validation provides helpers for enum validation errors.
package validation

import (
	"fmt"
	"strings"
)

// FormatValidValues joins string-like values for error messages.
func FormatValidValues[T ~string](values []T) string {
	formatted := make([]string, 0, len(values))
	for _, value := range values {
		formatted = append(formatted, string(value))
	}
	return strings.Join(formatted, ", ")
}

// FormatInvalidValueError wraps sentinel with the offending value and the
// accepted set.
func FormatInvalidValueError[T ~string](sentinel error, value T, valid []T) error {
	return fmt.Errorf("%w: %q (valid: %s)", sentinel, string(value), FormatValidValues(valid))
}
