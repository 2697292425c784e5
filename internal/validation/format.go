// Package validation formats errors for values outside a closed set.
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

// InvalidValueError wraps base with the rejected value and the accepted ones:
//
//	<base>: <what> "<value>" (valid: a, b)
func InvalidValueError[T ~string](base error, what string, value T, valid []T) error {
	return fmt.Errorf("%w: %s %q (valid: %s)", base, what, string(value), FormatValidValues(valid))
}
