package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxLabelLength bounds a single normalized label.
const maxLabelLength = 128

// ValidateLabel validates a normalized label for use as a set element.
//
// The validation rules are intentionally conservative:
//   - No empty labels
//   - No control characters
//   - No commas (the input separator) and no whitespace (normalized away)
//   - Not both quote characters, so the element can always be quoted
//   - Maximum length of 128 characters
func ValidateLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidLabel, "label cannot be empty")
	}

	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidLabel, "label too long (max %d characters)", maxLabelLength)
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLabel, "label %q contains control characters", label)
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidLabel, "label %q contains whitespace", label)
		}
	}

	if strings.Contains(label, ",") {
		return New(ErrCodeInvalidLabel, "label %q contains a comma", label)
	}

	if strings.Contains(label, "'") && strings.Contains(label, `"`) {
		return New(ErrCodeInvalidLabel, "label %q mixes single and double quotes", label)
	}

	return nil
}

// elementRegex matches set elements that GAMS accepts without quoting.
var elementRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_+\-]*$`)

// IsPlainElement reports whether label can be written to a set file unquoted.
func IsPlainElement(label string) bool {
	return elementRegex.MatchString(label)
}

// ValidatePath validates an output path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
