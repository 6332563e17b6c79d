package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateLevelID validates a level identifier for safety and correctness.
// It rejects identifiers that could break file-based cache keys or document
// lookups.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - No path separators or traversal sequences
//   - No null bytes
//   - Maximum length of 256 characters
//
// Physics notation (Unicode letters, digits, subscripts, primes) is allowed.
func ValidateLevelID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidLevel, "level id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidLevel, "level id too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLevel, "level id contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidLevel, "level id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateDocumentName validates a saved-diagram name for safety.
// It ensures the name is a simple identifier without path components.
func ValidateDocumentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "document name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "document name too long (max 256 characters)")
	}

	// Must be a simple name, not a path
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "document name cannot contain path separators")
	}

	// No hidden names (starting with .)
	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidInput, "document name cannot start with a dot")
	}

	return nil
}

// ValidateOutputPath validates an output file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	// No backslashes (potential Windows path injection)
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// groupNameRegex matches valid group (column) names: empty is allowed at the
// call site, everything else must be printable without separators.
var groupNameRegex = regexp.MustCompile(`^[^/\\]+$`)

// ValidateGroupName validates a level group name. The empty group is valid
// and denotes the default column.
func ValidateGroupName(name string) error {
	if name == "" {
		return nil
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidLevel, "group name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLevel, "group name contains invalid control characters")
		}
	}

	if !groupNameRegex.MatchString(name) {
		return New(ErrCodeInvalidLevel, "invalid group name: %q", name)
	}

	return nil
}
