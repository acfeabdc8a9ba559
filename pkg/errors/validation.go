package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds node and edge identifiers coming from documents,
// clipboard payloads and API requests.
const maxIDLength = 256

// ValidateID validates a node or edge identifier received from outside the
// process. Identifiers generated by the editor always pass.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - Maximum length of 256 bytes
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "identifier cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "identifier too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "identifier contains invalid control characters")
		}
	}

	return nil
}

// ValidateNodeType validates a node type tag, e.g. the tag carried by a
// palette drag. Type tags are short ASCII words without whitespace.
func ValidateNodeType(tag string) error {
	if tag == "" {
		return New(ErrCodeInvalidInput, "node type cannot be empty")
	}

	if len(tag) > 64 {
		return New(ErrCodeInvalidInput, "node type too long (max 64 characters)")
	}

	for _, r := range tag {
		if r > unicode.MaxASCII || unicode.IsSpace(r) || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node type contains invalid characters: %q", tag)
		}
	}

	return nil
}

// ValidatePath validates a document path given on the command line or in
// configuration.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..) in relative paths
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

	if !strings.HasPrefix(path, "/") && strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "relative path cannot contain path traversal sequences (..)")
	}

	return nil
}
