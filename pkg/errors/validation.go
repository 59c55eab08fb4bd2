package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// maxIDLength bounds item identifiers coming from documents and API requests.
const maxIDLength = 256

// ValidateItemID validates an item identifier for safety and correctness.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - Maximum length of 256 characters
//
// Identifiers end up in SVG ids, DOT node names and cache keys, so anything
// that could break those encodings is rejected here.
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "item id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidID, "item id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "item id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, `"<>&`) {
		return New(ErrCodeInvalidID, "item id contains reserved characters: %q", id)
	}

	return nil
}

// ValidateGridID validates a grid identifier.
// Grid identifiers are UUIDs generated by the registry or supplied by the caller.
func ValidateGridID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "grid id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidID, err, "invalid grid id: %q", id)
	}
	return nil
}
