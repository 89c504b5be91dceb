package errors

import (
	"unicode"
	"unicode/utf8"
)

// maxNameLength bounds stage names and source keys accepted from callers.
const maxNameLength = 256

// ValidateStageName validates a stage name supplied by a caller to select
// the current stage. Names are matched exactly against stage labels, which
// may hold any text, so only the length is bounded (256 characters).
// Stage labels themselves are not validated.
//
// An empty name is valid and means "no current stage".
func ValidateStageName(name string) error {
	if utf8.RuneCountInString(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "stage name too long (max %d characters)", maxNameLength)
	}
	return nil
}

// ValidateKey validates a key or collection name used to look up stage
// records in an upstream store (Redis key, Mongo collection).
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "key cannot be empty")
	}
	if utf8.RuneCountInString(key) > maxNameLength {
		return New(ErrCodeInvalidInput, "key too long (max %d characters)", maxNameLength)
	}
	for _, r := range key {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "key contains whitespace or control characters")
		}
	}
	return nil
}
