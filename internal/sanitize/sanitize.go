// Package sanitize replaces identifier values with deterministic surrogates.
//
// A surrogate is derived from the SHA-256 digest of the identifier, encoded with
// base58 (Bitcoin alphabet) and prefixed with Marker so it can never be mistaken
// for a real key. The surrogate always has the length of the column it replaces,
// which keeps sanitized rows valid against fixed-width identifier columns.
//
// All functions are pure and safe for concurrent use.
package sanitize

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"

	"github.com/mr-tron/base58"
)

// Marker is prepended to every surrogate longer than the marker itself.
const Marker = "Hash"

// Identifier lengths used by the billing schema.
const (
	// ShortIDLength is the 13-character merchant-style identifier.
	ShortIDLength = 13
	// ULIDLength is the 26-character ULID.
	ULIDLength = 26
	// UUIDLength is the 36-character hyphenated UUID.
	UUIDLength = 36
)

// HashUUIDToBase58 returns a targetLength-character surrogate for value.
//
// When targetLength does not leave room for Marker, the surrogate is the leading
// targetLength characters of the encoded digest alone. A negative targetLength
// yields the empty string.
func HashUUIDToBase58(value string, targetLength int) string {
	if targetLength <= 0 {
		return ""
	}

	digest := sha256.Sum256([]byte(value))
	encoded := base58.Encode(digest[:])

	if targetLength <= len(Marker) {
		return encoded[:targetLength]
	}

	available := targetLength - len(Marker)
	if len(encoded) < available {
		encoded = strings.Repeat(encoded, available/len(encoded)+1)
	}
	return Marker + encoded[:available]
}

// UUIDField sanitizes a nullable identifier. nil is returned unchanged.
func UUIDField(value *string, fieldLength int) *string {
	if value == nil {
		return nil
	}
	hashed := HashUUIDToBase58(*value, fieldLength)
	return &hashed
}

// Value sanitizes a dynamically typed cell, as read from a database row or a
// decoded document. nil is returned unchanged; other values are hashed by their
// string form.
func Value(value any, fieldLength int) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return HashUUIDToBase58(v, fieldLength)
	case []byte:
		return HashUUIDToBase58(string(v), fieldLength)
	case *string:
		if v == nil {
			return nil
		}
		return HashUUIDToBase58(*v, fieldLength)
	default:
		return HashUUIDToBase58(Text(v), fieldLength)
	}
}

// Text is the string form a non-string cell is hashed by. Floats are written
// in plain decimal so a whole number decoded from JSON hashes like its integer.
func Text(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}
