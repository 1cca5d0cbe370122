// Package ids generates identifiers in the shapes used by the billing schema.
package ids

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewULID returns a 26-character ULID.
func NewULID() string {
	return ulid.Make().String()
}

// NewShortID returns a 13-character upper-case Crockford base32 identifier.
// It is the random tail of a fresh ULID.
func NewShortID() string {
	id := ulid.Make().String()
	return id[len(id)-13:]
}

// NewUUID returns a 36-character hyphenated UUID v4.
func NewUUID() string {
	return uuid.New().String()
}
