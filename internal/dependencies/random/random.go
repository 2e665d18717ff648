package random

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// Random provides identifier generation that can be mocked for testing
type Random interface {
	// ShortID returns a random lowercase hex identifier of the given length
	// (at most 32 characters)
	ShortID(length int) string
}

// UUIDRandom implements Random using random (version 4) UUIDs
type UUIDRandom struct{}

// New creates a new UUIDRandom
func New() *UUIDRandom {
	return &UUIDRandom{}
}

// ShortID returns the first length hex digits of a fresh UUID
func (r *UUIDRandom) ShortID(length int) string {
	if length <= 0 {
		return ""
	}
	id := uuid.New()
	s := hex.EncodeToString(id[:])
	if length > len(s) {
		length = len(s)
	}
	return s[:length]
}
