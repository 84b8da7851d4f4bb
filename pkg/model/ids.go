package model

import "github.com/google/uuid"

// IDGenerator produces opaque identifiers for sections and fields.
type IDGenerator func() string

// NewID returns a fresh random identifier. Identifiers are never reused.
func NewID() string {
	return uuid.NewString()
}
