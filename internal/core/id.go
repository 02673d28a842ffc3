package core

import "github.com/google/uuid"

// NewID returns a fresh globally unique record identifier.
func NewID() string {
	return uuid.NewString()
}
