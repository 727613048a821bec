package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID generates a random identifier
func NewID() string {
	return uuid.New().String()
}

// ShortID returns the first eight characters of a new identifier, upper-cased.
// Print jobs are named with it.
func ShortID() string {
	return strings.ToUpper(uuid.New().String()[:8])
}
