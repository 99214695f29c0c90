package util

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateOrderNumber produces a short human-friendly order reference,
// e.g. PF-3F2A9C1B. Uniqueness is enforced by the orders table index.
func GenerateOrderNumber() string {
	id := uuid.New()
	return fmt.Sprintf("PF-%s", strings.ToUpper(id.String()[:8]))
}

// GenerateCartID produces an opaque cart identifier for guest sessions.
func GenerateCartID() string {
	return uuid.New().String()
}

// GenerateRandomPassword returns a throwaway password for bootstrap accounts.
func GenerateRandomPassword() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}
