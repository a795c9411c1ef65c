package id

import (
	"github.com/google/uuid"
)

// Generate returns a new session ID. IDs are time-ordered UUIDs so that
// sessions recorded in the same second still sort by creation.
func Generate() string {
	u, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return u.String()
}
