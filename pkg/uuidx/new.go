// Package uuidx generates version 7 UUIDs. The time-ordered layout keeps
// session and turn identifiers sortable by creation time.
package uuidx

import "github.com/google/uuid"

// New returns a fresh version 7 UUID. It panics when the random source fails.
func New() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewString returns a fresh version 7 UUID in canonical string form.
func NewString() string {
	return New().String()
}
