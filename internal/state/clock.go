package state

import (
	"time"

	"github.com/google/uuid"
)

// Clock provides the current time. Use RealClock outside tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

// NewID generates repository ids.
func NewID() string { return uuid.NewString() }
