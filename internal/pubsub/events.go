// Package pubsub fans typed events out to channel subscribers and bridges
// those channels into the Bubble Tea update loop.
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened.
type EventType string

const (
	// LogEntryEvent carries one formatted log line.
	LogEntryEvent EventType = "log_entry"
	// WorkTreeChangedEvent signals that files under a watched repository changed.
	WorkTreeChangedEvent EventType = "worktree_changed"
	// HeadChangedEvent signals that HEAD or the refs of a watched repository moved.
	HeadChangedEvent EventType = "head_changed"
)

// Event is a published value together with its type and publish time.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out subscription channels.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher accepts events for fan-out.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T) int
}
