// Package commandbus decouples key-press detection from the panel that
// reacts to it. Handlers subscribe to a CommandID and Emit runs them
// synchronously in subscription order.
package commandbus

import (
	"sync"

	"github.com/zjrosen/lineage/internal/log"
)

// CommandID identifies a command such as "list.selectNext".
type CommandID string

// Handler reacts to an emitted command.
type Handler func()

type subscription struct {
	seq     uint64
	handler Handler
}

// Bus maps command ids to ordered handler lists.
type Bus struct {
	mu       sync.Mutex
	handlers map[CommandID][]subscription
	nextSeq  uint64
}

var defaultBus = New()

// Default returns the process-wide bus shared by every panel.
func Default() *Bus {
	return defaultBus
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{handlers: make(map[CommandID][]subscription)}
}

// Subscribe adds handler for id. Each call returns its own unsubscribe
// function, which removes exactly this subscription and is safe to call
// more than once.
func (b *Bus) Subscribe(id CommandID, handler Handler) func() {
	b.mu.Lock()
	seq := b.nextSeq
	b.nextSeq++
	b.handlers[id] = append(b.handlers[id], subscription{seq: seq, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id, seq) })
	}
}

func (b *Bus) remove(id CommandID, seq uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[id]
	for i, s := range subs {
		if s.seq != seq {
			continue
		}
		next := make([]subscription, 0, len(subs)-1)
		next = append(next, subs[:i]...)
		next = append(next, subs[i+1:]...)
		if len(next) == 0 {
			delete(b.handlers, id)
		} else {
			b.handlers[id] = next
		}
		return
	}
}

// Emit runs every handler subscribed to id at the moment of the call.
// Handlers may subscribe or unsubscribe while running.
func (b *Bus) Emit(id CommandID) {
	b.mu.Lock()
	subs := b.handlers[id]
	b.mu.Unlock()

	log.Debug(log.CatBus, "emit", "command", id, "handlers", len(subs))
	for _, s := range subs {
		s.handler()
	}
}

// HandlerCount reports how many handlers are subscribed to id.
func (b *Bus) HandlerCount(id CommandID) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[id])
}
