package commandbus

// FocusSource reports the region currently holding keyboard focus.
type FocusSource[R comparable] interface {
	FocusedRegion() R
}

// SubscribeScoped subscribes handler so that it only runs when focus is on
// home at emit time.
func SubscribeScoped[R comparable](b *Bus, focus FocusSource[R], home R, id CommandID, handler Handler) func() {
	return b.Subscribe(id, func() {
		if focus.FocusedRegion() != home {
			return
		}
		handler()
	})
}

// SubscribeGlobal subscribes handler regardless of focus.
func SubscribeGlobal(b *Bus, id CommandID, handler Handler) func() {
	return b.Subscribe(id, handler)
}

// Subscriptions collects unsubscribe functions for a component's teardown.
type Subscriptions []func()

// Add records unsubscribe functions.
func (s *Subscriptions) Add(unsub ...func()) {
	*s = append(*s, unsub...)
}

// Close unsubscribes everything recorded so far.
func (s *Subscriptions) Close() {
	for _, unsub := range *s {
		unsub()
	}
	*s = nil
}
