package state

import "slices"

// Subscribe registers fn to run after every effective state change with the
// states before and after it. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(prev, next State)) func() {
	s.mu.Lock()
	seq := s.nextSeq
	s.nextSeq++
	s.listeners = append(s.listeners, listener{seq: seq, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listeners = slices.DeleteFunc(s.listeners, func(l listener) bool { return l.seq == seq })
	}
}

// Watch calls fn with the selected slice whenever it differs, according to
// equal, from the slice selected before the change.
func Watch[T any](s *Store, selector func(State) T, equal func(a, b T) bool, fn func(T)) func() {
	return s.Subscribe(func(prev, next State) {
		before, after := selector(prev), selector(next)
		if equal(before, after) {
			return
		}
		fn(after)
	})
}

// WatchValue is Watch for comparable slices.
func WatchValue[T comparable](s *Store, selector func(State) T, fn func(T)) func() {
	return Watch(s, selector, func(a, b T) bool { return a == b }, fn)
}
