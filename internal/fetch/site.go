// Package fetch coordinates debounced, stale-safe remote lookups for the
// Bubble Tea update loop.
//
// A Site tracks one call site: what it last asked for, the latest request
// token, and the last successful value. Results whose token is no longer
// the latest are dropped, so visible state always converges on the most
// recently requested target regardless of completion order.
package fetch

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/lineage/internal/log"
)

// DefaultDebounce is the window used to coalesce rapid target changes.
const DefaultDebounce = 150 * time.Millisecond

// Policy decides what a failure does to the previously displayed value.
type Policy int

const (
	// ClearOnError drops the previous value when a request fails.
	ClearOnError Policy = iota
	// KeepOnError leaves the previous value visible next to the error.
	KeepOnError
)

// Target describes what to fetch. An empty Key means the descriptor is
// incomplete and nothing should be fetched.
type Target[T any] struct {
	Key   string
	Fetch func(ctx context.Context) (T, error)
}

// ResultMsg carries a completed request back into Update.
type ResultMsg[T any] struct {
	Site  string
	Token uint64
	Key   string
	Value T
	Err   error
}

type debounceMsg struct {
	site  string
	token uint64
}

// Scheduler delays msg by d. The default is tea.Tick.
type Scheduler func(d time.Duration, msg tea.Msg) tea.Cmd

func tickScheduler(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

// Site is one fetch call site.
type Site[T any] struct {
	name     string
	ctx      context.Context
	debounce time.Duration
	policy   Policy
	schedule Scheduler

	prevKey string
	hasPrev bool
	token   uint64
	pending Target[T]

	value    T
	hasValue bool
	valueKey string
	loading  bool
	err      error
}

// Option configures a Site.
type Option func(*options)

type options struct {
	debounce time.Duration
	policy   Policy
	schedule Scheduler
}

// WithDebounce sets the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

// WithPolicy sets the failure policy.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithScheduler replaces tea.Tick, mainly for tests.
func WithScheduler(s Scheduler) Option {
	return func(o *options) { o.schedule = s }
}

// NewSite creates a site named name. ctx is passed to every fetch.
func NewSite[T any](ctx context.Context, name string, opts ...Option) *Site[T] {
	o := options{debounce: DefaultDebounce, policy: ClearOnError, schedule: tickScheduler}
	for _, opt := range opts {
		opt(&o)
	}
	return &Site[T]{
		name:     name,
		ctx:      ctx,
		debounce: o.debounce,
		policy:   o.policy,
		schedule: o.schedule,
	}
}

// Name returns the site name used for routing messages.
func (s *Site[T]) Name() string { return s.name }

// Request points the site at target and returns the command that will
// eventually fetch it, or nil when target is incomplete.
func (s *Site[T]) Request(target Target[T]) tea.Cmd {
	s.token++

	if target.Key == "" {
		var zero T
		s.value, s.hasValue, s.valueKey = zero, false, ""
		s.err = nil
		s.loading = false
		s.hasPrev = false
		s.prevKey = ""
		s.pending = Target[T]{}
		return nil
	}

	changed := !s.hasPrev || s.prevKey != target.Key
	rapid := s.hasPrev && changed
	if changed {
		// An error belongs to the target that produced it.
		s.err = nil
	}
	s.prevKey = target.Key
	s.hasPrev = true
	s.pending = target
	s.loading = true

	if rapid && s.debounce > 0 {
		log.Debug(log.CatFetch, "debounce", "site", s.name, "key", target.Key, "token", s.token)
		return s.schedule(s.debounce, debounceMsg{site: s.name, token: s.token})
	}
	return s.run(s.token, target)
}

func (s *Site[T]) run(token uint64, target Target[T]) tea.Cmd {
	ctx, name := s.ctx, s.name
	log.Debug(log.CatFetch, "request", "site", name, "key", target.Key, "token", token)
	return func() tea.Msg {
		value, err := target.Fetch(ctx)
		return ResultMsg[T]{Site: name, Token: token, Key: target.Key, Value: value, Err: err}
	}
}

// Update consumes this site's messages. handled is false for messages that
// belong to something else.
func (s *Site[T]) Update(msg tea.Msg) (cmd tea.Cmd, handled bool) {
	switch msg := msg.(type) {
	case debounceMsg:
		if msg.site != s.name {
			return nil, false
		}
		if msg.token != s.token {
			log.Debug(log.CatFetch, "debounce superseded", "site", s.name, "token", msg.token, "latest", s.token)
			return nil, true
		}
		return s.run(msg.token, s.pending), true

	case ResultMsg[T]:
		if msg.Site != s.name {
			return nil, false
		}
		s.apply(msg)
		return nil, true
	}
	return nil, false
}

func (s *Site[T]) apply(msg ResultMsg[T]) {
	if msg.Token != s.token {
		log.Debug(log.CatFetch, "stale result dropped", "site", s.name, "key", msg.Key, "token", msg.Token, "latest", s.token)
		return
	}

	s.loading = false
	if msg.Err != nil {
		log.ErrorErr(log.CatFetch, "fetch failed", msg.Err, "site", s.name, "key", msg.Key)
		s.err = msg.Err
		if s.policy == ClearOnError {
			var zero T
			s.value, s.hasValue, s.valueKey = zero, false, ""
		}
		return
	}

	s.value = msg.Value
	s.hasValue = true
	s.valueKey = msg.Key
	s.err = nil
}

// Cancel marks every outstanding request stale and stops loading. The
// current value stays.
func (s *Site[T]) Cancel() {
	s.token++
	s.loading = false
	s.pending = Target[T]{}
}

// Value returns the last applied value.
func (s *Site[T]) Value() (T, bool) { return s.value, s.hasValue }

// ValueKey returns the key the current value was fetched for.
func (s *Site[T]) ValueKey() string { return s.valueKey }

// HasValue reports whether a value is available for display.
func (s *Site[T]) HasValue() bool { return s.hasValue }

// Loading reports whether a request is pending or in flight.
func (s *Site[T]) Loading() bool { return s.loading }

// ShowLoading reports whether a loading indicator should replace content:
// only while loading with nothing to show.
func (s *Site[T]) ShowLoading() bool { return s.loading && !s.hasValue }

// Err returns the last failure for the current target.
func (s *Site[T]) Err() error { return s.err }

// Key returns the most recently requested key.
func (s *Site[T]) Key() string { return s.prevKey }
