// Package flags holds opt-in behavior switches read from the config file's
// flags section. Flags are read-only after initialization and unknown names
// read as disabled.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/lineage/internal/log"
)

const (
	// FlagSkipRemoveConfirm removes a repository on x without asking.
	FlagSkipRemoveConfirm = "skip-remove-confirm"

	// FlagNoMouse leaves mouse reporting off so the terminal keeps native
	// text selection.
	FlagNoMouse = "no-mouse"
)

var known = []string{FlagSkipRemoveConfirm, FlagNoMouse}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map. A nil map disables everything.
func New(flags map[string]bool) *Registry {
	r := &Registry{flags: maps.Clone(flags)}
	if r.flags == nil {
		r.flags = make(map[string]bool)
	}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(r.flags), "flags", r.All())
	for _, name := range r.Unknown() {
		log.Warn(log.CatConfig, "Unknown feature flag in config", "flag", name)
	}
	return r
}

// Enabled reports whether the named flag is on. Nil-safe.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	return r.flags[name]
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return make(map[string]bool)
	}
	return maps.Clone(r.flags)
}

// Unknown lists configured names lineage does not recognize, sorted.
func (r *Registry) Unknown() []string {
	if r == nil {
		return nil
	}
	var out []string
	for name := range r.flags {
		if !slices.Contains(known, name) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}
