// Package panes sizes two-panel groups that can collapse either side.
package panes

import (
	"errors"
	"fmt"
	"math"

	"github.com/zjrosen/lineage/internal/layout"
)

var (
	// ErrInvalidLayout is returned by SetLayout for proportions that do not
	// name exactly this split's panels with non-negative sizes.
	ErrInvalidLayout = errors.New("invalid layout")

	// ErrLastPanel is returned when collapsing would hide both panels.
	ErrLastPanel = errors.New("cannot collapse the only visible panel")
)

// Split is a horizontal pair of panels sharing a width. Shares are percents
// of the first panel; the second gets the rest.
type Split struct {
	first, second layout.PanelID

	base     float64    // first panel's share while both are expanded
	shares   [2]float64 // expanded proportions as last set, reported verbatim
	min, max float64

	collapsed map[layout.PanelID]bool
}

// NewSplit builds a split from initial proportions. Shares for the first
// panel are clamped to [minShare, maxShare] when resized with Nudge.
func NewSplit(first, second layout.PanelID, initial layout.Proportions, minShare, maxShare float64) *Split {
	s := &Split{
		first:     first,
		second:    second,
		base:      50,
		shares:    [2]float64{50, 50},
		min:       minShare,
		max:       maxShare,
		collapsed: map[layout.PanelID]bool{},
	}
	_ = s.SetLayout(initial)
	return s
}

// Panel returns the collapse handle for id, or false when id is not part of
// this split.
func (s *Split) Panel(id layout.PanelID) (*Panel, bool) {
	if id != s.first && id != s.second {
		return nil, false
	}
	return &Panel{split: s, id: id}, true
}

// Layout reports the effective proportions. A collapsed panel reads as 0
// and its sibling as 100.
func (s *Split) Layout() (layout.Proportions, error) {
	switch {
	case s.collapsed[s.first]:
		return layout.Proportions{s.first: 0, s.second: 100}, nil
	case s.collapsed[s.second]:
		return layout.Proportions{s.first: 100, s.second: 0}, nil
	}
	return s.Base(), nil
}

// SetLayout applies proportions. A zero entry collapses that panel; two
// non-zero entries expand both and become the new base shares.
func (s *Split) SetLayout(p layout.Proportions) error {
	a, okA := p[s.first]
	b, okB := p[s.second]
	if len(p) != 2 || !okA || !okB || a < 0 || b < 0 || a+b <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidLayout, p)
	}

	switch {
	case a == 0:
		s.collapsed[s.first], s.collapsed[s.second] = true, false
	case b == 0:
		s.collapsed[s.first], s.collapsed[s.second] = false, true
	default:
		s.collapsed[s.first], s.collapsed[s.second] = false, false
		s.base = a * 100 / (a + b)
		s.shares = [2]float64{a, b}
	}
	return nil
}

// Base returns the expanded proportions regardless of collapse state,
// exactly as last applied by SetLayout or Nudge.
func (s *Split) Base() layout.Proportions {
	return layout.Proportions{s.first: s.shares[0], s.second: s.shares[1]}
}

// Nudge grows the first panel by delta percent, clamped to the split's
// bounds, and returns the new base proportions.
func (s *Split) Nudge(delta float64) layout.Proportions {
	s.base = math.Max(s.min, math.Min(s.max, s.base+delta))
	s.shares = [2]float64{s.base, 100 - s.base}
	return s.Base()
}

// Sizes divides total cells between the two panels.
func (s *Split) Sizes(total int) (first, second int) {
	if total <= 0 {
		return 0, 0
	}
	share := s.base
	switch {
	case s.collapsed[s.first]:
		share = 0
	case s.collapsed[s.second]:
		share = 100
	}
	first = int(math.Round(float64(total) * share / 100))
	first = max(0, min(total, first))
	return first, total - first
}

// Panel is one side of a Split.
type Panel struct {
	split *Split
	id    layout.PanelID
}

// ID returns the panel id.
func (p *Panel) ID() layout.PanelID { return p.id }

// IsCollapsed reports whether the panel is hidden.
func (p *Panel) IsCollapsed() bool { return p.split.collapsed[p.id] }

// Collapse hides the panel. The sibling must stay visible.
func (p *Panel) Collapse() error {
	if p.split.collapsed[p.sibling()] {
		return fmt.Errorf("%w: %s", ErrLastPanel, p.id)
	}
	p.split.collapsed[p.id] = true
	return nil
}

// Expand shows the panel at its base share.
func (p *Panel) Expand() error {
	p.split.collapsed[p.id] = false
	return nil
}

// Toggle flips the collapse state.
func (p *Panel) Toggle() error {
	if p.IsCollapsed() {
		return p.Expand()
	}
	return p.Collapse()
}

func (p *Panel) sibling() layout.PanelID {
	if p.id == p.split.first {
		return p.split.second
	}
	return p.split.first
}
