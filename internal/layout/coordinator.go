// Package layout restores panel arrangements around a maximized diff.
package layout

import (
	"maps"

	"github.com/zjrosen/lineage/internal/log"
)

// PanelID names a collapsible side panel.
type PanelID string

// GroupID names a resizable panel group.
type GroupID string

// Proportions maps each panel in a group to its share (percent).
type Proportions map[PanelID]float64

// Clone returns an independent copy.
func (p Proportions) Clone() Proportions {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// Collapsible is a panel that can be hidden without being destroyed.
type Collapsible interface {
	IsCollapsed() bool
	Collapse() error
	Expand() error
}

// Resizable is a group of panels whose proportions can be read and set.
type Resizable interface {
	Layout() (Proportions, error)
	SetLayout(Proportions) error
}

// PanelLookup returns the live handle for id. ok is false when the panel
// is not currently mounted.
type PanelLookup func(id PanelID) (Collapsible, bool)

// GroupLookup returns the live handle for id.
type GroupLookup func(id GroupID) (Resizable, bool)

type snapshot struct {
	collapsed map[PanelID]bool
	layouts   map[GroupID]Proportions
}

// Coordinator drives the maximize state machine. It is not safe for
// concurrent use; call it from the update loop.
type Coordinator struct {
	panels    []PanelID
	groups    []GroupID
	panel     PanelLookup
	group     GroupLookup
	maximized bool
	saved     *snapshot
}

// NewCoordinator wires a coordinator for the given side panels and groups.
func NewCoordinator(panels []PanelID, groups []GroupID, panel PanelLookup, group GroupLookup) *Coordinator {
	return &Coordinator{
		panels: append([]PanelID(nil), panels...),
		groups: append([]GroupID(nil), groups...),
		panel:  panel,
		group:  group,
	}
}

// Maximized reports the state after the last Sync.
func (c *Coordinator) Maximized() bool { return c.maximized }

// Sync moves to the requested state.
func (c *Coordinator) Sync(maximized bool) {
	if maximized {
		c.enter()
		return
	}
	if c.maximized || c.saved != nil {
		c.restore()
	}
}

func (c *Coordinator) enter() {
	c.maximized = true
	if c.saved == nil {
		c.saved = c.capture()
	}

	for _, id := range c.panels {
		p, ok := c.panel(id)
		if !ok || p.IsCollapsed() {
			continue
		}
		if err := p.Collapse(); err != nil {
			log.ErrorErr(log.CatLayout, "collapse failed", err, "panel", string(id))
		}
	}
}

func (c *Coordinator) capture() *snapshot {
	s := &snapshot{
		collapsed: make(map[PanelID]bool, len(c.panels)),
		layouts:   make(map[GroupID]Proportions, len(c.groups)),
	}
	for _, id := range c.panels {
		if p, ok := c.panel(id); ok {
			s.collapsed[id] = p.IsCollapsed()
		}
	}
	for _, id := range c.groups {
		g, ok := c.group(id)
		if !ok {
			continue
		}
		layout, err := g.Layout()
		if err != nil {
			log.ErrorErr(log.CatLayout, "read layout failed", err, "group", string(id))
			continue
		}
		s.layouts[id] = layout.Clone()
	}
	log.Debug(log.CatLayout, "snapshot captured", "panels", len(s.collapsed), "groups", len(s.layouts))
	return s
}

func (c *Coordinator) restore() {
	c.maximized = false
	s := c.saved
	c.saved = nil
	if s == nil {
		return
	}

	for _, id := range c.panels {
		wasCollapsed, known := s.collapsed[id]
		if !known || wasCollapsed {
			continue
		}
		p, ok := c.panel(id)
		if !ok || !p.IsCollapsed() {
			continue
		}
		if err := p.Expand(); err != nil {
			log.ErrorErr(log.CatLayout, "expand failed", err, "panel", string(id))
		}
	}

	// Expanding redistributes sizes; put back exactly what was captured.
	for _, id := range c.groups {
		layout, known := s.layouts[id]
		if !known {
			continue
		}
		g, ok := c.group(id)
		if !ok {
			continue
		}
		if err := g.SetLayout(layout.Clone()); err != nil {
			log.ErrorErr(log.CatLayout, "restore layout failed", err, "group", string(id))
		}
	}
	log.Debug(log.CatLayout, "snapshot restored")
}
