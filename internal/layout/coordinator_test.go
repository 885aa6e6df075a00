package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type fakePanel struct {
	collapsed bool
	group     *fakeGroup
	id        PanelID
	failNext  error
	collapses int
	expands   int
}

func (p *fakePanel) IsCollapsed() bool { return p.collapsed }

func (p *fakePanel) Collapse() error {
	if p.failNext != nil {
		err := p.failNext
		p.failNext = nil
		return err
	}
	p.collapses++
	p.collapsed = true
	if p.group != nil {
		p.group.redistribute(p.id, 0)
	}
	return nil
}

func (p *fakePanel) Expand() error {
	p.expands++
	p.collapsed = false
	if p.group != nil {
		// Expanding gives the panel a fixed share, not its old one.
		p.group.redistribute(p.id, 50)
	}
	return nil
}

type fakeGroup struct {
	layout Proportions
	sets   int
}

func (g *fakeGroup) Layout() (Proportions, error) { return g.layout.Clone(), nil }

func (g *fakeGroup) SetLayout(p Proportions) error {
	g.sets++
	g.layout = p.Clone()
	return nil
}

// redistribute sets id to size and rescales the rest to fill 100.
func (g *fakeGroup) redistribute(id PanelID, size float64) {
	var rest float64
	for k, v := range g.layout {
		if k != id {
			rest += v
		}
	}
	for k, v := range g.layout {
		if k == id {
			continue
		}
		if rest == 0 {
			g.layout[k] = 100 - size
			continue
		}
		g.layout[k] = v / rest * (100 - size)
	}
	g.layout[id] = size
}

type fixture struct {
	outer, inner  *fakeGroup
	sidebar, list *fakePanel
	listMounted   bool
	c             *Coordinator
}

func newFixture() *fixture {
	f := &fixture{
		outer:       &fakeGroup{layout: Proportions{PanelSidebar: 22, PanelContent: 78}},
		inner:       &fakeGroup{layout: Proportions{PanelList: 35, PanelDiff: 65}},
		listMounted: true,
	}
	f.sidebar = &fakePanel{id: PanelSidebar, group: f.outer}
	f.list = &fakePanel{id: PanelList, group: f.inner}
	f.c = NewCoordinator(
		[]PanelID{PanelSidebar, PanelList},
		[]GroupID{GroupOuter, GroupInner},
		func(id PanelID) (Collapsible, bool) {
			switch id {
			case PanelSidebar:
				return f.sidebar, true
			case PanelList:
				if !f.listMounted {
					return nil, false
				}
				return f.list, true
			}
			return nil, false
		},
		func(id GroupID) (Resizable, bool) {
			switch id {
			case GroupOuter:
				return f.outer, true
			case GroupInner:
				return f.inner, true
			}
			return nil, false
		},
	)
	return f
}

func TestCoordinator_MaximizeAndRestore(t *testing.T) {
	f := newFixture()

	f.c.Sync(true)
	require.True(t, f.c.Maximized())
	require.True(t, f.sidebar.IsCollapsed())
	require.True(t, f.list.IsCollapsed())

	f.c.Sync(false)
	require.False(t, f.c.Maximized())
	require.False(t, f.sidebar.IsCollapsed())
	require.False(t, f.list.IsCollapsed())
	require.Equal(t, Proportions{PanelSidebar: 22, PanelContent: 78}, f.outer.layout)
	require.Equal(t, Proportions{PanelList: 35, PanelDiff: 65}, f.inner.layout)
}

func TestCoordinator_RestoreKeepsUserCollapsedPanel(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.sidebar.Collapse())
	before := f.outer.layout.Clone()

	f.c.Sync(true)
	require.Equal(t, 0, f.sidebar.expands)
	f.c.Sync(false)

	require.True(t, f.sidebar.IsCollapsed(), "panel collapsed before maximize stays collapsed")
	require.Equal(t, 0, f.sidebar.expands)
	require.Equal(t, before, f.outer.layout)
}

func TestCoordinator_EnterIsIdempotent(t *testing.T) {
	f := newFixture()

	f.c.Sync(true)
	// Layout drift while maximized must not leak into the snapshot.
	f.inner.layout = Proportions{PanelList: 0, PanelDiff: 100}
	f.c.Sync(true)

	require.Equal(t, 1, f.sidebar.collapses)
	f.c.Sync(false)
	require.Equal(t, Proportions{PanelList: 35, PanelDiff: 65}, f.inner.layout)
}

func TestCoordinator_RestoreWithoutMaximizeIsNoop(t *testing.T) {
	f := newFixture()

	f.c.Sync(false)

	require.Equal(t, 0, f.outer.sets)
	require.Equal(t, 0, f.sidebar.expands)
}

func TestCoordinator_AbsentPanelIsSkipped(t *testing.T) {
	f := newFixture()
	f.listMounted = false

	f.c.Sync(true)
	require.True(t, f.sidebar.IsCollapsed())
	require.False(t, f.list.IsCollapsed())

	f.listMounted = true
	f.c.Sync(false)
	require.False(t, f.sidebar.IsCollapsed())
	require.Equal(t, 0, f.list.expands, "panel unknown at capture is left alone")
}

func TestCoordinator_HandleErrorsAreIgnored(t *testing.T) {
	f := newFixture()
	f.sidebar.failNext = errors.New("detached")

	require.NotPanics(t, func() { f.c.Sync(true) })
	require.False(t, f.sidebar.IsCollapsed())
	require.True(t, f.list.IsCollapsed())

	f.c.Sync(false)
	require.False(t, f.list.IsCollapsed())
}

// Any sequence of toggles ending un-maximized returns to the layout seen
// before the first maximize.
func TestCoordinator_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := newFixture()
		if rapid.Bool().Draw(t, "sidebarCollapsed") {
			_ = f.sidebar.Collapse()
		}
		outer := f.outer.layout.Clone()
		inner := f.inner.layout.Clone()
		sidebar := f.sidebar.IsCollapsed()

		steps := rapid.SliceOfN(rapid.Bool(), 1, 10).Draw(t, "steps")
		for _, s := range steps {
			f.c.Sync(s)
		}
		f.c.Sync(false)

		if f.sidebar.IsCollapsed() != sidebar {
			t.Fatalf("sidebar collapsed = %v, want %v", f.sidebar.IsCollapsed(), sidebar)
		}
		if f.list.IsCollapsed() {
			t.Fatalf("list left collapsed")
		}
		for k, v := range outer {
			if f.outer.layout[k] != v {
				t.Fatalf("outer[%s] = %v, want %v", k, f.outer.layout[k], v)
			}
		}
		for k, v := range inner {
			if f.inner.layout[k] != v {
				t.Fatalf("inner[%s] = %v, want %v", k, f.inner.layout[k], v)
			}
		}
	})
}
