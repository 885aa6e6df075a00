package app

import (
	"github.com/zjrosen/lineage/internal/config"
	"github.com/zjrosen/lineage/internal/kvstore"
	"github.com/zjrosen/lineage/internal/layout"
	"github.com/zjrosen/lineage/internal/log"
	"github.com/zjrosen/lineage/internal/state"
	"github.com/zjrosen/lineage/internal/ui/panes"
)

// Share bounds for the first panel of each split, in percent.
const (
	minSidebarShare = 10
	maxSidebarShare = 50
	minListShare    = 15
	maxListShare    = 70
)

// initLayout builds both splits from saved proportions and the maximize
// coordinator over them.
func (m *Model) initLayout() {
	outer, inner := layout.DefaultOuter.Clone(), layout.DefaultInner.Clone()
	if m.kv != nil {
		outer = layout.LoadProportions(m.kv, layout.GroupOuter, layout.DefaultOuter)
		inner = layout.LoadProportions(m.kv, layout.GroupInner, layout.DefaultInner)
	}
	m.outer = panes.NewSplit(layout.PanelSidebar, layout.PanelContent, outer, minSidebarShare, maxSidebarShare)
	m.inner = panes.NewSplit(layout.PanelList, layout.PanelDiff, inner, minListShare, maxListShare)

	m.maximize = layout.NewCoordinator(
		[]layout.PanelID{layout.PanelSidebar, layout.PanelList},
		[]layout.GroupID{layout.GroupOuter, layout.GroupInner},
		m.lookupPanel,
		m.lookupGroup,
	)
}

func (m *Model) lookupPanel(id layout.PanelID) (layout.Collapsible, bool) {
	for _, s := range []*panes.Split{m.outer, m.inner} {
		if p, ok := s.Panel(id); ok {
			return p, true
		}
	}
	return nil, false
}

func (m *Model) lookupGroup(id layout.GroupID) (layout.Resizable, bool) {
	switch id {
	case layout.GroupOuter:
		return m.outer, true
	case layout.GroupInner:
		return m.inner, true
	}
	return nil, false
}

// restoreSession combines startup paths with the selection and view mode
// saved by the previous run.
func (m *Model) restoreSession(paths []string) state.Persisted {
	p := state.Persisted{RepoPaths: paths}
	if m.kv == nil {
		return p
	}
	if v, ok := m.get(kvstore.KeySelectedRepo); ok {
		p.SelectedRepoPath = v
	}
	if v, ok := m.get(kvstore.KeyViewMode); ok {
		p.ViewMode = state.ViewMode(v)
	}
	return p
}

func (m *Model) get(key string) (string, bool) {
	v, ok, err := m.kv.Get(key)
	if err != nil {
		log.ErrorErr(log.CatDB, "read session failed", err, "key", key)
		return "", false
	}
	return v, ok
}

// saveSession stores the selected repository and view mode.
func (m *Model) saveSession() {
	if m.kv == nil {
		return
	}
	p := m.store.Persisted()
	for key, value := range map[string]string{
		kvstore.KeySelectedRepo: p.SelectedRepoPath,
		kvstore.KeyViewMode:     string(p.ViewMode),
	} {
		if err := m.kv.Set(key, value); err != nil {
			log.ErrorErr(log.CatDB, "save session failed", err, "key", key)
		}
	}
}

// saveRepositories writes the sidebar list back to the config file.
func (m *Model) saveRepositories() {
	if m.configPath == "" {
		return
	}
	if err := config.SaveRepositories(m.configPath, m.store.Persisted().RepoPaths); err != nil {
		log.ErrorErr(log.CatConfig, "save repositories failed", err)
		m.setStatus(errorText(err), true)
	}
}
