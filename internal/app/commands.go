package app

import (
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/lineage/internal/commandbus"
	"github.com/zjrosen/lineage/internal/flags"
	"github.com/zjrosen/lineage/internal/git"
	"github.com/zjrosen/lineage/internal/keys"
	"github.com/zjrosen/lineage/internal/kvstore"
	"github.com/zjrosen/lineage/internal/layout"
	"github.com/zjrosen/lineage/internal/log"
	"github.com/zjrosen/lineage/internal/navlist"
	"github.com/zjrosen/lineage/internal/state"
	"github.com/zjrosen/lineage/internal/ui/modal"
)

// Resize step for [ and ], in percent of the split's width.
const resizeStep = 4

// bindCommands subscribes every command the model handles. Lists receive
// navigation only while focused; everything else is global.
func (m *Model) bindCommands() {
	bus, store := m.bus, m.store
	selectedFile := func() string { return store.Snapshot().SelectedFilePath }
	global := func(id commandbus.CommandID, fn commandbus.Handler) func() {
		return commandbus.SubscribeGlobal(bus, id, fn)
	}
	inCommits := func(id commandbus.CommandID, fn commandbus.Handler) func() {
		return commandbus.SubscribeScoped(bus, store, state.RegionCommits, id, fn)
	}
	inDiff := func(id commandbus.CommandID, fn commandbus.Handler) func() {
		return commandbus.SubscribeScoped(bus, store, state.RegionDiff, id, fn)
	}

	m.subs.Add(
		navlist.Bind(bus, store, state.RegionSidebar, navlist.Source{
			IDs:        m.repoIDs,
			Selected:   func() string { return store.Snapshot().SelectedRepoID },
			OnSelect:   store.SelectRepo,
			OnActivate: store.FocusNextPanel,
		}),
		navlist.Bind(bus, store, state.RegionCommits, navlist.Source{
			IDs:        m.commitIDs,
			Selected:   func() string { return m.commitCursor },
			OnSelect:   m.moveCommitCursor,
			OnActivate: func() { store.SetFocusedRegion(state.RegionFiles) },
		}),
		navlist.Bind(bus, store, state.RegionFiles, navlist.Source{
			IDs:        m.fileIDs,
			Selected:   selectedFile,
			OnSelect:   store.SelectFile,
			OnActivate: func() { store.SetFocusedRegion(state.RegionDiff) },
		}),
		navlist.Bind(bus, store, state.RegionChanges, navlist.Source{
			IDs:        m.changeIDs,
			Selected:   selectedFile,
			OnSelect:   store.SelectFile,
			OnActivate: func() { store.SetFocusedRegion(state.RegionDiff) },
		}),

		inCommits(keys.CmdExtendPrev, func() { m.extendRange(-1) }),
		inCommits(keys.CmdExtendNext, func() { m.extendRange(1) }),
		inCommits(keys.CmdToggleCommit, m.toggleCommit),
		inDiff(keys.CmdSelectNext, func() { m.diff.ScrollDown(1) }),
		inDiff(keys.CmdSelectPrev, func() { m.diff.ScrollUp(1) }),

		global(keys.CmdFocusNext, store.FocusNextPanel),
		global(keys.CmdFocusPrev, store.FocusPrevPanel),
		global(keys.CmdToggleMaximize, store.ToggleDiffMaximized),
		global(keys.CmdToggleDisplayMode, func() { m.displayMode = m.displayMode.Toggle() }),
		global(keys.CmdDiffPageUp, func() { m.diff.ScrollUp(max(m.diff.Height, 1)) }),
		global(keys.CmdDiffPageDown, func() { m.diff.ScrollDown(max(m.diff.Height, 1)) }),
		global(keys.CmdToggleViewMode, m.toggleViewMode),
		global(keys.CmdAddRepo, m.openAddRepo),
		global(keys.CmdRemoveRepo, m.removeRepo),
		global(keys.CmdPickBranch, m.openBranchPicker),
		global(keys.CmdToggleSidebar, m.toggleSidebar),
		global(keys.CmdShrinkSidebar, func() { m.resize(-resizeStep) }),
		global(keys.CmdGrowSidebar, func() { m.resize(resizeStep) }),
		global(keys.CmdRefresh, m.refresh),
		global(keys.CmdToggleTheme, m.toggleTheme),
		global(keys.CmdHelp, func() { m.showHelp = true }),
		global(keys.CmdCancel, m.cancelAction),
		global(keys.CmdQuit, func() {
			m.quitting = true
			m.enqueue(tea.Quit)
		}),
	)
}

func (m *Model) repoIDs() []string {
	st := m.store.Snapshot()
	ids := make([]string, len(st.Repositories))
	for i, r := range st.Repositories {
		ids[i] = r.ID
	}
	return ids
}

func (m *Model) commitIDs() []string {
	list, _ := m.commits.Value()
	ids := make([]string, len(list))
	for i, c := range list {
		ids[i] = c.ID
	}
	return ids
}

func (m *Model) fileIDs() []string {
	list, _ := m.files.Value()
	return filePaths(list)
}

func (m *Model) changeIDs() []string {
	list, _ := m.changes.Value()
	return filePaths(list)
}

func filePaths(list []git.ChangedFile) []string {
	ids := make([]string, len(list))
	for i, f := range list {
		ids[i] = f.Path
	}
	return ids
}

// marking reports whether the selection is being built by hand: more than
// one commit selected, or one pinned with space. The cursor then moves
// without touching the selection.
func (m *Model) marking() bool {
	n := len(m.store.Snapshot().SelectedCommitIDs)
	return n > 1 || (n == 1 && m.pinned)
}

func (m *Model) moveCommitCursor(id string) {
	m.commitCursor = id
	if m.marking() {
		return
	}
	m.rangeAnchor, m.pinned = "", false
	m.store.SelectCommit(id)
}

// extendRange grows or shrinks a contiguous selection from the anchor to
// the cursor moved by step. Selections are kept in list order.
func (m *Model) extendRange(step int) {
	ids := m.commitIDs()
	cur := slices.Index(ids, m.commitCursor)
	if cur < 0 {
		return
	}
	next := cur + step
	if next < 0 || next >= len(ids) {
		return
	}

	if slices.Index(ids, m.rangeAnchor) < 0 {
		m.rangeAnchor = m.commitCursor
	}
	a := slices.Index(ids, m.rangeAnchor)
	lo, hi := min(a, next), max(a, next)
	m.commitCursor = ids[next]
	m.pinned = false
	m.store.SelectCommitRange(ids[lo : hi+1])
}

// toggleCommit marks or unmarks the cursor commit. When the cursor commit
// is the only one selected and not yet pinned, the first press pins it.
func (m *Model) toggleCommit() {
	if m.commitCursor == "" {
		return
	}
	m.rangeAnchor = ""
	sel := m.store.Snapshot().SelectedCommitIDs
	if !m.pinned && len(sel) == 1 && sel[0] == m.commitCursor {
		m.pinned = true
		return
	}
	m.pinned = true
	m.store.ToggleCommitSelection(m.commitCursor)
}

func (m *Model) toggleViewMode() {
	next := state.ViewChanges
	if m.store.Snapshot().ViewMode == state.ViewChanges {
		next = state.ViewHistory
	}
	m.store.SetViewMode(next)
}

func (m *Model) openAddRepo() {
	m.adding = true
	m.addErr = ""
	m.input.SetValue("")
	m.enqueue(m.input.Focus())
}

// removeRepo asks before dropping the selected repository.
func (m *Model) removeRepo() {
	repo, ok := m.store.Snapshot().SelectedRepo()
	if !ok {
		return
	}
	m.doomed = repo.ID
	if m.flags.Enabled(flags.FlagSkipRemoveConfirm) {
		m.confirmRemove()
		return
	}
	dlg := modal.New(modal.Config{
		Title:        "Remove repository",
		Message:      fmt.Sprintf("Remove %s from the sidebar? Nothing on disk is touched.", repo.Name),
		ConfirmLabel: "Remove",
		Variant:      modal.ButtonDanger,
	})
	m.confirm = &dlg
}

func (m *Model) confirmRemove() {
	id := m.doomed
	m.confirm, m.doomed = nil, ""
	var name string
	for _, r := range m.store.Snapshot().Repositories {
		if r.ID == id {
			name = r.Name
		}
	}
	if name == "" {
		return
	}
	m.store.RemoveRepo(id)
	m.saveRepositories()
	m.notify("Removed " + name)
}

// toggleSidebar collapses or restores the sidebar. Ignored while the diff
// is maximized, since restore would undo it.
func (m *Model) toggleSidebar() {
	if m.maximize.Maximized() {
		return
	}
	p, _ := m.outer.Panel(layout.PanelSidebar)
	if err := p.Toggle(); err != nil {
		log.Warn(log.CatLayout, "toggle sidebar", "error", err)
	}
}

// resize nudges the split that owns the focused panel and saves its base
// proportions.
func (m *Model) resize(delta float64) {
	if m.maximize.Maximized() {
		return
	}
	split, group := m.outer, layout.GroupOuter
	switch m.store.FocusedRegion() {
	case state.RegionCommits, state.RegionFiles, state.RegionChanges:
		split, group = m.inner, layout.GroupInner
	}
	p := split.Nudge(delta)
	if m.kv == nil {
		return
	}
	if err := layout.SaveProportions(m.kv, group, p); err != nil {
		log.ErrorErr(log.CatLayout, "save proportions failed", err)
	}
}

func (m *Model) refresh() {
	if m.flusher != nil {
		m.flusher.Flush(m.ctx)
	}
	m.refetch()
	m.notify("Refreshed")
}

func (m *Model) toggleTheme() {
	dark := !lipgloss.HasDarkBackground()
	lipgloss.SetHasDarkBackground(dark)
	m.diffDrawn = ""
	m.helpText = ""

	mode := "light"
	if dark {
		mode = "dark"
	}
	if m.kv == nil {
		return
	}
	if err := m.kv.Set(kvstore.KeyThemeMode, mode); err != nil {
		log.ErrorErr(log.CatDB, "save theme failed", err)
	}
}

// cancelAction backs out one level: maximize first, then a multi-commit
// selection, then the status line.
func (m *Model) cancelAction() {
	st := m.store.Snapshot()
	switch {
	case st.DiffMaximized:
		m.store.SetDiffMaximized(false)
	case m.marking() && m.commitCursor != "":
		m.rangeAnchor, m.pinned = "", false
		m.store.SelectCommit(m.commitCursor)
	default:
		m.setStatus("", false)
	}
}
