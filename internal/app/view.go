package app

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/lineage/internal/diffview"
	"github.com/zjrosen/lineage/internal/git"
	"github.com/zjrosen/lineage/internal/navlist"
	"github.com/zjrosen/lineage/internal/state"
	"github.com/zjrosen/lineage/internal/ui/overlay"
	"github.com/zjrosen/lineage/internal/ui/styles"
)

const (
	statusHeight = 1
	minPaneWidth = 8
)

// geometry is the outer size of every pane, borders included.
type geometry struct {
	sideW, listW, diffW int
	bodyH, topH, botH   int
}

// geometry derives pane sizes from the terminal size and both splits.
// Panels narrower than minPaneWidth give their width to the neighbor.
func (m *Model) geometry() geometry {
	g := geometry{bodyH: max(m.height-statusHeight, 4)}
	var contentW int
	g.sideW, contentW = m.outer.Sizes(m.width)
	if g.sideW < minPaneWidth {
		contentW += g.sideW
		g.sideW = 0
	}
	g.listW, g.diffW = m.inner.Sizes(contentW)
	if g.listW < minPaneWidth {
		g.diffW += g.listW
		g.listW = 0
	}
	g.topH = (g.bodyH + 1) / 2
	g.botH = g.bodyH - g.topH
	return g
}

// layoutPanes sizes the scroll windows and the diff viewport.
func (m *Model) layoutPanes() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	g := m.geometry()
	inner := func(n int) int { return max(n-2, 1) }

	m.repoList.SetHeight(inner(g.bodyH))
	m.commitList.SetHeight(inner(g.topH))
	m.fileList.SetHeight(inner(g.botH))
	m.changeList.SetHeight(inner(g.bodyH))
	m.diff.Width = inner(g.diffW)
	m.diff.Height = inner(g.bodyH)
	if m.picker != nil {
		m.picker.list.SetHeight(max(min(len(m.picker.branches), m.height-8), 1))
	}
}

// syncDiff recomputes diff lines when new contents arrive and re-renders
// them when the contents, display mode, width or theme changed. Scrolling
// resets only when a different file is shown.
func (m *Model) syncDiff() {
	key := m.contents.ValueKey()
	fc, _ := m.contents.Value()
	if key != m.diffLinesOf || !sameContents(fc, m.diffSource) {
		m.diffLines = nil
		if !fc.IsBinary {
			m.diffLines = diffview.Compute(fc.Old, fc.New)
		}
		if key != m.diffLinesOf {
			m.diff.GotoTop()
		}
		m.diffLinesOf, m.diffSource = key, fc
		m.diffDrawn = ""
	}

	drawn := fmt.Sprintf("%s|%s|%d|%t", key, m.displayMode, m.diff.Width, lipgloss.HasDarkBackground())
	if drawn == m.diffDrawn {
		return
	}
	m.diffDrawn = drawn
	rows := diffview.Render(m.diffLines, m.displayMode, m.diff.Width, styles.DiffStyles())
	m.diff.SetContent(strings.Join(rows, "\n"))
}

func sameContents(a, b git.FileContents) bool {
	eq := func(x, y *string) bool {
		if x == nil || y == nil {
			return x == y
		}
		return *x == *y
	}
	return a.IsBinary == b.IsBinary && eq(a.Old, b.Old) && eq(a.New, b.New)
}

// followSelection scrolls each list so its selection stays visible.
func (m *Model) followSelection() {
	st := m.store.Snapshot()
	m.repoList.Follow(m.repoIDs(), st.SelectedRepoID)
	m.commitList.Follow(m.commitIDs(), m.commitCursor)
	m.fileList.Follow(m.fileIDs(), st.SelectedFilePath)
	m.changeList.Follow(m.changeIDs(), st.SelectedFilePath)
	if m.picker != nil {
		m.picker.list.Follow(m.picker.names(), m.picker.selected)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting || m.width <= 0 || m.height <= 0 {
		return ""
	}
	st := m.store.Snapshot()
	g := m.geometry()

	var cols []string
	if g.sideW > 0 {
		cols = append(cols, m.mark(state.RegionSidebar, m.renderSidebar(st, g.sideW, g.bodyH)))
	}
	if g.listW > 0 {
		if st.ViewMode == state.ViewChanges {
			cols = append(cols, m.mark(state.RegionChanges, m.renderChanges(st, g.listW, g.bodyH)))
		} else {
			cols = append(cols, lipgloss.JoinVertical(lipgloss.Left,
				m.mark(state.RegionCommits, m.renderCommits(st, g.listW, g.topH)),
				m.mark(state.RegionFiles, m.renderFiles(st, g.listW, g.botH)),
			))
		}
	}
	if g.diffW > 0 {
		cols = append(cols, m.mark(state.RegionDiff, m.renderDiff(st, g.diffW, g.bodyH)))
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, cols...),
		m.renderStatus(st),
	)

	switch {
	case m.adding:
		view = overlay.Place(m.width, m.height, m.renderInput(), view)
	case m.picker != nil:
		view = overlay.Place(m.width, m.height, m.renderPicker(), view)
	case m.confirm != nil:
		view = overlay.Place(m.width, m.height, m.confirm.View(), view)
	case m.showHelp:
		view = overlay.Place(m.width, m.height, m.renderHelpPane(), view)
	}
	view = m.toast.Overlay(view, m.width, m.height)
	return m.zones.Scan(view)
}

func (m *Model) mark(r state.Region, s string) string {
	return m.zones.Mark(string(r), s)
}

// row renders one list row with the cursor indicator and selection
// highlight. text must already fit width-2 cells.
func row(text string, cursor bool, width int) string {
	if !cursor {
		return "  " + text
	}
	pad := max(width-2-lipgloss.Width(text), 0)
	return styles.SelectionIndicatorStyle.Render("›") + " " +
		styles.SelectedRowStyle.Render(text+strings.Repeat(" ", pad))
}

func muted(s string, width int) string {
	return styles.MutedStyle.Render(styles.Truncate(s, width))
}

func (m *Model) loading(what string) string {
	return m.spinner.View() + " " + styles.MutedStyle.Render("Loading "+what+"…")
}

func (m *Model) renderSidebar(st state.State, w, h int) string {
	innerW := max(w-2, 1)
	var lines []string
	if len(st.Repositories) == 0 {
		lines = append(lines, muted("No repositories.", innerW), muted("Press a to add one.", innerW))
	}

	ids := m.repoIDs()
	start, end := m.repoList.Window(len(ids))
	for i, r := range navlist.Rows(ids, st.SelectedRepoID)[start:end] {
		repo := st.Repositories[start+i]
		lines = append(lines, row(styles.Truncate(repo.Name, innerW-2), r.Selected, innerW))
	}

	return styles.BorderedPane(styles.PaneConfig{
		Content:    strings.Join(lines, "\n"),
		Width:      w,
		Height:     h,
		TopLeft:    "Repositories",
		TopRight:   countLabel(len(st.Repositories)),
		BottomLeft: m.branchLabel(st),
		Focused:    st.FocusedRegion == state.RegionSidebar,
	})
}

func (m *Model) branchLabel(st state.State) string {
	repo := repoPath(st)
	if repo == "" || m.branch.ValueKey() != repo {
		return ""
	}
	name, ok := m.branch.Value()
	if !ok {
		return ""
	}
	return "⎇ " + name
}

func countLabel(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprint(n)
}

func (m *Model) renderCommits(st state.State, w, h int) string {
	innerW := max(w-2, 1)
	list, _ := m.commits.Value()

	var body string
	switch {
	case repoPath(st) == "":
		body = muted("Select a repository.", innerW)
	case m.commits.ShowLoading():
		body = m.loading("commits")
	case m.commits.Err() != nil && !m.commits.HasValue():
		body = styles.ErrorStyle.Render(wrappedError(m.commits.Err(), innerW))
	case len(list) == 0:
		body = muted("No commits yet.", innerW)
	default:
		ids := m.commitIDs()
		start, end := m.commitList.Window(len(ids))
		now := m.now()
		var lines []string
		for i, r := range navlist.Rows(ids, m.commitCursor)[start:end] {
			c := list[start+i]
			marked := slices.Contains(st.SelectedCommitIDs, c.ID)
			lines = append(lines, row(commitText(c, marked, innerW-2, now), r.Selected, innerW))
		}
		body = strings.Join(lines, "\n")
	}

	right := countLabel(len(list))
	if n := len(st.SelectedCommitIDs); n > 1 {
		right = fmt.Sprintf("%d selected", n)
	}
	return styles.BorderedPane(styles.PaneConfig{
		Content:  body,
		Width:    w,
		Height:   h,
		TopLeft:  "Commits",
		TopRight: right,
		Focused:  st.FocusedRegion == state.RegionCommits,
	})
}

// commitText lays out "● abc1234 message  3h ago" within width cells.
func commitText(c git.Commit, marked bool, width int, now time.Time) string {
	dot := " "
	if marked {
		dot = styles.MarkedRowStyle.Render("●")
	}
	short := c.ID[:min(len(c.ID), 7)]
	age := styles.RelativeTime(c.Timestamp, now)

	msgW := width - 2 - len(short) - 1
	if msgW-len(age)-1 >= 12 {
		msgW -= len(age) + 1
	} else {
		age = ""
	}
	text := dot + " " + styles.CommitIDStyle.Render(short) + " " + styles.PadRight(c.Message, max(msgW, 0))
	if age != "" {
		text += " " + styles.MutedStyle.Render(age)
	}
	return text
}

func (m *Model) renderFiles(st state.State, w, h int) string {
	innerW := max(w-2, 1)
	list, _ := m.files.Value()

	var body string
	switch {
	case len(st.SelectedCommitIDs) == 0:
		body = muted("Select a commit.", innerW)
	case m.files.ShowLoading():
		body = m.loading("files")
	case m.files.Err() != nil && !m.files.HasValue():
		body = styles.ErrorStyle.Render(wrappedError(m.files.Err(), innerW))
	case len(list) == 0:
		body = muted("No files changed.", innerW)
	default:
		body = m.fileRows(list, &m.fileList, st.SelectedFilePath, innerW)
	}

	return styles.BorderedPane(styles.PaneConfig{
		Content:  body,
		Width:    w,
		Height:   h,
		TopLeft:  "Files",
		TopRight: countLabel(len(list)),
		Focused:  st.FocusedRegion == state.RegionFiles,
	})
}

func (m *Model) renderChanges(st state.State, w, h int) string {
	innerW := max(w-2, 1)
	list, _ := m.changes.Value()

	var body string
	switch {
	case repoPath(st) == "":
		body = muted("Select a repository.", innerW)
	case m.changes.ShowLoading():
		body = m.loading("changes")
	case m.changes.Err() != nil && !m.changes.HasValue():
		body = styles.ErrorStyle.Render(wrappedError(m.changes.Err(), innerW))
	case len(list) == 0:
		body = muted("Working tree clean.", innerW)
	default:
		body = m.fileRows(list, &m.changeList, st.SelectedFilePath, innerW)
	}

	var footer string
	if err := m.changes.Err(); err != nil && m.changes.HasValue() {
		footer = errorText(err)
	}
	return styles.BorderedPane(styles.PaneConfig{
		Content:    body,
		Width:      w,
		Height:     h,
		TopLeft:    "Working changes",
		TopRight:   countLabel(len(list)),
		BottomLeft: footer,
		Focused:    st.FocusedRegion == state.RegionChanges,
	})
}

func (m *Model) fileRows(list []git.ChangedFile, win *navlist.List, selected string, width int) string {
	ids := filePaths(list)
	start, end := win.Window(len(ids))
	var lines []string
	for i, r := range navlist.Rows(ids, selected)[start:end] {
		lines = append(lines, row(fileText(list[start+i], width-2), r.Selected, width))
	}
	return strings.Join(lines, "\n")
}

// fileText renders "M path", with "old → new" for renames and copies.
func fileText(f git.ChangedFile, width int) string {
	letter := statusLetter(f.Status)
	if st, ok := styles.FileStatusStyles[f.Status]; ok {
		letter = st.Render(letter)
	}
	path := f.Path
	if f.OldPath != "" && f.OldPath != f.Path {
		path = f.OldPath + " → " + f.Path
	}
	return letter + " " + styles.PadRight(path, max(width-2, 0))
}

func statusLetter(s git.FileStatus) string {
	switch s {
	case git.StatusAdded:
		return "A"
	case git.StatusModified:
		return "M"
	case git.StatusDeleted:
		return "D"
	case git.StatusRenamed:
		return "R"
	case git.StatusCopied:
		return "C"
	case git.StatusTypeChange:
		return "T"
	case git.StatusUntracked:
		return "?"
	}
	return " "
}

func (m *Model) renderDiff(st state.State, w, h int) string {
	innerW := max(w-2, 1)
	title := "Diff"
	var body, right, footer string

	switch {
	case st.SelectedFilePath == "":
		body = muted("Select a file to see its diff.", innerW)
	case m.contents.ShowLoading():
		body = m.loading("diff")
	case m.contents.Err() != nil && !m.contents.HasValue():
		body = styles.ErrorStyle.Render(wrappedError(m.contents.Err(), innerW))
	case m.contents.HasValue():
		fc, _ := m.contents.Value()
		switch {
		case fc.IsBinary:
			body = muted("Binary file not shown.", innerW)
		case !diffview.Changed(m.diffLines):
			body = muted("No changes.", innerW)
		default:
			body = m.diff.View()
			adds, dels := diffview.Stats(m.diffLines)
			right = fmt.Sprintf("+%d -%d", adds, dels)
		}
	}
	if st.SelectedFilePath != "" {
		title = st.SelectedFilePath
	}
	if err := m.contents.Err(); err != nil && m.contents.HasValue() {
		footer = errorText(err)
	}

	mode := m.displayMode.String()
	if st.DiffMaximized {
		mode += " · maximized"
	}
	return styles.BorderedPane(styles.PaneConfig{
		Content:     body,
		Width:       w,
		Height:      h,
		TopLeft:     title,
		TopRight:    right,
		BottomLeft:  footer,
		BottomRight: mode,
		Focused:     st.FocusedRegion == state.RegionDiff,
	})
}

// renderStatus is the one-line bar under the panes: status or selection
// summary on the left, hints and the latest debug log on the right.
func (m *Model) renderStatus(st state.State) string {
	var left string
	switch {
	case m.status != "" && m.statusErr:
		left = styles.ErrorStyle.Render(m.status)
	case m.status != "":
		left = m.status
	default:
		parts := []string{string(st.ViewMode)}
		if repo, ok := st.SelectedRepo(); ok {
			parts = append([]string{repo.Name}, parts...)
		}
		if n := len(st.SelectedCommitIDs); n > 1 {
			parts = append(parts, fmt.Sprintf("%d commits · esc to clear", n))
		}
		left = strings.Join(parts, " · ")
	}

	var right []string
	if m.lastLog != "" {
		right = append(right, m.lastLog)
	}
	if m.cfg.UI.ShowHelpHint {
		right = append(right, "? help")
	}
	r := styles.MutedStyle.Render(strings.Join(right, "  "))

	width := max(m.width-2, 1)
	left = styles.Truncate(left, max(width-lipgloss.Width(r)-1, 0))
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(r), 1)
	line := left + strings.Repeat(" ", gap) + r
	return styles.StatusBarStyle.Render(lipgloss.NewStyle().MaxWidth(width).Render(line))
}

func (m *Model) modalWidth(limit int) int {
	return max(min(limit, m.width-4), 20)
}

func (m *Model) renderInput() string {
	w := m.modalWidth(70)
	m.input.Width = max(w-6, 1)
	hint := styles.MutedStyle.Render("enter to add · esc to cancel")
	if m.addErr != "" {
		hint = styles.ErrorStyle.Render(wordwrap.String(m.addErr, w-2))
	}
	return styles.BorderedPane(styles.PaneConfig{
		Content: m.input.View() + "\n\n" + hint,
		Width:   w,
		Height:  5 + strings.Count(hint, "\n"),
		TopLeft: "Add repository",
		Focused: true,
	})
}

func (m *Model) renderPicker() string {
	p := m.picker
	w := m.modalWidth(50)
	innerW := w - 2

	var lines []string
	switch {
	case p.busy && len(p.branches) == 0:
		lines = append(lines, m.loading("branches"))
	case len(p.branches) == 0 && p.err == "":
		lines = append(lines, muted("No branches.", innerW))
	}
	names := p.names()
	start, end := p.list.Window(len(names))
	for i, r := range navlist.Rows(names, p.selected)[start:end] {
		b := p.branches[start+i]
		text := b.Name
		if b.IsCurrent {
			text += " (current)"
		}
		lines = append(lines, row(styles.Truncate(text, innerW-2), r.Selected, innerW))
	}
	if p.err != "" {
		lines = append(lines, "", styles.ErrorStyle.Render(wordwrap.String(p.err, innerW)))
	}

	footer := "enter to switch"
	if p.busy && len(p.branches) > 0 {
		footer = "switching…"
	}
	return styles.BorderedPane(styles.PaneConfig{
		Content:    strings.Join(lines, "\n"),
		Width:      w,
		Height:     strings.Count(strings.Join(lines, "\n"), "\n") + 3,
		TopLeft:    "Switch branch",
		BottomLeft: footer,
		Focused:    true,
	})
}

func (m *Model) renderHelpPane() string {
	text := m.renderHelp()
	lines := strings.Split(text, "\n")
	h := min(len(lines)+2, m.height-2)
	return styles.BorderedPane(styles.PaneConfig{
		Content:    strings.Join(lines[:min(len(lines), max(h-2, 0))], "\n"),
		Width:      min(m.width-2, lipgloss.Width(text)+2),
		Height:     h,
		TopLeft:    "Help",
		BottomLeft: "? or esc to close",
		Focused:    true,
	})
}
