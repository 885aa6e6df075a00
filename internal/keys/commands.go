package keys

import (
	"github.com/zjrosen/lineage/internal/commandbus"
	"github.com/zjrosen/lineage/internal/navlist"
)

// Command ids emitted by the keyboard surface. List navigation ids live in
// navlist since every list controller subscribes to them.
const (
	CmdSelectPrev = navlist.CmdSelectPrev
	CmdSelectNext = navlist.CmdSelectNext
	CmdActivate   = navlist.CmdActivate

	CmdFocusNext commandbus.CommandID = "focus.next"
	CmdFocusPrev commandbus.CommandID = "focus.prev"

	CmdToggleMaximize    commandbus.CommandID = "view.toggleMaximize"
	CmdToggleViewMode    commandbus.CommandID = "view.toggleMode"
	CmdToggleDisplayMode commandbus.CommandID = "diff.toggleDisplayMode"
	CmdDiffPageUp        commandbus.CommandID = "diff.pageUp"
	CmdDiffPageDown      commandbus.CommandID = "diff.pageDown"

	CmdExtendPrev   commandbus.CommandID = "commits.extendPrev"
	CmdExtendNext   commandbus.CommandID = "commits.extendNext"
	CmdToggleCommit commandbus.CommandID = "commits.toggle"

	CmdAddRepo    commandbus.CommandID = "repo.add"
	CmdRemoveRepo commandbus.CommandID = "repo.remove"
	CmdPickBranch commandbus.CommandID = "branch.pick"

	CmdToggleSidebar commandbus.CommandID = "layout.toggleSidebar"
	CmdShrinkSidebar commandbus.CommandID = "layout.shrinkSidebar"
	CmdGrowSidebar   commandbus.CommandID = "layout.growSidebar"

	CmdRefresh     commandbus.CommandID = "app.refresh"
	CmdToggleTheme commandbus.CommandID = "app.toggleTheme"
	CmdHelp        commandbus.CommandID = "app.help"
	CmdQuit        commandbus.CommandID = "app.quit"
	CmdCancel      commandbus.CommandID = "app.cancel"
)
