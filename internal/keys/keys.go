// Package keys contains keybinding definitions and the key to command table.
package keys

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/zjrosen/lineage/internal/commandbus"
)

// Entry pairs a binding with the command it emits.
type Entry struct {
	Binding key.Binding
	Command commandbus.CommandID
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	// Navigation
	Up        key.Binding
	Down      key.Binding
	FocusPrev key.Binding
	FocusNext key.Binding
	Activate  key.Binding

	// Commits
	ExtendUp     key.Binding
	ExtendDown   key.Binding
	ToggleCommit key.Binding

	// Diff
	Maximize    key.Binding
	DisplayMode key.Binding
	PageUp      key.Binding
	PageDown    key.Binding

	// Repositories
	ViewMode   key.Binding
	AddRepo    key.Binding
	RemoveRepo key.Binding
	Branch     key.Binding
	Refresh    key.Binding

	// Layout
	Sidebar       key.Binding
	ShrinkSidebar key.Binding
	GrowSidebar   key.Binding

	// General
	Theme  key.Binding
	Help   key.Binding
	Escape key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous item"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next item"),
		),
		FocusPrev: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "previous panel"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "next panel"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),

		ExtendUp: key.NewBinding(
			key.WithKeys("shift+up"),
			key.WithHelp("shift+↑", "extend range up"),
		),
		ExtendDown: key.NewBinding(
			key.WithKeys("shift+down"),
			key.WithHelp("shift+↓", "extend range down"),
		),
		ToggleCommit: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pin / toggle commit"),
		),

		Maximize: key.NewBinding(
			key.WithKeys("ctrl+enter", "meta+enter", "m"),
			key.WithHelp("m", "maximize diff"),
		),
		DisplayMode: key.NewBinding(
			key.WithKeys("|"),
			key.WithHelp("|", "unified/split"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll diff up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll diff down"),
		),

		ViewMode: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "history/changes"),
		),
		AddRepo: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add repository"),
		),
		RemoveRepo: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove repository"),
		),
		Branch: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "switch branch"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),

		Sidebar: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "toggle sidebar"),
		),
		ShrinkSidebar: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "narrow sidebar"),
		),
		GrowSidebar: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "widen sidebar"),
		),

		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "light/dark theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close/cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Entries lists every binding with its command, in help order.
func (k KeyMap) Entries() []Entry {
	return []Entry{
		{k.Up, CmdSelectPrev},
		{k.Down, CmdSelectNext},
		{k.FocusPrev, CmdFocusPrev},
		{k.FocusNext, CmdFocusNext},
		{k.Activate, CmdActivate},
		{k.ExtendUp, CmdExtendPrev},
		{k.ExtendDown, CmdExtendNext},
		{k.ToggleCommit, CmdToggleCommit},
		{k.Maximize, CmdToggleMaximize},
		{k.DisplayMode, CmdToggleDisplayMode},
		{k.PageUp, CmdDiffPageUp},
		{k.PageDown, CmdDiffPageDown},
		{k.ViewMode, CmdToggleViewMode},
		{k.AddRepo, CmdAddRepo},
		{k.RemoveRepo, CmdRemoveRepo},
		{k.Branch, CmdPickBranch},
		{k.Refresh, CmdRefresh},
		{k.Sidebar, CmdToggleSidebar},
		{k.ShrinkSidebar, CmdShrinkSidebar},
		{k.GrowSidebar, CmdGrowSidebar},
		{k.Theme, CmdToggleTheme},
		{k.Help, CmdHelp},
		{k.Escape, CmdCancel},
		{k.Quit, CmdQuit},
	}
}

// ShortHelp returns keybindings for the status line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.FocusNext, k.Maximize, k.ViewMode, k.Help, k.Quit}
}

// FullHelp returns keybindings for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.FocusPrev, k.FocusNext, k.Activate},       // Navigation
		{k.ExtendUp, k.ExtendDown, k.ToggleCommit},                 // Commits
		{k.Maximize, k.DisplayMode, k.PageUp, k.PageDown},          // Diff
		{k.ViewMode, k.AddRepo, k.RemoveRepo, k.Branch, k.Refresh}, // Repositories
		{k.Sidebar, k.ShrinkSidebar, k.GrowSidebar},                // Layout
		{k.Theme, k.Help, k.Escape, k.Quit},                        // General
	}
}

// HelpSections names the FullHelp rows.
var HelpSections = []string{"Navigation", "Commits", "Diff", "Repositories", "Layout", "General"}
