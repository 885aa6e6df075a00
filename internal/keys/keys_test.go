package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Meta+Ctrl+Enter", "ctrl+meta+enter"},
		{"shift+ctrl+up", "ctrl+shift+up"},
		{"cmd+enter", "meta+enter"},
		{"alt+shift+x", "shift+alt+x"},
		{"enter", "enter"},
		{"Enter", "enter"},
		{"K", "K"},
		{"+", "+"},
		{"ctrl++", "ctrl++"},
		{" ", " "},
		{"|", "|"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_IsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		mods := rapid.SliceOf(rapid.SampledFrom([]string{"ctrl", "Shift", "ALT", "meta", "cmd"})).Draw(t, "mods")
		k := rapid.SampledFrom([]string{"a", "enter", "up", "|", "+", "pgdown"}).Draw(t, "key")

		spelled := ""
		for _, m := range mods {
			spelled += m + "+"
		}
		spelled += k

		once := Normalize(spelled)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize(%q) = %q, again = %q", spelled, once, twice)
		}
	})
}

func TestFromKeyMsg(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want Combo
	}{
		{"rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}}, Combo{Key: "m"}},
		{"alt rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}, Alt: true}, Combo{Alt: true, Key: "x"}},
		{"ctrl", tea.KeyMsg{Type: tea.KeyCtrlB}, Combo{Ctrl: true, Key: "b"}},
		{"shift arrow", tea.KeyMsg{Type: tea.KeyShiftUp}, Combo{Shift: true, Key: "up"}},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, Combo{Key: " "}},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, Combo{Key: "enter"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FromKeyMsg(tt.msg))
		})
	}
}

func TestTable_Resolve(t *testing.T) {
	table := NewTable(DefaultKeyMap())

	tests := []struct {
		name string
		msg  tea.KeyMsg
		want string
	}{
		{"up arrow", tea.KeyMsg{Type: tea.KeyUp}, string(CmdSelectPrev)},
		{"k", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}, string(CmdSelectPrev)},
		{"down arrow", tea.KeyMsg{Type: tea.KeyDown}, string(CmdSelectNext)},
		{"left", tea.KeyMsg{Type: tea.KeyLeft}, string(CmdFocusPrev)},
		{"right", tea.KeyMsg{Type: tea.KeyRight}, string(CmdFocusNext)},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, string(CmdActivate)},
		{"m maximizes", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}}, string(CmdToggleMaximize)},
		{"pipe", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'|'}}, string(CmdToggleDisplayMode)},
		{"shift+down", tea.KeyMsg{Type: tea.KeyShiftDown}, string(CmdExtendNext)},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, string(CmdToggleCommit)},
		{"ctrl+b", tea.KeyMsg{Type: tea.KeyCtrlB}, string(CmdToggleSidebar)},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, string(CmdQuit)},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, string(CmdCancel)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := table.Resolve(tt.msg, false)
			require.True(t, ok)
			require.Equal(t, tt.want, string(id))
		})
	}

	t.Run("unbound key", func(t *testing.T) {
		_, ok := table.Resolve(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}}, false)
		require.False(t, ok)
	})
}

func TestTable_ResolveWhileEditing(t *testing.T) {
	table := NewTable(DefaultKeyMap())

	for _, msg := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'j'}},
		{Type: tea.KeyEnter},
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
	} {
		_, ok := table.Resolve(msg, true)
		require.False(t, ok, "%s must not resolve while editing", msg.String())
	}
}

func TestTable_MaximizeAliases(t *testing.T) {
	table := NewTable(DefaultKeyMap())

	for _, spelled := range []string{"ctrl+enter", "Meta+Enter", "enter+meta", "m"} {
		id, ok := table.Lookup(spelled)
		if spelled == "enter+meta" {
			// Modifiers must precede the key.
			require.False(t, ok)
			continue
		}
		require.True(t, ok, spelled)
		require.Equal(t, CmdToggleMaximize, id, spelled)
	}
}

func TestNewTable_FirstBindingWins(t *testing.T) {
	km := DefaultKeyMap()
	km.Refresh = key.NewBinding(key.WithKeys("k"))

	table := NewTable(km)

	id, ok := table.Lookup("k")
	require.True(t, ok)
	require.Equal(t, CmdSelectPrev, id)
}

func TestKeyMap_HelpTextDefined(t *testing.T) {
	km := DefaultKeyMap()

	for _, e := range km.Entries() {
		t.Run(string(e.Command), func(t *testing.T) {
			help := e.Binding.Help()
			require.NotEmpty(t, help.Key)
			require.NotEmpty(t, help.Desc)
			require.NotEmpty(t, e.Binding.Keys())
		})
	}
}

func TestKeyMap_FullHelpCoversEveryEntry(t *testing.T) {
	km := DefaultKeyMap()
	rows := km.FullHelp()
	require.Len(t, HelpSections, len(rows))

	var n int
	for _, row := range rows {
		n += len(row)
	}
	require.Equal(t, len(km.Entries()), n)
}
