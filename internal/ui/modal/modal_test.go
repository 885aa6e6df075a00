package modal

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func answer(t *testing.T, m Model, keys ...string) tea.Msg {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = m.Update(key(k))
	}
	require.NotNil(t, cmd)
	return cmd()
}

func TestUpdate_Answers(t *testing.T) {
	m := New(Config{Title: "Remove repository"})

	tests := []struct {
		name string
		keys []string
		want tea.Msg
	}{
		{"enter confirms by default", []string{"enter"}, SubmitMsg{}},
		{"y confirms", []string{"y"}, SubmitMsg{}},
		{"tab then enter cancels", []string{"tab", "enter"}, CancelMsg{}},
		{"tab twice returns to confirm", []string{"tab", "tab", "enter"}, SubmitMsg{}},
		{"esc cancels", []string{"esc"}, CancelMsg{}},
		{"n cancels", []string{"n"}, CancelMsg{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, answer(t, m, tt.keys...))
		})
	}
}

func TestUpdate_IgnoresOtherInput(t *testing.T) {
	m := New(Config{})
	m, cmd := m.Update(key("z"))
	assert.Nil(t, cmd)
	assert.Equal(t, FieldConfirm, m.Focused())

	_, cmd = m.Update(tea.WindowSizeMsg{Width: 10})
	assert.Nil(t, cmd)
}

func TestView(t *testing.T) {
	m := New(Config{
		Title:        "Remove repository",
		Message:      "Remove alpha from the sidebar?",
		ConfirmLabel: "Remove",
		Variant:      ButtonDanger,
	})
	view := ansi.Strip(m.View())

	assert.Contains(t, view, "Remove repository")
	assert.Contains(t, view, "Remove alpha from the sidebar?")
	assert.Contains(t, view, "Remove")
	assert.Contains(t, view, "Cancel")
	assert.Contains(t, view, "╭")
}

func TestView_DefaultLabel(t *testing.T) {
	assert.Contains(t, ansi.Strip(New(Config{Title: "Sure?"}).View()), "Confirm")
}
