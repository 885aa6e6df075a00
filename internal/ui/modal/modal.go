// Package modal provides a confirm/cancel dialog.
package modal

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/lineage/internal/ui/styles"
)

// ButtonVariant controls the styling of the confirm button.
type ButtonVariant int

const (
	ButtonPrimary ButtonVariant = iota
	ButtonDanger                // destructive actions
)

// Config controls modal appearance.
type Config struct {
	Title        string
	Message      string
	ConfirmLabel string // default "Confirm"
	Variant      ButtonVariant
	MinWidth     int // default 40
}

// SubmitMsg is sent when the user confirms.
type SubmitMsg struct{}

// CancelMsg is sent when the user backs out.
type CancelMsg struct{}

// Field identifies the focused button.
type Field int

const (
	FieldConfirm Field = iota
	FieldCancel
)

// Model is the modal component state.
type Model struct {
	config  Config
	focused Field
}

func New(cfg Config) Model {
	if cfg.ConfirmLabel == "" {
		cfg.ConfirmLabel = "Confirm"
	}
	return Model{config: cfg}
}

// Update handles key presses. y and n answer directly; enter activates the
// focused button.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		m.focused = 1 - m.focused
	case "y":
		return m, submit
	case "n", "esc", "q":
		return m, cancel
	case "enter":
		if m.focused == FieldConfirm {
			return m, submit
		}
		return m, cancel
	}
	return m, nil
}

func submit() tea.Msg { return SubmitMsg{} }
func cancel() tea.Msg { return CancelMsg{} }

// Focused returns the focused button.
func (m Model) Focused() Field {
	return m.focused
}

// View renders the dialog box without placing it.
func (m Model) View() string {
	contentWidth := max(m.config.MinWidth, 40, lipgloss.Width(m.config.Title))
	boxWidth := contentWidth + 2

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.BorderFocusColor).
		PaddingLeft(1).
		Render(m.config.Title)
	divider := lipgloss.NewStyle().
		Foreground(styles.BorderDefaultColor).
		Render(strings.Repeat("─", boxWidth))

	var content strings.Builder
	if m.config.Message != "" {
		content.WriteString(lipgloss.NewStyle().
			Foreground(styles.TextPrimaryColor).
			Width(contentWidth).
			Render(m.config.Message))
		content.WriteString("\n\n")
	}
	content.WriteString(m.renderButtons())

	body := title + "\n" + divider + "\n" +
		lipgloss.NewStyle().Padding(1, 1).Render(content.String())

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderDefaultColor).
		Width(boxWidth).
		Render(body)
}

func (m Model) renderButtons() string {
	accent := styles.BorderFocusColor
	if m.config.Variant == ButtonDanger {
		accent = styles.StatusErrorColor
	}
	confirm := button(accent, m.focused == FieldConfirm).Render(m.config.ConfirmLabel)
	cancel := button(styles.TextMutedColor, m.focused == FieldCancel).Render("Cancel")
	return confirm + "  " + cancel
}

// button is filled when focused and outlined in text color otherwise.
func button(c lipgloss.AdaptiveColor, focused bool) lipgloss.Style {
	s := lipgloss.NewStyle().Padding(0, 2)
	if focused {
		return s.Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(c)
	}
	return s.Foreground(c)
}
