// Package toaster shows short-lived notices near the bottom of the screen.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/lineage/internal/ui/overlay"
	"github.com/zjrosen/lineage/internal/ui/styles"
)

// DefaultDuration is how long a notice stays up.
const DefaultDuration = 3 * time.Second

// Style determines the border color and marker of the toast.
type Style int

const (
	StyleSuccess Style = iota
	StyleError
	StyleInfo
)

// Model holds the toaster state. Each Show bumps a sequence number so a
// dismissal scheduled for an older toast leaves a newer one alone.
type Model struct {
	message string
	style   Style
	visible bool
	seq     int
}

func New() Model {
	return Model{}
}

// Show displays message and returns the command that dismisses it after d.
// A non-positive d keeps the toast until Hide.
func (m Model) Show(message string, style Style, d time.Duration) (Model, tea.Cmd) {
	m.seq++
	m.message = message
	m.style = style
	m.visible = message != ""
	if !m.visible || d <= 0 {
		return m, nil
	}
	seq := m.seq
	return m, tea.Tick(d, func(time.Time) tea.Msg {
		return DismissMsg{seq: seq}
	})
}

// Hide dismisses the toast.
func (m Model) Hide() Model {
	m.visible = false
	m.message = ""
	return m
}

// Update applies a dismissal if it belongs to the toast on screen.
func (m Model) Update(msg DismissMsg) Model {
	if msg.seq != m.seq {
		return m
	}
	return m.Hide()
}

func (m Model) Visible() bool   { return m.visible }
func (m Model) Message() string { return m.message }
func (m Model) Style() Style    { return m.style }

// View renders the toast box.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}

	box := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	var marker lipgloss.Style
	var glyph string
	switch m.style {
	case StyleError:
		box = box.BorderForeground(styles.StatusErrorColor)
		marker, glyph = lipgloss.NewStyle().Foreground(styles.StatusErrorColor), "✗"
	case StyleInfo:
		box = box.BorderForeground(styles.BorderFocusColor)
		marker, glyph = lipgloss.NewStyle().Foreground(styles.BorderFocusColor), "•"
	default:
		box = box.BorderForeground(styles.StatusSuccessColor)
		marker, glyph = lipgloss.NewStyle().Foreground(styles.StatusSuccessColor), "✓"
	}
	return box.Render(marker.Render(glyph) + " " + m.message)
}

// Overlay draws the toast over bg, centered one row above the bottom edge.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.visible || m.message == "" {
		return bg
	}
	return overlay.PlaceBottom(width, height, 1, m.View(), bg)
}

// DismissMsg hides the toast it was scheduled for.
type DismissMsg struct {
	seq int
}
