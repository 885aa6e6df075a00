package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/lineage/internal/keys"
	"github.com/zjrosen/lineage/internal/log"
	"github.com/zjrosen/lineage/internal/ui/markdown"
)

const maxHelpWidth = 72

// helpMarkdown lists every binding as one table per help section.
func helpMarkdown(km keys.KeyMap) string {
	var b strings.Builder
	b.WriteString("# Keyboard shortcuts\n\n")
	for i, row := range km.FullHelp() {
		if i < len(keys.HelpSections) {
			fmt.Fprintf(&b, "## %s\n\n", keys.HelpSections[i])
		}
		b.WriteString("| Key | Action |\n|---|---|\n")
		for _, k := range row {
			h := k.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", strings.ReplaceAll(h.Key, "|", `\|`), h.Desc)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderHelp returns the help text for the current width, rendering it
// again only when the width or theme changed.
func (m *Model) renderHelp() string {
	width := max(min(m.width-6, maxHelpWidth), 20)
	if m.helpText != "" && m.helpWidth == width {
		return m.helpText
	}

	style := m.cfg.UI.MarkdownStyle
	if style == "" {
		style = "light"
		if lipgloss.HasDarkBackground() {
			style = "dark"
		}
	}

	md := helpMarkdown(m.keymap)
	text := md
	r, err := markdown.New(width, style)
	if err == nil {
		text, err = r.Render(md)
	}
	if err != nil {
		log.ErrorErr(log.CatUI, "render help failed", err)
		text = md
	}
	m.helpText, m.helpWidth = strings.Trim(text, "\n"), width
	return m.helpText
}
