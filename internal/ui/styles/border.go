package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// PaneConfig configures a bordered pane.
type PaneConfig struct {
	Content string
	Width   int // Total width including borders
	Height  int // Total height including borders

	TopLeft     string // Title embedded in the top border
	TopRight    string
	BottomLeft  string // Footer embedded in the bottom border
	BottomRight string

	Focused bool
}

// BorderedPane renders content inside a rounded border with titles embedded
// in the top and bottom edges:
//
//	╭─ Commits ──────── 12 ─╮
//	│ ...                   │
//	╰─ main ────────────────╯
func BorderedPane(cfg PaneConfig) string {
	color := BorderDefaultColor
	if cfg.Focused {
		color = BorderFocusColor
	}
	borderStyle := lipgloss.NewStyle().Foreground(color)
	titleStyle := lipgloss.NewStyle().Foreground(TextSecondaryColor)
	if cfg.Focused {
		titleStyle = titleStyle.Foreground(BorderFocusColor).Bold(true)
	}

	innerWidth := max(cfg.Width-2, 1)
	contentHeight := max(cfg.Height-2, 1)

	top := edge(borderTopLeft, borderTopRight, cfg.TopLeft, cfg.TopRight, innerWidth, borderStyle, titleStyle)
	bottom := edge(borderBottomLeft, borderBottomRight, cfg.BottomLeft, cfg.BottomRight, innerWidth, borderStyle, titleStyle)

	body := lipgloss.NewStyle().MaxWidth(innerWidth).Render(cfg.Content)
	contentLines := strings.Split(body, "\n")
	side := borderStyle.Render(borderVertical)

	var b strings.Builder
	b.WriteString(top)
	for i := range contentHeight {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		if w := lipgloss.Width(line); w < innerWidth {
			line += strings.Repeat(" ", innerWidth-w)
		}
		b.WriteString("\n")
		b.WriteString(side + line + side)
	}
	b.WriteString("\n")
	b.WriteString(bottom)
	return b.String()
}

// edge builds one horizontal border: corner, optional left and right titles
// separated by dashes, corner. The right title is dropped first when space
// runs out, then the left title is truncated.
func edge(leftCorner, rightCorner, leftTitle, rightTitle string, innerWidth int, borderStyle, titleStyle lipgloss.Style) string {
	plain := borderStyle.Render(leftCorner + strings.Repeat(borderHorizontal, innerWidth) + rightCorner)
	if leftTitle == "" && rightTitle == "" {
		return plain
	}

	leftW := lipgloss.Width(leftTitle)
	rightW := lipgloss.Width(rightTitle)

	// "─ left ─…─ right ─"
	need := 1
	if leftTitle != "" {
		need += leftW + 3
	}
	if rightTitle != "" {
		need += rightW + 3
	}
	if need > innerWidth && rightTitle != "" {
		rightTitle, rightW = "", 0
		need = 1
		if leftTitle != "" {
			need += leftW + 3
		}
	}
	if leftTitle != "" && need > innerWidth {
		avail := innerWidth - 4
		if avail < 1 {
			return plain
		}
		leftTitle = Truncate(leftTitle, avail)
		leftW = lipgloss.Width(leftTitle)
	}
	if leftTitle == "" && rightTitle == "" {
		return plain
	}

	dashes := innerWidth
	if leftTitle != "" {
		dashes -= leftW + 3
	}
	if rightTitle != "" {
		dashes -= rightW + 3
	}
	dashes = max(dashes, 0)

	var b strings.Builder
	b.WriteString(borderStyle.Render(leftCorner))
	if leftTitle != "" {
		b.WriteString(borderStyle.Render(borderHorizontal + " "))
		b.WriteString(titleStyle.Render(leftTitle))
		b.WriteString(borderStyle.Render(" "))
	}
	b.WriteString(borderStyle.Render(strings.Repeat(borderHorizontal, dashes)))
	if rightTitle != "" {
		b.WriteString(borderStyle.Render(" "))
		b.WriteString(titleStyle.Render(rightTitle))
		b.WriteString(borderStyle.Render(" " + borderHorizontal))
	}
	b.WriteString(borderStyle.Render(rightCorner))
	return b.String()
}
