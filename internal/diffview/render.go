package diffview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rivo/uniseg"
)

const (
	tabWidth        = 4
	ellipsis        = "…"
	sideGutterWidth = 5

	// minSplitWidth is the narrowest width that still fits two columns;
	// anything narrower renders unified.
	minSplitWidth = 2*(sideGutterWidth+12) + 1
)

// Styles colors rendered diff lines.
type Styles struct {
	Context    lipgloss.Style
	Add        lipgloss.Style
	Delete     lipgloss.Style
	AddWord    lipgloss.Style
	DeleteWord lipgloss.Style
	Gutter     lipgloss.Style
	Separator  lipgloss.Style
	Empty      lipgloss.Style
}

// DefaultStyles returns the built-in diff palette.
func DefaultStyles() Styles {
	add := lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#73F59F"}
	del := lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#FF8787"}
	muted := lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"}
	return Styles{
		Context:    lipgloss.NewStyle(),
		Add:        lipgloss.NewStyle().Foreground(add),
		Delete:     lipgloss.NewStyle().Foreground(del),
		AddWord:    lipgloss.NewStyle().Foreground(add).Bold(true).Underline(true),
		DeleteWord: lipgloss.NewStyle().Foreground(del).Bold(true).Strikethrough(true),
		Gutter:     lipgloss.NewStyle().Foreground(muted),
		Separator:  lipgloss.NewStyle().Foreground(muted),
		Empty:      lipgloss.NewStyle().Foreground(muted).Faint(true),
	}
}

// Render lays lines out in mode at the given width and returns one string
// per terminal row. Split mode falls back to unified when width is too
// narrow for two columns.
func Render(lines []Line, mode DisplayMode, width int, st Styles) []string {
	if width < 1 || len(lines) == 0 {
		return nil
	}
	rows := Pair(lines)
	if mode == Split && width >= minSplitWidth {
		return renderSplit(rows, width, st)
	}
	return renderUnified(lines, rows, width, st)
}

func renderUnified(lines []Line, rows []Row, width int, st Styles) []string {
	words := wordIndex(rows)
	// gutter: "old new " then the marker
	gutterWidth := 10
	textWidth := max(width-gutterWidth-1, 1)

	out := make([]string, 0, len(lines))
	for i := range lines {
		l := &lines[i]
		gutter := fmt.Sprintf("%4s %4s ", lineNo(l.OldNo), lineNo(l.NewNo))
		if gutterWidth >= width {
			out = append(out, ansi.Truncate(st.Gutter.Render(gutter), width, ""))
			continue
		}
		base, hi := st.forKind(l.Kind)
		body := base.Render(l.Kind.Marker()) + cell(l.Text, textWidth, base, hi, words[l])
		out = append(out, st.Gutter.Render(gutter)+body)
	}
	return out
}

func renderSplit(rows []Row, width int, st Styles) []string {
	sideWidth := (width - 1) / 2
	textWidth := sideWidth - sideGutterWidth
	sep := st.Separator.Render("│")

	out := make([]string, 0, len(rows))
	for _, r := range rows {
		var oldSegs, newSegs []Segment
		if r.Replaced() {
			oldSegs, newSegs = WordDiff(r.Left.Text, r.Right.Text)
		}
		left := side(r.Left, r.Left != nil && r.Left.Kind == Delete, true, oldSegs, textWidth, st)
		right := side(r.Right, r.Right != nil && r.Right.Kind == Add, false, newSegs, textWidth, st)
		out = append(out, left+sep+right)
	}
	return out
}

func side(l *Line, changed, old bool, segs []Segment, textWidth int, st Styles) string {
	if l == nil {
		return st.Empty.Render(strings.Repeat(" ", sideGutterWidth+textWidth))
	}
	no := l.NewNo
	if old {
		no = l.OldNo
	}
	kind := Context
	if changed {
		kind = l.Kind
	}
	base, hi := st.forKind(kind)
	return st.Gutter.Render(fmt.Sprintf("%4s ", lineNo(no))) + cell(l.Text, textWidth, base, hi, segs)
}

func (st Styles) forKind(k Kind) (base, hi lipgloss.Style) {
	switch k {
	case Add:
		return st.Add, st.AddWord
	case Delete:
		return st.Delete, st.DeleteWord
	default:
		return st.Context, st.Context
	}
}

// cell renders text into exactly width columns, truncating with an
// ellipsis. When segs is set, changed segments use hi.
func cell(text string, width int, base, hi lipgloss.Style, segs []Segment) string {
	if width <= 0 {
		return ""
	}
	if segs == nil {
		t := ansi.Truncate(expandTabs(text), width, ellipsis)
		return base.Render(t + strings.Repeat(" ", max(width-uniseg.StringWidth(t), 0)))
	}

	var b strings.Builder
	for _, s := range segs {
		style := base
		if s.Changed {
			style = hi
		}
		b.WriteString(style.Render(expandTabs(s.Text)))
	}
	t := ansi.Truncate(b.String(), width, ellipsis)
	return t + base.Render(strings.Repeat(" ", max(width-ansi.StringWidth(t), 0)))
}

// wordIndex computes intra-line segments for every replaced pair.
func wordIndex(rows []Row) map[*Line][]Segment {
	idx := make(map[*Line][]Segment)
	for _, r := range rows {
		if !r.Replaced() {
			continue
		}
		o, n := WordDiff(r.Left.Text, r.Right.Text)
		if o != nil {
			idx[r.Left] = o
		}
		if n != nil {
			idx[r.Right] = n
		}
	}
	return idx
}

func lineNo(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
