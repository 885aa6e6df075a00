// Package overlay draws modal content on top of an already rendered view.
package overlay

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Place centers fg over bg, which is padded to height rows of width cells.
// Styling on both layers is preserved.
func Place(width, height int, fg, bg string) string {
	fgWidth, fgHeight := size(fg)
	return PlaceAt(width, height, (width-fgWidth)/2, (height-fgHeight)/2, fg, bg)
}

// PlaceBottom centers fg horizontally, padY rows above the bottom edge.
func PlaceBottom(width, height, padY int, fg, bg string) string {
	fgWidth, fgHeight := size(fg)
	return PlaceAt(width, height, (width-fgWidth)/2, height-fgHeight-padY, fg, bg)
}

func size(s string) (w, h int) {
	lines := strings.Split(s, "\n")
	for _, l := range lines {
		w = max(w, ansi.StringWidth(l))
	}
	return w, len(lines)
}

// PlaceAt draws fg with its top-left corner at column x, row y of bg.
// Negative coordinates are clamped to zero.
func PlaceAt(width, height, x, y int, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < height {
		bgLines = append(bgLines, strings.Repeat(" ", width))
	}
	x, y = max(x, 0), max(y, 0)

	for i, fgLine := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bgLine := bgLines[row]

		left := ansi.Truncate(bgLine, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		var right string
		if end := x + ansi.StringWidth(fgLine); end < ansi.StringWidth(bgLine) {
			right = ansi.TruncateLeft(bgLine, end, "")
		}
		bgLines[row] = left + fgLine + right
	}
	return strings.Join(bgLines, "\n")
}
