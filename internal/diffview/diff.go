// Package diffview turns the old and new text of a file into numbered diff
// lines and lays them out for unified or side-by-side display.
package diffview

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Kind classifies a diff line.
type Kind int

const (
	Context Kind = iota
	Add
	Delete
)

func (k Kind) String() string {
	switch k {
	case Add:
		return "add"
	case Delete:
		return "delete"
	default:
		return "context"
	}
}

// Marker is the single-character prefix used in unified output.
func (k Kind) Marker() string {
	switch k {
	case Add:
		return "+"
	case Delete:
		return "-"
	default:
		return " "
	}
}

// Line is one row of a line diff. OldNo and NewNo are 1-based; zero means
// the line does not exist on that side.
type Line struct {
	Kind  Kind
	OldNo int
	NewNo int
	Text  string
}

// Compute diffs old against new line by line. A nil side is treated as an
// absent file, so a nil old yields only additions and a nil new only
// deletions.
func Compute(old, new *string) []Line {
	var a, b string
	if old != nil {
		a = *old
	}
	if new != nil {
		b = *new
	}
	if a == "" && b == "" {
		return nil
	}

	dmp := diffmatchpatch.New()
	ca, cb, table := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), table)

	var (
		out          []Line
		oldNo, newNo int
	)
	for _, d := range diffs {
		for _, text := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				oldNo++
				newNo++
				out = append(out, Line{Kind: Context, OldNo: oldNo, NewNo: newNo, Text: text})
			case diffmatchpatch.DiffDelete:
				oldNo++
				out = append(out, Line{Kind: Delete, OldNo: oldNo, Text: text})
			case diffmatchpatch.DiffInsert:
				newNo++
				out = append(out, Line{Kind: Add, NewNo: newNo, Text: text})
			}
		}
	}
	return out
}

// Stats counts added and deleted lines.
func Stats(lines []Line) (additions, deletions int) {
	for _, l := range lines {
		switch l.Kind {
		case Add:
			additions++
		case Delete:
			deletions++
		}
	}
	return additions, deletions
}

// Changed reports whether lines contain any addition or deletion.
func Changed(lines []Line) bool {
	adds, dels := Stats(lines)
	return adds+dels > 0
}

// splitLines splits text on newlines, dropping the empty tail after a final
// newline and any carriage return before it.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\r")
	}
	return parts
}
