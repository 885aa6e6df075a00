// Package navlist turns select-next/prev/activate commands into a single
// selection over an ordered list of ids and keeps the selection scrolled
// into view.
package navlist

import "slices"

// Next returns the id after selected. An empty or unknown selection counts
// as index -1, so Next selects the first item. At the last item the
// selection does not wrap and ok is false.
func Next(ids []string, selected string) (id string, ok bool) {
	idx := slices.Index(ids, selected)
	if idx+1 >= len(ids) {
		return selected, false
	}
	return ids[idx+1], true
}

// Prev returns the id before selected, clamping at the first item.
func Prev(ids []string, selected string) (id string, ok bool) {
	idx := slices.Index(ids, selected)
	if idx <= 0 {
		return selected, false
	}
	return ids[idx-1], true
}

// Row is per-item metadata for rendering.
type Row struct {
	ID       string
	Index    int
	Selected bool
}

// Rows annotates ids with their selection state.
func Rows(ids []string, selected string) []Row {
	rows := make([]Row, len(ids))
	for i, id := range ids {
		rows[i] = Row{ID: id, Index: i, Selected: selected != "" && id == selected}
	}
	return rows
}

// Role is the semantic role of every navigable list: a single-selection
// listbox.
func Role() string { return "listbox" }

// List tracks the scroll window of a rendered list.
type List struct {
	offset int
	height int
}

// SetHeight sets the number of visible rows.
func (l *List) SetHeight(h int) {
	l.height = max(h, 0)
}

// Height returns the number of visible rows.
func (l *List) Height() int { return l.height }

// Offset returns the index of the first visible row.
func (l *List) Offset() int { return l.offset }

// EnsureVisible scrolls by the minimum amount that brings index into view.
// It does nothing when index is already visible.
func (l *List) EnsureVisible(index int) {
	if index < 0 || l.height <= 0 {
		return
	}
	if index < l.offset {
		l.offset = index
	} else if index >= l.offset+l.height {
		l.offset = index - l.height + 1
	}
}

// Clamp keeps the window inside a list of n items.
func (l *List) Clamp(n int) {
	l.offset = min(l.offset, max(n-l.height, 0))
	l.offset = max(l.offset, 0)
}

// Window returns the visible slice bounds [start, end) for n items.
func (l *List) Window(n int) (start, end int) {
	l.Clamp(n)
	if l.height <= 0 {
		return 0, n
	}
	return l.offset, min(l.offset+l.height, n)
}

// Follow scrolls to the selected id when it is present in ids.
func (l *List) Follow(ids []string, selected string) {
	if idx := slices.Index(ids, selected); idx >= 0 {
		l.EnsureVisible(idx)
	}
}
