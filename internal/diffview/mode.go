package diffview

import "fmt"

// DisplayMode selects unified or side-by-side rendering.
type DisplayMode string

const (
	Unified DisplayMode = "unified"
	Split   DisplayMode = "split"
)

// Toggle returns the other display mode.
func (m DisplayMode) Toggle() DisplayMode {
	if m == Split {
		return Unified
	}
	return Split
}

func (m DisplayMode) String() string { return string(m) }

// ParseDisplayMode accepts "unified" or "split". An empty string means
// unified.
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch DisplayMode(s) {
	case "", Unified:
		return Unified, nil
	case Split:
		return Split, nil
	}
	return "", fmt.Errorf("unknown diff mode %q (want unified or split)", s)
}
