package keys

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/lineage/internal/commandbus"
	"github.com/zjrosen/lineage/internal/log"
)

// Combo is a key plus its modifiers.
type Combo struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Meta  bool
	Key   string
}

// String renders the combo with modifiers in ctrl, shift, alt, meta order.
func (c Combo) String() string {
	var b strings.Builder
	if c.Ctrl {
		b.WriteString("ctrl+")
	}
	if c.Shift {
		b.WriteString("shift+")
	}
	if c.Alt {
		b.WriteString("alt+")
	}
	if c.Meta {
		b.WriteString("meta+")
	}
	b.WriteString(c.Key)
	return b.String()
}

// Parse reads a spelled combo like "Meta+Ctrl+Enter". Modifier names are
// case-insensitive and may appear in any order; "cmd" and "option" are
// accepted as meta and alt.
func Parse(s string) Combo {
	var c Combo
	rest := s
	for {
		i := strings.IndexByte(rest, '+')
		// A lone or trailing "+" is the plus key itself.
		if i <= 0 || i == len(rest)-1 {
			break
		}
		switch strings.ToLower(rest[:i]) {
		case "ctrl", "control":
			c.Ctrl = true
		case "shift":
			c.Shift = true
		case "alt", "option":
			c.Alt = true
		case "meta", "cmd", "super":
			c.Meta = true
		default:
			c.Key = rest
			return c.normalizeKey()
		}
		rest = rest[i+1:]
	}
	c.Key = rest
	return c.normalizeKey()
}

// Named keys are lowercased; single characters keep their case.
func (c Combo) normalizeKey() Combo {
	if len([]rune(c.Key)) > 1 {
		c.Key = strings.ToLower(c.Key)
	}
	return c
}

// Normalize rewrites a spelled combo into canonical modifier order.
func Normalize(s string) string {
	return Parse(s).String()
}

// FromKeyMsg converts a Bubble Tea key event.
func FromKeyMsg(msg tea.KeyMsg) Combo {
	return Parse(msg.String())
}

// Table maps canonical combos to commands.
type Table map[string]commandbus.CommandID

// NewTable builds a table from the entries of km. Later entries do not
// override earlier ones.
func NewTable(km KeyMap) Table {
	t := make(Table)
	for _, e := range km.Entries() {
		for _, k := range e.Binding.Keys() {
			combo := Normalize(k)
			if prev, ok := t[combo]; ok {
				log.Warn(log.CatUI, "duplicate key binding", "key", combo, "kept", string(prev), "dropped", string(e.Command))
				continue
			}
			t[combo] = e.Command
		}
	}
	return t
}

// Lookup returns the command for a spelled combo.
func (t Table) Lookup(combo string) (commandbus.CommandID, bool) {
	id, ok := t[Normalize(combo)]
	return id, ok
}

// Resolve maps a key event to a command. Nothing resolves while a text
// field has focus so typing never triggers shortcuts.
func (t Table) Resolve(msg tea.KeyMsg, editing bool) (commandbus.CommandID, bool) {
	if editing {
		return "", false
	}
	id, ok := t[FromKeyMsg(msg).String()]
	return id, ok
}
