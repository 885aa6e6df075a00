package layout

import (
	"encoding/json"
	"fmt"

	"github.com/zjrosen/lineage/internal/log"
)

// Panel and group ids used by the application shell.
const (
	PanelSidebar PanelID = "sidebar"
	PanelContent PanelID = "content"
	PanelList    PanelID = "list"
	PanelDiff    PanelID = "diff"

	GroupOuter GroupID = "outer"
	GroupInner GroupID = "inner"
)

// DefaultOuter is sidebar versus everything else.
var DefaultOuter = Proportions{PanelSidebar: 22, PanelContent: 78}

// DefaultInner is list versus diff.
var DefaultInner = Proportions{PanelList: 35, PanelDiff: 65}

// KV is the durable store proportions are kept in.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// StorageKey returns the kv key for a group.
func StorageKey(group GroupID) string { return "layout." + string(group) }

// LoadProportions reads a group's saved proportions. Missing, unreadable or
// malformed entries yield a copy of defaults.
func LoadProportions(kv KV, group GroupID, defaults Proportions) Proportions {
	raw, ok, err := kv.Get(StorageKey(group))
	if err != nil {
		log.ErrorErr(log.CatLayout, "load proportions failed", err, "group", string(group))
		return defaults.Clone()
	}
	if !ok {
		return defaults.Clone()
	}

	var p Proportions
	if err := json.Unmarshal([]byte(raw), &p); err != nil || !valid(p, defaults) {
		log.Warn(log.CatLayout, "ignoring corrupt proportions", "group", string(group), "value", raw)
		return defaults.Clone()
	}
	return p
}

// SaveProportions persists a group's proportions as JSON.
func SaveProportions(kv KV, group GroupID, p Proportions) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding proportions: %w", err)
	}
	if err := kv.Set(StorageKey(group), string(data)); err != nil {
		return fmt.Errorf("saving proportions for %s: %w", group, err)
	}
	return nil
}

// valid requires the same panels as defaults with non-negative sizes.
func valid(p, defaults Proportions) bool {
	if len(p) != len(defaults) {
		return false
	}
	var total float64
	for id := range defaults {
		v, ok := p[id]
		if !ok || v < 0 {
			return false
		}
		total += v
	}
	return total > 0
}
