// Package state holds the single source of truth for repository, commit,
// file, view mode and focus selection, and enforces the cascading
// invalidation rules between them.
package state

import (
	"slices"
	"time"
)

// ViewMode selects between browsing history and working-directory changes.
type ViewMode string

const (
	ViewHistory ViewMode = "history"
	ViewChanges ViewMode = "changes"
)

// Valid reports whether m is a known view mode.
func (m ViewMode) Valid() bool {
	return m == ViewHistory || m == ViewChanges
}

// Region is a named UI area that can hold keyboard focus.
type Region string

const (
	RegionNone    Region = ""
	RegionSidebar Region = "sidebar"
	RegionCommits Region = "commits"
	RegionFiles   Region = "files"
	RegionChanges Region = "changes"
	RegionDiff    Region = "diff"
)

var (
	historyRegions = []Region{RegionSidebar, RegionCommits, RegionFiles, RegionDiff}
	changesRegions = []Region{RegionSidebar, RegionChanges, RegionDiff}
)

// Regions returns the ordered focus cycle for mode. The result must not be
// modified.
func Regions(mode ViewMode) []Region {
	if mode == ViewChanges {
		return changesRegions
	}
	return historyRegions
}

// ValidRegion reports whether r can hold focus in mode.
func ValidRegion(mode ViewMode, r Region) bool {
	return slices.Contains(Regions(mode), r)
}

// Repository is a repository the user added to the sidebar.
type Repository struct {
	ID      string
	Path    string
	Name    string
	AddedAt time.Time
}

// State is the full selection state. Empty strings mean "nothing selected".
type State struct {
	Repositories      []Repository
	SelectedRepoID    string
	SelectedCommitID  string
	SelectedCommitIDs []string
	SelectedFilePath  string
	ViewMode          ViewMode
	FocusedRegion     Region
	DiffMaximized     bool
}

func initialState() State {
	return State{ViewMode: ViewHistory}
}

func (s State) clone() State {
	s.Repositories = slices.Clone(s.Repositories)
	s.SelectedCommitIDs = slices.Clone(s.SelectedCommitIDs)
	return s
}

// SelectedRepo returns the selected repository, if any.
func (s State) SelectedRepo() (Repository, bool) {
	for _, r := range s.Repositories {
		if r.ID == s.SelectedRepoID {
			return r, s.SelectedRepoID != ""
		}
	}
	return Repository{}, false
}

func (s State) indexOfRepo(id string) int {
	return slices.IndexFunc(s.Repositories, func(r Repository) bool { return r.ID == id })
}

func (s State) equal(o State) bool {
	return slices.Equal(s.Repositories, o.Repositories) &&
		s.SelectedRepoID == o.SelectedRepoID &&
		s.SelectedCommitID == o.SelectedCommitID &&
		slices.Equal(s.SelectedCommitIDs, o.SelectedCommitIDs) &&
		s.SelectedFilePath == o.SelectedFilePath &&
		s.ViewMode == o.ViewMode &&
		s.FocusedRegion == o.FocusedRegion &&
		s.DiffMaximized == o.DiffMaximized
}
