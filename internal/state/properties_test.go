package state

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

// checkInvariants asserts the invariants that must hold after any sequence
// of public operations.
func checkInvariants(t *rapid.T, st State) {
	paths := make(map[string]bool)
	ids := make(map[string]bool)
	for _, r := range st.Repositories {
		if paths[r.Path] {
			t.Fatalf("duplicate repository path %q", r.Path)
		}
		paths[r.Path] = true
		ids[r.ID] = true
	}

	if st.SelectedRepoID != "" && !ids[st.SelectedRepoID] {
		t.Fatalf("selected repo %q is not in the repository list", st.SelectedRepoID)
	}

	if len(st.SelectedCommitIDs) == 0 {
		if st.SelectedCommitID != "" {
			t.Fatalf("selectedCommitId %q with empty selection list", st.SelectedCommitID)
		}
	} else if st.SelectedCommitID != st.SelectedCommitIDs[0] {
		t.Fatalf("selectedCommitId %q != selectedCommitIds[0] %q", st.SelectedCommitID, st.SelectedCommitIDs[0])
	}

	seen := make(map[string]bool)
	for _, id := range st.SelectedCommitIDs {
		if seen[id] {
			t.Fatalf("duplicate commit id %q in selection", id)
		}
		seen[id] = true
	}

	if st.FocusedRegion != RegionNone && !ValidRegion(st.ViewMode, st.FocusedRegion) {
		t.Fatalf("focused region %q invalid in mode %q", st.FocusedRegion, st.ViewMode)
	}
}

func TestStore_InvariantsHoldUnderRandomOperations(t *testing.T) {
	paths := []string{"/a/x", "/a/y", `C:\r\z`, "/a/x/", "/b"}
	commits := []string{"c1", "c2", "c3", "c4"}
	regions := []Region{RegionNone, RegionSidebar, RegionCommits, RegionFiles, RegionChanges, RegionDiff}

	rapid.Check(t, func(t *rapid.T) {
		s := NewStore()
		steps := rapid.IntRange(1, 60).Draw(t, "steps")

		for i := range steps {
			op := rapid.IntRange(0, 13).Draw(t, fmt.Sprintf("op-%d", i))
			st := s.Snapshot()
			ignored := false
			pickRepoID := func() string {
				if len(st.Repositories) == 0 {
					return rapid.SampledFrom([]string{"", "ghost"}).Draw(t, fmt.Sprintf("repo-%d", i))
				}
				idx := rapid.IntRange(0, len(st.Repositories)).Draw(t, fmt.Sprintf("repo-%d", i))
				if idx == len(st.Repositories) {
					return "ghost"
				}
				return st.Repositories[idx].ID
			}

			switch op {
			case 0:
				s.AddRepo(rapid.SampledFrom(paths).Draw(t, fmt.Sprintf("path-%d", i)))
			case 1:
				s.RemoveRepo(pickRepoID())
			case 2:
				id := pickRepoID()
				// Unknown ids are silently ignored and leave state untouched.
				ignored = id == "ghost"
				s.SelectRepo(id)
			case 3:
				s.SelectCommit(rapid.SampledFrom(append([]string{""}, commits...)).Draw(t, fmt.Sprintf("commit-%d", i)))
			case 4:
				s.SelectCommitRange(rapid.SliceOf(rapid.SampledFrom(commits)).Draw(t, fmt.Sprintf("range-%d", i)))
			case 5:
				s.ToggleCommitSelection(rapid.SampledFrom(commits).Draw(t, fmt.Sprintf("toggle-%d", i)))
			case 6:
				s.SelectFile(rapid.SampledFrom([]string{"", "a.go", "b/c.go"}).Draw(t, fmt.Sprintf("file-%d", i)))
			case 7:
				s.SetViewMode(rapid.SampledFrom([]ViewMode{ViewHistory, ViewChanges}).Draw(t, fmt.Sprintf("mode-%d", i)))
			case 8:
				s.SetFocusedRegion(rapid.SampledFrom(regions).Draw(t, fmt.Sprintf("region-%d", i)))
			case 9:
				s.FocusNextPanel()
			case 10:
				s.FocusPrevPanel()
			case 11:
				s.ToggleDiffMaximized()
			case 12:
				s.SetDiffMaximized(rapid.Bool().Draw(t, fmt.Sprintf("max-%d", i)))
			case 13:
				s.ClearRepos()
			}

			after := s.Snapshot()
			checkInvariants(t, after)

			switch op {
			case 2, 3, 4:
				if !ignored && after.SelectedFilePath != "" {
					t.Fatalf("op %d left file selection %q", op, after.SelectedFilePath)
				}
			}
		}
	})
}

func TestStore_FocusCycleReturnsToStart(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewStore()
		mode := rapid.SampledFrom([]ViewMode{ViewHistory, ViewChanges}).Draw(t, "mode")
		s.SetViewMode(mode)
		regions := Regions(mode)
		start := rapid.SampledFrom(regions).Draw(t, "start")
		s.SetFocusedRegion(start)
		forward := rapid.Bool().Draw(t, "forward")

		for range regions {
			if forward {
				s.FocusNextPanel()
			} else {
				s.FocusPrevPanel()
			}
		}

		if got := s.FocusedRegion(); got != start {
			t.Fatalf("after %d steps focus is %q, want %q", len(regions), got, start)
		}
	})
}
