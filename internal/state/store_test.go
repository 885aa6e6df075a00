package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestStore() *Store {
	n := 0
	return NewStore(
		WithClock(fixedClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("repo-%d", n)
		}),
	)
}

func TestStore_AddRepo(t *testing.T) {
	s := newTestStore()

	s.AddRepo("/a/b/my-repo")
	s.AddRepo("/a/b/my-repo")
	s.AddRepo(`C:\Users\x\my-app`)

	st := s.Snapshot()
	require.Len(t, st.Repositories, 2, "duplicate path must be ignored")
	require.Equal(t, "my-repo", st.Repositories[0].Name)
	require.Equal(t, "my-app", st.Repositories[1].Name)
	require.Equal(t, "repo-2", st.SelectedRepoID, "newly added repository is auto-selected")
	require.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), st.Repositories[0].AddedAt)
}

func TestStore_AddRepoDedupUsesRawPath(t *testing.T) {
	s := newTestStore()

	s.AddRepo("/a/b/repo")
	s.AddRepo("/a/b/repo/")

	st := s.Snapshot()
	require.Len(t, st.Repositories, 2)
	require.Equal(t, st.Repositories[0].Name, st.Repositories[1].Name)
}

func TestStore_RemoveRepo(t *testing.T) {
	t.Run("removing selected selects first remaining and clears commits", func(t *testing.T) {
		s := newTestStore()
		s.AddRepo("/one")
		s.AddRepo("/two")
		s.SelectCommit("c1")
		s.SelectFile("main.go")

		s.RemoveRepo("repo-2")

		st := s.Snapshot()
		require.Equal(t, "repo-1", st.SelectedRepoID)
		require.Empty(t, st.SelectedCommitIDs)
		require.Empty(t, st.SelectedCommitID)
		require.Empty(t, st.SelectedFilePath)
	})

	t.Run("removing unselected keeps selection", func(t *testing.T) {
		s := newTestStore()
		s.AddRepo("/one")
		s.AddRepo("/two")
		s.SelectCommit("c1")

		s.RemoveRepo("repo-1")

		st := s.Snapshot()
		require.Equal(t, "repo-2", st.SelectedRepoID)
		require.Equal(t, "c1", st.SelectedCommitID)
	})

	t.Run("removing last repository clears selection", func(t *testing.T) {
		s := newTestStore()
		s.AddRepo("/one")
		s.RemoveRepo("repo-1")

		st := s.Snapshot()
		require.Empty(t, st.Repositories)
		require.Empty(t, st.SelectedRepoID)
	})

	t.Run("unknown id is ignored", func(t *testing.T) {
		s := newTestStore()
		s.AddRepo("/one")
		before := s.Snapshot()
		s.RemoveRepo("missing")
		require.Equal(t, before, s.Snapshot())
	})
}

func TestStore_SelectRepo(t *testing.T) {
	s := newTestStore()
	s.AddRepo("/one")
	s.AddRepo("/two")
	s.SelectCommit("c1")

	s.SelectRepo("nope")
	require.Equal(t, "repo-2", s.Snapshot().SelectedRepoID, "unknown id leaves state unchanged")
	require.Equal(t, "c1", s.Snapshot().SelectedCommitID)

	s.SelectRepo("repo-1")
	st := s.Snapshot()
	require.Equal(t, "repo-1", st.SelectedRepoID)
	require.Empty(t, st.SelectedCommitIDs)

	s.SelectRepo("")
	require.Empty(t, s.Snapshot().SelectedRepoID)
}

func TestStore_CommitSelection(t *testing.T) {
	s := newTestStore()

	s.SelectCommit("c1")
	s.SelectFile("a.go")
	st := s.Snapshot()
	require.Equal(t, "c1", st.SelectedCommitID)
	require.Equal(t, []string{"c1"}, st.SelectedCommitIDs)
	require.Equal(t, "a.go", st.SelectedFilePath)

	s.SelectCommitRange([]string{"c3", "c2", "c3", "c4"})
	st = s.Snapshot()
	require.Equal(t, []string{"c3", "c2", "c4"}, st.SelectedCommitIDs)
	require.Equal(t, "c3", st.SelectedCommitID)
	require.Empty(t, st.SelectedFilePath)

	s.ToggleCommitSelection("c3")
	st = s.Snapshot()
	require.Equal(t, []string{"c2", "c4"}, st.SelectedCommitIDs)
	require.Equal(t, "c2", st.SelectedCommitID)

	s.ToggleCommitSelection("c9")
	require.Equal(t, []string{"c2", "c4", "c9"}, s.Snapshot().SelectedCommitIDs)

	s.SelectCommitRange(nil)
	st = s.Snapshot()
	require.Empty(t, st.SelectedCommitIDs)
	require.Empty(t, st.SelectedCommitID)
}

func TestStore_SelectFileHasNoSideEffects(t *testing.T) {
	s := newTestStore()
	s.AddRepo("/r")
	s.SelectCommitRange([]string{"a", "b"})
	s.SetFocusedRegion(RegionFiles)
	before := s.Snapshot()

	s.SelectFile("x/y.go")

	after := s.Snapshot()
	before.SelectedFilePath = "x/y.go"
	require.Equal(t, before, after)
}

func TestStore_SetViewMode(t *testing.T) {
	t.Run("invalid focused region falls back to sidebar", func(t *testing.T) {
		s := newTestStore()
		s.SetFocusedRegion(RegionFiles)
		s.SetDiffMaximized(true)
		s.SelectFile("f.go")

		s.SetViewMode(ViewChanges)

		st := s.Snapshot()
		require.Equal(t, ViewChanges, st.ViewMode)
		require.Equal(t, RegionSidebar, st.FocusedRegion)
		require.False(t, st.DiffMaximized)
		require.Empty(t, st.SelectedFilePath)
	})

	t.Run("valid focused region is preserved", func(t *testing.T) {
		s := newTestStore()
		s.SetFocusedRegion(RegionDiff)
		s.SetViewMode(ViewChanges)
		require.Equal(t, RegionDiff, s.Snapshot().FocusedRegion)
	})

	t.Run("no focus stays unfocused", func(t *testing.T) {
		s := newTestStore()
		s.SetViewMode(ViewChanges)
		require.Equal(t, RegionNone, s.Snapshot().FocusedRegion)
	})

	t.Run("unknown mode ignored", func(t *testing.T) {
		s := newTestStore()
		s.SetViewMode("blame")
		require.Equal(t, ViewHistory, s.Snapshot().ViewMode)
	})
}

func TestStore_SetFocusedRegionRejectsRegionsOutsideMode(t *testing.T) {
	s := newTestStore()
	s.SetViewMode(ViewChanges)

	s.SetFocusedRegion(RegionCommits)
	require.Equal(t, RegionNone, s.FocusedRegion())

	s.SetFocusedRegion(RegionChanges)
	require.Equal(t, RegionChanges, s.FocusedRegion())
}

func TestStore_FocusCycling(t *testing.T) {
	t.Run("next from none starts at first", func(t *testing.T) {
		s := newTestStore()
		s.FocusNextPanel()
		require.Equal(t, RegionSidebar, s.FocusedRegion())
	})

	t.Run("prev from none starts at last", func(t *testing.T) {
		s := newTestStore()
		s.FocusPrevPanel()
		require.Equal(t, RegionDiff, s.FocusedRegion())
	})

	t.Run("history order wraps", func(t *testing.T) {
		s := newTestStore()
		var seen []Region
		for range 5 {
			s.FocusNextPanel()
			seen = append(seen, s.FocusedRegion())
		}
		require.Equal(t, []Region{RegionSidebar, RegionCommits, RegionFiles, RegionDiff, RegionSidebar}, seen)
	})

	t.Run("changes order skips files", func(t *testing.T) {
		s := newTestStore()
		s.SetViewMode(ViewChanges)
		s.SetFocusedRegion(RegionSidebar)
		s.FocusNextPanel()
		require.Equal(t, RegionChanges, s.FocusedRegion())
		s.FocusPrevPanel()
		s.FocusPrevPanel()
		require.Equal(t, RegionDiff, s.FocusedRegion())
	})
}

func TestStore_ClearRepos(t *testing.T) {
	s := newTestStore()
	s.AddRepo("/r")
	s.SelectCommit("c")
	s.SetDiffMaximized(true)

	s.ClearRepos()
	require.Equal(t, initialState(), s.Snapshot())
}

func TestStore_SubscribeAndWatch(t *testing.T) {
	s := newTestStore()

	var changes int
	unsub := s.Subscribe(func(prev, next State) { changes++ })

	var repoIDs []string
	unwatch := WatchValue(s, func(st State) string { return st.SelectedRepoID }, func(id string) {
		repoIDs = append(repoIDs, id)
	})

	s.AddRepo("/a")
	s.SelectFile("f")
	s.SelectFile("f") // no effective change, no notification
	s.AddRepo("/b")

	require.Equal(t, 3, changes)
	require.Equal(t, []string{"repo-1", "repo-2"}, repoIDs)

	unsub()
	unwatch()
	s.SelectRepo("repo-1")
	require.Equal(t, 3, changes)
	require.Len(t, repoIDs, 2)
}

func TestStore_ListenerMayMutateStore(t *testing.T) {
	s := newTestStore()
	s.Subscribe(func(prev, next State) {
		if next.ViewMode == ViewChanges && next.FocusedRegion == RegionNone {
			s.SetFocusedRegion(RegionChanges)
		}
	})

	s.SetViewMode(ViewChanges)
	require.Equal(t, RegionChanges, s.FocusedRegion())
}

func TestStore_PersistAndRestore(t *testing.T) {
	s := newTestStore()
	s.AddRepo("/a")
	s.AddRepo("/b")
	s.SelectRepo("repo-1")
	s.SetViewMode(ViewChanges)

	p := s.Persisted()
	require.Equal(t, Persisted{RepoPaths: []string{"/a", "/b"}, SelectedRepoPath: "/a", ViewMode: ViewChanges}, p)

	restored := newTestStore()
	restored.Restore(p)
	st := restored.Snapshot()
	require.Len(t, st.Repositories, 2)
	repo, ok := st.SelectedRepo()
	require.True(t, ok)
	require.Equal(t, "/a", repo.Path)
	require.Equal(t, ViewChanges, st.ViewMode)
}

func TestStore_RestoreWithStaleSelectionPicksFirst(t *testing.T) {
	s := newTestStore()
	s.Restore(Persisted{RepoPaths: []string{"/a", "/b"}, SelectedRepoPath: "/gone"})

	repo, ok := s.Snapshot().SelectedRepo()
	require.True(t, ok)
	require.Equal(t, "/a", repo.Path)
}
