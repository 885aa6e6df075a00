package state

import (
	"slices"
	"sync"

	"github.com/zjrosen/lineage/internal/log"
)

// Store owns State and applies every mutation through the operations
// below. Listeners run synchronously after each effective change.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners []listener
	nextSeq   uint64
	clock     Clock
	newID     func() string
}

type listener struct {
	seq uint64
	fn  func(prev, next State)
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for Repository.AddedAt.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithIDGenerator sets the repository id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// NewStore creates a store in the initial state: no repositories, history
// mode, nothing focused.
func NewStore(opts ...Option) *Store {
	s := &Store{
		state: initialState(),
		clock: RealClock{},
		newID: NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// FocusedRegion returns the focused region, RegionNone if nothing is focused.
func (s *Store) FocusedRegion() Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.FocusedRegion
}

func (s *Store) update(op string, mutate func(st *State)) {
	s.mu.Lock()
	prev := s.state.clone()
	next := s.state.clone()
	mutate(&next)
	if prev.equal(next) {
		s.mu.Unlock()
		return
	}
	s.state = next
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	log.Debug(log.CatStore, op,
		"repo", next.SelectedRepoID,
		"commits", len(next.SelectedCommitIDs),
		"file", next.SelectedFilePath,
		"mode", next.ViewMode,
		"focus", next.FocusedRegion,
		"maximized", next.DiffMaximized)

	for _, l := range listeners {
		l.fn(prev, next.clone())
	}
}

func clearCommits(st *State) {
	st.SelectedCommitID = ""
	st.SelectedCommitIDs = nil
	st.SelectedFilePath = ""
}

func setCommitIDs(st *State, ids []string) {
	if len(ids) == 0 {
		st.SelectedCommitIDs = nil
		st.SelectedCommitID = ""
	} else {
		st.SelectedCommitIDs = ids
		st.SelectedCommitID = ids[0]
	}
	st.SelectedFilePath = ""
}

// AddRepo appends a repository for path and selects it. The raw path is
// the dedup key; adding a path twice is a no-op.
func (s *Store) AddRepo(path string) {
	if path == "" {
		return
	}
	s.update("add repo", func(st *State) {
		if slices.ContainsFunc(st.Repositories, func(r Repository) bool { return r.Path == path }) {
			return
		}
		repo := Repository{
			ID:      s.newID(),
			Path:    path,
			Name:    RepoName(path),
			AddedAt: s.clock.Now(),
		}
		st.Repositories = append(st.Repositories, repo)
		st.SelectedRepoID = repo.ID
		clearCommits(st)
	})
}

// RemoveRepo removes the repository with id. Removing the selected one
// selects the first remaining repository and clears commit and file
// selection.
func (s *Store) RemoveRepo(id string) {
	s.update("remove repo", func(st *State) {
		idx := st.indexOfRepo(id)
		if idx < 0 {
			return
		}
		st.Repositories = slices.Delete(st.Repositories, idx, idx+1)
		if st.SelectedRepoID != id {
			return
		}
		next := ""
		if len(st.Repositories) > 0 {
			next = st.Repositories[0].ID
		}
		if next != st.SelectedRepoID {
			st.SelectedRepoID = next
			clearCommits(st)
		}
	})
}

// SelectRepo selects id, or clears the selection for "". Unknown ids are
// ignored. Commit and file selection are always cleared.
func (s *Store) SelectRepo(id string) {
	s.update("select repo", func(st *State) {
		if id != "" && st.indexOfRepo(id) < 0 {
			return
		}
		st.SelectedRepoID = id
		clearCommits(st)
	})
}

// SelectCommit selects a single commit, or none for "".
func (s *Store) SelectCommit(id string) {
	s.update("select commit", func(st *State) {
		if id == "" {
			setCommitIDs(st, nil)
			return
		}
		setCommitIDs(st, []string{id})
	})
}

// SelectCommitRange replaces the commit selection with ids, deduplicated
// with first occurrence order kept.
func (s *Store) SelectCommitRange(ids []string) {
	s.update("select commit range", func(st *State) {
		setCommitIDs(st, dedupe(ids))
	})
}

// ToggleCommitSelection adds id to the selection or removes it if present.
func (s *Store) ToggleCommitSelection(id string) {
	if id == "" {
		return
	}
	s.update("toggle commit", func(st *State) {
		ids := slices.Clone(st.SelectedCommitIDs)
		if i := slices.Index(ids, id); i >= 0 {
			ids = slices.Delete(ids, i, i+1)
		} else {
			ids = append(ids, id)
		}
		setCommitIDs(st, ids)
	})
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// SelectFile sets the file selection only.
func (s *Store) SelectFile(path string) {
	s.update("select file", func(st *State) {
		st.SelectedFilePath = path
	})
}

// SetViewMode switches mode, clears the file and maximize flag and moves
// focus to the first region if the focused one does not exist in mode.
func (s *Store) SetViewMode(mode ViewMode) {
	if !mode.Valid() {
		return
	}
	s.update("set view mode", func(st *State) {
		st.ViewMode = mode
		st.SelectedFilePath = ""
		st.DiffMaximized = false
		if st.FocusedRegion != RegionNone && !ValidRegion(mode, st.FocusedRegion) {
			st.FocusedRegion = Regions(mode)[0]
		}
	})
}

// SetFocusedRegion focuses r, or clears focus for RegionNone. Regions not
// valid in the current mode are ignored.
func (s *Store) SetFocusedRegion(r Region) {
	s.update("set focus", func(st *State) {
		if r != RegionNone && !ValidRegion(st.ViewMode, r) {
			return
		}
		st.FocusedRegion = r
	})
}

// ToggleDiffMaximized flips the maximize flag.
func (s *Store) ToggleDiffMaximized() {
	s.update("toggle maximize", func(st *State) {
		st.DiffMaximized = !st.DiffMaximized
	})
}

// SetDiffMaximized sets the maximize flag.
func (s *Store) SetDiffMaximized(v bool) {
	s.update("set maximize", func(st *State) {
		st.DiffMaximized = v
	})
}

// FocusNextPanel advances focus cyclically; from no focus it goes to the
// first region.
func (s *Store) FocusNextPanel() {
	s.update("focus next", func(st *State) {
		st.FocusedRegion = cycle(Regions(st.ViewMode), st.FocusedRegion, 1)
	})
}

// FocusPrevPanel retreats focus cyclically; from no focus it goes to the
// last region.
func (s *Store) FocusPrevPanel() {
	s.update("focus prev", func(st *State) {
		st.FocusedRegion = cycle(Regions(st.ViewMode), st.FocusedRegion, -1)
	})
}

func cycle(regions []Region, current Region, step int) Region {
	n := len(regions)
	idx := slices.Index(regions, current)
	if idx < 0 {
		if step > 0 {
			return regions[0]
		}
		return regions[n-1]
	}
	return regions[((idx+step)%n+n)%n]
}

// ClearRepos resets repositories and every selection and maximize field.
func (s *Store) ClearRepos() {
	s.update("clear repos", func(st *State) {
		*st = initialState()
	})
}
