package app

import (
	"context"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/lineage/internal/fetch"
	"github.com/zjrosen/lineage/internal/git"
	"github.com/zjrosen/lineage/internal/log"
	"github.com/zjrosen/lineage/internal/state"
)

// query is the slice of state one fetch site depends on.
type query struct {
	Mode state.ViewMode
	Repo string
	IDs  []string
	Path string
}

func (q query) equal(o query) bool {
	return q.Mode == o.Mode && q.Repo == o.Repo && q.Path == o.Path && slices.Equal(q.IDs, o.IDs)
}

// joinKey builds a site key. Parts never contain NUL.
func joinKey(parts ...string) string {
	return strings.Join(parts, "\x00")
}

func repoPath(s state.State) string {
	r, _ := s.SelectedRepo()
	return r.Path
}

func filesQuery(s state.State) query {
	return query{Repo: repoPath(s), IDs: s.SelectedCommitIDs}
}

func contentsQuery(s state.State) query {
	q := query{Mode: s.ViewMode, Repo: repoPath(s), Path: s.SelectedFilePath}
	if s.ViewMode == state.ViewHistory {
		q.IDs = s.SelectedCommitIDs
	}
	return q
}

func changesQuery(s state.State) query {
	return query{Mode: s.ViewMode, Repo: repoPath(s)}
}

// watchStore translates selection changes into fetch requests and keeps
// layout and durable session state in step.
func (m *Model) watchStore() {
	m.subs.Add(
		state.WatchValue(m.store, repoPath, func(path string) {
			m.rangeAnchor, m.pinned = "", false
			m.enqueue(m.requestCommits(path), m.requestBranch(path))
			m.rewatch(path)
			m.saveSession()
		}),
		state.Watch(m.store, filesQuery, query.equal, func(q query) {
			m.enqueue(m.requestFiles(q))
		}),
		state.Watch(m.store, contentsQuery, query.equal, func(q query) {
			m.enqueue(m.requestContents(q))
		}),
		state.Watch(m.store, changesQuery, query.equal, func(q query) {
			m.enqueue(m.requestChanges(q))
			if q.Mode == state.ViewChanges {
				m.enqueue(m.startPolling())
			} else {
				m.pollGen++
			}
		}),
		state.WatchValue(m.store, func(s state.State) state.ViewMode { return s.ViewMode }, func(state.ViewMode) {
			m.saveSession()
		}),
		state.WatchValue(m.store, func(s state.State) bool { return s.DiffMaximized }, func(maximized bool) {
			m.maximize.Sync(maximized)
		}),
	)
}

func (m *Model) requestCommits(repo string) tea.Cmd {
	if repo == "" {
		return m.commits.Request(fetch.Target[[]git.Commit]{})
	}
	engine, limit := m.engine, m.cfg.CommitLimit
	return m.commits.Request(fetch.Target[[]git.Commit]{
		Key: repo,
		Fetch: func(ctx context.Context) ([]git.Commit, error) {
			return engine.ListCommits(ctx, repo, limit)
		},
	})
}

func (m *Model) requestBranch(repo string) tea.Cmd {
	if repo == "" {
		return m.branch.Request(fetch.Target[string]{})
	}
	engine := m.engine
	return m.branch.Request(fetch.Target[string]{
		Key: repo,
		Fetch: func(ctx context.Context) (string, error) {
			return engine.GetCurrentBranch(ctx, repo)
		},
	})
}

func (m *Model) requestFiles(q query) tea.Cmd {
	if q.Repo == "" || len(q.IDs) == 0 {
		return m.files.Request(fetch.Target[[]git.ChangedFile]{})
	}
	engine, repo, ids := m.engine, q.Repo, slices.Clone(q.IDs)
	return m.files.Request(fetch.Target[[]git.ChangedFile]{
		Key: joinKey(append([]string{repo}, ids...)...),
		Fetch: func(ctx context.Context) ([]git.ChangedFile, error) {
			if len(ids) == 1 {
				return engine.GetCommitFiles(ctx, repo, ids[0])
			}
			return engine.GetCommitRangeFiles(ctx, repo, ids)
		},
	})
}

func (m *Model) requestContents(q query) tea.Cmd {
	incomplete := q.Repo == "" || q.Path == "" || (q.Mode == state.ViewHistory && len(q.IDs) == 0)
	if incomplete {
		return m.contents.Request(fetch.Target[git.FileContents]{})
	}

	engine, repo, path, ids := m.engine, q.Repo, q.Path, slices.Clone(q.IDs)
	key := joinKey(append([]string{string(q.Mode), repo, path}, ids...)...)
	var fn func(ctx context.Context) (git.FileContents, error)
	switch {
	case q.Mode == state.ViewChanges:
		fn = func(ctx context.Context) (git.FileContents, error) {
			return engine.GetWorkingFileContents(ctx, repo, path)
		}
	case len(ids) == 1:
		fn = func(ctx context.Context) (git.FileContents, error) {
			return engine.GetFileContents(ctx, repo, ids[0], path)
		}
	default:
		fn = func(ctx context.Context) (git.FileContents, error) {
			return engine.GetCommitRangeFileContents(ctx, repo, ids, path)
		}
	}
	return m.contents.Request(fetch.Target[git.FileContents]{Key: key, Fetch: fn})
}

func (m *Model) requestChanges(q query) tea.Cmd {
	if q.Repo == "" || q.Mode != state.ViewChanges {
		return m.changes.Request(fetch.Target[[]git.ChangedFile]{})
	}
	engine, repo := m.engine, q.Repo
	return m.changes.Request(fetch.Target[[]git.ChangedFile]{
		Key: repo,
		Fetch: func(ctx context.Context) ([]git.ChangedFile, error) {
			return engine.GetWorkingChanges(ctx, repo)
		},
	})
}

// refetch re-requests every site for the current selection. Same keys skip
// the debounce, and results land without clearing what is on screen.
func (m *Model) refetch() {
	st := m.store.Snapshot()
	repo := repoPath(st)
	log.Debug(log.CatUI, "refetch", "repo", repo)
	m.enqueue(
		m.requestCommits(repo),
		m.requestBranch(repo),
		m.requestFiles(filesQuery(st)),
		m.requestContents(contentsQuery(st)),
		m.requestChanges(changesQuery(st)),
	)
}

// refreshWorking re-requests the working-tree sites in changes mode.
func (m *Model) refreshWorking() {
	st := m.store.Snapshot()
	if st.ViewMode != state.ViewChanges {
		return
	}
	m.enqueue(m.requestChanges(changesQuery(st)), m.requestContents(contentsQuery(st)))
}

func indexOfCommit(list []git.Commit, id string) int {
	return slices.IndexFunc(list, func(c git.Commit) bool { return c.ID == id })
}
