// Package gittest provides an in-memory git.Engine for tests.
package gittest

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/zjrosen/lineage/internal/git"
)

var _ git.Engine = (*Fake)(nil)

// Repo is the canned data served for one repository path.
type Repo struct {
	Commits  []git.Commit
	Files    map[string][]git.ChangedFile // by commit id
	Contents map[string]git.FileContents  // by "<commit>:<path>"
	Branch   string
	Branches []git.Branch
	Working  []git.ChangedFile
	WorkFile map[string]git.FileContents // by path
}

// Fake serves canned repositories and records calls. Err, when set for a
// method name, is returned instead.
type Fake struct {
	mu    sync.Mutex
	Repos map[string]*Repo
	Err   map[string]error
	calls map[string]int
}

// NewFake returns an empty fake.
func NewFake() *Fake {
	return &Fake{Repos: map[string]*Repo{}, Err: map[string]error{}, calls: map[string]int{}}
}

// AddRepo registers repo at path.
func (f *Fake) AddRepo(path string, repo *Repo) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Repos[path] = repo
	return f
}

// SetErr makes method fail with err; nil clears it.
func (f *Fake) SetErr(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.Err, method)
		return
	}
	f.Err[method] = err
}

// Calls returns how often method was invoked.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *Fake) enter(method, repo string) (*Repo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	if err := f.Err[method]; err != nil {
		return nil, err
	}
	r, ok := f.Repos[repo]
	if !ok {
		return nil, fmt.Errorf("%w: %s", git.ErrOpenRepository, repo)
	}
	return r, nil
}

func (f *Fake) ListCommits(_ context.Context, repo string, limit int) ([]git.Commit, error) {
	r, err := f.enter("ListCommits", repo)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = git.DefaultCommitLimit
	}
	return slices.Clone(r.Commits[:min(limit, len(r.Commits))]), nil
}

func (f *Fake) GetCommitFiles(_ context.Context, repo, commitID string) ([]git.ChangedFile, error) {
	r, err := f.enter("GetCommitFiles", repo)
	if err != nil {
		return nil, err
	}
	return slices.Clone(r.Files[commitID]), nil
}

// GetCommitRangeFiles merges per-commit lists. Consecutiveness is checked
// against the order of Commits.
func (f *Fake) GetCommitRangeFiles(_ context.Context, repo string, commitIDs []string) ([]git.ChangedFile, error) {
	r, err := f.enter("GetCommitRangeFiles", repo)
	if err != nil {
		return nil, err
	}
	if err := r.checkRange(commitIDs); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []git.ChangedFile
	for _, id := range commitIDs {
		for _, cf := range r.Files[id] {
			if !seen[cf.Path] {
				seen[cf.Path] = true
				out = append(out, cf)
			}
		}
	}
	return out, nil
}

func (r *Repo) checkRange(ids []string) error {
	if len(ids) == 0 {
		return git.ErrEmptyRange
	}
	var idx []int
	for _, id := range ids {
		i := slices.IndexFunc(r.Commits, func(c git.Commit) bool { return c.ID == id })
		if i < 0 {
			return fmt.Errorf("unknown commit %s", id)
		}
		idx = append(idx, i)
	}
	slices.Sort(idx)
	for i := 1; i < len(idx); i++ {
		if idx[i] != idx[i-1]+1 {
			return git.ErrNonConsecutiveCommits
		}
	}
	return nil
}

func (f *Fake) GetFileDiff(_ context.Context, repo, commitID, path string) (git.FileDiff, error) {
	r, err := f.enter("GetFileDiff", repo)
	if err != nil {
		return git.FileDiff{}, err
	}
	c := r.Contents[commitID+":"+path]
	return git.FileDiff{Path: path, Patch: deref(c.Old) + "\n" + deref(c.New)}, nil
}

func (f *Fake) GetFileContents(_ context.Context, repo, commitID, path string) (git.FileContents, error) {
	r, err := f.enter("GetFileContents", repo)
	if err != nil {
		return git.FileContents{}, err
	}
	return r.Contents[commitID+":"+path], nil
}

// GetCommitRangeFileContents serves the entry keyed by the ids joined
// with "+", in the given order.
func (f *Fake) GetCommitRangeFileContents(_ context.Context, repo string, commitIDs []string, path string) (git.FileContents, error) {
	r, err := f.enter("GetCommitRangeFileContents", repo)
	if err != nil {
		return git.FileContents{}, err
	}
	if err := r.checkRange(commitIDs); err != nil {
		return git.FileContents{}, err
	}
	return r.Contents[strings.Join(commitIDs, "+")+":"+path], nil
}

func (f *Fake) GetCurrentBranch(_ context.Context, repo string) (string, error) {
	r, err := f.enter("GetCurrentBranch", repo)
	if err != nil {
		return "", err
	}
	return r.Branch, nil
}

func (f *Fake) ListBranches(_ context.Context, repo string) ([]git.Branch, error) {
	r, err := f.enter("ListBranches", repo)
	if err != nil {
		return nil, err
	}
	return slices.Clone(r.Branches), nil
}

func (f *Fake) CheckoutBranch(_ context.Context, repo, name string) error {
	r, err := f.enter("CheckoutBranch", repo)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	found := false
	for i := range r.Branches {
		r.Branches[i].IsCurrent = r.Branches[i].Name == name
		found = found || r.Branches[i].IsCurrent
	}
	if !found {
		return fmt.Errorf("%w: %s", git.ErrBranchNotFound, name)
	}
	r.Branch = name
	return nil
}

func (f *Fake) ValidateRepo(_ context.Context, path string) (git.RepoInfo, error) {
	r, err := f.enter("ValidateRepo", path)
	if err != nil {
		return git.RepoInfo{}, fmt.Errorf("%w: %s", git.ErrNotGitRepo, path)
	}
	name := path[strings.LastIndexAny(path, `/\`)+1:]
	return git.RepoInfo{Path: path, Name: name, Branch: r.Branch}, nil
}

func (f *Fake) GetWorkingChanges(_ context.Context, repo string) ([]git.ChangedFile, error) {
	r, err := f.enter("GetWorkingChanges", repo)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(r.Working), nil
}

func (f *Fake) GetWorkingFileDiff(_ context.Context, repo, path string) (git.FileDiff, error) {
	r, err := f.enter("GetWorkingFileDiff", repo)
	if err != nil {
		return git.FileDiff{}, err
	}
	c := r.WorkFile[path]
	return git.FileDiff{Path: path, Patch: deref(c.Old) + "\n" + deref(c.New)}, nil
}

func (f *Fake) GetWorkingFileContents(_ context.Context, repo, path string) (git.FileContents, error) {
	r, err := f.enter("GetWorkingFileContents", repo)
	if err != nil {
		return git.FileContents{}, err
	}
	return r.WorkFile[path], nil
}

// SetWorking replaces the working-tree change list of repo.
func (f *Fake) SetWorking(repo string, files []git.ChangedFile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.Repos[repo]; ok {
		r.Working = files
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Str returns a pointer to s.
func Str(s string) *string { return &s }
