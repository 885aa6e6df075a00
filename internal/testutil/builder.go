// Package testutil builds throwaway git repositories for tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// baseTime anchors commit timestamps so history order is deterministic.
var baseTime = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// RequireGit skips the test when no git binary is available.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

// Repo is a built repository.
type Repo struct {
	t    *testing.T
	Path string
	// IDs holds commit hashes, oldest first.
	IDs []string
}

// Builder accumulates commits and creates them in order.
type Builder struct {
	t       *testing.T
	branch  string
	commits []commitData
}

// NewBuilder creates a builder for a repository on branch main.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	RequireGit(t)
	return &Builder{t: t, branch: "main"}
}

// OnBranch sets the initial branch name.
func (b *Builder) OnBranch(name string) *Builder {
	b.branch = name
	return b
}

// WithCommit adds a commit with optional configuration.
func (b *Builder) WithCommit(message string, opts ...CommitOption) *Builder {
	c := defaultCommit(message, len(b.commits))
	for _, opt := range opts {
		opt(&c)
	}
	b.commits = append(b.commits, c)
	return b
}

// Build creates the repository and all accumulated commits.
func (b *Builder) Build() *Repo {
	b.t.Helper()
	dir := b.t.TempDir()
	// macOS tempdirs sit behind a /var -> /private/var symlink
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		dir = real
	}

	r := &Repo{t: b.t, Path: dir}
	r.Git("init", "--quiet")
	r.Git("symbolic-ref", "HEAD", "refs/heads/"+b.branch)
	r.Git("config", "user.name", "Test User")
	r.Git("config", "user.email", "test@example.com")
	r.Git("config", "commit.gpgsign", "false")
	r.Git("config", "core.autocrlf", "false")

	for _, c := range b.commits {
		r.apply(c)
	}
	return r
}

func (r *Repo) apply(c commitData) {
	r.t.Helper()
	for _, ch := range c.changes {
		ch(r)
	}
	r.Git("add", "--all")

	args := []string{"commit", "--quiet", "--allow-empty", "-m", c.message}
	if c.author != "" {
		args = append(args, "--author", c.author)
	}
	r.gitEnv([]string{
		"GIT_AUTHOR_DATE=" + c.at.Format(time.RFC3339),
		"GIT_COMMITTER_DATE=" + c.at.Format(time.RFC3339),
	}, args...)

	r.IDs = append(r.IDs, r.Git("rev-parse", "HEAD"))
}

// Commit creates another commit on the current branch.
func (r *Repo) Commit(message string, opts ...CommitOption) string {
	r.t.Helper()
	c := defaultCommit(message, len(r.IDs))
	for _, opt := range opts {
		opt(&c)
	}
	r.apply(c)
	return r.IDs[len(r.IDs)-1]
}

// ID returns the i-th commit, oldest first.
func (r *Repo) ID(i int) string {
	r.t.Helper()
	require.Less(r.t, i, len(r.IDs), "commit %d not built", i)
	return r.IDs[i]
}

// Git runs git in the repository and returns trimmed stdout.
func (r *Repo) Git(args ...string) string {
	r.t.Helper()
	return r.gitEnv(nil, args...)
}

func (r *Repo) gitEnv(env []string, args ...string) string {
	r.t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Path
	cmd.Env = append(os.Environ(), "GIT_CONFIG_NOSYSTEM=1", "HOME="+r.Path, "LC_ALL=C")
	cmd.Env = append(cmd.Env, env...)
	out, err := cmd.CombinedOutput()
	require.NoError(r.t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

// WriteFile writes a working-tree file without committing.
func (r *Repo) WriteFile(path, content string) {
	r.t.Helper()
	Write(path, content)(r)
}

// RemoveFile deletes a working-tree file without committing.
func (r *Repo) RemoveFile(path string) {
	r.t.Helper()
	Remove(path)(r)
}

func (r *Repo) abs(path string) string {
	return filepath.Join(r.Path, filepath.FromSlash(path))
}

func defaultCommit(message string, n int) commitData {
	return commitData{
		message: message,
		at:      baseTime.Add(time.Duration(n) * time.Minute),
	}
}

// Short returns the abbreviated form of id.
func Short(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}
