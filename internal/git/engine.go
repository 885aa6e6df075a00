// Package git reads commit history, diffs and working-tree state from local
// repositories.
package git

import (
	"context"
	"errors"
	"time"
)

// Git-specific errors.
var (
	// ErrNotGitRepo indicates the directory is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrOpenRepository indicates the repository path could not be opened.
	ErrOpenRepository = errors.New("failed to open repository")

	// ErrNonConsecutiveCommits indicates a commit range with gaps or forks.
	ErrNonConsecutiveCommits = errors.New("commits are not consecutive")

	// ErrInvalidBranchName indicates a name rejected by git check-ref-format.
	ErrInvalidBranchName = errors.New("invalid branch name")

	// ErrBranchNotFound indicates the branch to check out does not exist.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrCheckoutConflict indicates local changes would be overwritten.
	ErrCheckoutConflict = errors.New("local changes would be overwritten by checkout")

	// ErrEmptyRange indicates a range request without commits.
	ErrEmptyRange = errors.New("no commits selected")

	// ErrNoCommits indicates HEAD does not point at a commit yet.
	ErrNoCommits = errors.New("repository has no commits")
)

// DefaultCommitLimit applies when ListCommits is given a non-positive limit.
const DefaultCommitLimit = 100

// EmptyTree is the well-known hash of git's empty tree, used as the diff
// base for root commits.
const EmptyTree = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// Commit is a single history entry.
type Commit struct {
	ID        string    // Full 40-char SHA
	Message   string    // First line of the commit message
	Author    string    // Author name, "Unknown" when absent
	Email     string    // Author email
	Timestamp time.Time // Author time
}

// FileStatus describes how a file changed.
type FileStatus string

const (
	StatusAdded      FileStatus = "added"
	StatusModified   FileStatus = "modified"
	StatusDeleted    FileStatus = "deleted"
	StatusRenamed    FileStatus = "renamed"
	StatusCopied     FileStatus = "copied"
	StatusTypeChange FileStatus = "typechange"
	StatusUntracked  FileStatus = "untracked"
)

// ChangedFile is one entry of a commit, range or working-tree file list.
type ChangedFile struct {
	Path    string
	OldPath string // Set for renames and copies
	Status  FileStatus
}

// FileDiff is a unified patch for one file.
type FileDiff struct {
	Path      string
	Patch     string
	Additions int
	Deletions int
	IsBinary  bool
}

// FileContents holds both sides of a change. A nil side means the file does
// not exist on that side. Binary files carry no text.
type FileContents struct {
	Old      *string
	New      *string
	IsBinary bool
}

// Branch holds information about a local branch.
type Branch struct {
	Name      string // Branch name (e.g., "main", "feature/auth")
	IsCurrent bool   // True if this is the currently checked out branch
}

// RepoInfo describes a validated repository.
type RepoInfo struct {
	Path   string // Repository top level
	Name   string
	Branch string
}

// Engine is the git backend used by the viewer. Every call is independent
// and safe to run concurrently.
type Engine interface {
	// ListCommits returns up to limit commits reachable from HEAD, newest
	// first. An empty repository yields an empty list.
	ListCommits(ctx context.Context, repo string, limit int) ([]Commit, error)
	GetCommitFiles(ctx context.Context, repo, commitID string) ([]ChangedFile, error)
	// GetCommitRangeFiles returns the combined change of a consecutive run
	// of commits given in any order.
	GetCommitRangeFiles(ctx context.Context, repo string, commitIDs []string) ([]ChangedFile, error)
	GetFileDiff(ctx context.Context, repo, commitID, path string) (FileDiff, error)
	GetFileContents(ctx context.Context, repo, commitID, path string) (FileContents, error)
	GetCommitRangeFileContents(ctx context.Context, repo string, commitIDs []string, path string) (FileContents, error)

	// GetCurrentBranch returns "HEAD" when detached.
	GetCurrentBranch(ctx context.Context, repo string) (string, error)
	ListBranches(ctx context.Context, repo string) ([]Branch, error)
	CheckoutBranch(ctx context.Context, repo, name string) error
	ValidateRepo(ctx context.Context, path string) (RepoInfo, error)

	GetWorkingChanges(ctx context.Context, repo string) ([]ChangedFile, error)
	GetWorkingFileDiff(ctx context.Context, repo, path string) (FileDiff, error)
	GetWorkingFileContents(ctx context.Context, repo, path string) (FileContents, error)
}
