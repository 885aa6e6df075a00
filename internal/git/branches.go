package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// GetCurrentBranch returns the checked out branch, or "HEAD" when detached.
func (e *RealExecutor) GetCurrentBranch(ctx context.Context, repo string) (string, error) {
	// symbolic-ref --quiet exits 1 without output when HEAD is detached
	output, err := e.output(ctx, repo, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		if exitCode(err) == 1 {
			return "HEAD", nil
		}
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return output, nil
}

// ListBranches returns all local branches, sorted with current branch first then alphabetically.
func (e *RealExecutor) ListBranches(ctx context.Context, repo string) ([]Branch, error) {
	// %(HEAD) gives '*' if current, ' ' otherwise
	output, err := e.output(ctx, repo, "branch", "--format=%(HEAD)%(refname:short)")
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	return parseBranches(output), nil
}

func parseBranches(output string) []Branch {
	branches := []Branch{}
	var current *Branch

	for line := range strings.SplitSeq(output, "\n") {
		if line == "" {
			continue
		}

		// Some git versions omit the space for non-current branches
		var b Branch
		switch line[0] {
		case '*':
			b = Branch{Name: line[1:], IsCurrent: true}
		case ' ':
			b = Branch{Name: line[1:]}
		default:
			b = Branch{Name: line}
		}

		// Detached HEAD shows up as "(HEAD detached at ...)"
		if strings.HasPrefix(b.Name, "(") {
			continue
		}

		if b.IsCurrent {
			current = &b
		} else {
			branches = append(branches, b)
		}
	}

	sort.Slice(branches, func(i, j int) bool {
		return branches[i].Name < branches[j].Name
	})

	if current != nil {
		branches = append([]Branch{*current}, branches...)
	}
	return branches
}

// ValidateBranchName validates a branch name using git check-ref-format --branch.
func (e *RealExecutor) ValidateBranchName(ctx context.Context, repo, name string) error {
	if strings.TrimSpace(name) == "" || strings.HasPrefix(name, "-") {
		return fmt.Errorf("%w: %q", ErrInvalidBranchName, name)
	}
	if _, err := e.run(ctx, repo, "check-ref-format", "--branch", name); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidBranchName, name)
	}
	return nil
}

// CheckoutBranch switches the working tree to an existing local branch.
func (e *RealExecutor) CheckoutBranch(ctx context.Context, repo, name string) error {
	if err := e.ValidateBranchName(ctx, repo, name); err != nil {
		return err
	}
	if _, err := e.run(ctx, repo, "checkout", "--quiet", name, "--"); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", name, err)
	}
	return nil
}

// ValidateRepo checks that path is inside a git work tree and describes it.
func (e *RealExecutor) ValidateRepo(ctx context.Context, path string) (RepoInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return RepoInfo{}, fmt.Errorf("%w: %w", ErrOpenRepository, err)
	}
	if !info.IsDir() {
		return RepoInfo{}, fmt.Errorf("%w: %s is not a directory", ErrOpenRepository, path)
	}

	top, err := e.output(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		return RepoInfo{}, err
	}
	if top == "" {
		// Inside a .git directory or a bare repository
		return RepoInfo{}, fmt.Errorf("%w: %s has no work tree", ErrNotGitRepo, path)
	}

	branch, err := e.GetCurrentBranch(ctx, top)
	if err != nil {
		return RepoInfo{}, err
	}

	return RepoInfo{
		Path:   filepath.Clean(top),
		Name:   filepath.Base(top),
		Branch: branch,
	}, nil
}
