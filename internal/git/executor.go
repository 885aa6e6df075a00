package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/zjrosen/lineage/internal/log"
)

// Compile-time check that RealExecutor implements Engine.
var _ Engine = (*RealExecutor)(nil)

// RealExecutor implements Engine by executing git commands.
type RealExecutor struct {
	binary string
}

// NewRealExecutor creates a new RealExecutor using git from PATH.
func NewRealExecutor() *RealExecutor {
	return &RealExecutor{binary: "git"}
}

// gitError keeps stderr and the exit code of a failed command.
type gitError struct {
	args     []string
	stderr   string
	exitCode int
	err      error
}

func (e *gitError) Error() string {
	if e.stderr != "" {
		return fmt.Sprintf("git %s: %s", strings.Join(e.args, " "), e.stderr)
	}
	return fmt.Sprintf("git %s: %v", strings.Join(e.args, " "), e.err)
}

func (e *gitError) Unwrap() error { return e.err }

// run executes git in dir and returns raw stdout.
func (e *RealExecutor) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	return e.runAllowing(ctx, dir, nil, args...)
}

// runAllowing treats the listed non-zero exit codes as success.
func (e *RealExecutor) runAllowing(ctx context.Context, dir string, okCodes []int, args ...string) ([]byte, error) {
	//nolint:gosec // G204: args come from controlled sources
	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C", "GIT_OPTIONAL_LOCKS=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	log.Debug(log.CatGit, "exec", "args", strings.Join(args, " "), "dir", dir, "took", time.Since(start).String())
	if err == nil {
		return stdout.Bytes(), nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		for _, code := range okCodes {
			if exitErr.ExitCode() == code {
				return stdout.Bytes(), nil
			}
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("git %s: %w", args[0], ctxErr)
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) && pathErr.Op == "chdir" {
		return nil, fmt.Errorf("%w: %s", ErrOpenRepository, dir)
	}

	ge := &gitError{args: args, stderr: strings.TrimSpace(stderr.String()), exitCode: -1, err: err}
	if exitErr != nil {
		ge.exitCode = exitErr.ExitCode()
	}
	if ge.stderr != "" {
		return nil, parseGitError(ge.stderr, ge)
	}
	return nil, ge
}

// output runs git and returns trimmed stdout.
func (e *RealExecutor) output(ctx context.Context, dir string, args ...string) (string, error) {
	out, err := e.run(ctx, dir, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// parseGitError converts git stderr messages to specific error types.
func parseGitError(stderr string, originalErr error) error {
	stderrLower := strings.ToLower(stderr)

	// Not a git repository
	if strings.Contains(stderrLower, "not a git repository") {
		return fmt.Errorf("%w: %s", ErrNotGitRepo, stderr)
	}

	// Unborn branch: fatal: your current branch 'main' does not have any commits yet
	if strings.Contains(stderrLower, "does not have any commits yet") ||
		strings.Contains(stderrLower, "bad default revision 'head'") {
		return fmt.Errorf("%w: %s", ErrNoCommits, stderr)
	}

	// Unknown branch on checkout
	if strings.Contains(stderrLower, "did not match any file(s) known to git") ||
		strings.Contains(stderrLower, "invalid reference") {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, stderr)
	}

	// Dirty tree blocks checkout
	if strings.Contains(stderrLower, "would be overwritten by checkout") {
		return fmt.Errorf("%w: %s", ErrCheckoutConflict, stderr)
	}

	// Repository exists but cannot be read
	if strings.Contains(stderrLower, "cannot change to") ||
		strings.Contains(stderrLower, "permission denied") {
		return fmt.Errorf("%w: %s", ErrOpenRepository, stderr)
	}

	return fmt.Errorf("git error: %s: %w", stderr, originalErr)
}

// exitCode extracts the exit status of a failed command, or -1.
func exitCode(err error) int {
	var ge *gitError
	if errors.As(err, &ge) {
		return ge.exitCode
	}
	return -1
}

// isBinary reports whether data looks binary: a NUL in the first 8000 bytes.
func isBinary(data []byte) bool {
	n := min(len(data), 8000)
	return bytes.IndexByte(data[:n], 0) >= 0
}
