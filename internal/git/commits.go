package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// ListCommits returns the most recent commits reachable from HEAD.
func (e *RealExecutor) ListCommits(ctx context.Context, repo string, limit int) ([]Commit, error) {
	if limit <= 0 {
		limit = DefaultCommitLimit
	}

	hasHead, err := e.headExists(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}
	if !hasHead {
		return []Commit{}, nil
	}

	out, err := e.run(ctx, repo, "log", "-n", strconv.Itoa(limit),
		"--format=%H%x1f%an%x1f%ae%x1f%at%x1f%B%x1e")
	if err != nil {
		if errors.Is(err, ErrNoCommits) {
			return []Commit{}, nil
		}
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}
	return parseLog(string(out)), nil
}

// headExists reports whether HEAD resolves to a commit. It is false in a
// freshly initialised repository.
func (e *RealExecutor) headExists(ctx context.Context, repo string) (bool, error) {
	_, err := e.run(ctx, repo, "rev-parse", "--verify", "--quiet", "HEAD^{commit}")
	if err == nil {
		return true, nil
	}
	if exitCode(err) == 1 {
		return false, nil
	}
	return false, err
}

// parseLog parses records produced by the ListCommits format.
func parseLog(output string) []Commit {
	commits := []Commit{}
	for record := range strings.SplitSeq(output, recordSep) {
		record = strings.TrimLeft(record, "\n")
		if record == "" {
			continue
		}

		fields := strings.SplitN(record, fieldSep, 5)
		if len(fields) < 5 {
			continue
		}

		c := Commit{
			ID:      fields[0],
			Author:  fields[1],
			Email:   fields[2],
			Message: firstLine(fields[4]),
		}
		if c.Author == "" {
			c.Author = "Unknown"
		}
		if secs, err := strconv.ParseInt(fields[3], 10, 64); err == nil {
			c.Timestamp = time.Unix(secs, 0)
		}
		commits = append(commits, c)
	}
	return commits
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n")
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimRight(line, "\r")
}

// commitNode is a commit with its first parent ("" for a root commit).
type commitNode struct {
	id     string
	parent string
}

// resolve looks up full ids and first parents, preserving input order.
func (e *RealExecutor) resolve(ctx context.Context, repo string, ids []string) ([]commitNode, error) {
	args := append([]string{"rev-list", "--no-walk=unsorted", "--parents"}, ids...)
	args = append(args, "--")
	out, err := e.run(ctx, repo, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve commits: %w", err)
	}

	var nodes []commitNode
	for line := range strings.SplitSeq(strings.TrimSpace(string(out)), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		n := commitNode{id: fields[0]}
		if len(fields) > 1 {
			n.parent = fields[1]
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// commitRange is the diff endpoints of a consecutive run of commits.
type commitRange struct {
	base   string // First parent of the oldest commit, or EmptyTree
	target string // Newest commit
}

// orderRange validates that nodes form one unbroken first-parent chain and
// returns its diff endpoints.
func orderRange(nodes []commitNode) (commitRange, error) {
	if len(nodes) == 0 {
		return commitRange{}, ErrEmptyRange
	}

	byID := make(map[string]commitNode, len(nodes))
	isParent := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		byID[n.id] = n
	}
	for _, n := range nodes {
		if _, ok := byID[n.parent]; ok {
			isParent[n.parent] = true
		}
	}

	var heads []string
	for id := range byID {
		if !isParent[id] {
			heads = append(heads, id)
		}
	}
	if len(heads) != 1 {
		return commitRange{}, fmt.Errorf("%w: %d branch tips in selection", ErrNonConsecutiveCommits, len(heads))
	}

	cur := byID[heads[0]]
	for steps := 1; steps < len(byID); steps++ {
		next, ok := byID[cur.parent]
		if !ok {
			return commitRange{}, fmt.Errorf("%w: %s is not the parent of %s", ErrNonConsecutiveCommits, short(cur.parent), short(cur.id))
		}
		cur = next
	}

	base := cur.parent
	if base == "" {
		base = EmptyTree
	}
	return commitRange{base: base, target: heads[0]}, nil
}

func short(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

func (e *RealExecutor) rangeOf(ctx context.Context, repo string, ids []string) (commitRange, error) {
	if len(ids) == 0 {
		return commitRange{}, ErrEmptyRange
	}
	nodes, err := e.resolve(ctx, repo, dedupe(ids))
	if err != nil {
		return commitRange{}, err
	}
	return orderRange(nodes)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// GetCommitFiles returns the files changed by a commit relative to its
// first parent.
func (e *RealExecutor) GetCommitFiles(ctx context.Context, repo, commitID string) ([]ChangedFile, error) {
	return e.GetCommitRangeFiles(ctx, repo, []string{commitID})
}

// GetCommitRangeFiles returns the files changed across a consecutive range.
func (e *RealExecutor) GetCommitRangeFiles(ctx context.Context, repo string, commitIDs []string) ([]ChangedFile, error) {
	r, err := e.rangeOf(ctx, repo, commitIDs)
	if err != nil {
		return nil, err
	}
	return e.diffFiles(ctx, repo, r)
}

func (e *RealExecutor) diffFiles(ctx context.Context, repo string, r commitRange) ([]ChangedFile, error) {
	out, err := e.run(ctx, repo, "diff", "--name-status", "-M", "-z", "--no-color", r.base, r.target, "--")
	if err != nil {
		return nil, fmt.Errorf("failed to list changed files: %w", err)
	}
	return parseNameStatus(out), nil
}

// parseNameStatus parses `git diff --name-status -z` output.
func parseNameStatus(out []byte) []ChangedFile {
	tokens := bytes.Split(bytes.TrimRight(out, "\x00"), []byte{0})
	files := []ChangedFile{}
	for i := 0; i < len(tokens); i++ {
		code := string(tokens[i])
		if code == "" {
			continue
		}
		status := statusFromCode(code[0])
		if status == StatusRenamed || status == StatusCopied {
			if i+2 >= len(tokens) {
				break
			}
			files = append(files, ChangedFile{
				OldPath: string(tokens[i+1]),
				Path:    string(tokens[i+2]),
				Status:  status,
			})
			i += 2
			continue
		}
		if i+1 >= len(tokens) {
			break
		}
		files = append(files, ChangedFile{Path: string(tokens[i+1]), Status: status})
		i++
	}
	return files
}

func statusFromCode(c byte) FileStatus {
	switch c {
	case 'A':
		return StatusAdded
	case 'D':
		return StatusDeleted
	case 'R':
		return StatusRenamed
	case 'C':
		return StatusCopied
	case 'T':
		return StatusTypeChange
	case '?':
		return StatusUntracked
	default:
		return StatusModified
	}
}
