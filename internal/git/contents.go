package git

import (
	"context"
	"fmt"
	"strings"
)

// GetFileDiff returns the patch for one file of a commit.
func (e *RealExecutor) GetFileDiff(ctx context.Context, repo, commitID, path string) (FileDiff, error) {
	r, err := e.rangeOf(ctx, repo, []string{commitID})
	if err != nil {
		return FileDiff{}, err
	}
	files, err := e.diffFiles(ctx, repo, r)
	if err != nil {
		return FileDiff{}, err
	}

	paths := []string{path}
	if f, ok := findFile(files, path); ok && f.OldPath != "" {
		paths = append(paths, f.OldPath)
	}

	args := append([]string{"diff", "-M", "--no-color", "--no-ext-diff", r.base, r.target, "--"}, paths...)
	out, err := e.run(ctx, repo, args...)
	if err != nil {
		return FileDiff{}, fmt.Errorf("failed to diff %s: %w", path, err)
	}
	return newFileDiff(path, string(out)), nil
}

// newFileDiff counts changed lines in a unified patch.
func newFileDiff(path, patch string) FileDiff {
	d := FileDiff{Path: path, Patch: patch}
	for line := range strings.SplitSeq(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			d.Additions++
		case strings.HasPrefix(line, "-"):
			d.Deletions++
		case strings.HasPrefix(line, "Binary files ") || strings.HasPrefix(line, "GIT binary patch"):
			d.IsBinary = true
		}
	}
	return d
}

// GetFileContents returns a file before and after a commit.
func (e *RealExecutor) GetFileContents(ctx context.Context, repo, commitID, path string) (FileContents, error) {
	return e.GetCommitRangeFileContents(ctx, repo, []string{commitID}, path)
}

// GetCommitRangeFileContents returns a file before the oldest and after the
// newest commit of a consecutive range.
func (e *RealExecutor) GetCommitRangeFileContents(ctx context.Context, repo string, commitIDs []string, path string) (FileContents, error) {
	r, err := e.rangeOf(ctx, repo, commitIDs)
	if err != nil {
		return FileContents{}, err
	}
	files, err := e.diffFiles(ctx, repo, r)
	if err != nil {
		return FileContents{}, err
	}

	oldPath := path
	if f, ok := findFile(files, path); ok && f.OldPath != "" {
		oldPath = f.OldPath
	}

	oldData, err := e.blob(ctx, repo, r.base, oldPath)
	if err != nil {
		return FileContents{}, err
	}
	newData, err := e.blob(ctx, repo, r.target, path)
	if err != nil {
		return FileContents{}, err
	}
	return newFileContents(oldData, newData), nil
}

func findFile(files []ChangedFile, path string) (ChangedFile, bool) {
	for _, f := range files {
		if f.Path == path {
			return f, true
		}
	}
	return ChangedFile{}, false
}

// blob reads path at rev. A missing path yields nil without error.
func (e *RealExecutor) blob(ctx context.Context, repo, rev, path string) ([]byte, error) {
	if rev == EmptyTree {
		return nil, nil
	}
	spec := rev + ":" + path
	if _, err := e.run(ctx, repo, "cat-file", "-e", spec); err != nil {
		if exitCode(err) >= 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", spec, err)
	}
	out, err := e.run(ctx, repo, "cat-file", "blob", spec)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", spec, err)
	}
	if out == nil {
		// Empty file, present but without bytes.
		out = []byte{}
	}
	return out, nil
}

// newFileContents builds contents from raw sides; nil means absent.
func newFileContents(oldData, newData []byte) FileContents {
	if (oldData != nil && isBinary(oldData)) || (newData != nil && isBinary(newData)) {
		return FileContents{IsBinary: true}
	}
	return FileContents{Old: textOf(oldData), New: textOf(newData)}
}

func textOf(data []byte) *string {
	if data == nil {
		return nil
	}
	s := string(data)
	return &s
}
