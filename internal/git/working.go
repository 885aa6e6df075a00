package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// GetWorkingChanges lists staged, unstaged and untracked changes relative
// to HEAD.
func (e *RealExecutor) GetWorkingChanges(ctx context.Context, repo string) ([]ChangedFile, error) {
	out, err := e.run(ctx, repo, "status", "--porcelain=v1", "-z", "--untracked-files=all")
	if err != nil {
		return nil, fmt.Errorf("failed to read working changes: %w", err)
	}
	return parsePorcelain(out), nil
}

// parsePorcelain parses `git status --porcelain=v1 -z`. Each entry is
// "XY path"; renames and copies are followed by the original path.
func parsePorcelain(out []byte) []ChangedFile {
	tokens := bytes.Split(bytes.TrimRight(out, "\x00"), []byte{0})
	files := []ChangedFile{}
	for i := 0; i < len(tokens); i++ {
		entry := tokens[i]
		if len(entry) < 4 {
			continue
		}
		x, y := entry[0], entry[1]
		f := ChangedFile{Path: string(entry[3:])}

		switch {
		case x == '?' && y == '?':
			f.Status = StatusUntracked
		case x == '!':
			continue
		case x == 'U' || y == 'U' || (x == 'A' && y == 'A') || (x == 'D' && y == 'D'):
			f.Status = StatusModified
		case x != ' ':
			f.Status = statusFromCode(x)
		default:
			f.Status = statusFromCode(y)
		}

		if x == 'R' || x == 'C' {
			if i+1 < len(tokens) {
				f.OldPath = string(tokens[i+1])
				i++
			}
		}
		files = append(files, f)
	}
	return files
}

func (e *RealExecutor) workingStatus(ctx context.Context, repo, path string) (ChangedFile, bool, error) {
	files, err := e.GetWorkingChanges(ctx, repo)
	if err != nil {
		return ChangedFile{}, false, err
	}
	f, ok := findFile(files, path)
	return f, ok, nil
}

// headOrEmpty returns HEAD, or the empty tree in an unborn repository.
func (e *RealExecutor) headOrEmpty(ctx context.Context, repo string) (string, error) {
	ok, err := e.headExists(ctx, repo)
	if err != nil {
		return "", err
	}
	if !ok {
		return EmptyTree, nil
	}
	return "HEAD", nil
}

// GetWorkingFileDiff returns the patch between HEAD and the file on disk.
func (e *RealExecutor) GetWorkingFileDiff(ctx context.Context, repo, path string) (FileDiff, error) {
	f, _, err := e.workingStatus(ctx, repo, path)
	if err != nil {
		return FileDiff{}, err
	}

	if f.Status == StatusUntracked {
		// --no-index exits 1 when the inputs differ
		out, err := e.runAllowing(ctx, repo, []int{1}, "diff", "--no-color", "--no-ext-diff", "--no-index", "--", os.DevNull, path)
		if err != nil {
			return FileDiff{}, fmt.Errorf("failed to diff %s: %w", path, err)
		}
		return newFileDiff(path, string(out)), nil
	}

	base, err := e.headOrEmpty(ctx, repo)
	if err != nil {
		return FileDiff{}, err
	}
	paths := []string{path}
	if f.OldPath != "" {
		paths = append(paths, f.OldPath)
	}
	args := append([]string{"diff", "-M", "--no-color", "--no-ext-diff", base, "--"}, paths...)
	out, err := e.run(ctx, repo, args...)
	if err != nil {
		return FileDiff{}, fmt.Errorf("failed to diff %s: %w", path, err)
	}
	return newFileDiff(path, string(out)), nil
}

// GetWorkingFileContents returns the HEAD version and the on-disk version
// of a file.
func (e *RealExecutor) GetWorkingFileContents(ctx context.Context, repo, path string) (FileContents, error) {
	f, _, err := e.workingStatus(ctx, repo, path)
	if err != nil {
		return FileContents{}, err
	}

	base, err := e.headOrEmpty(ctx, repo)
	if err != nil {
		return FileContents{}, err
	}
	oldPath := path
	if f.OldPath != "" {
		oldPath = f.OldPath
	}

	var oldData []byte
	if f.Status != StatusUntracked {
		if oldData, err = e.blob(ctx, repo, base, oldPath); err != nil {
			return FileContents{}, err
		}
	}

	newData, err := os.ReadFile(filepath.Join(repo, filepath.FromSlash(path)))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return FileContents{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
		newData = nil
	} else if newData == nil {
		newData = []byte{}
	}

	return newFileContents(oldData, newData), nil
}
