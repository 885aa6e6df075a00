package testutil

import (
	"os"
	"path/filepath"
	"time"

	"github.com/stretchr/testify/require"
)

// change mutates the working tree before a commit.
type change func(r *Repo)

// commitData holds everything needed to create one commit.
type commitData struct {
	message string
	author  string
	at      time.Time
	changes []change
}

// CommitOption configures a commit during builder setup.
type CommitOption func(*commitData)

// Author sets the commit author.
func Author(name, email string) CommitOption {
	return func(c *commitData) { c.author = name + " <" + email + ">" }
}

// At sets author and committer time.
func At(t time.Time) CommitOption {
	return func(c *commitData) { c.at = t }
}

// Writes adds file writes to the commit.
func Writes(path, content string) CommitOption {
	return func(c *commitData) { c.changes = append(c.changes, Write(path, content)) }
}

// WritesBytes adds a raw file write, for binary fixtures.
func WritesBytes(path string, data []byte) CommitOption {
	return func(c *commitData) { c.changes = append(c.changes, writeBytes(path, data)) }
}

// Removes deletes a file in the commit.
func Removes(path string) CommitOption {
	return func(c *commitData) { c.changes = append(c.changes, Remove(path)) }
}

// Moves renames a file in the commit.
func Moves(from, to string) CommitOption {
	return func(c *commitData) { c.changes = append(c.changes, move(from, to)) }
}

// Write creates or overwrites path.
func Write(path, content string) change {
	return writeBytes(path, []byte(content))
}

func writeBytes(path string, data []byte) change {
	return func(r *Repo) {
		r.t.Helper()
		full := r.abs(path)
		require.NoError(r.t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(r.t, os.WriteFile(full, data, 0o644))
	}
}

// Remove deletes path.
func Remove(path string) change {
	return func(r *Repo) {
		r.t.Helper()
		require.NoError(r.t, os.Remove(r.abs(path)))
	}
}

func move(from, to string) change {
	return func(r *Repo) {
		r.t.Helper()
		require.NoError(r.t, os.MkdirAll(filepath.Dir(r.abs(to)), 0o755))
		require.NoError(r.t, os.Rename(r.abs(from), r.abs(to)))
	}
}
