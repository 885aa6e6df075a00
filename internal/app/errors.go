package app

import (
	"errors"

	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/lineage/internal/git"
)

const nonConsecutiveText = "Selected commits must be consecutive. Select a contiguous range to compare them."

// errorText is the user-facing rendering of a failure.
func errorText(err error) string {
	if errors.Is(err, git.ErrNonConsecutiveCommits) {
		return nonConsecutiveText
	}
	return "Error: " + err.Error()
}

// wrappedError renders errorText wrapped to width.
func wrappedError(err error, width int) string {
	return wordwrap.String(errorText(err), max(width, 1))
}
