package testutil

import "fmt"

// WithLinearHistory adds n commits. Commit i (1-based) writes
// "file<i>.txt" and appends a line to "log.txt".
func (b *Builder) WithLinearHistory(n int) *Builder {
	log := ""
	for i := 1; i <= n; i++ {
		log += fmt.Sprintf("line %d\n", i)
		b.WithCommit(fmt.Sprintf("commit %d", i),
			Writes(fmt.Sprintf("file%d.txt", i), fmt.Sprintf("content %d\n", i)),
			Writes("log.txt", log),
		)
	}
	return b
}

// WithRenameHistory adds a commit creating "old.txt" followed by one
// renaming it to "new.txt".
//
//	c0: add old.txt
//	c1: rename old.txt -> new.txt, content unchanged
func (b *Builder) WithRenameHistory() *Builder {
	body := "alpha\nbeta\ngamma\ndelta\nepsilon\nzeta\neta\ntheta\n"
	return b.
		WithCommit("add old", Writes("old.txt", body)).
		WithCommit("rename", Moves("old.txt", "new.txt"))
}
