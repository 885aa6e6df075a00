package log

import (
	"strings"
	"time"
)

// ErrorReport describes a failure the UI surfaced to the user or recovered
// from. Only Source and Message are required.
type ErrorReport struct {
	Source    string
	Message   string
	Stack     string
	Context   map[string]string
	Timestamp time.Time
}

// Report writes r as an error entry, followed by one entry per context key
// and one for the stack when present.
func Report(r ErrorReport) {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	Error(CatReport, "error reported", "source", r.Source, "message", r.Message, "timestamp", ts.Format(time.RFC3339))

	for k, v := range r.Context {
		Error(CatReport, "error context", "source", r.Source, k, v)
	}
	if stack := strings.TrimSpace(r.Stack); stack != "" {
		Error(CatReport, "error stack", "source", r.Source, "stack", strings.ReplaceAll(stack, "\n", " | "))
	}
}
