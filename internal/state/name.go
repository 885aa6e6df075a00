package state

import "strings"

// RepoName derives a display name from the last segment of path. Both '/'
// and '\' count as separators and trailing separators are ignored, so
// "C:\Users\x\my-app" and "/a/b/repo/" yield "my-app" and "repo".
func RepoName(path string) string {
	trimmed := strings.TrimRight(path, `/\`)
	if trimmed == "" {
		return path
	}
	if i := strings.LastIndexAny(trimmed, `/\`); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
