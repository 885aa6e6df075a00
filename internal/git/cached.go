package git

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/zjrosen/lineage/internal/cachemanager"
)

type cacheKey string

// rangeKey identifies a commit set independent of selection order.
func rangeKey(repo string, ids []string, path string) cacheKey {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return cacheKey(repo + "\x00" + strings.Join(sorted, ",") + "\x00" + path)
}

type rangeQuery struct {
	repo string
	ids  []string
	path string
}

// CachedEngine serves immutable commit data from memory. Anything that
// depends on HEAD or the working tree passes straight through.
type CachedEngine struct {
	Engine
	ttl      time.Duration
	files    *cachemanager.ReadThroughCache[cacheKey, []ChangedFile, rangeQuery]
	contents *cachemanager.ReadThroughCache[cacheKey, FileContents, rangeQuery]
	diffs    *cachemanager.ReadThroughCache[cacheKey, FileDiff, rangeQuery]
	flush    []func(context.Context) error
}

// NewCachedEngine wraps inner. With enabled false every call goes to inner.
func NewCachedEngine(inner Engine, ttl time.Duration, enabled bool) *CachedEngine {
	if ttl <= 0 {
		ttl = cachemanager.DefaultExpiration
	}

	filesCache := cachemanager.NewInMemoryCacheManager[cacheKey, []ChangedFile]("commit-files", ttl, cachemanager.DefaultCleanupInterval)
	contentsCache := cachemanager.NewInMemoryCacheManager[cacheKey, FileContents]("file-contents", ttl, cachemanager.DefaultCleanupInterval)
	diffsCache := cachemanager.NewInMemoryCacheManager[cacheKey, FileDiff]("file-diffs", ttl, cachemanager.DefaultCleanupInterval)

	return &CachedEngine{
		Engine: inner,
		ttl:    ttl,
		files: cachemanager.NewReadThroughCache[cacheKey, []ChangedFile, rangeQuery](filesCache, func(ctx context.Context, q rangeQuery) ([]ChangedFile, error) {
			return inner.GetCommitRangeFiles(ctx, q.repo, q.ids)
		}, !enabled),
		contents: cachemanager.NewReadThroughCache[cacheKey, FileContents, rangeQuery](contentsCache, func(ctx context.Context, q rangeQuery) (FileContents, error) {
			return inner.GetCommitRangeFileContents(ctx, q.repo, q.ids, q.path)
		}, !enabled),
		diffs: cachemanager.NewReadThroughCache[cacheKey, FileDiff, rangeQuery](diffsCache, func(ctx context.Context, q rangeQuery) (FileDiff, error) {
			return inner.GetFileDiff(ctx, q.repo, q.ids[0], q.path)
		}, !enabled),
		flush: []func(context.Context) error{filesCache.Flush, contentsCache.Flush, diffsCache.Flush},
	}
}

func (c *CachedEngine) GetCommitFiles(ctx context.Context, repo, commitID string) ([]ChangedFile, error) {
	return c.GetCommitRangeFiles(ctx, repo, []string{commitID})
}

func (c *CachedEngine) GetCommitRangeFiles(ctx context.Context, repo string, commitIDs []string) ([]ChangedFile, error) {
	q := rangeQuery{repo: repo, ids: commitIDs}
	return c.files.GetWithRefresh(ctx, rangeKey(repo, commitIDs, ""), q, c.ttl)
}

func (c *CachedEngine) GetFileDiff(ctx context.Context, repo, commitID, path string) (FileDiff, error) {
	q := rangeQuery{repo: repo, ids: []string{commitID}, path: path}
	return c.diffs.GetWithRefresh(ctx, rangeKey(repo, q.ids, path), q, c.ttl)
}

func (c *CachedEngine) GetFileContents(ctx context.Context, repo, commitID, path string) (FileContents, error) {
	return c.GetCommitRangeFileContents(ctx, repo, []string{commitID}, path)
}

func (c *CachedEngine) GetCommitRangeFileContents(ctx context.Context, repo string, commitIDs []string, path string) (FileContents, error) {
	q := rangeQuery{repo: repo, ids: commitIDs, path: path}
	return c.contents.GetWithRefresh(ctx, rangeKey(repo, commitIDs, path), q, c.ttl)
}

// Flush drops every cached entry.
func (c *CachedEngine) Flush(ctx context.Context) {
	for _, f := range c.flush {
		_ = f(ctx)
	}
}
