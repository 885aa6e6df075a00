package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/lineage/internal/git"
)

// Span attribute keys for git engine calls.
const (
	AttrRepo        = "git.repo"
	AttrCommitID    = "git.commit"
	AttrCommitCount = "git.commit_count"
	AttrPath        = "git.path"
	AttrBranch      = "git.branch"
	AttrLimit       = "git.limit"
	AttrResultCount = "git.result_count"
)

// SpanPrefix starts every engine span name.
const SpanPrefix = "git."

// TracedEngine records one span per call to the wrapped engine.
type TracedEngine struct {
	inner  git.Engine
	tracer trace.Tracer
}

var _ git.Engine = (*TracedEngine)(nil)

// WrapEngine returns inner unchanged when tracer is nil.
func WrapEngine(inner git.Engine, tracer trace.Tracer) git.Engine {
	if tracer == nil {
		return inner
	}
	return &TracedEngine{inner: inner, tracer: tracer}
}

func (e *TracedEngine) start(ctx context.Context, method, repo string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := e.tracer.Start(ctx, SpanPrefix+method, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String(AttrRepo, repo))
	span.SetAttributes(attrs...)
	return ctx, span
}

func finish(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attrs...)
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func rangeAttrs(ids []string) attribute.KeyValue {
	return attribute.Int(AttrCommitCount, len(ids))
}

func (e *TracedEngine) ListCommits(ctx context.Context, repo string, limit int) ([]git.Commit, error) {
	ctx, span := e.start(ctx, "ListCommits", repo, attribute.Int(AttrLimit, limit))
	out, err := e.inner.ListCommits(ctx, repo, limit)
	finish(span, err, attribute.Int(AttrResultCount, len(out)))
	return out, err
}

func (e *TracedEngine) GetCommitFiles(ctx context.Context, repo, commitID string) ([]git.ChangedFile, error) {
	ctx, span := e.start(ctx, "GetCommitFiles", repo, attribute.String(AttrCommitID, commitID))
	out, err := e.inner.GetCommitFiles(ctx, repo, commitID)
	finish(span, err, attribute.Int(AttrResultCount, len(out)))
	return out, err
}

func (e *TracedEngine) GetCommitRangeFiles(ctx context.Context, repo string, commitIDs []string) ([]git.ChangedFile, error) {
	ctx, span := e.start(ctx, "GetCommitRangeFiles", repo, rangeAttrs(commitIDs))
	out, err := e.inner.GetCommitRangeFiles(ctx, repo, commitIDs)
	finish(span, err, attribute.Int(AttrResultCount, len(out)))
	return out, err
}

func (e *TracedEngine) GetFileDiff(ctx context.Context, repo, commitID, path string) (git.FileDiff, error) {
	ctx, span := e.start(ctx, "GetFileDiff", repo, attribute.String(AttrCommitID, commitID), attribute.String(AttrPath, path))
	out, err := e.inner.GetFileDiff(ctx, repo, commitID, path)
	finish(span, err)
	return out, err
}

func (e *TracedEngine) GetFileContents(ctx context.Context, repo, commitID, path string) (git.FileContents, error) {
	ctx, span := e.start(ctx, "GetFileContents", repo, attribute.String(AttrCommitID, commitID), attribute.String(AttrPath, path))
	out, err := e.inner.GetFileContents(ctx, repo, commitID, path)
	finish(span, err)
	return out, err
}

func (e *TracedEngine) GetCommitRangeFileContents(ctx context.Context, repo string, commitIDs []string, path string) (git.FileContents, error) {
	ctx, span := e.start(ctx, "GetCommitRangeFileContents", repo, rangeAttrs(commitIDs), attribute.String(AttrPath, path))
	out, err := e.inner.GetCommitRangeFileContents(ctx, repo, commitIDs, path)
	finish(span, err)
	return out, err
}

func (e *TracedEngine) GetCurrentBranch(ctx context.Context, repo string) (string, error) {
	ctx, span := e.start(ctx, "GetCurrentBranch", repo)
	out, err := e.inner.GetCurrentBranch(ctx, repo)
	finish(span, err, attribute.String(AttrBranch, out))
	return out, err
}

func (e *TracedEngine) ListBranches(ctx context.Context, repo string) ([]git.Branch, error) {
	ctx, span := e.start(ctx, "ListBranches", repo)
	out, err := e.inner.ListBranches(ctx, repo)
	finish(span, err, attribute.Int(AttrResultCount, len(out)))
	return out, err
}

func (e *TracedEngine) CheckoutBranch(ctx context.Context, repo, name string) error {
	ctx, span := e.start(ctx, "CheckoutBranch", repo, attribute.String(AttrBranch, name))
	err := e.inner.CheckoutBranch(ctx, repo, name)
	finish(span, err)
	return err
}

func (e *TracedEngine) ValidateRepo(ctx context.Context, path string) (git.RepoInfo, error) {
	ctx, span := e.start(ctx, "ValidateRepo", path)
	out, err := e.inner.ValidateRepo(ctx, path)
	finish(span, err, attribute.String(AttrBranch, out.Branch))
	return out, err
}

func (e *TracedEngine) GetWorkingChanges(ctx context.Context, repo string) ([]git.ChangedFile, error) {
	ctx, span := e.start(ctx, "GetWorkingChanges", repo)
	out, err := e.inner.GetWorkingChanges(ctx, repo)
	finish(span, err, attribute.Int(AttrResultCount, len(out)))
	return out, err
}

func (e *TracedEngine) GetWorkingFileDiff(ctx context.Context, repo, path string) (git.FileDiff, error) {
	ctx, span := e.start(ctx, "GetWorkingFileDiff", repo, attribute.String(AttrPath, path))
	out, err := e.inner.GetWorkingFileDiff(ctx, repo, path)
	finish(span, err)
	return out, err
}

func (e *TracedEngine) GetWorkingFileContents(ctx context.Context, repo, path string) (git.FileContents, error) {
	ctx, span := e.start(ctx, "GetWorkingFileContents", repo, attribute.String(AttrPath, path))
	out, err := e.inner.GetWorkingFileContents(ctx, repo, path)
	finish(span, err)
	return out, err
}
