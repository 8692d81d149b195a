// Package repo provides the results write surface over the document seam
package repo

import (
	"context"

	"outlier/internal/modkit/repokit"
	perr "outlier/internal/platform/errors"
	"outlier/internal/platform/logger"
)

type (
	docs   struct{ d repokit.Docs }
	binder struct{}
)

// NewDocs constructs a repo binder over the document seam
func NewDocs() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(d repokit.Docs) Storage { return &docs{d: d} }

// Storage is the job-agnostic write surface for result and state documents
type Storage interface {
	BulkWrite(ctx context.Context, actions []repokit.BulkAction) (repokit.BulkResult, error)
	WriteDoc(ctx context.Context, action repokit.BulkAction, policy repokit.RefreshPolicy) (repokit.WriteResult, error)
	WriteDocAsync(ctx context.Context, action repokit.BulkAction, policy repokit.RefreshPolicy, done repokit.WriteCallback)
	RefreshTargets(ctx context.Context, targets ...string) error
	DeleteInterim(ctx context.Context, target, jobID string) (int64, error)
}

// BulkWrite implements Storage
func (s *docs) BulkWrite(ctx context.Context, actions []repokit.BulkAction) (repokit.BulkResult, error) {
	res, err := s.d.BulkWrite(ctx, actions)
	if err != nil {
		return res, perr.WithOp(err, "results.bulk")
	}
	return res, nil
}

// WriteDoc implements Storage
func (s *docs) WriteDoc(
	ctx context.Context,
	action repokit.BulkAction,
	policy repokit.RefreshPolicy,
) (repokit.WriteResult, error) {
	logger.C(ctx).Trace().
		Str("target", action.Target).
		Str("doc_id", action.ID).
		Str("refresh", policy.String()).
		Msg("store call: write document")

	res, err := s.d.Write(ctx, action, policy)
	if err != nil {
		return res, perr.WithOp(err, "results.write")
	}
	return res, nil
}

// WriteDocAsync implements Storage
func (s *docs) WriteDocAsync(
	ctx context.Context,
	action repokit.BulkAction,
	policy repokit.RefreshPolicy,
	done repokit.WriteCallback,
) {
	logger.C(ctx).Trace().
		Str("target", action.Target).
		Str("doc_id", action.ID).
		Str("refresh", policy.String()).
		Msg("store call: write document async")

	s.d.WriteAsync(ctx, action, policy, done)
}

// RefreshTargets implements Storage
func (s *docs) RefreshTargets(ctx context.Context, targets ...string) error {
	logger.C(ctx).Trace().Strs("targets", targets).Msg("store call: refresh")
	if err := s.d.Refresh(ctx, targets...); err != nil {
		return perr.WithOp(err, "results.refresh")
	}
	return nil
}

// DeleteInterim implements Storage. Matches on the job id plus the interim
// marker every interim result document carries
func (s *docs) DeleteInterim(ctx context.Context, target, jobID string) (int64, error) {
	match := map[string]any{"job_id": jobID, "is_interim": true}
	n, err := s.d.DeleteMatching(ctx, target, match)
	if err != nil {
		return n, perr.WithOp(err, "results.delete_interim")
	}
	logger.C(ctx).Debug().Str("target", target).Int64("deleted", n).Msg("interim results deleted")
	return n, nil
}
