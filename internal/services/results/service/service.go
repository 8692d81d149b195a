// Package service implements the results persistence service
package service

import (
	"context"
	"encoding/json"

	"outlier/internal/modkit"
	"outlier/internal/modkit/repokit"
	perr "outlier/internal/platform/errors"
	"outlier/internal/platform/logger"
	"outlier/internal/platform/metrics"
	pstrings "outlier/internal/platform/strings"
	"outlier/internal/platform/validate"
	dom "outlier/internal/services/results/domain"
	"outlier/internal/services/results/repo"
)

// Config controls the results service
type Config struct {
	// BulkLimit caps pending actions before an implicit flush;
	// DefaultBulkLimit when <= 0
	BulkLimit int

	// Naming resolves job targets; DefaultNaming when nil
	Naming dom.Naming

	// OnDiagnostic observes degraded-write events as they happen (optional)
	OnDiagnostic func(dom.Diagnostic)
}

// Svc implements domain.WriterPort, domain.CommitPort and domain.RenormPort
type Svc struct {
	repo    repo.Storage
	metrics *metrics.Collector
	cfg     Config
}

// New constructs the results service over the document seam in deps
func New(deps modkit.Deps, cfg Config) *Svc {
	if cfg.BulkLimit <= 0 {
		cfg.BulkLimit = DefaultBulkLimit
	}
	if cfg.Naming == nil {
		cfg.Naming = dom.DefaultNaming()
	}
	return &Svc{
		repo:    repokit.MustBind(repo.NewDocs(), deps.Docs),
		metrics: deps.Metrics,
		cfg:     cfg,
	}
}

// Bulk implements domain.WriterPort
func (s *Svc) Bulk(jobID string) dom.BulkPort {
	pstrings.MustString(jobID, "jobID")
	return newBulk(s, jobID)
}

// Renorm implements domain.RenormPort
func (s *Svc) Renorm(jobID string) dom.RenormBulkPort {
	pstrings.MustString(jobID, "jobID")
	return newRenorm(s, jobID)
}

// PersistCategoryDefinition implements domain.WriterPort.
// No refresh: these arrive in masses and are not read back by this process
func (s *Svc) PersistCategoryDefinition(ctx context.Context, c *dom.CategoryDefinition) error {
	target := s.cfg.Naming.ResultsWriteTarget(c.JobID)
	_, err := s.persistWait(ctx, target, c.DocID(), c, dom.KindCategoryDefinition, c.JobID, repokit.RefreshNone)
	return err
}

// PersistQuantiles implements domain.WriterPort
func (s *Svc) PersistQuantiles(ctx context.Context, q *dom.Quantiles) error {
	_, err := s.persistWait(ctx, s.cfg.Naming.StateWriteTarget(), q.DocID(), q, dom.KindQuantiles, q.JobID, repokit.RefreshNone)
	return err
}

// PersistQuantilesAsync implements domain.WriterPort
func (s *Svc) PersistQuantilesAsync(
	ctx context.Context,
	q *dom.Quantiles,
	policy repokit.RefreshPolicy,
	done repokit.WriteCallback,
) {
	s.persistAsync(ctx, s.cfg.Naming.StateWriteTarget(), q.DocID(), q, dom.KindQuantiles, q.JobID, policy, done)
}

// PersistModelSnapshot implements domain.WriterPort
func (s *Svc) PersistModelSnapshot(
	ctx context.Context,
	ms *dom.ModelSnapshot,
	policy repokit.RefreshPolicy,
) (repokit.WriteResult, error) {
	target := s.cfg.Naming.ResultsWriteTarget(ms.JobID)
	return s.persistWait(ctx, target, ms.DocID(), ms, dom.KindModelSnapshot, ms.JobID, policy)
}

// PersistModelSizeStats implements domain.WriterPort
func (s *Svc) PersistModelSizeStats(ctx context.Context, st *dom.ModelSizeStats) error {
	logger.C(ctx).Trace().
		Str("job_id", st.JobID).
		Int64("model_bytes", st.ModelBytes).
		Msg("persisting model size stats")

	target := s.cfg.Naming.ResultsWriteTarget(st.JobID)
	_, err := s.persistWait(ctx, target, st.DocID(), st, dom.KindModelSizeStats, st.JobID, repokit.RefreshNone)
	return err
}

// PersistModelSizeStatsAsync implements domain.WriterPort
func (s *Svc) PersistModelSizeStatsAsync(
	ctx context.Context,
	st *dom.ModelSizeStats,
	policy repokit.RefreshPolicy,
	done repokit.WriteCallback,
) {
	logger.C(ctx).Trace().
		Str("job_id", st.JobID).
		Int64("model_bytes", st.ModelBytes).
		Msg("persisting model size stats")

	target := s.cfg.Naming.ResultsWriteTarget(st.JobID)
	s.persistAsync(ctx, target, st.DocID(), st, dom.KindModelSizeStats, st.JobID, policy, done)
}

// DeleteInterimResults implements domain.WriterPort. The read-side name is
// used so interim documents behind a rolled-over alias are covered too
func (s *Svc) DeleteInterimResults(ctx context.Context, jobID string) (int64, error) {
	n, err := s.repo.DeleteInterim(ctx, s.cfg.Naming.ResultsReadTarget(jobID), jobID)
	s.metrics.RecordDeleted(n)
	return n, err
}

// CommitResultWrites implements domain.CommitPort. Refreshing the read-side
// name guarantees every backing target is covered even if a rollover happened
// between the writes and this call
func (s *Svc) CommitResultWrites(ctx context.Context, jobID string) error {
	target := s.cfg.Naming.ResultsReadTarget(jobID)
	logger.C(ctx).Trace().Str("job_id", jobID).Str("target", target).Msg("refresh results")
	if err := s.repo.RefreshTargets(ctx, target); err != nil {
		return err
	}
	s.metrics.RecordCommit()
	return nil
}

// CommitStateWrites implements domain.CommitPort
func (s *Svc) CommitStateWrites(ctx context.Context, jobID string) error {
	target := s.cfg.Naming.StateReadTarget()
	logger.C(ctx).Trace().Str("job_id", jobID).Str("target", target).Msg("refresh state")
	if err := s.repo.RefreshTargets(ctx, target); err != nil {
		return err
	}
	s.metrics.RecordCommit()
	return nil
}

// persistAsync serializes one document and issues the write without blocking.
// A document that fails validation or serialization is logged, recorded and
// degraded to a noop outcome; the pipeline keeps moving
func (s *Svc) persistAsync(
	ctx context.Context,
	target, id string,
	doc any,
	kind, jobID string,
	policy repokit.RefreshPolicy,
	done repokit.WriteCallback,
) {
	body, diagKind, err := marshalDoc(doc)
	if err != nil {
		s.drop(ctx, id, kind, jobID, diagKind, err)
		if done != nil {
			go done(repokit.WriteNoop, nil)
		}
		return
	}

	action := repokit.BulkAction{Target: target, ID: id, Body: body}
	s.repo.WriteDocAsync(ctx, action, policy, func(res repokit.WriteResult, err error) {
		s.metrics.RecordWrite(res.String())
		if done != nil {
			done(res, err)
		}
	})
}

// persistWait is the blocking variant of persistAsync, same degrade policy
func (s *Svc) persistWait(
	ctx context.Context,
	target, id string,
	doc any,
	kind, jobID string,
	policy repokit.RefreshPolicy,
) (repokit.WriteResult, error) {
	body, diagKind, err := marshalDoc(doc)
	if err != nil {
		s.drop(ctx, id, kind, jobID, diagKind, err)
		return repokit.WriteNoop, nil
	}

	action := repokit.BulkAction{Target: target, ID: id, Body: body}
	res, err := s.repo.WriteDoc(ctx, action, policy)
	s.metrics.RecordWrite(res.String())
	return res, err
}

// drop records one degraded single-document write
func (s *Svc) drop(ctx context.Context, id, kind, jobID string, diagKind dom.DiagnosticKind, err error) {
	logger.C(ctx).Error().Err(err).
		Str("job_id", jobID).
		Str("kind", kind).
		Str("doc_id", id).
		Msg("error writing document, dropped")
	s.note(dom.Diagnostic{Kind: diagKind, JobID: jobID, DocID: id, DocKind: kind, Cause: err.Error()})
	s.metrics.RecordDropped(kind)
	s.metrics.RecordWrite(repokit.WriteNoop.String())
}

// note forwards a diagnostic to the configured observer, if any
func (s *Svc) note(d dom.Diagnostic) {
	if s.cfg.OnDiagnostic != nil {
		s.cfg.OnDiagnostic(d)
	}
}

// marshalDoc validates then serializes a document for the wire. The returned
// kind classifies the failure when err is non-nil
func marshalDoc(doc any) ([]byte, dom.DiagnosticKind, error) {
	if err := validate.Struct(doc); err != nil {
		return nil, dom.DiagValidation, err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, dom.DiagSerialization, perr.Wrapf(err, perr.ErrorCodeJSON, "marshal document")
	}
	return body, "", nil
}
