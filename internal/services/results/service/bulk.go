package service

import (
	"context"
	"time"

	"outlier/internal/modkit/repokit"
	"outlier/internal/platform/logger"
	dom "outlier/internal/services/results/domain"
)

// DefaultBulkLimit caps pending actions before an implicit flush. Shared by
// the results and renormalization writers
const DefaultBulkLimit = 10000

// bulkCore is the accumulate-and-flush engine behind Bulk and Renorm
type bulkCore struct {
	svc     *Svc
	jobID   string
	limit   int
	pending []repokit.BulkAction
	kinds   []string // parallel to pending, for failure attribution
	diags   []dom.Diagnostic
	log     logger.Logger
}

func newCore(s *Svc, jobID, component string) bulkCore {
	return bulkCore{
		svc:   s,
		jobID: jobID,
		limit: s.cfg.BulkLimit,
		log:   logger.Named(component).With().Str("job_id", jobID).Logger(),
	}
}

// add validates, serializes and queues one action. A document that cannot be
// serialized is logged, recorded and dropped, never failing the batch; an
// error comes back only when an implicit flush hits a transport failure
func (c *bulkCore) add(ctx context.Context, target, id string, doc any, kind string) error {
	body, diagKind, err := marshalDoc(doc)
	if err != nil {
		c.log.Error().Err(err).
			Str("kind", kind).
			Str("doc_id", id).
			Msg("error serialising result, document dropped")
		c.note(dom.Diagnostic{Kind: diagKind, JobID: c.jobID, DocID: id, DocKind: kind, Cause: err.Error()})
		c.svc.metrics.RecordDropped(kind)
		return nil
	}

	c.log.Trace().
		Str("kind", kind).
		Str("target", target).
		Str("doc_id", id).
		Msg("bulk action queued")
	c.pending = append(c.pending, repokit.BulkAction{Target: target, ID: id, Body: body})
	c.kinds = append(c.kinds, kind)
	c.svc.metrics.RecordAdded(kind)

	if len(c.pending) >= c.limit {
		return c.Flush(ctx)
	}
	return nil
}

// Flush writes every pending action in one call. The batch is spent whatever
// the store answers: partial failures are logged and recorded as diagnostics,
// not returned. Only transport errors propagate
func (c *bulkCore) Flush(ctx context.Context) error {
	if len(c.pending) == 0 {
		return nil
	}

	batch, kinds := c.pending, c.kinds
	c.pending, c.kinds = nil, nil

	c.log.Trace().Int("actions", len(batch)).Msg("bulk request")
	start := time.Now()
	res, err := c.svc.repo.BulkWrite(ctx, batch)
	c.svc.metrics.RecordFlush(len(batch), time.Since(start).Seconds())
	if err != nil {
		return err
	}

	if res.HasFailures() {
		fails := res.Failures()
		c.log.Error().
			Int("failed", len(fails)).
			Str("detail", res.FailureMessage()).
			Msg("bulk write of results has errors")
		for i, it := range res.Items {
			if !it.Failed() {
				continue
			}
			kind := ""
			if i < len(kinds) {
				kind = kinds[i]
			}
			c.note(dom.Diagnostic{Kind: dom.DiagBulkItem, JobID: c.jobID, DocID: it.ID, DocKind: kind, Cause: it.Cause})
		}
		c.svc.metrics.RecordBulkItemFailures(len(fails))
	}
	return nil
}

// Pending reports the queued action count
func (c *bulkCore) Pending() int { return len(c.pending) }

// Diagnostics returns the degraded-write events recorded so far
func (c *bulkCore) Diagnostics() []dom.Diagnostic { return c.diags }

func (c *bulkCore) note(d dom.Diagnostic) {
	c.diags = append(c.diags, d)
	c.svc.note(d)
}

// Bulk accumulates result documents for one job and writes them to the job's
// results target in one bulk call. Not safe for concurrent use: one instance
// per job per processing cycle
type Bulk struct {
	bulkCore
	target string
}

var _ dom.BulkPort = (*Bulk)(nil)

func newBulk(s *Svc, jobID string) *Bulk {
	return &Bulk{
		bulkCore: newCore(s, jobID, "results.bulk"),
		target:   s.cfg.Naming.ResultsWriteTarget(jobID),
	}
}

// AddBucket implements domain.BulkPort. The bucket is persisted without its
// nested records (the caller's bucket is untouched); bucket influencers are
// persisted both inside the bucket body and standalone with their own ids
func (b *Bulk) AddBucket(ctx context.Context, bk *dom.Bucket) error {
	clean := bk.WithoutRecords()
	if err := b.add(ctx, b.target, clean.DocID(), &clean, dom.KindBucket); err != nil {
		return err
	}
	for i := range clean.BucketInfluencers {
		bi := clean.BucketInfluencers[i]
		if err := b.add(ctx, b.target, bi.DocID(), &bi, dom.KindBucketInfluencer); err != nil {
			return err
		}
	}
	return nil
}

// AddRecords implements domain.BulkPort
func (b *Bulk) AddRecords(ctx context.Context, rs []dom.AnomalyRecord) error {
	for i := range rs {
		if err := b.add(ctx, b.target, rs[i].DocID(), &rs[i], dom.KindRecord); err != nil {
			return err
		}
	}
	return nil
}

// AddInfluencers implements domain.BulkPort. Influencers carry no
// deterministic id; the empty action id asks the store to assign one
func (b *Bulk) AddInfluencers(ctx context.Context, xs []dom.Influencer) error {
	for i := range xs {
		if err := b.add(ctx, b.target, "", &xs[i], dom.KindInfluencer); err != nil {
			return err
		}
	}
	return nil
}

// AddModelPlot implements domain.BulkPort
func (b *Bulk) AddModelPlot(ctx context.Context, mp *dom.ModelPlot) error {
	return b.add(ctx, b.target, mp.DocID(), mp, dom.KindModelPlot)
}

// AddForecast implements domain.BulkPort
func (b *Bulk) AddForecast(ctx context.Context, f *dom.Forecast) error {
	return b.add(ctx, b.target, f.DocID(), f, dom.KindForecast)
}

// AddForecastRequestStats implements domain.BulkPort
func (b *Bulk) AddForecastRequestStats(ctx context.Context, fs *dom.ForecastRequestStats) error {
	return b.add(ctx, b.target, fs.DocID(), fs, dom.KindForecastRequestStats)
}
