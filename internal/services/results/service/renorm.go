package service

import (
	"context"

	dom "outlier/internal/services/results/domain"
)

// Renorm rewrites rescored result documents in the target they were read
// from. Renormalization runs against existing documents, so unlike Bulk the
// write target travels with each document: the alias may have rolled over
// since the document was first written. Shares the bulk limit and the whole
// skip/log/reset policy with Bulk
type Renorm struct {
	bulkCore
}

var _ dom.RenormBulkPort = (*Renorm)(nil)

func newRenorm(s *Svc, jobID string) *Renorm {
	return &Renorm{bulkCore: newCore(s, jobID, "results.renorm")}
}

// UpdateBucket implements domain.RenormBulkPort. The bucket is rewritten
// record-free under its own id and its bucket influencers are rewritten
// standalone, all in the bucket's originating target
func (r *Renorm) UpdateBucket(ctx context.Context, n dom.Normalizable) error {
	bk, ok := bucketOf(n.Doc)
	if !ok {
		r.log.Error().Str("doc_id", n.ID).Msg("renormalized document is not a bucket, dropped")
		r.note(dom.Diagnostic{
			Kind:    dom.DiagValidation,
			JobID:   r.jobID,
			DocID:   n.ID,
			DocKind: dom.KindBucket,
			Cause:   "renormalized document is not a bucket",
		})
		return nil
	}

	clean := bk.WithoutRecords()
	id := n.ID
	if id == "" {
		id = clean.DocID()
	}
	if err := r.add(ctx, n.Target, id, &clean, dom.KindBucket); err != nil {
		return err
	}
	for i := range clean.BucketInfluencers {
		bi := clean.BucketInfluencers[i]
		if err := r.add(ctx, n.Target, bi.DocID(), &bi, dom.KindBucketInfluencer); err != nil {
			return err
		}
	}
	return nil
}

// UpdateResults implements domain.RenormBulkPort. Buckets in the list take
// the bucket path so their nested records stay out of the store
func (r *Renorm) UpdateResults(ctx context.Context, ns []dom.Normalizable) error {
	for _, n := range ns {
		if _, ok := bucketOf(n.Doc); ok {
			if err := r.UpdateBucket(ctx, n); err != nil {
				return err
			}
			continue
		}
		if err := r.add(ctx, n.Target, n.ID, n.Doc, kindOf(n.Doc)); err != nil {
			return err
		}
	}
	return nil
}

// UpdateResult implements domain.RenormBulkPort
func (r *Renorm) UpdateResult(ctx context.Context, target, id string, doc any) error {
	return r.add(ctx, target, id, doc, kindOf(doc))
}

func bucketOf(doc any) (dom.Bucket, bool) {
	switch b := doc.(type) {
	case *dom.Bucket:
		return *b, true
	case dom.Bucket:
		return b, true
	default:
		return dom.Bucket{}, false
	}
}

// kindOf classifies a document for logs, metrics and diagnostics
func kindOf(doc any) string {
	switch doc.(type) {
	case *dom.Bucket, dom.Bucket:
		return dom.KindBucket
	case *dom.BucketInfluencer, dom.BucketInfluencer:
		return dom.KindBucketInfluencer
	case *dom.AnomalyRecord, dom.AnomalyRecord:
		return dom.KindRecord
	case *dom.Influencer, dom.Influencer:
		return dom.KindInfluencer
	case *dom.ModelPlot, dom.ModelPlot:
		return dom.KindModelPlot
	default:
		return "result"
	}
}
