package domain

import (
	"context"

	"outlier/internal/modkit/repokit"
)

// BulkPort accumulates result documents for one job and writes them in bulk.
// Instances are single-goroutine; obtain one per processing cycle. Add calls
// return an error only when an implicit flush hits a transport failure;
// documents that fail validation or serialization are dropped and recorded
// as diagnostics, never failing the batch
type BulkPort interface {
	AddBucket(ctx context.Context, b *Bucket) error
	AddRecords(ctx context.Context, rs []AnomalyRecord) error
	AddInfluencers(ctx context.Context, xs []Influencer) error
	AddModelPlot(ctx context.Context, mp *ModelPlot) error
	AddForecast(ctx context.Context, f *Forecast) error
	AddForecastRequestStats(ctx context.Context, fs *ForecastRequestStats) error

	// Flush writes all pending actions in one call and empties the batch.
	// A batch with nothing pending is a no-op
	Flush(ctx context.Context) error

	// Pending reports the queued action count
	Pending() int

	// Diagnostics returns the degraded-write events recorded so far
	Diagnostics() []Diagnostic
}

// RenormBulkPort rewrites rescored documents in the target they were read
// from. Shares BulkPort's batching and failure semantics
type RenormBulkPort interface {
	// UpdateBucket rewrites the bucket (record-free) and its bucket influencers
	UpdateBucket(ctx context.Context, n Normalizable) error

	// UpdateResults rewrites a list of rescored documents
	UpdateResults(ctx context.Context, ns []Normalizable) error

	// UpdateResult rewrites one document at (target, id)
	UpdateResult(ctx context.Context, target, id string, doc any) error

	Flush(ctx context.Context) error
	Pending() int
	Diagnostics() []Diagnostic
}

// WriterPort is the persistence surface the analysis pipeline drives
type WriterPort interface {
	// Bulk returns a batch builder scoped to one job. Panics on empty jobID
	Bulk(jobID string) BulkPort

	// PersistCategoryDefinition writes one category definition, blocking.
	// No refresh: these arrive in masses and are not read back here
	PersistCategoryDefinition(ctx context.Context, c *CategoryDefinition) error

	// PersistQuantiles writes the job's quantiles document, blocking
	PersistQuantiles(ctx context.Context, q *Quantiles) error

	// PersistQuantilesAsync writes the quantiles document without blocking;
	// done receives the outcome exactly once, off the caller's goroutine
	PersistQuantilesAsync(ctx context.Context, q *Quantiles, policy repokit.RefreshPolicy, done repokit.WriteCallback)

	// PersistModelSnapshot writes a model snapshot with the given visibility
	// policy, blocking, and reports whether it created or replaced
	PersistModelSnapshot(ctx context.Context, ms *ModelSnapshot, policy repokit.RefreshPolicy) (repokit.WriteResult, error)

	// PersistModelSizeStats writes the job's size stats document, blocking
	PersistModelSizeStats(ctx context.Context, st *ModelSizeStats) error

	// PersistModelSizeStatsAsync is the non-blocking variant
	PersistModelSizeStatsAsync(ctx context.Context, st *ModelSizeStats, policy repokit.RefreshPolicy, done repokit.WriteCallback)

	// DeleteInterimResults removes the job's interim result documents
	DeleteInterimResults(ctx context.Context, jobID string) (int64, error)
}

// CommitPort makes previously flushed writes visible to readers.
// Both operations are idempotent and harmless with nothing pending
type CommitPort interface {
	// CommitResultWrites refreshes the job's results through the read-side
	// name so a rollover between write and commit is still covered
	CommitResultWrites(ctx context.Context, jobID string) error

	// CommitStateWrites refreshes the shared state targets
	CommitStateWrites(ctx context.Context, jobID string) error
}

// RenormPort hands out renormalization writers
type RenormPort interface {
	// Renorm returns a rewrite builder scoped to one job. Panics on empty jobID
	Renorm(jobID string) RenormBulkPort
}
