// Package metrics provides prometheus collectors for the results persistence path
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector bundles the write-path instruments. A nil *Collector is valid and
// every method on it is a no-op, so callers never need to guard
type Collector struct {
	docsAdded   *prometheus.CounterVec
	docsDropped *prometheus.CounterVec

	bulkFlushes      prometheus.Counter
	bulkItemFailures prometheus.Counter
	flushDocs        prometheus.Histogram
	flushSeconds     prometheus.Histogram

	directWrites *prometheus.CounterVec
	commits      prometheus.Counter
	deletedDocs  prometheus.Counter
}

// NewCollector builds and registers the collectors on reg
// (prometheus.DefaultRegisterer when nil)
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		docsAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "results_docs_added_total",
			Help: "Documents appended to a bulk batch, by document kind",
		}, []string{"kind"}),
		docsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "results_docs_dropped_total",
			Help: "Documents dropped before write (serialization or validation failure), by kind",
		}, []string{"kind"}),
		bulkFlushes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "results_bulk_flushes_total",
			Help: "Bulk flushes issued to the document store",
		}),
		bulkItemFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "results_bulk_item_failures_total",
			Help: "Individual bulk actions rejected by the document store",
		}),
		flushDocs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "results_bulk_flush_docs",
			Help:    "Number of documents per bulk flush",
			Buckets: []float64{1, 10, 100, 1000, 5000, 10000, 20000},
		}),
		flushSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "results_bulk_flush_seconds",
			Help:    "Bulk flush round-trip latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		directWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "results_direct_writes_total",
			Help: "Single-document writes, by outcome (created, updated, noop)",
		}, []string{"result"}),
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "results_commits_total",
			Help: "Commit (refresh) operations issued",
		}),
		deletedDocs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "results_deleted_docs_total",
			Help: "Documents removed by interim-result deletes",
		}),
	}

	reg.MustRegister(
		c.docsAdded,
		c.docsDropped,
		c.bulkFlushes,
		c.bulkItemFailures,
		c.flushDocs,
		c.flushSeconds,
		c.directWrites,
		c.commits,
		c.deletedDocs,
	)

	return c
}

// RecordAdded counts a document appended to a batch
func (c *Collector) RecordAdded(kind string) {
	if c == nil {
		return
	}
	c.docsAdded.WithLabelValues(kind).Inc()
}

// RecordDropped counts a document dropped before it reached the store
func (c *Collector) RecordDropped(kind string) {
	if c == nil {
		return
	}
	c.docsDropped.WithLabelValues(kind).Inc()
}

// RecordFlush counts one bulk flush with its size and latency
func (c *Collector) RecordFlush(docs int, seconds float64) {
	if c == nil {
		return
	}
	c.bulkFlushes.Inc()
	c.flushDocs.Observe(float64(docs))
	c.flushSeconds.Observe(seconds)
}

// RecordBulkItemFailures counts per-item rejections from one bulk response
func (c *Collector) RecordBulkItemFailures(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.bulkItemFailures.Add(float64(n))
}

// RecordWrite counts a single-document write outcome
func (c *Collector) RecordWrite(result string) {
	if c == nil {
		return
	}
	c.directWrites.WithLabelValues(result).Inc()
}

// RecordCommit counts a refresh operation
func (c *Collector) RecordCommit() {
	if c == nil {
		return
	}
	c.commits.Inc()
}

// RecordDeleted counts documents removed by a delete-by-query
func (c *Collector) RecordDeleted(n int64) {
	if c == nil || n <= 0 {
		return
	}
	c.deletedDocs.Add(float64(n))
}
