package domain

import "fmt"

// Deterministic document ids. Writing the same logical result twice produces
// the same id, so re-runs upsert instead of duplicating. Influencer carries
// no DocID on purpose: those documents get store-assigned ids.

// DocID identifies a bucket by job, window start and span
func (b Bucket) DocID() string {
	return fmt.Sprintf("%s_bucket_%d_%d", b.JobID, b.Timestamp.UnixMilli(), b.BucketSpan)
}

// DocID identifies a bucket influencer by window and influencer field
func (bi BucketInfluencer) DocID() string {
	return fmt.Sprintf("%s_bucket_influencer_%d_%d_%s",
		bi.JobID, bi.Timestamp.UnixMilli(), bi.BucketSpan, bi.InfluencerFieldName)
}

// DocID identifies a record by window, detector and sequence number
func (r AnomalyRecord) DocID() string {
	return fmt.Sprintf("%s_record_%d_%d_%d_%d",
		r.JobID, r.Timestamp.UnixMilli(), r.BucketSpan, r.DetectorIndex, r.SequenceNum)
}

// DocID identifies a model plot point by window and detector
func (mp ModelPlot) DocID() string {
	return fmt.Sprintf("%s_model_plot_%d_%d_%d",
		mp.JobID, mp.Timestamp.UnixMilli(), mp.BucketSpan, mp.DetectorIndex)
}

// DocID identifies a forecast point by run, window and detector
func (f Forecast) DocID() string {
	return fmt.Sprintf("%s_model_forecast_%s_%d_%d_%d",
		f.JobID, f.ForecastID, f.Timestamp.UnixMilli(), f.BucketSpan, f.DetectorIndex)
}

// DocID identifies the stats document of one forecast run
func (fs ForecastRequestStats) DocID() string {
	return fmt.Sprintf("%s_model_forecast_request_stats_%s", fs.JobID, fs.ForecastID)
}

// DocID identifies a category definition by its category number
func (c CategoryDefinition) DocID() string {
	return fmt.Sprintf("%s_category_definition_%d", c.JobID, c.CategoryID)
}

// DocID is the job's single quantiles document
func (q Quantiles) DocID() string {
	return q.JobID + "_quantiles"
}

// DocID identifies a model snapshot by its snapshot id
func (ms ModelSnapshot) DocID() string {
	return fmt.Sprintf("%s_model_snapshot_%s", ms.JobID, ms.SnapshotID)
}

// DocID is the job's single model size stats document
func (st ModelSizeStats) DocID() string {
	return st.JobID + "_model_size_stats"
}
