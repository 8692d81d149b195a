// Package domain defines the result and state document types for the results service
package domain

import "time"

// Document kinds as used in logs, metrics and diagnostics
const (
	KindBucket               = "bucket"
	KindBucketInfluencer     = "bucket_influencer"
	KindRecord               = "record"
	KindInfluencer           = "influencer"
	KindModelPlot            = "model_plot"
	KindForecast             = "model_forecast"
	KindForecastRequestStats = "model_forecast_request_stats"
	KindCategoryDefinition   = "category_definition"
	KindQuantiles            = "quantiles"
	KindModelSnapshot        = "model_snapshot"
	KindModelSizeStats       = "model_size_stats"
)

// Bucket is one fixed time window of analysis results.
// The anomaly score of the bucket may not match the summed score of all its
// records as not every record is necessarily outputted for the bucket.
// Bucket influencers are persisted both with the bucket and separately;
// nested records are never persisted inside a bucket
type Bucket struct {
	JobID               string             `json:"job_id" validate:"required"`
	Timestamp           time.Time          `json:"timestamp" validate:"required"`
	BucketSpan          int64              `json:"bucket_span" validate:"gt=0"` // seconds
	AnomalyScore        float64            `json:"anomaly_score"`
	InitialAnomalyScore float64            `json:"initial_anomaly_score"`
	EventCount          int64              `json:"event_count"`
	IsInterim           bool               `json:"is_interim"`
	ProcessingTimeMs    int64              `json:"processing_time_ms"`
	BucketInfluencers   []BucketInfluencer `json:"bucket_influencers,omitempty"`
	Records             []AnomalyRecord    `json:"records,omitempty"`
}

// WithoutRecords returns a shallow copy with the nested records cleared.
// The receiver is left untouched
func (b Bucket) WithoutRecords() Bucket {
	b.Records = nil
	return b
}

// BucketInfluencer scores one influencer field over a bucket's window
type BucketInfluencer struct {
	JobID               string    `json:"job_id" validate:"required"`
	Timestamp           time.Time `json:"timestamp" validate:"required"`
	BucketSpan          int64     `json:"bucket_span" validate:"gt=0"`
	InfluencerFieldName string    `json:"influencer_field_name" validate:"required"`
	AnomalyScore        float64   `json:"anomaly_score"`
	RawAnomalyScore     float64   `json:"raw_anomaly_score"`
	InitialAnomalyScore float64   `json:"initial_anomaly_score"`
	Probability         float64   `json:"probability"`
	IsInterim           bool      `json:"is_interim"`
}

// AnomalyRecord is a single detector finding inside a bucket.
// The generating detector is identified by DetectorIndex
type AnomalyRecord struct {
	JobID               string    `json:"job_id" validate:"required"`
	Timestamp           time.Time `json:"timestamp" validate:"required"`
	BucketSpan          int64     `json:"bucket_span" validate:"gt=0"`
	DetectorIndex       int       `json:"detector_index"`
	SequenceNum         int       `json:"sequence_num"`
	RecordScore         float64   `json:"record_score"`
	InitialRecordScore  float64   `json:"initial_record_score"`
	Probability         float64   `json:"probability"`
	ByFieldName         string    `json:"by_field_name,omitempty"`
	ByFieldValue        string    `json:"by_field_value,omitempty"`
	OverFieldName       string    `json:"over_field_name,omitempty"`
	OverFieldValue      string    `json:"over_field_value,omitempty"`
	PartitionFieldName  string    `json:"partition_field_name,omitempty"`
	PartitionFieldValue string    `json:"partition_field_value,omitempty"`
	Function            string    `json:"function,omitempty"`
	FieldName           string    `json:"field_name,omitempty"`
	Typical             []float64 `json:"typical,omitempty"`
	Actual              []float64 `json:"actual,omitempty"`
	IsInterim           bool      `json:"is_interim"`
}

// Influencer scores one field/value pair over a time window. Influencers have
// no deterministic document id; the store assigns one on write
type Influencer struct {
	JobID                  string    `json:"job_id" validate:"required"`
	Timestamp              time.Time `json:"timestamp" validate:"required"`
	BucketSpan             int64     `json:"bucket_span" validate:"gt=0"`
	InfluencerFieldName    string    `json:"influencer_field_name" validate:"required"`
	InfluencerFieldValue   string    `json:"influencer_field_value" validate:"required"`
	InfluencerScore        float64   `json:"influencer_score"`
	InitialInfluencerScore float64   `json:"initial_influencer_score"`
	Probability            float64   `json:"probability"`
	IsInterim              bool      `json:"is_interim"`
}

// ModelPlot carries the model bounds for one detector and window
type ModelPlot struct {
	JobID               string    `json:"job_id" validate:"required"`
	Timestamp           time.Time `json:"timestamp" validate:"required"`
	BucketSpan          int64     `json:"bucket_span" validate:"gt=0"`
	DetectorIndex       int       `json:"detector_index"`
	ByFieldName         string    `json:"by_field_name,omitempty"`
	ByFieldValue        string    `json:"by_field_value,omitempty"`
	OverFieldName       string    `json:"over_field_name,omitempty"`
	OverFieldValue      string    `json:"over_field_value,omitempty"`
	PartitionFieldName  string    `json:"partition_field_name,omitempty"`
	PartitionFieldValue string    `json:"partition_field_value,omitempty"`
	ModelFeature        string    `json:"model_feature,omitempty"`
	ModelLower          float64   `json:"model_lower"`
	ModelUpper          float64   `json:"model_upper"`
	ModelMedian         float64   `json:"model_median"`
	Actual              float64   `json:"actual"`
}

// Forecast is one predicted point produced by a forecast run
type Forecast struct {
	JobID               string    `json:"job_id" validate:"required"`
	ForecastID          string    `json:"forecast_id" validate:"required"`
	Timestamp           time.Time `json:"timestamp" validate:"required"`
	BucketSpan          int64     `json:"bucket_span" validate:"gt=0"`
	DetectorIndex       int       `json:"detector_index"`
	ByFieldValue        string    `json:"by_field_value,omitempty"`
	PartitionFieldValue string    `json:"partition_field_value,omitempty"`
	ForecastLower       float64   `json:"forecast_lower"`
	ForecastUpper       float64   `json:"forecast_upper"`
	ForecastPrediction  float64   `json:"forecast_prediction"`
}

// ForecastRequestStats tracks one forecast run's progress and resource use
type ForecastRequestStats struct {
	JobID            string     `json:"job_id" validate:"required"`
	ForecastID       string     `json:"forecast_id" validate:"required"`
	RecordCount      int64      `json:"processed_record_count"`
	Status           string     `json:"status,omitempty"`
	Progress         float64    `json:"forecast_progress"`
	MemoryBytes      int64      `json:"forecast_memory_bytes"`
	ProcessingTimeMs int64      `json:"processing_time_ms"`
	StartTime        *time.Time `json:"forecast_start_timestamp,omitempty"`
	EndTime          *time.Time `json:"forecast_end_timestamp,omitempty"`
	CreateTime       time.Time  `json:"forecast_create_timestamp"`
	ExpiryTime       *time.Time `json:"forecast_expiry_timestamp,omitempty"`
}

// CategoryDefinition describes one learned message category
type CategoryDefinition struct {
	JobID             string   `json:"job_id" validate:"required"`
	CategoryID        int64    `json:"category_id" validate:"gt=0"`
	Terms             string   `json:"terms,omitempty"`
	Regex             string   `json:"regex,omitempty"`
	MaxMatchingLength int64    `json:"max_matching_length"`
	Examples          []string `json:"examples,omitempty"`
}

// Quantiles holds the model quantiles used in normalization.
// One document per job, overwritten on every write
type Quantiles struct {
	JobID         string    `json:"job_id" validate:"required"`
	Timestamp     time.Time `json:"timestamp" validate:"required"`
	QuantileState string    `json:"quantile_state" validate:"required"`
}

// ModelSnapshot describes a persisted model state checkpoint
type ModelSnapshot struct {
	JobID            string     `json:"job_id" validate:"required"`
	SnapshotID       string     `json:"snapshot_id" validate:"required"`
	Timestamp        time.Time  `json:"timestamp" validate:"required"`
	Description      string     `json:"description,omitempty"`
	SnapshotDocCount int64      `json:"snapshot_doc_count"`
	LatestRecordTime *time.Time `json:"latest_record_time_stamp,omitempty"`
	LatestResultTime *time.Time `json:"latest_result_time_stamp,omitempty"`
	Retain           bool       `json:"retain"`
}

// ModelSizeStats reports the model's memory footprint.
// One document per job, overwritten on every write
type ModelSizeStats struct {
	JobID                         string    `json:"job_id" validate:"required"`
	ModelBytes                    int64     `json:"model_bytes"`
	TotalByFieldCount             int64     `json:"total_by_field_count"`
	TotalOverFieldCount           int64     `json:"total_over_field_count"`
	TotalPartitionFieldCount      int64     `json:"total_partition_field_count"`
	BucketAllocationFailuresCount int64     `json:"bucket_allocation_failures_count"`
	MemoryStatus                  string    `json:"memory_status,omitempty"`
	Timestamp                     time.Time `json:"timestamp" validate:"required"`
	LogTime                       time.Time `json:"log_time"`
}

// DiagnosticKind classifies a degraded-write event
type DiagnosticKind string

const (
	// DiagValidation marks a document rejected by validation before serialization
	DiagValidation DiagnosticKind = "validation"

	// DiagSerialization marks a document that could not be serialized
	DiagSerialization DiagnosticKind = "serialization"

	// DiagBulkItem marks a single action the store rejected inside a bulk write
	DiagBulkItem DiagnosticKind = "bulk_item"
)

// Diagnostic records one degraded-write event so callers can observe drop and
// failure conditions without parsing log output
type Diagnostic struct {
	Kind    DiagnosticKind
	JobID   string
	DocID   string // empty when the id would have been store-assigned
	DocKind string
	Cause   string
}

// Normalizable pairs a rescored result document with the location it was
// read from, so renormalization rewrites it in place even when the write
// alias has rolled over since
type Normalizable struct {
	ID     string // document id as read from the store
	Target string // originating target
	Doc    any    // rescored result document
}
