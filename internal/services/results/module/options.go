package module

import (
	"outlier/internal/platform/config"
	"outlier/internal/services/results/service"
)

// Options holds configuration settings for the results module
type Options struct {
	BulkLimit     int
	ResultsPrefix string
	StatePrefix   string
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	rf := cfg.Prefix("RESULTS_")
	return Options{
		BulkLimit:     rf.MayInt("BULK_LIMIT", service.DefaultBulkLimit),
		ResultsPrefix: rf.MayString("PREFIX", "anomalies"),
		StatePrefix:   rf.MayString("STATE_PREFIX", "model-state"),
	}
}
