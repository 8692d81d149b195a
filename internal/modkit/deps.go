// Package modkit provides module wiring and core deps
package modkit

import (
	"outlier/internal/modkit/repokit"
	"outlier/internal/platform/config"
	"outlier/internal/platform/logger"
	"outlier/internal/platform/metrics"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	Docs    repokit.Docs
	Metrics *metrics.Collector
}

// ZeroOK returns true when deps are safe to use with zero values in tests
// consumers should still nil check the optional docs seam
func (d Deps) ZeroOK() bool { return true }
