package domain

// Naming resolves the store targets a job's documents live in. Injected so
// hosts with their own alias/rollover scheme can supply it
type Naming interface {
	// ResultsWriteTarget is where new result documents for jobID are written
	ResultsWriteTarget(jobID string) string

	// ResultsReadTarget is the read-side name covering every backing target
	// for jobID, including generations created by a rollover. Commits refresh
	// this one
	ResultsReadTarget(jobID string) string

	// StateWriteTarget is the shared target for state-class documents
	StateWriteTarget() string

	// StateReadTarget is the read-side pattern covering all state targets
	StateReadTarget() string
}

// AliasNaming is the default scheme: per-job result targets under Prefix with
// a "-write" alias in front, one shared state target with a glob read pattern
type AliasNaming struct {
	Prefix      string
	StatePrefix string
}

// DefaultNaming returns the scheme used when none is injected
func DefaultNaming() AliasNaming {
	return AliasNaming{Prefix: "anomalies", StatePrefix: "model-state"}
}

// ResultsWriteTarget implements Naming
func (n AliasNaming) ResultsWriteTarget(jobID string) string {
	return n.Prefix + "-" + jobID + "-write"
}

// ResultsReadTarget implements Naming
func (n AliasNaming) ResultsReadTarget(jobID string) string {
	return n.Prefix + "-" + jobID
}

// StateWriteTarget implements Naming
func (n AliasNaming) StateWriteTarget() string { return n.StatePrefix }

// StateReadTarget implements Naming
func (n AliasNaming) StateReadTarget() string { return n.StatePrefix + "*" }
