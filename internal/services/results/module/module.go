// Package module wires the results persistence service
package module

import (
	"outlier/internal/modkit"
	"outlier/internal/services/results/domain"
	"outlier/internal/services/results/service"
)

// Ports exposed by the results module
type Ports struct {
	Writer domain.WriterPort
	Commit domain.CommitPort
	Renorm domain.RenormPort
}

// Module implements the results service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new results module over the document seam in deps
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	svc := service.New(deps, service.Config{
		BulkLimit: opts.BulkLimit,
		Naming: domain.AliasNaming{
			Prefix:      opts.ResultsPrefix,
			StatePrefix: opts.StatePrefix,
		},
	})

	m := &Module{deps: deps}
	m.ports = Ports{
		Writer: svc,
		Commit: svc,
		Renorm: svc,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "results" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
