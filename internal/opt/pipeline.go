// Package opt implements the representative optimization passes applied to
// an already-constructed RVSDG graph: dead-node elimination, constant
// distribution, γ pull-in/pull-out, loop inversion, and HLS redundant-buffer
// elimination. Each pass is a function over a Region applied top-down
// recursively into structural sub-regions via rvsdg.WalkStructural, using
// the core's deletion-safe traversers so a pass may delete the node it is
// currently visiting.
package opt

import (
	"log/slog"

	"rvsdgc/internal/rvsdg"
)

// Pass is a single named graph rewrite. Apply reports whether it changed
// anything, so a driver can fixpoint-iterate passes that expose new
// opportunities for one another (e.g. constant distribution feeding
// dead-node elimination).
type Pass interface {
	Name() string
	Description() string
	Apply(root *rvsdg.Region) (bool, error)
}

// Pipeline runs a sequence of Passes over a graph's root region, logging
// progress through structured logging rather than fmt.Printf.
type Pipeline struct {
	passes []Pass
	log    *slog.Logger
}

// NewPipeline builds an empty pipeline. A nil logger falls back to
// slog.Default().
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{log: logger}
}

// AddPass appends a pass to the pipeline's run order.
func (p *Pipeline) AddPass(pass Pass) {
	p.passes = append(p.passes, pass)
}

// Run applies every pass in order once to root. It does not itself
// fixpoint-iterate the whole pipeline; individual passes that need to
// converge internally (constant distribution, redundant-buffer elimination)
// do so themselves before returning.
func (p *Pipeline) Run(root *rvsdg.Region) error {
	p.log.Info("running optimization pipeline", "passes", len(p.passes))
	for _, pass := range p.passes {
		changed, err := pass.Apply(root)
		if err != nil {
			return err
		}
		p.log.Info("pass applied", "name", pass.Name(), "description", pass.Description(), "changed", changed)
	}
	return nil
}
