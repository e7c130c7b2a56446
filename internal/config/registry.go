package config

import (
	"fmt"

	"rvsdgc/internal/opt"
)

// defaultOrder is the pass order cmd/rvsdgc runs when a PipelineConfig
// names no explicit Passes list, chosen so each pass runs after the ones
// most likely to create its opportunities: constant distribution and
// gamma motion before dead-node elimination, loop inversion last since it
// restructures rather than shrinks.
var defaultOrder = []string{
	"constant-distribution",
	"gamma-pull-in",
	"gamma-pull-out",
	"dead-node-elimination",
	"redundant-buffer-elimination",
	"loop-inversion",
}

func newPass(name string) (opt.Pass, error) {
	switch name {
	case "dead-node-elimination":
		return opt.DeadNodeElimination{}, nil
	case "constant-distribution":
		return opt.ConstantDistribution{}, nil
	case "gamma-pull-in":
		return opt.GammaPullIn{}, nil
	case "gamma-pull-out":
		return opt.GammaPullOut{}, nil
	case "loop-inversion":
		return opt.LoopInversion{}, nil
	case "redundant-buffer-elimination":
		return opt.RedundantBufferElimination{}, nil
	default:
		return nil, fmt.Errorf("config: unknown pass %q", name)
	}
}

// BuildPasses resolves cfg.Passes (or defaultOrder, if empty) into
// concrete opt.Pass values, dropping redundant-buffer-elimination unless
// cfg.HLSDialect is set since that pass only ever touches hls.* nodes.
func BuildPasses(cfg PipelineConfig) ([]opt.Pass, error) {
	names := cfg.Passes
	if len(names) == 0 {
		names = defaultOrder
	}
	passes := make([]opt.Pass, 0, len(names))
	for _, name := range names {
		if name == "redundant-buffer-elimination" && !cfg.HLSDialect {
			continue
		}
		p, err := newPass(name)
		if err != nil {
			return nil, err
		}
		passes = append(passes, p)
	}
	return passes, nil
}
