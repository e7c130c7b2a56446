// Package config loads the optimization pipeline's configuration: which
// passes run and in what order, per-operation NormalForm overrides, and
// whether the HLS dialect (buf/local_load/local_store) is enabled.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rvsdgc/internal/rvsdg"
)

// NormalFormOverride mirrors rvsdg.NormalForm with yaml tags; a nil field
// in the source document leaves the corresponding default untouched,
// hence pointer-typed booleans instead of plain bool.
type NormalFormOverride struct {
	Mutable      *bool `yaml:"mutable,omitempty"`
	CSE          *bool `yaml:"cse,omitempty"`
	ConstantFold *bool `yaml:"constant_fold,omitempty"`
	Reducible    *bool `yaml:"reducible,omitempty"`
}

// PipelineConfig is the top-level YAML document shape consumed by
// cmd/rvsdgc's --config flag.
type PipelineConfig struct {
	// Passes lists the passes to run, in order, by the Name() string
	// each opt.Pass reports (e.g. "loop-inversion"). Empty means "every
	// pass in this package's registry (registry.go), in defaultOrder";
	// redundant-buffer-elimination is then included only when HLSDialect
	// is set.
	Passes []string `yaml:"passes,omitempty"`

	// NormalForms overrides the default NormalForm per operation Kind
	// string (e.g. "bits.add", "mem.load").
	NormalForms map[string]NormalFormOverride `yaml:"normal_forms,omitempty"`

	// HLSDialect gates the redundant-buffer-elimination pass and the
	// hls.* operation family; off by default since most RVSDGs never
	// touch the HLS dialect.
	HLSDialect bool `yaml:"hls_dialect,omitempty"`
}

// Default returns the configuration cmd/rvsdgc uses when no --config
// flag is given: every pass, default NormalForm, HLS dialect off.
func Default() PipelineConfig {
	return PipelineConfig{}
}

// Load parses a YAML pipeline configuration file.
func Load(path string) (PipelineConfig, error) {
	var cfg PipelineConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyNormalForms installs every configured NormalForm override onto g,
// starting from g's current setting for that Kind (rvsdg.DefaultNormalForm
// for one never touched) so a document overriding only "cse" for
// "bits.add" doesn't silently disable constant folding for it.
func ApplyNormalForms(g *rvsdg.Graph, overrides map[string]NormalFormOverride) {
	for kind, o := range overrides {
		nf := g.NormalForm(kind)
		if o.Mutable != nil {
			nf.Mutable = *o.Mutable
		}
		if o.CSE != nil {
			nf.CSE = *o.CSE
		}
		if o.ConstantFold != nil {
			nf.ConstantFold = *o.ConstantFold
		}
		if o.Reducible != nil {
			nf.Reducible = *o.Reducible
		}
		g.SetNormalForm(kind, nf)
	}
}
