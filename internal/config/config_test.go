package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvsdgc/internal/config"
	"rvsdgc/internal/rvsdg"
)

func TestLoad_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	yamlDoc := `
passes:
  - constant-distribution
  - dead-node-elimination
hls_dialect: true
normal_forms:
  bits.add:
    cse: true
    constant_fold: true
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"constant-distribution", "dead-node-elimination"}, cfg.Passes)
	assert.True(t, cfg.HLSDialect)
	require.Contains(t, cfg.NormalForms, "bits.add")
	assert.True(t, *cfg.NormalForms["bits.add"].CSE)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load("/nonexistent/pipeline.yaml")
	assert.Error(t, err)
}

func TestApplyNormalForms_OverridesOnlyNamedFields(t *testing.T) {
	g := rvsdg.NewGraph()
	g.SetNormalForm("bits.add", rvsdg.NormalForm{Mutable: true, ConstantFold: true})

	cseTrue := true
	config.ApplyNormalForms(g, map[string]config.NormalFormOverride{
		"bits.add": {CSE: &cseTrue},
	})

	nf := g.NormalForm("bits.add")
	assert.True(t, nf.Mutable, "untouched field must survive the override")
	assert.True(t, nf.ConstantFold, "untouched field must survive the override")
	assert.True(t, nf.CSE, "named field must be applied")
}

func TestBuildPasses_DefaultOrderExcludesHLSWhenDisabled(t *testing.T) {
	passes, err := config.BuildPasses(config.Default())
	require.NoError(t, err)
	for _, p := range passes {
		assert.NotEqual(t, "redundant-buffer-elimination", p.Name())
	}
}

func TestBuildPasses_IncludesHLSWhenEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.HLSDialect = true
	passes, err := config.BuildPasses(cfg)
	require.NoError(t, err)
	var saw bool
	for _, p := range passes {
		if p.Name() == "redundant-buffer-elimination" {
			saw = true
		}
	}
	assert.True(t, saw)
}

func TestBuildPasses_UnknownNameErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Passes = []string{"not-a-real-pass"}
	_, err := config.BuildPasses(cfg)
	assert.Error(t, err)
}
