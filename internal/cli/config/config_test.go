package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplint/pkg/core"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".leaplint.yaml"), []byte(content), 0o644))
}

// lintFlags mirrors the flag set the lint command registers.
func lintFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("lint", pflag.ContinueOnError)
	fs.StringP("format", "f", "", "")
	fs.StringSlice("select", nil, "")
	fs.StringSlice("disable", nil, "")
	fs.StringSlice("severity", nil, "")
	fs.Int("max-diagnostics", 0, "")
	fs.Bool("no-cache", false, "")
	fs.Bool("strict", false, "")
	fs.Int("jobs", 0, "")
	fs.String("kind", "", "")
	return fs
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir, "", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultModelsDir, cfg.ModelsDir)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, 0, cfg.MaxDiagnostics)
	assert.False(t, cfg.Strict)
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, string(core.KindPlain), cfg.Kind)
	assert.Equal(t, filepath.Join(dir, "models"), cfg.ModelsPath())
	assert.Equal(t, filepath.Join(dir, DefaultCachePath), cfg.CachePath())
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
models_dir: transforms
strict: true
max_diagnostics: 25
exclude: [CV09]
cache:
  enabled: false
  path: .cache/lint.json
rules:
  CV05:
    enabled: false
  RF05:
    severity: warning
paths:
  - pattern: "transforms/staging/**"
    rules:
      ST01:
        enabled: false
`)

	cfg, err := Load(dir, "", nil)
	require.NoError(t, err)

	assert.Equal(t, "transforms", cfg.ModelsDir)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 25, cfg.MaxDiagnostics)
	assert.Equal(t, []string{"CV09"}, cfg.Exclude)
	assert.False(t, cfg.CacheEnabled())
	assert.Equal(t, filepath.Join(dir, ".cache/lint.json"), cfg.CachePath())
	require.Contains(t, cfg.Rules, "CV05")
	require.NotNil(t, cfg.Rules["CV05"].Enabled)
	assert.False(t, *cfg.Rules["CV05"].Enabled)
	assert.Equal(t, "warning", cfg.Rules["RF05"].Severity)
	require.Len(t, cfg.Paths, 1)
	assert.Equal(t, "transforms/staging/**", cfg.Paths[0].Pattern)
}

func TestLoadFindsConfigUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "models_dir: transforms\n")
	nested := filepath.Join(root, "transforms", "staging")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := Load(nested, "", nil)
	require.NoError(t, err)
	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, "transforms", cfg.ModelsDir)
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "strict: false\noutput: json\n")

	fs := lintFlags()
	require.NoError(t, fs.Set("strict", "true"))
	require.NoError(t, fs.Set("format", "sarif"))
	require.NoError(t, fs.Set("disable", "CV"))
	require.NoError(t, fs.Set("no-cache", "true"))

	cfg, err := Load(dir, "", fs)
	require.NoError(t, err)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "sarif", cfg.Output)
	assert.Equal(t, []string{"CV"}, cfg.Exclude)
	assert.False(t, cfg.CacheEnabled())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "models_dir: transforms\n")
	t.Setenv("LEAPLINT_MODELS_DIR", "queries")

	cfg, err := Load(dir, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "queries", cfg.ModelsDir)
}

func TestDetectKindDbt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dbt_project.yml"), []byte("name: demo\n"), 0o644))

	cfg, err := Load(dir, "", nil)
	require.NoError(t, err)
	assert.Equal(t, string(core.KindDbt), cfg.Kind)
}

func TestSeverityOverrideFlag(t *testing.T) {
	dir := t.TempDir()

	fs := lintFlags()
	require.NoError(t, fs.Set("severity", "CV05=error"))

	cfg, err := Load(dir, "", fs)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Rules["CV05"].Severity)
}

func TestSeverityOverrideRejectsBadPair(t *testing.T) {
	var cfg Config
	assert.Error(t, cfg.ApplySeverityOverrides([]string{"CV05"}))
	assert.Error(t, cfg.ApplySeverityOverrides([]string{"CV05=loud"}))
}

func TestToPolicy(t *testing.T) {
	off := false
	cfg := Config{
		Kind:           string(core.KindDbt),
		Select:         []string{"RF"},
		Exclude:        []string{"RF05"},
		Strict:         true,
		MaxDiagnostics: 10,
		Rules: map[string]RuleConfig{
			"CV05": {Enabled: &off, Severity: "error"},
		},
		Paths: []PathConfig{
			{Pattern: "models/legacy/**", Rules: map[string]RuleConfig{"RF01": {Severity: "info"}}},
		},
	}

	policy, err := cfg.ToPolicy()
	require.NoError(t, err)
	assert.Equal(t, core.KindDbt, policy.Kind)
	assert.Equal(t, []string{"RF"}, policy.Select)
	assert.True(t, policy.Strict)
	assert.Equal(t, 10, policy.MaxDiagnostics)
	require.NotNil(t, policy.Rules["CV05"].Enabled)
	assert.False(t, *policy.Rules["CV05"].Enabled)
	require.NotNil(t, policy.Rules["CV05"].Severity)
	assert.Equal(t, core.SeverityError, *policy.Rules["CV05"].Severity)
	require.Len(t, policy.Paths, 1)
	require.NotNil(t, policy.Paths[0].Rules["RF01"].Severity)
	assert.Equal(t, core.SeverityInfo, *policy.Paths[0].Rules["RF01"].Severity)
}

func TestToPolicyRejectsBadSeverity(t *testing.T) {
	cfg := Config{Rules: map[string]RuleConfig{"CV05": {Severity: "fatal"}}}
	_, err := cfg.ToPolicy()
	assert.Error(t, err)
}

func TestToPolicyRejectsEmptyPattern(t *testing.T) {
	cfg := Config{Paths: []PathConfig{{Rules: map[string]RuleConfig{"RF01": {}}}}}
	_, err := cfg.ToPolicy()
	assert.Error(t, err)
}
