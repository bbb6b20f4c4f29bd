package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Detectors.Complexity.Threshold)
	assert.Equal(t, IntentMaintainability, cfg.Refactor.Intent)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	l := &Loader{}
	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Detectors, cfg.Detectors)
}

func TestLoadOverridesAndExpandsEnv(t *testing.T) {
	t.Setenv("ATLAS_THRESHOLD", "15")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
concurrency:
  workers: 2
  file_timeout: 3s
detectors:
  complexity:
    threshold: ${ATLAS_THRESHOLD}
refactor:
  intent: ${ATLAS_INTENT:-performance}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Concurrency.Workers)
	assert.Equal(t, 3*time.Second, cfg.Concurrency.FileTimeout)
	assert.Equal(t, 15, cfg.Detectors.Complexity.Threshold)
	assert.Equal(t, IntentPerformance, cfg.Refactor.Intent)
	// untouched keys keep defaults
	assert.Equal(t, 50, cfg.Detectors.SizeAndStructure.MaxFunctionLines)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("refactor:\n  intent: speed\n"), 0o644))

	_, err := NewLoader().Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refactor.intent")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero workers", func(c *Config) { c.Concurrency.Workers = 0 }, "concurrency.workers"},
		{"bad threshold", func(c *Config) { c.Detectors.Complexity.Threshold = 0 }, "threshold"},
		{"bad severity", func(c *Config) { c.Severity.MinSeverity = "critical" }, "min_severity"},
		{"bad override", func(c *Config) { c.Severity.Overrides = map[string]string{"MagicNumber": "huge"} }, "overrides"},
		{"bad glob", func(c *Config) { c.Exclusions.FilePatterns = []string{"[a-"} }, "invalid glob"},
		{"bad regex", func(c *Config) { c.Exclusions.FunctionPatterns = []string{"("} }, "function_patterns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
