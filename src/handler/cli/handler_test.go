package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code-atlas/src/config"
)

func TestApplyOverridesOnlyChangedFlags(t *testing.T) {
	h := &Handler{cfg: config.DefaultConfig()}
	opts := &analyzeOptions{}
	cmd := &cobra.Command{}
	cmd.Flags().IntVar(&opts.threshold, "threshold", 0, "")
	cmd.Flags().StringVar(&opts.intent, "intent", "", "")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "")

	require.NoError(t, cmd.Flags().Set("threshold", "15"))
	require.NoError(t, h.applyOverrides(cmd, opts.overrides()))

	assert.Equal(t, 15, h.cfg.Detectors.Complexity.Threshold)
	assert.Equal(t, config.IntentMaintainability, h.cfg.Refactor.Intent)
	assert.Equal(t, config.DefaultConfig().Concurrency.Workers, h.cfg.Concurrency.Workers)
}

func TestApplyOverridesListsEveryProblem(t *testing.T) {
	h := &Handler{cfg: config.DefaultConfig()}
	opts := &analyzeOptions{}
	cmd := &cobra.Command{}
	cmd.Flags().IntVar(&opts.threshold, "threshold", 0, "")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "")

	require.NoError(t, cmd.Flags().Set("threshold", "0"))
	require.NoError(t, cmd.Flags().Set("workers", "0"))

	err := h.applyOverrides(cmd, opts.overrides())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid options:\n")
	assert.Contains(t, err.Error(), "  - concurrency.workers must be positive")
	assert.Contains(t, err.Error(), "  - detectors.complexity.threshold must be at least 1")
}
