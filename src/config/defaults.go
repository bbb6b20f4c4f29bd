package config

import (
	"runtime"
	"time"
)

// Intent labels accepted by the refactor planner
const (
	IntentMaintainability = "maintainability"
	IntentPerformance     = "performance"
	IntentRefactoring     = "refactoring"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Name:        "code-atlas",
			Version:     "1.0.0",
			Description: "Multi-language static code analysis",
		},
		Concurrency: ConcurrencyConfig{
			Workers:     runtime.GOMAXPROCS(0),
			FileTimeout: 10 * time.Second,
		},
		Limits: LimitsConfig{
			MaxFileBytes:       1 << 20,
			MaxArchiveBytes:    64 << 20,
			MaxArchiveEntries:  5000,
			ScannerCheckpoints: 4096,
		},
		Detectors: DetectorsConfig{
			Complexity: ComplexityDetectorConfig{
				Enabled:         true,
				Threshold:       10,
				MaxNestingDepth: 4,
			},
			SizeAndStructure: SizeDetectorConfig{
				Enabled:          true,
				MaxFunctionLines: 50,
				MaxParameters:    5,
				MaxFileLines:     500,
				MaxFileFunctions: 20,
			},
			Duplication: DuplicationDetectorConfig{
				Enabled:   true,
				MinLines:  6,
				MinTokens: 12,
			},
			MagicNumber: MagicNumberDetectorConfig{
				Enabled: true,
			},
		},
		Scoring: ScoringConfig{
			LOCFloor:              100,
			ComplexityFactor:      2,
			MaxComplexityPenalty:  40,
			ComplexityFloor:       20,
			ComplexityComponent:   40,
			SmellComponent:        60,
			SmellWeightMultiplier: 2,
		},
		Refactor: RefactorConfig{
			Intent:         IntentMaintainability,
			SmallEffortLOC: 30,
			LargeEffortLOC: 150,
		},
		Exclusions: ExclusionsConfig{
			FilePatterns: []string{
				"**/node_modules/**", "**/venv/**", "**/__pycache__/**",
				"**/.git/**", "**/dist/**", "**/build/**", "**/vendor/**",
			},
		},
		Severity: SeverityConfig{
			MinSeverity: "low",
			Overrides:   map[string]string{},
		},
		Output: OutputConfig{
			Formats:            []string{"json"},
			OutputDir:          ".",
			IncludeSuggestions: true,
			IncludeMetadata:    true,
		},
		Logging: LoggingConfig{
			Level:            "info",
			Format:           "text",
			IncludeTimestamp: true,
			IncludeCaller:    false,
		},
	}
}
