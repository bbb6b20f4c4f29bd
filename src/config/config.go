package config

import "time"

// Config is the root configuration structure
type Config struct {
	Agent       AgentConfig       `yaml:"agent"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Limits      LimitsConfig      `yaml:"limits"`
	Detectors   DetectorsConfig   `yaml:"detectors"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Refactor    RefactorConfig    `yaml:"refactor"`
	Exclusions  ExclusionsConfig  `yaml:"exclusions"`
	Severity    SeverityConfig    `yaml:"severity"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// AgentConfig contains agent metadata
type AgentConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

// ConcurrencyConfig contains per-file worker pool settings
type ConcurrencyConfig struct {
	Workers     int           `yaml:"workers"`
	FileTimeout time.Duration `yaml:"file_timeout"`
}

// LimitsConfig bounds the size of accepted input
type LimitsConfig struct {
	MaxFileBytes       int64 `yaml:"max_file_bytes"`
	MaxArchiveBytes    int64 `yaml:"max_archive_bytes"`
	MaxArchiveEntries  int   `yaml:"max_archive_entries"`
	ScannerCheckpoints int   `yaml:"scanner_checkpoint_tokens"`
}

// DetectorsConfig contains settings for all detectors
type DetectorsConfig struct {
	Complexity       ComplexityDetectorConfig  `yaml:"complexity"`
	SizeAndStructure SizeDetectorConfig        `yaml:"size_and_structure"`
	Duplication      DuplicationDetectorConfig `yaml:"duplication"`
	MagicNumber      MagicNumberDetectorConfig `yaml:"magic_number"`
}

// ComplexityDetectorConfig contains complexity detector settings
type ComplexityDetectorConfig struct {
	Enabled         bool `yaml:"enabled"`
	Threshold       int  `yaml:"threshold"`
	MaxNestingDepth int  `yaml:"max_nesting_depth"`
}

// SizeDetectorConfig contains size detector settings
type SizeDetectorConfig struct {
	Enabled          bool `yaml:"enabled"`
	MaxFunctionLines int  `yaml:"max_function_lines"`
	MaxParameters    int  `yaml:"max_parameters"`
	MaxFileLines     int  `yaml:"max_file_lines"`
	MaxFileFunctions int  `yaml:"max_file_functions"`
}

// DuplicationDetectorConfig contains duplication detector settings
type DuplicationDetectorConfig struct {
	Enabled   bool `yaml:"enabled"`
	MinLines  int  `yaml:"min_lines"`
	MinTokens int  `yaml:"min_tokens"`
}

// MagicNumberDetectorConfig contains magic number detector settings
type MagicNumberDetectorConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ScoringConfig holds the health and hotspot coefficients
type ScoringConfig struct {
	LOCFloor              int     `yaml:"loc_floor"`
	ComplexityFactor      float64 `yaml:"complexity_factor"`
	MaxComplexityPenalty  float64 `yaml:"max_complexity_penalty"`
	ComplexityFloor       int     `yaml:"complexity_floor"`
	ComplexityComponent   float64 `yaml:"complexity_component"`
	SmellComponent        float64 `yaml:"smell_component"`
	SmellWeightMultiplier float64 `yaml:"smell_weight_multiplier"`
}

// RefactorConfig contains refactor planner settings
type RefactorConfig struct {
	Intent         string `yaml:"intent"`
	SmallEffortLOC int    `yaml:"small_effort_loc"`
	LargeEffortLOC int    `yaml:"large_effort_loc"`
}

// ExclusionsConfig contains exclusion patterns
type ExclusionsConfig struct {
	FilePatterns     []string `yaml:"file_patterns"`
	Files            []string `yaml:"files"`
	FunctionPatterns []string `yaml:"function_patterns"`
	Languages        []string `yaml:"languages"`
}

// SeverityConfig contains severity settings
type SeverityConfig struct {
	MinSeverity string            `yaml:"min_severity"`
	Overrides   map[string]string `yaml:"overrides"`
}

// OutputConfig contains output settings
type OutputConfig struct {
	Formats            []string `yaml:"formats"`
	OutputDir          string   `yaml:"output_dir"`
	IncludeSuggestions bool     `yaml:"include_suggestions"`
	IncludeMetadata    bool     `yaml:"include_metadata"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level            string `yaml:"level"`
	Format           string `yaml:"format"` // text, json
	File             string `yaml:"file"`
	IncludeTimestamp bool   `yaml:"include_timestamp"`
	IncludeCaller    bool   `yaml:"include_caller"`
}
