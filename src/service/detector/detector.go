package detector

import (
	"context"

	"code-atlas/src/config"
	"code-atlas/src/model"
	"code-atlas/src/service/metrics"
	"code-atlas/src/util"
)

// Detector is the interface for all smell detectors
type Detector interface {
	// Name returns the detector name
	Name() string

	// IsEnabled returns whether the detector is enabled
	IsEnabled() bool

	// Detect inspects one analyzed file and returns the smells found in it
	Detect(ctx context.Context, file *metrics.FileAnalysis) ([]model.Finding, error)
}

// BaseDetector provides common functionality for detectors
type BaseDetector struct {
	Cfg        *config.Config
	Exclusions *util.ExclusionMatcher
}

// NewBaseDetector creates a new base detector
func NewBaseDetector(cfg *config.Config) BaseDetector {
	return BaseDetector{
		Cfg:        cfg,
		Exclusions: util.NewExclusionMatcher(cfg.Exclusions),
	}
}

// ShouldExclude checks if a function is excluded from function-scoped rules
func (b *BaseDetector) ShouldExclude(funcName string) bool {
	return b.Exclusions.MatchesFunction(funcName)
}

// SeverityFor returns the configured severity for a rule, falling back to
// the rule default
func (b *BaseDetector) SeverityFor(smell model.SmellType, fallback model.Severity) model.Severity {
	if raw, ok := b.Cfg.Severity.Overrides[string(smell)]; ok {
		if sev, ok := model.ParseSeverity(raw); ok {
			return sev
		}
	}
	return fallback
}

// NewFinding builds a finding for a rule, applying any severity override
func (b *BaseDetector) NewFinding(smell model.SmellType, fallback model.Severity, path string, line, endLine int, message, suggestion string) model.Finding {
	if endLine < line {
		endLine = line
	}
	return model.Finding{
		Type:       smell,
		Severity:   b.SeverityFor(smell, fallback),
		FilePath:   path,
		Line:       line,
		EndLine:    endLine,
		Message:    message,
		Suggestion: suggestion,
	}
}

// FilterBySeverity filters findings by minimum severity
func (b *BaseDetector) FilterBySeverity(findings []model.Finding) []model.Finding {
	minRank := model.Severity(b.Cfg.Severity.MinSeverity).Rank()

	filtered := make([]model.Finding, 0, len(findings))
	for _, f := range findings {
		if f.Severity.Rank() >= minRank {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// fileEnd is the last line a file-level finding should cover
func fileEnd(file *metrics.FileAnalysis) int {
	if file.Unit.LineCount > 0 {
		return file.Unit.LineCount
	}
	return 1
}
