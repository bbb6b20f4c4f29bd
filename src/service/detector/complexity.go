package detector

import (
	"context"
	"fmt"

	"code-atlas/src/config"
	"code-atlas/src/model"
	"code-atlas/src/service/metrics"
	"code-atlas/src/util"
)

// ComplexityDetector flags functions with too many branches or too deep nesting
type ComplexityDetector struct {
	BaseDetector
	cfg config.ComplexityDetectorConfig
}

// NewComplexityDetector creates a new complexity detector
func NewComplexityDetector(base BaseDetector, cfg config.ComplexityDetectorConfig) *ComplexityDetector {
	return &ComplexityDetector{
		BaseDetector: base,
		cfg:          cfg,
	}
}

// Name returns the detector name
func (d *ComplexityDetector) Name() string {
	return "complexity"
}

// IsEnabled returns whether the detector is enabled
func (d *ComplexityDetector) IsEnabled() bool {
	return d.cfg.Enabled
}

// Detect runs complexity detection
func (d *ComplexityDetector) Detect(ctx context.Context, file *metrics.FileAnalysis) ([]model.Finding, error) {
	fm := file.Metrics
	var findings []model.Finding
	excluded := 0

	// query files have no functions; the whole file is the unit
	if fm.Language == model.LanguageSQL || len(fm.FunctionMetrics) == 0 {
		if fm.Language == model.LanguageSQL && fm.Complexity > d.cfg.Threshold {
			findings = append(findings, d.NewFinding(model.SmellHighComplexity, model.SeverityHigh,
				fm.Path, 1, fileEnd(file),
				fmt.Sprintf("Query file has high complexity (%d, threshold: %d)", fm.Complexity, d.cfg.Threshold),
				"Split the query into views or common table expressions"))
		}
		if fm.MaxNesting > d.cfg.MaxNestingDepth {
			findings = append(findings, d.NewFinding(model.SmellDeepNesting, model.SeverityMedium,
				fm.Path, 1, fileEnd(file),
				fmt.Sprintf("Deeply nested blocks (depth=%d, threshold: %d)", fm.MaxNesting, d.cfg.MaxNestingDepth),
				nestingSuggestion))
		}
		return d.FilterBySeverity(findings), nil
	}

	for _, fn := range fm.FunctionMetrics {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.ShouldExclude(fn.Name) {
			excluded++
			continue
		}

		if fn.CyclomaticComplexity > d.cfg.Threshold {
			findings = append(findings, d.NewFinding(model.SmellHighComplexity, model.SeverityHigh,
				fn.FilePath, fn.StartLine, fn.EndLine,
				fmt.Sprintf("Function %s has high cyclomatic complexity (CC=%d, threshold: %d)",
					fn.Name, fn.CyclomaticComplexity, d.cfg.Threshold),
				d.ccSuggestion(fn.CyclomaticComplexity)))
		}

		if fn.MaxNestingDepth > d.cfg.MaxNestingDepth {
			findings = append(findings, d.NewFinding(model.SmellDeepNesting, model.SeverityMedium,
				fn.FilePath, fn.StartLine, fn.EndLine,
				fmt.Sprintf("Function %s has deeply nested control flow (depth=%d, threshold: %d)",
					fn.Name, fn.MaxNestingDepth, d.cfg.MaxNestingDepth),
				nestingSuggestion))
		}
	}

	if excluded > 0 {
		util.Debug("Complexity detector: %d functions in %s excluded by filters", excluded, fm.Path)
	}
	return d.FilterBySeverity(findings), nil
}

const nestingSuggestion = "Reduce nesting with early returns, guard clauses, or extract methods"

func (d *ComplexityDetector) ccSuggestion(cc int) string {
	switch {
	case cc > d.cfg.Threshold*3:
		return "Split into multiple smaller functions; consider a lookup table or strategy pattern"
	case cc > d.cfg.Threshold*2:
		return "Extract conditional logic into separate functions"
	default:
		return "Consider simplifying conditionals or extracting helper functions"
	}
}
