package detector

import (
	"context"
	"fmt"

	"code-atlas/src/config"
	"code-atlas/src/model"
	"code-atlas/src/service/metrics"
	"code-atlas/src/util"
)

// SizeAndStructureDetector detects size-related issues in functions and files
type SizeAndStructureDetector struct {
	BaseDetector
	cfg config.SizeDetectorConfig
}

// NewSizeAndStructureDetector creates a new size and structure detector
func NewSizeAndStructureDetector(base BaseDetector, cfg config.SizeDetectorConfig) *SizeAndStructureDetector {
	return &SizeAndStructureDetector{
		BaseDetector: base,
		cfg:          cfg,
	}
}

// Name returns the detector name
func (d *SizeAndStructureDetector) Name() string {
	return "size_structure"
}

// IsEnabled returns whether the detector is enabled
func (d *SizeAndStructureDetector) IsEnabled() bool {
	return d.cfg.Enabled
}

// Detect runs size and structure detection
func (d *SizeAndStructureDetector) Detect(ctx context.Context, file *metrics.FileAnalysis) ([]model.Finding, error) {
	var findings []model.Finding

	for _, fn := range file.Metrics.FunctionMetrics {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.ShouldExclude(fn.Name) {
			continue
		}

		if fn.LineCount > d.cfg.MaxFunctionLines {
			findings = append(findings, d.createLongFunction(fn))
		}
		if fn.ParameterCount > d.cfg.MaxParameters {
			findings = append(findings, d.createLongParameterList(fn))
		}
	}
	util.Debug("Size detector: %d function-level findings in %s", len(findings), file.Metrics.Path)

	fm := file.Metrics
	if fm.LineCount > d.cfg.MaxFileLines && fm.Functions > d.cfg.MaxFileFunctions {
		findings = append(findings, d.NewFinding(model.SmellGodFile, model.SeverityHigh,
			fm.Path, 1, fileEnd(file),
			fmt.Sprintf("File is too large (%d lines, %d functions; thresholds: %d lines, %d functions)",
				fm.LineCount, fm.Functions, d.cfg.MaxFileLines, d.cfg.MaxFileFunctions),
			"Split the file into smaller modules grouped by responsibility"))
	}

	return d.FilterBySeverity(findings), nil
}

func (d *SizeAndStructureDetector) createLongFunction(fn model.FunctionMetrics) model.Finding {
	return d.NewFinding(model.SmellLongFunction, model.SeverityMedium,
		fn.FilePath, fn.StartLine, fn.EndLine,
		fmt.Sprintf("Function %s is too long (%d lines, threshold: %d)", fn.Name, fn.LineCount, d.cfg.MaxFunctionLines),
		"Extract smaller, single-purpose functions")
}

func (d *SizeAndStructureDetector) createLongParameterList(fn model.FunctionMetrics) model.Finding {
	return d.NewFinding(model.SmellLongParameterList, model.SeverityLow,
		fn.FilePath, fn.StartLine, fn.StartLine,
		fmt.Sprintf("Function %s has too many parameters (%d, threshold: %d)", fn.Name, fn.ParameterCount, d.cfg.MaxParameters),
		"Group related parameters into a struct or options object")
}
