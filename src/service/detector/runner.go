package detector

import (
	"context"
	"fmt"
	"sort"

	"code-atlas/src/config"
	"code-atlas/src/model"
	"code-atlas/src/service/metrics"
	"code-atlas/src/util"
)

// Runner manages and runs all detectors.
// It handles detector registration, per-file execution, and result ordering.
type Runner struct {
	detectors []Detector
	cfg       *config.Config
}

// NewRunner creates a new detector runner with all detectors registered
func NewRunner(cfg *config.Config) *Runner {
	base := NewBaseDetector(cfg)

	detectors := []Detector{
		NewComplexityDetector(base, cfg.Detectors.Complexity),
		NewSizeAndStructureDetector(base, cfg.Detectors.SizeAndStructure),
		NewDuplicationDetector(base, cfg.Detectors.Duplication),
		NewMagicNumberDetector(base, cfg.Detectors.MagicNumber),
	}

	util.Debug("Detector runner initialized with %d detectors", len(detectors))
	for _, d := range detectors {
		status := "disabled"
		if d.IsEnabled() {
			status = "enabled"
		}
		util.Debug("  - %s: %s", d.Name(), status)
	}

	return &Runner{
		detectors: detectors,
		cfg:       cfg,
	}
}

// Run executes all enabled detectors against one file and returns its
// findings ordered by line, then rule
func (r *Runner) Run(ctx context.Context, file *metrics.FileAnalysis) ([]model.Finding, error) {
	var all []model.Finding

	for _, d := range r.detectors {
		if !d.IsEnabled() {
			continue
		}
		findings, err := d.Detect(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("detector %s: %w", d.Name(), err)
		}
		all = append(all, findings...)
	}

	SortFindings(all)
	util.Debug("Detection for %s: %d findings", file.Metrics.Path, len(all))
	return all, nil
}

// SortFindings orders findings by file, line, rule and end line
func SortFindings(findings []model.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.EndLine < b.EndLine
	})
}

// GetDetector returns a detector by name
func (r *Runner) GetDetector(name string) Detector {
	for _, d := range r.detectors {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

// ListDetectors returns names of all registered detectors
func (r *Runner) ListDetectors() []string {
	names := make([]string, len(r.detectors))
	for i, d := range r.detectors {
		names[i] = d.Name()
	}
	return names
}
