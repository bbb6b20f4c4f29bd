package controller

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"code-atlas/src/config"
	"code-atlas/src/model"
	"code-atlas/src/service/detector"
	"code-atlas/src/service/ingest"
	"code-atlas/src/service/language"
	"code-atlas/src/service/lexer"
	"code-atlas/src/service/metrics"
	"code-atlas/src/service/planner"
	"code-atlas/src/service/scoring"
	"code-atlas/src/util"
)

// AnalysisController orchestrates the analysis pipeline
type AnalysisController struct {
	cfg        *config.Config
	exclusions *util.ExclusionMatcher
}

// NewAnalysisController creates a new analysis controller
func NewAnalysisController(cfg *config.Config) *AnalysisController {
	return &AnalysisController{
		cfg:        cfg,
		exclusions: util.NewExclusionMatcher(cfg.Exclusions),
	}
}

// AnalyzeRequest represents one submission to analyze
type AnalyzeRequest struct {
	ProjectName string
	Files       []model.SubmittedFile
}

// fileResult is the outcome of one worker; exactly one of analysis or skip is set
type fileResult struct {
	analysis *metrics.FileAnalysis
	findings []model.Finding
	skip     *model.SkippedFile
}

// Analyze runs the full analysis pipeline
func (c *AnalysisController) Analyze(ctx context.Context, req AnalyzeRequest) (*model.AnalysisReport, error) {
	startTime := time.Now()
	util.Info("Starting analysis for project: %s (%d submitted files)", req.ProjectName, len(req.Files))

	if len(req.Files) == 0 {
		return nil, model.ErrEmptySubmission
	}

	ingested, err := ingest.NewIngestor(c.cfg).Ingest(ctx, req.Files)
	if err != nil {
		util.Error("Ingest failed: %v", err)
		return nil, fmt.Errorf("ingest: %w", err)
	}

	results, err := c.analyzeFiles(ctx, ingested.Files)
	if err != nil {
		util.Error("Analysis aborted: %v", err)
		return nil, err
	}

	var (
		files    []model.FileMetrics
		findings []model.Finding
		skipped  = append([]model.SkippedFile(nil), ingested.Skipped...)
		analyzed []*metrics.FileAnalysis
	)
	for _, r := range results {
		if r.skip != nil {
			skipped = append(skipped, *r.skip)
			continue
		}
		analyzed = append(analyzed, r.analysis)
		files = append(files, r.analysis.Metrics)
		findings = append(findings, r.findings...)
	}

	if len(files) == 0 {
		util.Warn("No analyzable files among %d submitted (%d skipped)", len(req.Files), len(skipped))
		return nil, fmt.Errorf("%w: %d files skipped", model.ErrNoAnalyzableFiles, len(skipped))
	}

	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	sort.SliceStable(skipped, func(i, j int) bool { return skipped[i].Path < skipped[j].Path })
	detector.SortFindings(findings)

	report := c.assemble(req.ProjectName, files, findings, skipped)
	report.Metadata.Fingerprint = fingerprint(analyzed)
	report.Metadata.DurationMillis = time.Since(startTime).Milliseconds()

	if err := validateReport(report); err != nil {
		util.Error("Report failed validation: %v", err)
		return nil, err
	}

	util.Info("Analysis complete: %d files, %d smells, health %d (%s) (took %v)",
		report.TotalFiles, len(report.Smells), report.HealthIndex, report.HealthLabel, time.Since(startTime))
	return report, nil
}

// analyzeFiles runs the per-file stages on a bounded worker pool. Each worker
// writes only its own slot. Per-file failures become skips; cancellation of
// the parent context fails the whole run.
func (c *AnalysisController) analyzeFiles(ctx context.Context, files []model.SubmittedFile) ([]fileResult, error) {
	results := make([]fileResult, len(files))
	runner := detector.NewRunner(c.cfg)
	extractor := metrics.NewExtractor(c.cfg.Limits.ScannerCheckpoints)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency.Workers)
	util.Debug("Analyzing %d files with %d workers", len(files), c.cfg.Concurrency.Workers)

	for i, f := range files {
		i, f := i, f
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			r, err := c.analyzeFile(gctx, f, runner, extractor)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				util.Warn("Skipping %s: %v", f.Name, err)
				r = fileResult{skip: &model.SkippedFile{
					Path:   f.Name,
					Reason: model.SkipReasonFor(err),
					Detail: err.Error(),
				}}
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}
	return results, nil
}

// analyzeFile classifies, scans, measures and inspects one file under its
// own deadline
func (c *AnalysisController) analyzeFile(ctx context.Context, f model.SubmittedFile, runner *detector.Runner, extractor *metrics.Extractor) (fileResult, error) {
	lang := language.Classify(f.Name, f.Content)
	if lang == model.LanguageUnsupported {
		return fileResult{}, model.NewFileError(f.Name, "classify", model.ErrUnsupportedLanguage)
	}
	if c.exclusions.MatchesLanguage(string(lang)) {
		return fileResult{skip: &model.SkippedFile{Path: f.Name, Reason: model.SkipExcluded, Detail: string(lang)}}, nil
	}

	fctx, cancel := context.WithTimeout(ctx, c.cfg.Concurrency.FileTimeout)
	defer cancel()

	text := string(f.Content)
	scanned, err := lexer.Scan(fctx, lang, text, c.cfg.Limits.ScannerCheckpoints)
	if err != nil {
		return fileResult{}, model.NewFileError(f.Name, "scan", budgetError(err))
	}

	unit := model.NewSourceUnit(f.Name, lang, text)
	unit.Confidence = scanned.Confidence
	unit.MalformedLines = scanned.MalformedLines

	analysis, err := extractor.Extract(fctx, unit, scanned)
	if err != nil {
		return fileResult{}, model.NewFileError(f.Name, "metrics", budgetError(err))
	}

	findings, err := runner.Run(fctx, analysis)
	if err != nil {
		return fileResult{}, model.NewFileError(f.Name, "detect", budgetError(err))
	}
	if err := fctx.Err(); err != nil {
		return fileResult{}, model.NewFileError(f.Name, "analyze", budgetError(err))
	}

	return fileResult{analysis: analysis, findings: findings}, nil
}

// budgetError marks a per-file deadline as a resource limit
func budgetError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", model.ErrResourceExceeded, err)
	}
	return err
}

func (c *AnalysisController) assemble(project string, files []model.FileMetrics, findings []model.Finding, skipped []model.SkippedFile) *model.AnalysisReport {
	totals := scoring.Summarize(files)
	health := scoring.NewHealthScorer(c.cfg.Scoring).Score(findings, totals.LOC, totals.AvgComplexity)
	hotspots := scoring.NewHotspotRanker(c.cfg.Scoring).Rank(files, findings)
	actions := planner.NewPlanner(c.cfg.Refactor).Plan(files, hotspots, findings)

	unsupported, lowConfidence := 0, 0
	for _, s := range skipped {
		if s.Reason == model.SkipUnsupportedLanguage {
			unsupported++
		}
	}
	for _, f := range files {
		if f.Confidence == model.ConfidenceReduced {
			lowConfidence++
		}
	}

	return &model.AnalysisReport{
		ID:              uuid.NewString(),
		ProjectName:     project,
		Timestamp:       time.Now().UTC(),
		HealthIndex:     health,
		HealthLabel:     scoring.Label(health),
		TotalFiles:      totals.Files,
		TotalLOC:        totals.LOC,
		AvgComplexity:   totals.AvgComplexity,
		Files:           files,
		Smells:          nonNil(findings),
		Hotspots:        nonNil(hotspots),
		RefactorActions: nonNil(actions),
		Metadata: model.ReportMetadata{
			Skipped:             nonNil(skipped),
			UnsupportedCount:    unsupported,
			LowConfidenceCount:  lowConfidence,
			Complexity:          totals.Distribution,
			ComplexityThreshold: c.cfg.Detectors.Complexity.Threshold,
			Intent:              c.cfg.Refactor.Intent,
		},
	}
}

// nonNil keeps empty lists as [] in JSON output
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// fingerprint hashes the analyzed paths and contents in report order
func fingerprint(analyzed []*metrics.FileAnalysis) string {
	sorted := append([]*metrics.FileAnalysis(nil), analyzed...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Unit.Path < sorted[j].Unit.Path })

	d := xxhash.New()
	for _, a := range sorted {
		_, _ = d.WriteString(a.Unit.Path)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(a.Unit.Text)
		_, _ = d.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

// validateReport checks the cross-field invariants of a finished report
func validateReport(r *model.AnalysisReport) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", model.ErrInternalInconsistency, fmt.Sprintf(format, args...))
	}

	if r.HealthIndex < 0 || r.HealthIndex > 100 {
		return fail("health index %d out of range", r.HealthIndex)
	}
	if r.TotalFiles != len(r.Files) {
		return fail("total_files %d != %d files", r.TotalFiles, len(r.Files))
	}

	known := make(map[string]bool, len(r.Files))
	loc, complexity := 0, 0
	for _, f := range r.Files {
		known[f.Path] = true
		loc += f.LineCount
		complexity += f.Complexity
	}
	if r.TotalLOC != loc {
		return fail("total_loc %d != sum %d", r.TotalLOC, loc)
	}
	if len(r.Files) > 0 {
		mean := float64(complexity) / float64(len(r.Files))
		if math.Abs(r.AvgComplexity-mean) > 0.005+1e-9 {
			return fail("avg_complexity %.2f != mean %.4f", r.AvgComplexity, mean)
		}
	}

	for _, f := range r.Smells {
		if !known[f.FilePath] {
			return fail("finding references unknown file %s", f.FilePath)
		}
		if f.Line < 1 || f.EndLine < f.Line {
			return fail("finding %s in %s has invalid range %d-%d", f.Type, f.FilePath, f.Line, f.EndLine)
		}
	}
	for _, h := range r.Hotspots {
		if !known[h.FilePath] {
			return fail("hotspot references unknown file %s", h.FilePath)
		}
		if h.Priority != model.PriorityForRisk(h.RiskScore) {
			return fail("hotspot %s priority %s does not match risk %.2f", h.FilePath, h.Priority, h.RiskScore)
		}
	}
	for _, a := range r.RefactorActions {
		if !known[a.FilePath] {
			return fail("refactor action references unknown file %s", a.FilePath)
		}
	}
	return nil
}
