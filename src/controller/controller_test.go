package controller

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"code-atlas/src/config"
	"code-atlas/src/model"
	"code-atlas/src/service/scoring"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func decideSource(branches int) string {
	var b strings.Builder
	b.WriteString("package main\n\nfunc decide(x int) int {\n")
	for i := 0; i < branches; i++ {
		fmt.Fprintf(&b, "\tif x == %d {\n\t\treturn %d\n\t}\n", i+2, i)
	}
	b.WriteString("\treturn 0\n}\n")
	return b.String()
}

func submission() []model.SubmittedFile {
	return []model.SubmittedFile{
		{Name: "decide.go", Content: []byte(decideSource(11))},
		{Name: "README.txt", Content: []byte("just prose\n")},
		{Name: "app.py", Content: []byte("def main(argv):\n    if argv:\n        return argv[0]\n    return None\n")},
		{Name: "logo.png", Content: []byte("\x89PNG\r\n\x1a\nrest")},
	}
}

func analyze(t *testing.T, cfg *config.Config, files []model.SubmittedFile) *model.AnalysisReport {
	t.Helper()
	report, err := NewAnalysisController(cfg).Analyze(context.Background(), AnalyzeRequest{
		ProjectName: "demo",
		Files:       files,
	})
	require.NoError(t, err)
	return report
}

func TestAnalyzeEmptySubmission(t *testing.T) {
	_, err := NewAnalysisController(config.DefaultConfig()).Analyze(context.Background(), AnalyzeRequest{ProjectName: "demo"})
	assert.ErrorIs(t, err, model.ErrEmptySubmission)
}

func TestAnalyzeNothingAnalyzable(t *testing.T) {
	_, err := NewAnalysisController(config.DefaultConfig()).Analyze(context.Background(), AnalyzeRequest{
		ProjectName: "demo",
		Files: []model.SubmittedFile{
			{Name: "notes.txt", Content: []byte("hello\n")},
			{Name: "photo.jpg", Content: []byte{0xFF, 0xD8, 0xFF, 0x00}},
		},
	})
	assert.ErrorIs(t, err, model.ErrNoAnalyzableFiles)
}

func TestAnalyzeReport(t *testing.T) {
	report := analyze(t, config.DefaultConfig(), submission())

	_, err := uuid.Parse(report.ID)
	assert.NoError(t, err)
	assert.Equal(t, "demo", report.ProjectName)

	require.Equal(t, 2, report.TotalFiles)
	assert.Equal(t, "app.py", report.Files[0].Path)
	assert.Equal(t, "decide.go", report.Files[1].Path)
	assert.Equal(t, model.LanguagePython, report.Files[0].Language)
	assert.Equal(t, 12, report.Files[1].Complexity)
	assert.Equal(t, report.Files[0].LineCount+report.Files[1].LineCount, report.TotalLOC)
	assert.Equal(t, 7.0, report.AvgComplexity)

	var high int
	for _, s := range report.Smells {
		if s.Type == model.SmellHighComplexity {
			high++
			assert.Equal(t, "decide.go", s.FilePath)
		}
	}
	assert.Equal(t, 1, high)

	assert.GreaterOrEqual(t, report.HealthIndex, 0)
	assert.LessOrEqual(t, report.HealthIndex, 100)
	assert.Equal(t, scoring.Label(report.HealthIndex), report.HealthLabel)

	for _, h := range report.Hotspots {
		assert.Equal(t, model.PriorityForRisk(h.RiskScore), h.Priority)
	}

	meta := report.Metadata
	assert.Equal(t, 1, meta.UnsupportedCount)
	assert.Equal(t, 10, meta.ComplexityThreshold)
	assert.Equal(t, config.IntentMaintainability, meta.Intent)
	assert.Equal(t, 12, meta.Complexity.Max)
	assert.Len(t, meta.Fingerprint, 16)
	require.Len(t, meta.Skipped, 2)
	assert.Equal(t, "README.txt", meta.Skipped[0].Path)
	assert.Equal(t, model.SkipUnsupportedLanguage, meta.Skipped[0].Reason)
	assert.Equal(t, "logo.png", meta.Skipped[1].Path)
	assert.Equal(t, model.SkipBinary, meta.Skipped[1].Reason)

	assert.NoError(t, validateReport(report))
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Concurrency.Workers = 4

	normalize := func(r *model.AnalysisReport) *model.AnalysisReport {
		r.ID = ""
		r.Timestamp = time.Time{}
		r.Metadata.DurationMillis = 0
		return r
	}

	first := normalize(analyze(t, cfg, submission()))

	reversed := submission()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	second := normalize(analyze(t, cfg, reversed))

	assert.Equal(t, first, second)
}

func TestAnalyzeArchiveSubmission(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"src/decide.go":       decideSource(3),
		"node_modules/x/a.js": "module.exports = 1\n",
		"scripts/deploy.sh":   "#!/bin/bash\nif [ -f x ]; then\n  echo ok\nfi\n",
		"db/report.sql":       "SELECT * FROM t WHERE a = 1;\n",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	report := analyze(t, config.DefaultConfig(), []model.SubmittedFile{{Name: "project.zip", Content: buf.Bytes()}})

	var paths []string
	for _, f := range report.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"db/report.sql", "scripts/deploy.sh", "src/decide.go"}, paths)
	require.Len(t, report.Metadata.Skipped, 1)
	assert.Equal(t, model.SkipExcluded, report.Metadata.Skipped[0].Reason)
}

func TestAnalyzeEmptyArchive(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, zip.NewWriter(&buf).Close())

	report, err := NewAnalysisController(config.DefaultConfig()).Analyze(context.Background(), AnalyzeRequest{
		ProjectName: "demo",
		Files:       []model.SubmittedFile{{Name: "empty.zip", Content: buf.Bytes()}},
	})
	assert.Nil(t, report)
	assert.ErrorIs(t, err, model.ErrNoAnalyzableFiles)
}

func TestUnbalancedInputStaysWithinBudget(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Concurrency.FileTimeout = 100 * time.Millisecond
	src := "class A {\n" + strings.Repeat("a(", 40000)

	start := time.Now()
	results, err := NewAnalysisController(cfg).analyzeFiles(context.Background(), []model.SubmittedFile{
		{Name: "slow.java", Content: []byte(src)},
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Less(t, elapsed, 2*time.Second)
	if results[0].skip != nil {
		assert.Equal(t, model.SkipResourceExceeded, results[0].skip.Reason)
	} else {
		assert.Equal(t, "slow.java", results[0].analysis.Unit.Path)
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnalysisController(config.DefaultConfig()).Analyze(ctx, AnalyzeRequest{
		ProjectName: "demo",
		Files:       submission(),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPerFileTimeoutBecomesSkip(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Concurrency.FileTimeout = time.Nanosecond

	c := NewAnalysisController(cfg)
	results, err := c.analyzeFiles(context.Background(), []model.SubmittedFile{
		{Name: "decide.go", Content: []byte(decideSource(11))},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].skip)
	assert.Equal(t, model.SkipResourceExceeded, results[0].skip.Reason)
	assert.Equal(t, "decide.go", results[0].skip.Path)
}

func TestExcludedLanguage(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Exclusions.Languages = []string{"python"}

	report := analyze(t, cfg, submission())
	require.Equal(t, 1, report.TotalFiles)
	assert.Equal(t, "decide.go", report.Files[0].Path)

	reasons := map[string]string{}
	for _, s := range report.Metadata.Skipped {
		reasons[s.Path] = s.Reason
	}
	assert.Equal(t, model.SkipExcluded, reasons["app.py"])
}

func TestValidateReportCatchesInconsistencies(t *testing.T) {
	base := func() *model.AnalysisReport {
		return analyze(t, config.DefaultConfig(), submission())
	}

	tests := []struct {
		name   string
		tamper func(r *model.AnalysisReport)
	}{
		{"health out of range", func(r *model.AnalysisReport) { r.HealthIndex = 101 }},
		{"total loc", func(r *model.AnalysisReport) { r.TotalLOC++ }},
		{"total files", func(r *model.AnalysisReport) { r.TotalFiles = 5 }},
		{"average", func(r *model.AnalysisReport) { r.AvgComplexity += 0.5 }},
		{"unknown file", func(r *model.AnalysisReport) {
			r.Smells = append(r.Smells, model.Finding{Type: model.SmellMagicNumber, Severity: model.SeverityLow, FilePath: "ghost.go", Line: 1, EndLine: 1})
		}},
		{"priority mismatch", func(r *model.AnalysisReport) {
			r.Hotspots = append(r.Hotspots, model.Hotspot{FilePath: "decide.go", RiskScore: 10, Priority: model.PriorityCritical})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base()
			tt.tamper(r)
			assert.ErrorIs(t, validateReport(r), model.ErrInternalInconsistency)
		})
	}
}

func TestGenerateReports(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.OutputDir = t.TempDir()
	cfg.Output.Formats = []string{"json", "markdown", "sarif"}

	report := analyze(t, cfg, submission())
	paths, err := NewReportController(cfg).GenerateReports(report)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(cfg.Output.OutputDir, "demo-analysis.json"),
		filepath.Join(cfg.Output.OutputDir, "demo-analysis.md"),
		filepath.Join(cfg.Output.OutputDir, "demo-analysis.sarif"),
	}, paths)
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}
