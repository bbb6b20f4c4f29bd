package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"code-atlas/src/config"
	"code-atlas/src/model"
	"code-atlas/src/util"
)

const informationURI = "https://github.com/code-atlas/code-atlas"

// Formats lists the supported output formats
var Formats = []string{"json", "markdown", "sarif"}

var ruleDescriptions = map[model.SmellType]string{
	model.SmellHighComplexity:    "Function or query file with cyclomatic complexity above the threshold",
	model.SmellLongFunction:      "Function longer than the allowed number of code lines",
	model.SmellDuplicateCode:     "Block of code lines repeated elsewhere in the same file",
	model.SmellGodFile:           "File with too many code lines and functions",
	model.SmellDeepNesting:       "Control flow nested deeper than the allowed depth",
	model.SmellLongParameterList: "Function with too many parameters",
	model.SmellMagicNumber:       "Numeric literal used outside a named constant",
}

var ruleDefaults = map[model.SmellType]model.Severity{
	model.SmellHighComplexity:    model.SeverityHigh,
	model.SmellLongFunction:      model.SeverityMedium,
	model.SmellDuplicateCode:     model.SeverityHigh,
	model.SmellGodFile:           model.SeverityHigh,
	model.SmellDeepNesting:       model.SeverityMedium,
	model.SmellLongParameterList: model.SeverityLow,
	model.SmellMagicNumber:       model.SeverityLow,
}

// Generator generates reports in various formats
type Generator struct {
	cfg config.OutputConfig
}

// NewGenerator creates a new report generator
func NewGenerator(cfg config.OutputConfig) *Generator {
	return &Generator{cfg: cfg}
}

// Extension returns the file extension used for a format
func Extension(format string) string {
	switch format {
	case "markdown", "md":
		return "md"
	default:
		return format
	}
}

// Generate generates a report in the specified format
func (g *Generator) Generate(report *model.AnalysisReport, format string) (string, error) {
	util.Debug("Generating report in %s format (%d smells)", format, len(report.Smells))
	switch format {
	case "json":
		return g.generateJSON(report)
	case "markdown", "md":
		return g.generateMarkdown(report)
	case "sarif":
		return g.generateSARIF(report)
	default:
		util.Warn("Unsupported report format requested: %s", format)
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func (g *Generator) generateJSON(report *model.AnalysisReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (g *Generator) generateMarkdown(report *model.AnalysisReport) (string, error) {
	var sb strings.Builder

	// Header
	sb.WriteString("# Code Analysis Report\n\n")
	sb.WriteString(fmt.Sprintf("**Project:** %s\n", report.ProjectName))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC")))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Health Index:** %d/100 (%s)\n", report.HealthIndex, report.HealthLabel))
	sb.WriteString(fmt.Sprintf("- **Files:** %d\n", report.TotalFiles))
	sb.WriteString(fmt.Sprintf("- **Lines of Code:** %d\n", report.TotalLOC))
	sb.WriteString(fmt.Sprintf("- **Average Complexity:** %.2f\n", report.AvgComplexity))
	sb.WriteString(fmt.Sprintf("- **Smells:** %d\n\n", len(report.Smells)))

	// By Severity
	bySeverity := make(map[model.Severity]int)
	byType := make(map[model.SmellType]int)
	for _, s := range report.Smells {
		bySeverity[s.Severity]++
		byType[s.Type]++
	}

	sb.WriteString("### Smells by Severity\n\n")
	sb.WriteString("| Severity | Count |\n")
	sb.WriteString("|----------|-------|\n")
	for _, sev := range []model.Severity{model.SeverityHigh, model.SeverityMedium, model.SeverityLow} {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", sev, bySeverity[sev]))
	}
	sb.WriteString("\n")

	sb.WriteString("### Smells by Type\n\n")
	sb.WriteString("| Type | Count |\n")
	sb.WriteString("|------|-------|\n")
	for _, smell := range model.AllSmellTypes {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", smell, byType[smell]))
	}
	sb.WriteString("\n")

	// Hotspots
	if len(report.Hotspots) > 0 {
		sb.WriteString("## Hotspots\n\n")
		sb.WriteString("| File | Risk | Priority | Complexity | Smells |\n")
		sb.WriteString("|------|------|----------|------------|--------|\n")
		for _, h := range report.Hotspots {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %s | %d | %d |\n", h.FilePath, h.RiskScore, h.Priority, h.Complexity, h.SmellCount))
		}
		sb.WriteString("\n")
	}

	// Refactor plan
	if len(report.RefactorActions) > 0 {
		sb.WriteString("## Refactor Plan\n\n")
		for i, a := range report.RefactorActions {
			sb.WriteString(fmt.Sprintf("%d. **%s** `%s` (priority: %s, impact: %s, effort: %s)\n   %s\n",
				i+1, a.Action, a.FilePath, a.Priority, a.Impact, a.Effort, a.Description))
		}
		sb.WriteString("\n")
	}

	// Files
	sb.WriteString("## Files\n\n")
	sb.WriteString("| File | Language | LOC | Complexity | Functions | Nesting | Confidence |\n")
	sb.WriteString("|------|----------|-----|------------|-----------|---------|------------|\n")
	for _, f := range report.Files {
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %d | %d | %s |\n",
			f.Path, f.Language, f.LineCount, f.Complexity, f.Functions, f.MaxNesting, f.Confidence))
	}
	sb.WriteString("\n")

	// Smells
	if len(report.Smells) > 0 {
		sb.WriteString("## Smells\n\n")
		for _, s := range report.Smells {
			sb.WriteString(fmt.Sprintf("#### %s %s\n\n", severityTag(s.Severity), s.Type))
			sb.WriteString(fmt.Sprintf("- **File:** `%s:%d-%d`\n", s.FilePath, s.Line, s.EndLine))
			sb.WriteString(fmt.Sprintf("- **Description:** %s\n", s.Message))
			if g.cfg.IncludeSuggestions && s.Suggestion != "" {
				sb.WriteString(fmt.Sprintf("- **Suggestion:** %s\n", s.Suggestion))
			}
			sb.WriteString("\n")
		}
	}

	if g.cfg.IncludeMetadata {
		meta := report.Metadata
		sb.WriteString("## Run Details\n\n")
		sb.WriteString(fmt.Sprintf("- **Complexity p50/p90/max:** %.1f / %.1f / %d\n", meta.Complexity.P50, meta.Complexity.P90, meta.Complexity.Max))
		sb.WriteString(fmt.Sprintf("- **Complexity Threshold:** %d\n", meta.ComplexityThreshold))
		sb.WriteString(fmt.Sprintf("- **Intent:** %s\n", meta.Intent))
		sb.WriteString(fmt.Sprintf("- **Unsupported Files:** %d\n", meta.UnsupportedCount))
		sb.WriteString(fmt.Sprintf("- **Reduced Confidence Files:** %d\n", meta.LowConfidenceCount))
		sb.WriteString(fmt.Sprintf("- **Duration:** %dms\n", meta.DurationMillis))
		if len(meta.Skipped) > 0 {
			sb.WriteString("\n| Skipped File | Reason |\n")
			sb.WriteString("|--------------|--------|\n")
			for _, s := range meta.Skipped {
				sb.WriteString(fmt.Sprintf("| %s | %s |\n", s.Path, s.Reason))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func (g *Generator) generateSARIF(report *model.AnalysisReport) (string, error) {
	sarifReport, err := sarif.New(sarif.Version210)
	if err != nil {
		return "", fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("code-atlas", informationURI)
	for _, smell := range model.AllSmellTypes {
		run.AddRule(string(smell)).
			WithDescription(ruleDescriptions[smell]).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: sarifLevel(ruleDefaults[smell]),
			})
	}

	for _, s := range report.Smells {
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(s.FilePath)).
				WithRegion(sarif.NewRegion().WithStartLine(s.Line).WithEndLine(s.EndLine)),
		)

		message := s.Message
		if g.cfg.IncludeSuggestions && s.Suggestion != "" {
			message += ". " + s.Suggestion
		}

		result := sarif.NewRuleResult(string(s.Type)).
			WithMessage(sarif.NewTextMessage(message)).
			WithLevel(sarifLevel(s.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	sarifReport.AddRun(run)

	var buf bytes.Buffer
	if err := sarifReport.PrettyWrite(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func severityTag(s model.Severity) string {
	switch s {
	case model.SeverityHigh:
		return "[HIGH]"
	case model.SeverityMedium:
		return "[MEDIUM]"
	default:
		return "[LOW]"
	}
}

func sarifLevel(s model.Severity) string {
	switch s {
	case model.SeverityHigh:
		return "error"
	case model.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}
