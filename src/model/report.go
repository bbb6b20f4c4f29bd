package model

import (
	"time"
)

// Priority is the tier assigned to hotspots and refactor actions
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank orders priorities from low (1) to critical (4)
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// PriorityForRisk maps a risk score onto its tier
func PriorityForRisk(score float64) Priority {
	switch {
	case score >= 70:
		return PriorityCritical
	case score >= 50:
		return PriorityHigh
	case score >= 30:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Hotspot represents a file whose complexity and smells make it a refactor target
type Hotspot struct {
	FilePath   string   `json:"file"`
	RiskScore  float64  `json:"risk_score"`
	Priority   Priority `json:"priority"`
	Complexity int      `json:"complexity"`
	SmellCount int      `json:"smells_count"`
}

// RefactorAction is a generated recommendation derived from findings or hotspots
type RefactorAction struct {
	Action      string   `json:"action"`
	Priority    Priority `json:"priority"`
	FilePath    string   `json:"file"`
	Description string   `json:"description"`
	Impact      Priority `json:"impact"`
	Effort      Priority `json:"effort"`
}

// SkippedFile records a submitted file that did not make it into the report
type SkippedFile struct {
	Path   string `json:"file"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Skip reasons
const (
	SkipUnsupportedLanguage = "unsupported_language"
	SkipResourceExceeded    = "resource_exceeded"
	SkipExcluded            = "excluded"
	SkipBinary              = "binary"
	SkipMalformed           = "malformed"
)

// ComplexityDistribution summarizes file complexity across the run
type ComplexityDistribution struct {
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
	Max int     `json:"max"`
}

// ReportMetadata carries run bookkeeping that is not part of the findings
type ReportMetadata struct {
	Skipped             []SkippedFile          `json:"skipped"`
	UnsupportedCount    int                    `json:"unsupported_count"`
	LowConfidenceCount  int                    `json:"low_confidence_count"`
	Complexity          ComplexityDistribution `json:"complexity"`
	ComplexityThreshold int                    `json:"complexity_threshold"`
	Intent              string                 `json:"intent"`
	Fingerprint         string                 `json:"fingerprint"`
	DurationMillis      int64                  `json:"duration_ms"`
}

// AnalysisReport represents the complete analysis output
type AnalysisReport struct {
	ID              string           `json:"id"`
	ProjectName     string           `json:"project_name"`
	Timestamp       time.Time        `json:"timestamp"`
	HealthIndex     int              `json:"health_index"`
	HealthLabel     string           `json:"health_label"`
	TotalFiles      int              `json:"total_files"`
	TotalLOC        int              `json:"total_loc"`
	AvgComplexity   float64          `json:"avg_complexity"`
	Files           []FileMetrics    `json:"files"`
	Smells          []Finding        `json:"smells"`
	Hotspots        []Hotspot        `json:"hotspots"`
	RefactorActions []RefactorAction `json:"refactor_actions"`
	Metadata        ReportMetadata   `json:"metadata"`
}
