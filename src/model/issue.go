package model

// Severity represents the severity level of a finding
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Weight returns the scoring weight of the severity
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 6
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 1
	}
	return 0
}

// Rank orders severities from low (1) to high (3). Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// ParseSeverity converts a config string into a Severity
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return Severity(s), true
	}
	return "", false
}

// SmellType tags the rule that produced a finding
type SmellType string

const (
	SmellLongFunction      SmellType = "LongFunction"
	SmellHighComplexity    SmellType = "HighComplexity"
	SmellDeepNesting       SmellType = "DeepNesting"
	SmellDuplicateCode     SmellType = "DuplicateCode"
	SmellMagicNumber       SmellType = "MagicNumber"
	SmellLongParameterList SmellType = "LongParameterList"
	SmellGodFile           SmellType = "GodFile"
)

// AllSmellTypes lists the rule set in its canonical order
var AllSmellTypes = []SmellType{
	SmellHighComplexity,
	SmellLongFunction,
	SmellDuplicateCode,
	SmellGodFile,
	SmellDeepNesting,
	SmellLongParameterList,
	SmellMagicNumber,
}

// Finding represents a single detected code smell
type Finding struct {
	Type       SmellType `json:"type"`
	Severity   Severity  `json:"severity"`
	FilePath   string    `json:"file"`
	Line       int       `json:"line"`
	EndLine    int       `json:"end_line"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion"`
}

// Span returns the number of lines the finding covers
func (f Finding) Span() int {
	if f.EndLine < f.Line {
		return 1
	}
	return f.EndLine - f.Line + 1
}
