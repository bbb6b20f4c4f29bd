package model

// FunctionMetrics contains metrics for a single function/method
type FunctionMetrics struct {
	Name      string `json:"name"`
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`

	// Size metrics
	LineCount      int `json:"line_count"`
	ParameterCount int `json:"parameter_count"`

	// Complexity metrics
	CyclomaticComplexity int `json:"cyclomatic_complexity"`
	DecisionCount        int `json:"decision_count"`
	MaxNestingDepth      int `json:"max_nesting_depth"`
}

// FileMetrics contains metrics for a single file
type FileMetrics struct {
	Path       string     `json:"filename"`
	Language   Language   `json:"language"`
	Complexity int        `json:"complexity"`
	LineCount  int        `json:"loc"`
	Functions  int        `json:"functions"`
	MaxNesting int        `json:"nesting_depth"`
	Confidence Confidence `json:"confidence"`

	// Per-function breakdown, kept out of the external contract
	FunctionMetrics []FunctionMetrics `json:"-"`
}

// MaxFunctionComplexity returns the highest function complexity in the file
func (m FileMetrics) MaxFunctionComplexity() int {
	highest := 0
	for _, fn := range m.FunctionMetrics {
		if fn.CyclomaticComplexity > highest {
			highest = fn.CyclomaticComplexity
		}
	}
	return highest
}
