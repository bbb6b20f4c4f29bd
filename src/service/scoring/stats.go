package scoring

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"code-atlas/src/model"
)

// Totals holds the run-wide size and complexity aggregates
type Totals struct {
	Files         int
	LOC           int
	AvgComplexity float64
	Distribution  model.ComplexityDistribution
}

// Summarize aggregates file metrics. The average is rounded to two decimals;
// percentiles use the empirical quantile of the file complexities.
func Summarize(files []model.FileMetrics) Totals {
	t := Totals{Files: len(files)}
	if len(files) == 0 {
		return t
	}

	values := make([]float64, len(files))
	for i, f := range files {
		t.LOC += f.LineCount
		values[i] = float64(f.Complexity)
		if f.Complexity > t.Distribution.Max {
			t.Distribution.Max = f.Complexity
		}
	}

	t.AvgComplexity = Round2(stat.Mean(values, nil))

	sort.Float64s(values)
	t.Distribution.P50 = stat.Quantile(0.5, stat.Empirical, values, nil)
	t.Distribution.P90 = stat.Quantile(0.9, stat.Empirical, values, nil)
	return t
}
