// Package scoring turns metrics and findings into the project health index
// and the ranked list of hotspot files.
package scoring

import (
	"math"

	"code-atlas/src/config"
	"code-atlas/src/model"
)

// Health labels
const (
	LabelExcellent      = "Excellent"
	LabelGood           = "Good"
	LabelFair           = "Fair"
	LabelNeedsAttention = "Needs Attention"
)

// HealthScorer computes the project health index
type HealthScorer struct {
	cfg config.ScoringConfig
}

// NewHealthScorer creates a new health scorer
func NewHealthScorer(cfg config.ScoringConfig) *HealthScorer {
	return &HealthScorer{cfg: cfg}
}

// Score returns the health index in [0,100]. Smell weight is normalized by
// total LOC with a floor so tiny projects are not punished by one finding;
// average complexity adds a capped penalty on top.
func (s *HealthScorer) Score(findings []model.Finding, totalLOC int, avgComplexity float64) int {
	weight := 0
	for _, f := range findings {
		weight += f.Severity.Weight()
	}

	loc := totalLOC
	if loc < s.cfg.LOCFloor {
		loc = s.cfg.LOCFloor
	}
	if loc <= 0 {
		loc = 1
	}

	smellPenalty := clamp(float64(weight)*100/float64(loc), 0, 100)
	complexityPenalty := math.Min(s.cfg.MaxComplexityPenalty, math.Max(0, avgComplexity*s.cfg.ComplexityFactor))

	index := math.Round(100 - smellPenalty - complexityPenalty)
	return int(clamp(index, 0, 100))
}

// Label maps a health index onto its display label
func Label(index int) string {
	switch {
	case index >= 80:
		return LabelExcellent
	case index >= 60:
		return LabelGood
	case index >= 40:
		return LabelFair
	default:
		return LabelNeedsAttention
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round2 rounds to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
