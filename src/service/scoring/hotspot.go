package scoring

import (
	"math"
	"sort"

	"code-atlas/src/config"
	"code-atlas/src/model"
	"code-atlas/src/util"
)

// HotspotRanker scores files by complexity and smell weight
type HotspotRanker struct {
	cfg config.ScoringConfig
}

// NewHotspotRanker creates a new hotspot ranker
func NewHotspotRanker(cfg config.ScoringConfig) *HotspotRanker {
	return &HotspotRanker{cfg: cfg}
}

// RiskScore combines a file's complexity relative to the run maximum with
// the weight of its findings. The result is rounded to two decimals.
func (r *HotspotRanker) RiskScore(complexity, runMax, smellWeight int) float64 {
	denom := runMax
	if denom < r.cfg.ComplexityFloor {
		denom = r.cfg.ComplexityFloor
	}
	if denom <= 0 {
		denom = 1
	}

	complexityPart := r.cfg.ComplexityComponent * float64(complexity) / float64(denom)
	smellPart := math.Min(r.cfg.SmellComponent, r.cfg.SmellWeightMultiplier*float64(smellWeight))
	return Round2(clamp(complexityPart+smellPart, 0, 100))
}

// Rank returns the hotspots of priority medium or above, ordered by risk,
// then complexity, then file name
func (r *HotspotRanker) Rank(files []model.FileMetrics, findings []model.Finding) []model.Hotspot {
	runMax := 0
	for _, f := range files {
		if f.Complexity > runMax {
			runMax = f.Complexity
		}
	}

	weights := make(map[string]int)
	counts := make(map[string]int)
	for _, f := range findings {
		weights[f.FilePath] += f.Severity.Weight()
		counts[f.FilePath]++
	}

	var hotspots []model.Hotspot
	for _, f := range files {
		score := r.RiskScore(f.Complexity, runMax, weights[f.Path])
		priority := model.PriorityForRisk(score)
		if priority.Rank() < model.PriorityMedium.Rank() {
			continue
		}
		hotspots = append(hotspots, model.Hotspot{
			FilePath:   f.Path,
			RiskScore:  score,
			Priority:   priority,
			Complexity: f.Complexity,
			SmellCount: counts[f.Path],
		})
	}

	sort.SliceStable(hotspots, func(i, j int) bool {
		a, b := hotspots[i], hotspots[j]
		if a.RiskScore != b.RiskScore {
			return a.RiskScore > b.RiskScore
		}
		if a.Complexity != b.Complexity {
			return a.Complexity > b.Complexity
		}
		return a.FilePath < b.FilePath
	})

	util.Debug("Hotspot ranking: %d of %d files at medium priority or above", len(hotspots), len(files))
	return hotspots
}
