// Package planner derives prioritized refactor recommendations from
// hotspots and high-severity findings.
package planner

import (
	"fmt"
	"sort"

	"code-atlas/src/config"
	"code-atlas/src/model"
	"code-atlas/src/util"
)

// Action names
const (
	ActionExtractMethod   = "Extract Method"
	ActionDeduplicate     = "Deduplicate"
	ActionSplitFile       = "Split File"
	ActionFlattenNesting  = "Flatten Nesting"
	ActionParameterObject = "Introduce Parameter Object"
	ActionConstant        = "Introduce Constant"
)

var actionFor = map[model.SmellType]string{
	model.SmellHighComplexity:    ActionExtractMethod,
	model.SmellLongFunction:      ActionExtractMethod,
	model.SmellDuplicateCode:     ActionDeduplicate,
	model.SmellGodFile:           ActionSplitFile,
	model.SmellDeepNesting:       ActionFlattenNesting,
	model.SmellLongParameterList: ActionParameterObject,
	model.SmellMagicNumber:       ActionConstant,
}

var guidance = map[string]string{
	ActionExtractMethod:   "Break long or branch-heavy functions into smaller, well-named helpers.",
	ActionDeduplicate:     "Move the repeated block into one shared function.",
	ActionSplitFile:       "Split the file into cohesive modules along its responsibilities.",
	ActionFlattenNesting:  "Use guard clauses and early returns to reduce nesting.",
	ActionParameterObject: "Group related parameters into a single struct or options object.",
	ActionConstant:        "Name the literals as constants next to the code that uses them.",
}

var framing = map[string]string{
	config.IntentMaintainability: "This lowers the cost of future changes.",
	config.IntentPerformance:     "Simpler control flow also makes hot paths easier to profile and optimize.",
	config.IntentRefactoring:     "Apply it in small steps backed by tests.",
}

// Planner turns hotspots and findings into refactor actions
type Planner struct {
	cfg config.RefactorConfig
}

// NewPlanner creates a new refactor planner
func NewPlanner(cfg config.RefactorConfig) *Planner {
	return &Planner{cfg: cfg}
}

type actionKey struct {
	file   string
	action string
}

// Plan emits one action per hotspot at high priority or above, then one per
// (file, action) group of high-severity findings not already covered
func (p *Planner) Plan(files []model.FileMetrics, hotspots []model.Hotspot, findings []model.Finding) []model.RefactorAction {
	loc := make(map[string]int, len(files))
	for _, f := range files {
		loc[f.Path] = f.LineCount
	}

	byFile := make(map[string][]model.Finding)
	for _, f := range findings {
		byFile[f.FilePath] = append(byFile[f.FilePath], f)
	}

	covered := make(map[actionKey]bool)
	var actions []model.RefactorAction

	for _, h := range hotspots {
		if h.Priority.Rank() < model.PriorityHigh.Rank() {
			continue
		}
		smell, ok := dominantSmell(byFile[h.FilePath])
		action := ActionExtractMethod
		affected := loc[h.FilePath]
		if ok {
			action = actionFor[smell]
			affected = affectedLines(byFile[h.FilePath], action)
		}

		key := actionKey{h.FilePath, action}
		if covered[key] {
			continue
		}
		covered[key] = true

		trigger := fmt.Sprintf("risk score %.2f (complexity %d, %d smells)", h.RiskScore, h.Complexity, h.SmellCount)
		actions = append(actions, p.newAction(action, h.FilePath, h.Priority, affected, trigger))
	}

	// high-severity findings grouped per (file, action) in report order
	var order []actionKey
	groups := make(map[actionKey][]model.Finding)
	for _, f := range findings {
		if f.Severity != model.SeverityHigh {
			continue
		}
		key := actionKey{f.FilePath, actionFor[f.Type]}
		if covered[key] {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], f)
	}

	for _, key := range order {
		group := groups[key]
		trigger := group[0].Message
		if len(group) > 1 {
			trigger = fmt.Sprintf("%s (and %d more)", trigger, len(group)-1)
		}
		actions = append(actions, p.newAction(key.action, key.file, model.PriorityHigh, affectedLines(group, key.action), trigger))
	}

	sortActions(actions)
	util.Debug("Refactor planner: %d actions from %d hotspots and %d findings", len(actions), len(hotspots), len(findings))
	return actions
}

func (p *Planner) newAction(action, file string, priority model.Priority, affected int, trigger string) model.RefactorAction {
	desc := fmt.Sprintf("%s: %s. %s", file, trigger, guidance[action])
	if frame, ok := framing[p.cfg.Intent]; ok {
		desc += " " + frame
	}
	return model.RefactorAction{
		Action:      action,
		Priority:    priority,
		FilePath:    file,
		Description: desc,
		Impact:      priority,
		Effort:      p.effort(affected),
	}
}

// effort grows with the number of lines the change touches
func (p *Planner) effort(affected int) model.Priority {
	switch {
	case affected <= p.cfg.SmallEffortLOC:
		return model.PriorityLow
	case affected <= p.cfg.LargeEffortLOC:
		return model.PriorityMedium
	default:
		return model.PriorityHigh
	}
}

// dominantSmell is the smell with the largest summed weight in a file;
// ties go to the earlier rule in the canonical order
func dominantSmell(findings []model.Finding) (model.SmellType, bool) {
	if len(findings) == 0 {
		return "", false
	}
	weights := make(map[model.SmellType]int)
	for _, f := range findings {
		weights[f.Type] += f.Severity.Weight()
	}

	var best model.SmellType
	bestWeight := -1
	for _, smell := range model.AllSmellTypes {
		if w, ok := weights[smell]; ok && w > bestWeight {
			best, bestWeight = smell, w
		}
	}
	return best, bestWeight >= 0
}

// affectedLines sums the spans of the findings that map to an action
func affectedLines(findings []model.Finding, action string) int {
	total := 0
	for _, f := range findings {
		if actionFor[f.Type] == action {
			total += f.Span()
		}
	}
	return total
}

func ratio(a model.RefactorAction) float64 {
	effort := a.Effort.Rank()
	if effort == 0 {
		effort = 1
	}
	return float64(a.Impact.Rank()) / float64(effort)
}

func sortActions(actions []model.RefactorAction) {
	sort.SliceStable(actions, func(i, j int) bool {
		a, b := actions[i], actions[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		if ra, rb := ratio(a), ratio(b); ra != rb {
			return ra > rb
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		return a.Action < b.Action
	})
}
