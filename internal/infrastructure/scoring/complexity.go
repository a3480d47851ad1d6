// Package scoring provides the pure scoring components of the routing engine:
// the complexity analyzer and the priority calculator. Both are side-effect
// free functions over immutable inputs plus a read-only model snapshot, so
// invocations for different tasks may run fully in parallel.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blackms/taskrouter-go/internal/domain/routing"
	"github.com/blackms/taskrouter-go/internal/shared"
)

// Analyzer scores a task's intrinsic difficulty from its description and
// metadata. Stateless; all tunables come from the model snapshot.
type Analyzer struct{}

// NewAnalyzer creates a new complexity Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Keyword tables for the five complexity heuristics. The extraction method is
// implementation-defined; the contract fixes score ranges and weight
// composition only.
var (
	codeHeavyKeywords = []string{
		"refactor", "migration", "migrate", "concurrency", "concurrent",
		"distributed", "algorithm", "optimize", "performance", "protocol",
		"parser", "compiler", "transaction",
	}
	codeRoutineKeywords = []string{"crud", "boilerplate", "rename", "typo", "copy"}

	domainKeywords = []string{
		"compliance", "regulation", "regulatory", "security", "payment",
		"billing", "tax", "legal", "medical", "finance", "accounting",
	}

	creativityKeywords = []string{
		"design", "novel", "from scratch", "invent", "creative", "brainstorm",
		"greenfield", "prototype", "reimagine",
	}

	uncertaintyKeywords = []string{
		"unclear", "unknown", "investigate", "maybe", "possibly", "explore",
		"spike", "research", "figure out",
	}

	dependencyKeywords = []string{
		"integration", "integrate", "depends", "upstream", "downstream", "coordinate",
	}
)

// Score computes the complexity of a task under the given model snapshot.
// Malformed input (missing description) yields a neutral mid-range score with
// zero confidence rather than an error, so the pipeline never stalls.
func (a *Analyzer) Score(task shared.TaskRequest, model *routing.Model) shared.ComplexityScore {
	if strings.TrimSpace(task.Description) == "" {
		return shared.ComplexityScore{
			Total:     5,
			Breakdown: map[string]float64{},
			Recommendation: shared.Recommendation{
				Category:   shared.CategoryAutomatedReview,
				Confidence: 0,
				Reason:     "missing description",
			},
		}
	}

	desc := strings.ToLower(task.Description)

	breakdown := map[string]float64{
		shared.FactorCode:            a.codeScore(task, desc),
		shared.FactorDomainKnowledge: a.domainScore(task, desc),
		shared.FactorCreativity:      a.creativityScore(task, desc),
		shared.FactorUncertainty:     a.uncertaintyScore(task, desc),
		shared.FactorDependencies:    a.dependencyScore(task, desc),
	}

	w := model.Weights.Complexity
	total := breakdown[shared.FactorCode]*w.Code +
		breakdown[shared.FactorDomainKnowledge]*w.DomainKnowledge +
		breakdown[shared.FactorCreativity]*w.Creativity +
		breakdown[shared.FactorUncertainty]*w.Uncertainty +
		breakdown[shared.FactorDependencies]*w.Dependencies
	total = shared.Round1(shared.Clamp(total, 0, 10))

	return shared.ComplexityScore{
		Total:          total,
		Breakdown:      breakdown,
		Recommendation: recommendFor(total, breakdown, model),
	}
}

// recommendFor maps a complexity total to the categorical recommendation
// using the band cutoffs carried by the model snapshot.
func recommendFor(total float64, breakdown map[string]float64, model *routing.Model) shared.Recommendation {
	reason := fmt.Sprintf("complexity %.1f, dominant factor %s", total, dominantFactor(breakdown))

	b := model.Bands
	switch {
	case total <= b.AutomatedMax:
		return shared.Recommendation{Category: shared.CategoryAutomated, Confidence: 0.9, Reason: reason}
	case total <= b.ReviewMax:
		return shared.Recommendation{Category: shared.CategoryAutomatedReview, Confidence: 0.7, Reason: reason}
	case total <= b.HybridMax:
		return shared.Recommendation{Category: shared.CategoryHybrid, Confidence: 0.8, Reason: reason}
	default:
		return shared.Recommendation{Category: shared.CategoryHuman, Confidence: 0.9, Reason: reason}
	}
}

func dominantFactor(breakdown map[string]float64) string {
	names := make([]string, 0, len(breakdown))
	for name := range breakdown {
		names = append(names, name)
	}
	sort.Strings(names)

	best := ""
	bestScore := -1.0
	for _, name := range names {
		if breakdown[name] > bestScore {
			best = name
			bestScore = breakdown[name]
		}
	}
	if best == "" {
		return "none"
	}
	return best
}

func (a *Analyzer) codeScore(task shared.TaskRequest, desc string) float64 {
	score := 1.0
	score += minf(3, float64(task.EstimatedFiles)*0.4)
	score += minf(2.5, task.EstimatedHours*0.25)
	score += minf(4, countMatches(desc, codeHeavyKeywords)*1.5)
	score -= countMatches(desc, codeRoutineKeywords)
	return shared.Clamp(score, 0, 10)
}

func (a *Analyzer) domainScore(task shared.TaskRequest, desc string) float64 {
	score := 1.0
	if task.Domain != "" {
		score += 2
	}
	score += minf(5, countMatches(desc, domainKeywords)*1.5)
	if task.HasDetailedSpecs {
		score -= 1
	}
	return shared.Clamp(score, 0, 10)
}

func (a *Analyzer) creativityScore(task shared.TaskRequest, desc string) float64 {
	score := 1.0
	score += minf(6, countMatches(desc, creativityKeywords)*2)
	if task.HasTag("creative") || task.HasTag("design") {
		score += 2
	}
	if task.HasExistingPatterns {
		score -= 3
	}
	return shared.Clamp(score, 0, 10)
}

func (a *Analyzer) uncertaintyScore(task shared.TaskRequest, desc string) float64 {
	score := 2.0
	if !task.HasDetailedSpecs {
		score += 3
	}
	score += minf(4.5, countMatches(desc, uncertaintyKeywords)*1.5)
	if len(task.Description) < 40 {
		score += 1
	}
	return shared.Clamp(score, 0, 10)
}

func (a *Analyzer) dependencyScore(task shared.TaskRequest, desc string) float64 {
	score := 1.0
	score += minf(3, float64(task.EstimatedFiles)*0.3)
	score += minf(2, float64(task.AffectedUsers)/500)
	if task.HasTag("blocking") || task.HasTag("dependency") {
		score += 2
	}
	score += minf(3, countMatches(desc, dependencyKeywords))
	return shared.Clamp(score, 0, 10)
}

func countMatches(text string, keywords []string) float64 {
	matches := 0.0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			matches++
		}
	}
	return matches
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
