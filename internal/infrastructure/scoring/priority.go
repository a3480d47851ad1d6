package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blackms/taskrouter-go/internal/domain/routing"
	"github.com/blackms/taskrouter-go/internal/shared"
)

const millisPerDay = 24 * 60 * 60 * 1000

// Calculator scores business urgency/value independent of who will do the
// work. It never mutates shared state and may run concurrently with the
// complexity Analyzer for the same task.
type Calculator struct {
	nowFn func() int64
}

// NewCalculator creates a new priority Calculator.
func NewCalculator() *Calculator {
	return &Calculator{nowFn: shared.Now}
}

var riskKeywords = []string{
	"security", "vulnerability", "bug", "fix", "outage", "crash",
	"stability", "data loss", "incident", "risk",
}

// Score computes the priority of a task against the scheduling context,
// evaluated at the current time.
func (c *Calculator) Score(task shared.TaskRequest, ctx shared.SchedulingContext, model *routing.Model) shared.PriorityScore {
	return c.ScoreAt(task, ctx, model, c.nowFn())
}

// ScoreAt computes the priority at an explicit reference time. Callers that
// need batch determinism (the balancer) sample the clock once and use this.
func (c *Calculator) ScoreAt(task shared.TaskRequest, ctx shared.SchedulingContext, model *routing.Model, now int64) shared.PriorityScore {
	breakdown := map[string]float64{
		shared.FactorBusinessValue:    businessValueScore(task),
		shared.FactorUrgency:          urgencyScore(task, ctx, now),
		shared.FactorDependencyImpact: dependencyImpactScore(task, ctx),
		shared.FactorComplexity:       complexityProxyScore(task),
		shared.FactorRiskReduction:    riskReductionScore(task, now),
	}

	w := model.Weights.Priority
	weights := map[string]float64{
		shared.FactorBusinessValue:    w.BusinessValue,
		shared.FactorUrgency:          w.Urgency,
		shared.FactorDependencyImpact: w.DependencyImpact,
		shared.FactorComplexity:       w.Complexity,
		shared.FactorRiskReduction:    w.RiskReduction,
	}

	total := 0.0
	for factor, score := range breakdown {
		total += score * weights[factor]
	}
	total = shared.Round2(shared.Clamp(total, 0, 10))

	return shared.PriorityScore{
		Total:     total,
		Level:     shared.LevelForScore(total),
		Breakdown: breakdown,
		Reasoning: topFactors(breakdown, weights),
	}
}

func businessValueScore(task shared.TaskRequest) float64 {
	score := 5.0
	if task.HasTag("revenue") {
		score += 2.5
	}
	if task.HasTag("customer-facing") {
		score += 2.5
	}
	score += minf(2, task.EstimatedRevenue/50000*2)
	score += minf(2, float64(task.AffectedUsers)/1000*2)
	return shared.Clamp(score, 0, 10)
}

func urgencyScore(task shared.TaskRequest, ctx shared.SchedulingContext, now int64) float64 {
	score := 5.0
	if task.DeadlineAt > 0 {
		days := float64(task.DeadlineAt-now) / millisPerDay
		switch {
		case days < 1:
			score = maxf(score, 10)
		case days < 3:
			score = maxf(score, 8)
		case days < 7:
			score = maxf(score, 6)
		}
	}
	if task.ExternalDeadline {
		score += 2
	}
	if ctx.DependentsOf(task.ID) > 0 {
		score += 3
	}
	return shared.Clamp(score, 0, 10)
}

func dependencyImpactScore(task shared.TaskRequest, ctx shared.SchedulingContext) float64 {
	deps := ctx.DependentsOf(task.ID)
	if deps > 3 {
		deps = 3
	}
	score := 5 + float64(deps) + 2*ctx.CriticalPathShare(task.ID)
	return shared.Clamp(score, 0, 10)
}

// complexityProxyScore is a cheap effort estimate from the numeric hints only.
// The priority calculator stays independent of the complexity analyzer so the
// two can run concurrently.
func complexityProxyScore(task shared.TaskRequest) float64 {
	if task.EstimatedHours == 0 && task.EstimatedFiles == 0 {
		return 5
	}
	return shared.Clamp(task.EstimatedHours*0.8+float64(task.EstimatedFiles)*0.5, 0, 10)
}

func riskReductionScore(task shared.TaskRequest, now int64) float64 {
	score := 5.0
	score += minf(4, countMatches(strings.ToLower(task.Description), riskKeywords)*2)
	if task.HasTag("customer-facing") {
		score += 2
	}
	if task.DeadlineAt > 0 && float64(task.DeadlineAt-now) < 3*millisPerDay {
		score += 3
	}
	return shared.Clamp(score, 0, 10)
}

// topFactors names the two factors contributing most to the weighted total.
func topFactors(breakdown, weights map[string]float64) string {
	type contrib struct {
		name  string
		value float64
	}
	contribs := make([]contrib, 0, len(breakdown))
	for name, score := range breakdown {
		contribs = append(contribs, contrib{name: name, value: score * weights[name]})
	}
	sort.Slice(contribs, func(i, j int) bool {
		if contribs[i].value != contribs[j].value {
			return contribs[i].value > contribs[j].value
		}
		return contribs[i].name < contribs[j].name
	})

	parts := make([]string, 0, 2)
	for i := 0; i < len(contribs) && i < 2; i++ {
		parts = append(parts, fmt.Sprintf("%s (%.1f)", contribs[i].name, breakdown[contribs[i].name]))
	}
	return "top factors: " + strings.Join(parts, ", ")
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
