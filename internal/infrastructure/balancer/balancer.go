// Package balancer implements the scheduling core: it combines complexity,
// classification, and priority with live pool availability to emit concrete,
// capacity-respecting assignments for a batch of tasks.
package balancer

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/blackms/taskrouter-go/internal/domain/routing"
	"github.com/blackms/taskrouter-go/internal/infrastructure/classify"
	"github.com/blackms/taskrouter-go/internal/infrastructure/scoring"
	"github.com/blackms/taskrouter-go/internal/shared"
)

// Balancer assigns batches of tasks against a mutable WorkloadState. A single
// mutex serializes whole batches; it is the only lock in the engine. The
// per-batch loop is strictly sequential because each assignment mutates
// capacity that later tasks in the same batch must see.
type Balancer struct {
	mu sync.Mutex

	analyzer   *scoring.Analyzer
	classifier *classify.Classifier
	calculator *scoring.Calculator
	cfg        shared.EngineConfig

	nowFn func() int64
}

// NewBalancer creates a new Balancer.
func NewBalancer(cfg shared.EngineConfig) *Balancer {
	return &Balancer{
		analyzer:   scoring.NewAnalyzer(),
		classifier: classify.NewClassifier(),
		calculator: scoring.NewCalculator(),
		cfg:        cfg.Normalize(),
		nowFn:      shared.Now,
	}
}

// SetClock overrides the balancer's clock. The clock is sampled once per
// batch, so a fixed clock makes repeated runs byte-identical.
func (b *Balancer) SetClock(nowFn func() int64) {
	b.nowFn = nowFn
}

type rankedTask struct {
	order    int
	task     shared.TaskRequest
	priority shared.PriorityScore
}

// AssignBatch assigns every task in the batch, in strict priority order with
// FIFO-stable ties. Capacity exhaustion yields a queued (Deferred) assignment
// in the same output, never a dropped task. Given an identical (batch, state,
// model) triple and a fixed clock, the output sequence is identical across
// runs.
func (b *Balancer) AssignBatch(tasks []shared.TaskRequest, ctx shared.SchedulingContext, state *WorkloadState, model *routing.Model) []shared.Assignment {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.nowFn()

	ranked := make([]rankedTask, len(tasks))
	for i, task := range tasks {
		ranked[i] = rankedTask{
			order:    i,
			task:     task,
			priority: b.safePriority(task, ctx, model, now),
		}
	}
	// Stable sort keeps submission order for equal priorities.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].priority.Total > ranked[j].priority.Total
	})

	assignments := make([]shared.Assignment, 0, len(ranked))
	for _, r := range ranked {
		assignments = append(assignments, b.assignOne(r.task, ctx, state, model, now))
	}
	return assignments
}

// assignOne scores candidate pools for a single task and commits the winner
// against the state, or defers when the winner is at hard capacity.
func (b *Balancer) assignOne(task shared.TaskRequest, ctx shared.SchedulingContext, state *WorkloadState, model *routing.Model, now int64) shared.Assignment {
	complexity := b.safeComplexity(task, model)
	leaning := b.safeClassify(task, ctx, model, complexity)

	humanAvail := b.humanAvailability(state, now)
	aiAvail := b.aiAvailability(state)
	suit := suitability(leaning, complexity.Recommendation)

	type candidate struct {
		pool  shared.Pool
		score float64
	}
	candidates := []candidate{
		{shared.PoolHuman, 0.4*humanAvail + 0.6*suit[shared.PoolHuman]},
		{shared.PoolAI, 0.4*aiAvail + 0.6*suit[shared.PoolAI]},
	}
	if complexity.Total > 6 && task.EstimatedHours > 4 {
		candidates = append(candidates, candidate{
			pool:  shared.PoolHybrid,
			score: 0.4*minf(humanAvail, aiAvail) + 0.6*0.9,
		})
	}

	// Fixed iteration order plus strict comparison keeps ties deterministic.
	winner := candidates[0]
	for _, c := range candidates[1:] {
		if c.score > winner.score {
			winner = c
		}
	}
	confidence := shared.Clamp(winner.score, 0, 1)

	if b.atCapacity(state, winner.pool) {
		state.deferTask(task.ID)
		return shared.Assignment{
			TaskID:     task.ID,
			Pool:       winner.pool,
			Status:     shared.AssignmentQueued,
			Confidence: confidence,
			Reason:     fmt.Sprintf("deferred: %s pool at capacity", winner.pool),
		}
	}

	state.commit(winner.pool, task.EstimatedHours)
	return shared.Assignment{
		TaskID:     task.ID,
		Pool:       winner.pool,
		Status:     shared.AssignmentImmediate,
		StartAt:    now,
		Confidence: confidence,
		Reason: fmt.Sprintf("%s selected (score %.2f, availability %.2f/%.2f); %s",
			winner.pool, winner.score, humanAvail, aiAvail, leaning.Reason),
	}
}

func (b *Balancer) atCapacity(state *WorkloadState, pool shared.Pool) bool {
	switch pool {
	case shared.PoolHuman:
		return state.humanAtCapacity()
	case shared.PoolAI:
		return state.aiAtCapacity()
	default:
		return state.humanAtCapacity() || state.aiAtCapacity()
	}
}

// humanAvailability blends slot headroom, remaining daily hours, and time of
// day (half weight outside business hours).
func (b *Balancer) humanAvailability(state *WorkloadState, now int64) float64 {
	slots := 1 - float64(state.activeHuman)/float64(b.cfg.MaxHumanTasks)
	hours := 1 - state.hoursWorkedToday/b.cfg.MaxHumanHoursPerDay
	tod := 0.5
	h := time.UnixMilli(now).Hour()
	if h >= b.cfg.WorkdayStartHour && h < b.cfg.WorkdayEndHour {
		tod = 1.0
	}
	return 0.5*shared.Clamp(slots, 0, 1) + 0.3*shared.Clamp(hours, 0, 1) + 0.2*tod
}

// aiAvailability blends slot headroom and remaining API budget.
func (b *Balancer) aiAvailability(state *WorkloadState) float64 {
	slots := 1 - float64(state.activeAI)/float64(b.cfg.MaxAITasks)
	calls := 1 - float64(state.apiCallsToday)/float64(b.cfg.APICallLimit)
	return 0.7*shared.Clamp(slots, 0, 1) + 0.3*shared.Clamp(calls, 0, 1)
}

// suitability derives per-pool fit from the classifier leaning and the
// complexity recommendation: each recommendation grants its pool its own
// confidence and the opposite pool the remainder; hybrid leanings contribute
// evenly. The classifier dominates the blend; the analyzer's band
// recommendation only refines it.
func suitability(leaning, complexity shared.Recommendation) map[shared.Pool]float64 {
	out := map[shared.Pool]float64{}
	for pool, v := range contribution(leaning) {
		out[pool] = 0.75 * v
	}
	for pool, v := range contribution(complexity) {
		out[pool] += 0.25 * v
	}
	return out
}

func contribution(rec shared.Recommendation) map[shared.Pool]float64 {
	switch rec.Category.PoolFor() {
	case shared.PoolHuman:
		return map[shared.Pool]float64{
			shared.PoolHuman: rec.Confidence,
			shared.PoolAI:    1 - rec.Confidence,
		}
	case shared.PoolAI:
		return map[shared.Pool]float64{
			shared.PoolAI:    rec.Confidence,
			shared.PoolHuman: 1 - rec.Confidence,
		}
	default:
		return map[shared.Pool]float64{
			shared.PoolHuman: 0.5,
			shared.PoolAI:    0.5,
		}
	}
}

// safePriority isolates the priority calculator: a panicking scorer yields a
// neutral score so one bad task never blocks its siblings.
func (b *Balancer) safePriority(task shared.TaskRequest, ctx shared.SchedulingContext, model *routing.Model, now int64) (score shared.PriorityScore) {
	defer func() {
		if r := recover(); r != nil {
			score = shared.PriorityScore{
				Total:     5,
				Level:     shared.PriorityMedium,
				Breakdown: map[string]float64{},
				Reasoning: fmt.Sprintf("priority scoring failed: %v", r),
			}
		}
	}()
	return b.calculator.ScoreAt(task, ctx, model, now)
}

func (b *Balancer) safeComplexity(task shared.TaskRequest, model *routing.Model) (score shared.ComplexityScore) {
	defer func() {
		if r := recover(); r != nil {
			score = shared.ComplexityScore{
				Total:     5,
				Breakdown: map[string]float64{},
				Recommendation: shared.Recommendation{
					Category:   shared.CategoryAutomatedReview,
					Confidence: 0,
					Reason:     fmt.Sprintf("complexity scoring failed: %v", r),
				},
			}
		}
	}()
	return b.analyzer.Score(task, model)
}

func (b *Balancer) safeClassify(task shared.TaskRequest, ctx shared.SchedulingContext, model *routing.Model, complexity shared.ComplexityScore) (rec shared.Recommendation) {
	defer func() {
		if r := recover(); r != nil {
			rec = shared.Recommendation{
				Category:   shared.CategoryHybrid,
				Confidence: 0.5,
				Reason:     fmt.Sprintf("classification failed: %v", r),
			}
		}
	}()
	return b.classifier.Classify(task, ctx, model, complexity)
}

// ReleaseTask frees the capacity held by a completed task, under the same
// exclusive section that guards assignment.
func (b *Balancer) ReleaseTask(state *WorkloadState, pool shared.Pool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	state.release(pool)
}

// PopDeferred hands the oldest deferred task ID back to the caller for
// re-submission. The engine never retries deferred tasks on its own.
func (b *Balancer) PopDeferred(state *WorkloadState) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return state.popDeferred()
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
