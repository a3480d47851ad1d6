// Package engine wires the scoring components, the balancer, and the learner
// into the task routing service consumed by the surrounding pipeline
// orchestrator.
package engine

import (
	"sync"

	"github.com/blackms/taskrouter-go/internal/domain/routing"
	"github.com/blackms/taskrouter-go/internal/infrastructure/balancer"
	"github.com/blackms/taskrouter-go/internal/infrastructure/classify"
	"github.com/blackms/taskrouter-go/internal/infrastructure/events"
	"github.com/blackms/taskrouter-go/internal/infrastructure/learner"
	"github.com/blackms/taskrouter-go/internal/infrastructure/scoring"
	"github.com/blackms/taskrouter-go/internal/shared"
)

// Engine is the task routing and workload-balancing service.
type Engine struct {
	cfg shared.EngineConfig

	analyzer   *scoring.Analyzer
	classifier *classify.Classifier
	calculator *scoring.Calculator
	balancer   *balancer.Balancer
	learner    *learner.Learner
	journal    *learner.Journal
	state      *balancer.WorkloadState
	bus        *events.Bus

	statsMu sync.RWMutex
	stats   Stats
}

// Stats aggregates engine activity counters.
type Stats struct {
	BatchesAssigned   int64                  `json:"batchesAssigned"`
	AssignmentsByPool map[shared.Pool]int64  `json:"assignmentsByPool"`
	Deferred          int64                  `json:"deferred"`
	OutcomesRecorded  int64                  `json:"outcomesRecorded"`
	ModelVersion      int64                  `json:"modelVersion"`
}

// New creates an Engine. When the configuration names a journal path the
// learner resumes from the persisted model and outcome history.
func New(cfg shared.EngineConfig) (*Engine, error) {
	cfg = cfg.Normalize()
	bus := events.New()

	opts := learner.Options{Events: bus}
	var journal *learner.Journal
	if cfg.JournalPath != "" {
		j, err := learner.NewJournal(cfg.JournalPath)
		if err != nil {
			return nil, err
		}
		journal = j
		opts.Journal = j
		if saved, err := j.LoadLatestModel(); err == nil && saved != nil {
			opts.Initial = saved
		}
	}

	l := learner.New(cfg, opts)
	if journal != nil {
		if history, err := journal.LoadRecent(cfg.OutcomeWindow); err == nil {
			l.Warm(history)
		}
	}

	return &Engine{
		cfg:        cfg,
		analyzer:   scoring.NewAnalyzer(),
		classifier: classify.NewClassifier(),
		calculator: scoring.NewCalculator(),
		balancer:   balancer.NewBalancer(cfg),
		learner:    l,
		journal:    journal,
		state:      balancer.NewWorkloadState(cfg),
		bus:        bus,
		stats:      Stats{AssignmentsByPool: map[shared.Pool]int64{}},
	}, nil
}

// ScoreComplexity derives the complexity score of a task under the current
// model snapshot.
func (e *Engine) ScoreComplexity(task shared.TaskRequest) shared.ComplexityScore {
	return e.analyzer.Score(task, e.learner.CurrentModel())
}

// ClassifyAssignment returns the capacity-independent categorical leaning for
// a task.
func (e *Engine) ClassifyAssignment(task shared.TaskRequest, ctx shared.SchedulingContext) shared.Recommendation {
	model := e.learner.CurrentModel()
	complexity := e.analyzer.Score(task, model)
	return e.classifier.Classify(task, ctx, model, complexity)
}

// CalculatePriority scores business urgency/value for a task.
func (e *Engine) CalculatePriority(task shared.TaskRequest, ctx shared.SchedulingContext) shared.PriorityScore {
	return e.calculator.Score(task, ctx, e.learner.CurrentModel())
}

// AssignBatch assigns a batch of tasks against the engine's workload state
// under the current model snapshot. Deferred entries are included in the
// output, never dropped.
func (e *Engine) AssignBatch(tasks []shared.TaskRequest, ctx shared.SchedulingContext) []shared.Assignment {
	assignments := e.balancer.AssignBatch(tasks, ctx, e.state, e.learner.CurrentModel())

	e.statsMu.Lock()
	e.stats.BatchesAssigned++
	for _, a := range assignments {
		if a.Deferred() {
			e.stats.Deferred++
		} else {
			e.stats.AssignmentsByPool[a.Pool]++
		}
	}
	e.statsMu.Unlock()

	for _, a := range assignments {
		eventType := shared.EventTaskAssigned
		if a.Deferred() {
			eventType = shared.EventTaskDeferred
		}
		e.bus.Emit(shared.Event{
			Type: eventType,
			Payload: map[string]interface{}{
				"taskId":     a.TaskID,
				"pool":       a.Pool,
				"status":     a.Status,
				"confidence": a.Confidence,
			},
		})
	}
	return assignments
}

// RecordOutcome feeds a completed-task outcome to the learner. Non-blocking
// with respect to in-progress AssignBatch calls.
func (e *Engine) RecordOutcome(outcome shared.TaskOutcome) {
	e.learner.RecordOutcome(outcome)
	e.statsMu.Lock()
	e.stats.OutcomesRecorded++
	e.statsMu.Unlock()
}

// CurrentModel returns the current routing model snapshot.
func (e *Engine) CurrentModel() *routing.Model {
	return e.learner.CurrentModel()
}

// Recalibrate forces a full model recalibration from the outcome window.
func (e *Engine) Recalibrate() error {
	return e.learner.Recalibrate()
}

// ReleaseTask frees the capacity held by a completed task.
func (e *Engine) ReleaseTask(pool shared.Pool) {
	e.balancer.ReleaseTask(e.state, pool)
}

// PopDeferred hands back the oldest deferred task ID for re-submission.
func (e *Engine) PopDeferred() (string, bool) {
	return e.balancer.PopDeferred(e.state)
}

// Workload returns a read-only snapshot of the pool occupancy.
func (e *Engine) Workload() balancer.WorkloadSnapshot {
	return e.state.Snapshot()
}

// Events exposes the engine's event bus.
func (e *Engine) Events() *events.Bus {
	return e.bus
}

// Stats returns a copy of the aggregate activity counters.
func (e *Engine) Stats() Stats {
	e.statsMu.RLock()
	defer e.statsMu.RUnlock()

	out := e.stats
	out.AssignmentsByPool = make(map[shared.Pool]int64, len(e.stats.AssignmentsByPool))
	for k, v := range e.stats.AssignmentsByPool {
		out.AssignmentsByPool[k] = v
	}
	out.ModelVersion = e.learner.CurrentModel().Version
	return out
}

// Close releases the engine's resources.
func (e *Engine) Close() error {
	e.bus.Close()
	if e.journal != nil {
		return e.journal.Close()
	}
	return nil
}
