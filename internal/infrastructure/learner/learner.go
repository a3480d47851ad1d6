// Package learner implements the routing learner: it consumes completed-task
// outcomes, periodically recomputes accuracy rates, threshold values, and
// routing patterns, and publishes new immutable model snapshots via atomic
// pointer swap.
package learner

import (
	"sync"
	"sync/atomic"

	"github.com/blackms/taskrouter-go/internal/domain/routing"
	"github.com/blackms/taskrouter-go/internal/shared"
)

// EventEmitter decouples the learner from the concrete event bus.
type EventEmitter interface {
	Emit(event shared.Event)
}

// Learner accumulates task outcomes and retunes the routing model. Outcome
// recording uses its own small lock, never the balancer's, so RecordOutcome
// cannot block an in-progress AssignBatch.
type Learner struct {
	cfg     shared.EngineConfig
	current atomic.Pointer[routing.Model]

	mu                 sync.Mutex
	window             []shared.TaskOutcome
	sinceRecalibration int
	totalOutcomes      int64

	journal *Journal
	events  EventEmitter
}

// Options holds optional learner dependencies.
type Options struct {
	// Journal persists outcomes and model snapshots when set.
	Journal *Journal
	// Events receives learner lifecycle events when set.
	Events EventEmitter
	// Initial overrides the starting model snapshot.
	Initial *routing.Model
}

// New creates a Learner publishing the default model for the configuration.
func New(cfg shared.EngineConfig, opts Options) *Learner {
	cfg = cfg.Normalize()
	l := &Learner{
		cfg:     cfg,
		journal: opts.Journal,
		events:  opts.Events,
	}
	initial := opts.Initial
	if initial == nil {
		initial = routing.DefaultModel(cfg)
	}
	l.current.Store(initial)
	return l
}

// CurrentModel returns a defensive copy of the current snapshot. Concurrent
// readers observe either the old or the new complete model, never a mix.
func (l *Learner) CurrentModel() *routing.Model {
	return l.current.Load().Clone()
}

// TotalOutcomes returns the number of outcomes recorded so far.
func (l *Learner) TotalOutcomes() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalOutcomes
}

// Warm preloads historical outcomes into the window without triggering
// adjustments or journal writes. Used at startup to resume from a journal.
func (l *Learner) Warm(outcomes []shared.TaskOutcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.window = append(l.window, outcomes...)
	if len(l.window) > l.cfg.OutcomeWindow {
		l.window = l.window[len(l.window)-l.cfg.OutcomeWindow:]
	}
}

// RecordOutcome appends an outcome to the bounded window (and the journal when
// configured). A reassigned or failed outcome triggers an immediate
// lightweight accuracy adjustment; every recalibrationBatchSize outcomes a
// full recalibration runs.
func (l *Learner) RecordOutcome(outcome shared.TaskOutcome) {
	if outcome.RecordedAt == 0 {
		outcome.RecordedAt = shared.Now()
	}

	l.mu.Lock()
	l.window = append(l.window, outcome)
	if len(l.window) > l.cfg.OutcomeWindow {
		l.window = l.window[len(l.window)-l.cfg.OutcomeWindow:]
	}
	l.totalOutcomes++
	l.sinceRecalibration++
	full := l.sinceRecalibration >= l.cfg.RecalibrationBatchSize
	if full {
		l.sinceRecalibration = 0
	}
	l.mu.Unlock()

	if l.journal != nil {
		// Journal failures never block the feedback path.
		_ = l.journal.Append(outcome)
	}
	l.emit(shared.EventOutcomeRecorded, map[string]interface{}{
		"taskId":     outcome.TaskID,
		"pool":       outcome.OriginalAssignee,
		"reassigned": outcome.WasReassigned,
		"failed":     outcome.Failed,
	})

	if outcome.WasReassigned || outcome.Failed {
		l.adjustAccuracy(outcome)
	}
	if full {
		_ = l.Recalibrate()
	}
}

// adjustAccuracy is the immediate lightweight adjustment: an exponential
// moving average pulls the original pool's accuracy toward the observation,
// published as a fresh snapshot.
func (l *Learner) adjustAccuracy(outcome shared.TaskOutcome) {
	const alpha = 0.2

	for {
		old := l.current.Load()
		next := old.Clone()

		observed := 0.0
		if outcome.Successful && !outcome.WasReassigned {
			observed = 1.0
		}
		acc := next.Accuracy(outcome.OriginalAssignee)
		next.AccuracyByPool[outcome.OriginalAssignee] = shared.Clamp(acc+alpha*(observed-acc), 0, 1)
		next.Version = old.Version + 1
		next.UpdatedAt = shared.Now()

		if l.current.CompareAndSwap(old, next) {
			return
		}
	}
}

// Recalibrate rebuilds the model from the outcome window and publishes it
// atomically. A failing recalibration (insufficient data, invalid thresholds)
// leaves the previous snapshot in effect.
func (l *Learner) Recalibrate() error {
	l.mu.Lock()
	window := make([]shared.TaskOutcome, len(l.window))
	copy(window, l.window)
	l.mu.Unlock()

	if len(window) == 0 {
		return shared.NewModelCorruptionError("insufficient data for recalibration", nil)
	}

	old := l.current.Load()
	next := recompute(old, window)

	if err := next.Validate(); err != nil {
		l.emit(shared.EventModelRejected, map[string]interface{}{
			"version": next.Version,
			"error":   err.Error(),
		})
		return err
	}

	l.current.Store(next)
	if l.journal != nil {
		_ = l.journal.SaveModel(next)
	}
	l.emit(shared.EventModelRecalibrated, map[string]interface{}{
		"version":  next.Version,
		"aiMax":    next.Thresholds.AIMax,
		"humanMin": next.Thresholds.HumanMin,
		"patterns": len(next.Patterns),
	})
	return nil
}

func (l *Learner) emit(eventType shared.EventType, payload map[string]interface{}) {
	if l.events == nil {
		return
	}
	l.events.Emit(shared.Event{Type: eventType, Timestamp: shared.Now(), Payload: payload})
}
