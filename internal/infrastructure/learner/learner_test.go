package learner

import (
	"math"
	"sync"
	"testing"

	"github.com/blackms/taskrouter-go/internal/domain/routing"
	"github.com/blackms/taskrouter-go/internal/shared"
)

// recordingEmitter captures emitted events for assertions.
type recordingEmitter struct {
	mu     sync.Mutex
	events []shared.Event
}

func (r *recordingEmitter) Emit(event shared.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEmitter) byType(t shared.EventType) []shared.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []shared.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func reassignedOutcome(id string, bucket int) shared.TaskOutcome {
	return shared.TaskOutcome{
		TaskID:           id,
		OriginalAssignee: shared.PoolAI,
		FinalAssignee:    shared.PoolHuman,
		WasReassigned:    true,
		Successful:       true,
		ComplexityBucket: bucket,
	}
}

func successfulOutcome(id string, pool shared.Pool) shared.TaskOutcome {
	return shared.TaskOutcome{
		TaskID:           id,
		OriginalAssignee: pool,
		FinalAssignee:    pool,
		Successful:       true,
		ComplexityBucket: 3,
	}
}

func TestRecalibrationLowersAIMaxOnReassignments(t *testing.T) {
	cfg := shared.DefaultEngineConfig()
	emitter := &recordingEmitter{}
	l := New(cfg, Options{Events: emitter})

	before := l.CurrentModel()
	if before.Thresholds.AIMax != 3 {
		t.Fatalf("initial aiMax = %v, expected 3", before.Thresholds.AIMax)
	}

	// A full recalibration batch of mid-complexity tasks bounced from
	// automation back to humans.
	for i := 0; i < cfg.RecalibrationBatchSize; i++ {
		l.RecordOutcome(reassignedOutcome("task", 5))
	}

	after := l.CurrentModel()
	if after.Thresholds.AIMax >= before.Thresholds.AIMax {
		t.Fatalf("aiMax should drop after consistent ai->human reassignments: %v -> %v",
			before.Thresholds.AIMax, after.Thresholds.AIMax)
	}
	if after.Thresholds.AIMax != 2.5 {
		t.Fatalf("aiMax = %v, expected 2.5 (one step down)", after.Thresholds.AIMax)
	}
	if err := after.Validate(); err != nil {
		t.Fatalf("recalibrated model must validate, got %v", err)
	}
	if len(emitter.byType(shared.EventModelRecalibrated)) == 0 {
		t.Fatal("expected a model:recalibrated event")
	}
}

func TestRecalibrateWithoutDataFails(t *testing.T) {
	l := New(shared.DefaultEngineConfig(), Options{})

	err := l.Recalibrate()
	if err == nil {
		t.Fatal("expected error for empty outcome window")
	}
	routerErr, ok := err.(*shared.RouterError)
	if !ok || routerErr.Code != "MODEL_CORRUPTION" {
		t.Fatalf("expected MODEL_CORRUPTION, got %v", err)
	}
	if got := l.CurrentModel().Version; got != 1 {
		t.Fatalf("failed recalibration must not publish: version %d", got)
	}
}

func TestRecalibrationRejectsInvalidModel(t *testing.T) {
	cfg := shared.DefaultEngineConfig()
	broken := routing.DefaultModel(cfg)
	broken.Weights.Complexity.Code = 2 // weights no longer sum to 1

	emitter := &recordingEmitter{}
	l := New(cfg, Options{Events: emitter, Initial: broken})
	l.Warm([]shared.TaskOutcome{successfulOutcome("t1", shared.PoolAI)})

	if err := l.Recalibrate(); err == nil {
		t.Fatal("expected validation error")
	}
	if got := l.CurrentModel().Version; got != broken.Version {
		t.Fatalf("rejected model must not publish: version %d", got)
	}
	if len(emitter.byType(shared.EventModelRejected)) != 1 {
		t.Fatal("expected a model:rejected event")
	}
}

func TestFailedOutcomeAdjustsAccuracyImmediately(t *testing.T) {
	l := New(shared.DefaultEngineConfig(), Options{})

	l.RecordOutcome(shared.TaskOutcome{
		TaskID:           "bad-1",
		OriginalAssignee: shared.PoolAI,
		FinalAssignee:    shared.PoolAI,
		Failed:           true,
		ComplexityBucket: 4,
	})

	m := l.CurrentModel()
	if m.Version != 2 {
		t.Fatalf("version = %d, expected 2 after lightweight adjustment", m.Version)
	}
	if got := m.Accuracy(shared.PoolAI); math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("ai accuracy = %v, expected 0.4 (EWMA step toward failure)", got)
	}
	if got := m.Accuracy(shared.PoolHuman); got != 0.5 {
		t.Fatalf("human accuracy = %v, expected untouched 0.5", got)
	}
}

func TestSuccessfulOutcomeLeavesModelUntouched(t *testing.T) {
	l := New(shared.DefaultEngineConfig(), Options{})

	l.RecordOutcome(successfulOutcome("good-1", shared.PoolAI))

	if got := l.CurrentModel().Version; got != 1 {
		t.Fatalf("version = %d, clean outcomes should not trigger adjustment", got)
	}
	if got := l.TotalOutcomes(); got != 1 {
		t.Fatalf("total outcomes = %d, expected 1", got)
	}
}

func TestRecalibrationExtractsPatterns(t *testing.T) {
	l := New(shared.DefaultEngineConfig(), Options{})

	for i := 0; i < 12; i++ {
		o := successfulOutcome("pat", shared.PoolAI)
		o.Domain = "payments"
		o.Tags = []string{"backend"}
		o.ComplexityBucket = 2
		o.HasDetailedSpecs = true
		l.RecordOutcome(o)
	}

	if err := l.Recalibrate(); err != nil {
		t.Fatalf("recalibrate failed: %v", err)
	}

	m := l.CurrentModel()
	sig := routing.Signature("payments", []string{"backend"}, 2, true)
	pattern, ok := m.FindPattern(sig)
	if !ok {
		t.Fatalf("expected pattern for %q, got %v", sig, m.Patterns)
	}
	if pattern.Assignee != shared.PoolAI {
		t.Fatalf("pattern assignee = %q, expected ai", pattern.Assignee)
	}
	if pattern.Confidence <= 0.7 {
		t.Fatalf("pattern confidence = %v, expected > 0.7", pattern.Confidence)
	}
	if pattern.Occurrences != 12 {
		t.Fatalf("occurrences = %d, expected 12", pattern.Occurrences)
	}
}

func TestWarmDoesNotPublish(t *testing.T) {
	l := New(shared.DefaultEngineConfig(), Options{})

	l.Warm([]shared.TaskOutcome{
		successfulOutcome("w1", shared.PoolHuman),
		reassignedOutcome("w2", 5),
	})

	if got := l.CurrentModel().Version; got != 1 {
		t.Fatalf("warming must not publish a new model, version %d", got)
	}
	// The warmed window is enough for an explicit recalibration.
	if err := l.Recalibrate(); err != nil {
		t.Fatalf("recalibrate after warm failed: %v", err)
	}
	if got := l.CurrentModel().Version; got != 2 {
		t.Fatalf("version = %d, expected 2", got)
	}
}

func TestConcurrentReadersSeeValidModels(t *testing.T) {
	cfg := shared.EngineConfig{RecalibrationBatchSize: 10}.Normalize()
	l := New(cfg, Options{})

	stop := make(chan struct{})
	errs := make(chan error, 4)
	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				m := l.CurrentModel()
				if err := m.Validate(); err != nil {
					select {
					case errs <- err:
					default:
					}
					return
				}
			}
		}()
	}

	for i := 0; i < 100; i++ {
		l.RecordOutcome(reassignedOutcome("c", i%10))
	}
	close(stop)
	wg.Wait()

	select {
	case err := <-errs:
		t.Fatalf("reader observed invalid model: %v", err)
	default:
	}
}

func TestOutcomeWindowIsBounded(t *testing.T) {
	cfg := shared.EngineConfig{OutcomeWindow: 10}.Normalize()
	l := New(cfg, Options{})

	for i := 0; i < 25; i++ {
		l.RecordOutcome(successfulOutcome("w", shared.PoolHuman))
	}

	l.mu.Lock()
	size := len(l.window)
	l.mu.Unlock()
	if size != 10 {
		t.Fatalf("window size = %d, expected bound 10", size)
	}
	if got := l.TotalOutcomes(); got != 25 {
		t.Fatalf("total outcomes = %d, expected 25", got)
	}
}
