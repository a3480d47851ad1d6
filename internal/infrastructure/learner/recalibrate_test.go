package learner

import (
	"testing"

	"github.com/blackms/taskrouter-go/internal/domain/routing"
	"github.com/blackms/taskrouter-go/internal/shared"
)

func TestAccuracyByPool(t *testing.T) {
	window := []shared.TaskOutcome{
		{OriginalAssignee: shared.PoolAI, FinalAssignee: shared.PoolAI, Successful: true},
		{OriginalAssignee: shared.PoolAI, FinalAssignee: shared.PoolAI, Successful: true},
		{OriginalAssignee: shared.PoolAI, FinalAssignee: shared.PoolHuman, Successful: true, WasReassigned: true},
		{OriginalAssignee: shared.PoolAI, Failed: true},
		{OriginalAssignee: shared.PoolHuman, FinalAssignee: shared.PoolHuman, Successful: true},
	}

	acc := accuracyByPool(window)
	if acc[shared.PoolAI] != 0.5 {
		t.Fatalf("ai accuracy = %v, expected 0.5 (2 clean of 4)", acc[shared.PoolAI])
	}
	if acc[shared.PoolHuman] != 1.0 {
		t.Fatalf("human accuracy = %v, expected 1.0", acc[shared.PoolHuman])
	}
	if acc[shared.PoolHybrid] != 0.5 {
		t.Fatalf("hybrid accuracy = %v, expected default 0.5 with no observations", acc[shared.PoolHybrid])
	}
}

func TestAdjustThresholdsDirections(t *testing.T) {
	cur := routing.ComplexityThresholds{AIMax: 3, HumanMin: 7}

	tests := []struct {
		name     string
		window   []shared.TaskOutcome
		expected routing.ComplexityThresholds
	}{
		{
			name: "ai failures below humanMin pull aiMax down",
			window: []shared.TaskOutcome{
				{OriginalAssignee: shared.PoolAI, FinalAssignee: shared.PoolHuman, WasReassigned: true, ComplexityBucket: 5},
			},
			expected: routing.ComplexityThresholds{AIMax: 2.5, HumanMin: 7},
		},
		{
			name: "human tasks flowing to ai push humanMin up",
			window: []shared.TaskOutcome{
				{OriginalAssignee: shared.PoolHuman, FinalAssignee: shared.PoolAI, WasReassigned: true, ComplexityBucket: 8},
			},
			expected: routing.ComplexityThresholds{AIMax: 3, HumanMin: 7.5},
		},
		{
			name: "balanced reassignments cancel",
			window: []shared.TaskOutcome{
				{OriginalAssignee: shared.PoolAI, FinalAssignee: shared.PoolHuman, WasReassigned: true, ComplexityBucket: 5},
				{OriginalAssignee: shared.PoolHuman, FinalAssignee: shared.PoolAI, WasReassigned: true, ComplexityBucket: 5},
			},
			expected: routing.ComplexityThresholds{AIMax: 3, HumanMin: 7},
		},
		{
			name:     "non-reassigned outcomes are ignored",
			window:   []shared.TaskOutcome{{OriginalAssignee: shared.PoolAI, Failed: true, ComplexityBucket: 5}},
			expected: routing.ComplexityThresholds{AIMax: 3, HumanMin: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adjustThresholds(cur, tt.window)
			if got != tt.expected {
				t.Fatalf("thresholds = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}

func TestAdjustThresholdsClamps(t *testing.T) {
	cur := routing.ComplexityThresholds{AIMax: 3, HumanMin: 7}

	// Offending buckets 4..10 each push humanMin up 0.5; the clamp caps it.
	var window []shared.TaskOutcome
	for b := 4; b <= 10; b++ {
		window = append(window, shared.TaskOutcome{
			OriginalAssignee: shared.PoolHuman,
			FinalAssignee:    shared.PoolAI,
			WasReassigned:    true,
			ComplexityBucket: b,
		})
	}

	got := adjustThresholds(cur, window)
	if got.HumanMin != 10 {
		t.Fatalf("humanMin = %v, expected clamped 10", got.HumanMin)
	}
	if got.HumanMin <= got.AIMax {
		t.Fatalf("ordering violated: aiMax %v, humanMin %v", got.AIMax, got.HumanMin)
	}
}

func TestExtractPatternsThreshold(t *testing.T) {
	outcome := func(n int) []shared.TaskOutcome {
		var out []shared.TaskOutcome
		for i := 0; i < n; i++ {
			out = append(out, shared.TaskOutcome{
				OriginalAssignee: shared.PoolAI,
				FinalAssignee:    shared.PoolAI,
				Successful:       true,
				Domain:           "api",
				ComplexityBucket: 2,
				HasDetailedSpecs: true,
			})
		}
		return out
	}

	// Five occurrences: confidence 1.0 x 0.5 = 0.5, below the bar.
	if got := extractPatterns(outcome(5)); len(got) != 0 {
		t.Fatalf("expected no patterns for 5 occurrences, got %v", got)
	}

	// Ten occurrences clear it.
	patterns := extractPatterns(outcome(10))
	if len(patterns) != 1 {
		t.Fatalf("expected one pattern, got %v", patterns)
	}
	p := patterns[0]
	if p.Assignee != shared.PoolAI || p.SuccessRate != 1 || p.Occurrences != 10 {
		t.Fatalf("pattern = %+v", p)
	}
}

func TestExtractPatternsDeterministicOrder(t *testing.T) {
	var window []shared.TaskOutcome
	for _, domain := range []string{"zeta", "alpha"} {
		for i := 0; i < 10; i++ {
			window = append(window, shared.TaskOutcome{
				OriginalAssignee: shared.PoolAI,
				FinalAssignee:    shared.PoolAI,
				Successful:       true,
				Domain:           domain,
				ComplexityBucket: 1,
			})
		}
	}

	first := extractPatterns(window)
	if len(first) != 2 {
		t.Fatalf("expected two patterns, got %d", len(first))
	}
	// Equal confidence: signature order breaks the tie.
	if first[0].Signature >= first[1].Signature {
		t.Fatalf("patterns not in signature order: %q then %q", first[0].Signature, first[1].Signature)
	}
	for i := 0; i < 20; i++ {
		got := extractPatterns(window)
		for k := range got {
			if got[k] != first[k] {
				t.Fatalf("run %d diverged at %d: %+v vs %+v", i, k, got[k], first[k])
			}
		}
	}
}

func TestRecomputeDoesNotMutatePrevious(t *testing.T) {
	prev := routing.DefaultModel(shared.DefaultEngineConfig())
	window := []shared.TaskOutcome{
		{OriginalAssignee: shared.PoolAI, FinalAssignee: shared.PoolHuman, WasReassigned: true, ComplexityBucket: 5},
	}

	next := recompute(prev, window)

	if prev.Version != 1 || prev.Thresholds.AIMax != 3 {
		t.Fatalf("recompute mutated the previous snapshot: %+v", prev.Thresholds)
	}
	if next.Version != 2 {
		t.Fatalf("next version = %d, expected 2", next.Version)
	}
	if next.Thresholds.AIMax != 2.5 {
		t.Fatalf("next aiMax = %v, expected 2.5", next.Thresholds.AIMax)
	}
}
