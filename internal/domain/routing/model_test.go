package routing

import (
	"testing"

	"github.com/blackms/taskrouter-go/internal/shared"
)

func defaultTestModel() *Model {
	return DefaultModel(shared.DefaultEngineConfig())
}

func TestDefaultModelIsValid(t *testing.T) {
	m := defaultTestModel()
	if err := m.Validate(); err != nil {
		t.Fatalf("default model should validate, got %v", err)
	}
	if m.Version != 1 {
		t.Fatalf("initial version = %d, expected 1", m.Version)
	}
	if m.Thresholds.AIMax != 3 || m.Thresholds.HumanMin != 7 {
		t.Fatalf("default thresholds = %v/%v, expected 3/7", m.Thresholds.AIMax, m.Thresholds.HumanMin)
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(m *Model)
	}{
		{name: "aiMax below range", mutate: func(m *Model) { m.Thresholds.AIMax = 0.5 }},
		{name: "aiMax above range", mutate: func(m *Model) { m.Thresholds.AIMax = 11 }},
		{name: "humanMin not above aiMax", mutate: func(m *Model) { m.Thresholds.HumanMin = 3 }},
		{name: "humanMin above range", mutate: func(m *Model) { m.Thresholds.HumanMin = 10.5 }},
		{name: "bands not increasing", mutate: func(m *Model) { m.Bands.ReviewMax = 2 }},
		{name: "zero weight", mutate: func(m *Model) { m.Weights.Complexity.Code = 0 }},
		{name: "weights not summing to one", mutate: func(m *Model) { m.Weights.Priority.Urgency = 0.5 }},
		{name: "accuracy out of range", mutate: func(m *Model) { m.AccuracyByPool[shared.PoolAI] = 1.2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := defaultTestModel()
			tt.mutate(m)
			if err := m.Validate(); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := defaultTestModel()
	m.Patterns = []RoutingPattern{{Signature: "api|crud|b2|specs", Assignee: shared.PoolAI, Confidence: 0.9}}

	clone := m.Clone()
	clone.AccuracyByPool[shared.PoolAI] = 0.1
	clone.Weights.LeafConfidence[LeafCreativeNovel] = 0.2
	clone.Patterns[0].Assignee = shared.PoolHuman
	clone.Thresholds.AIMax = 1

	if m.AccuracyByPool[shared.PoolAI] == 0.1 {
		t.Fatal("clone shares accuracy map with original")
	}
	if m.Weights.LeafConfidence[LeafCreativeNovel] == 0.2 {
		t.Fatal("clone shares leaf confidence map with original")
	}
	if m.Patterns[0].Assignee == shared.PoolHuman {
		t.Fatal("clone shares patterns slice with original")
	}
	if m.Thresholds.AIMax == 1 {
		t.Fatal("clone shares thresholds with original")
	}
}

func TestLeafConfidenceFallback(t *testing.T) {
	m := defaultTestModel()
	if got := m.LeafConfidence(LeafCreativeNovel); got != 0.95 {
		t.Fatalf("LeafConfidence(creative-novel) = %v, expected 0.95", got)
	}

	m.Weights.LeafConfidence = nil
	if got := m.LeafConfidence(LeafRoutineSpecs); got != 0.9 {
		t.Fatalf("expected built-in default 0.9 when map missing, got %v", got)
	}
	if got := m.LeafConfidence("no-such-leaf"); got != 0.5 {
		t.Fatalf("expected 0.5 for unknown leaf, got %v", got)
	}
}

func TestAccuracyDefaults(t *testing.T) {
	m := &Model{}
	if got := m.Accuracy(shared.PoolAI); got != 0.5 {
		t.Fatalf("expected 0.5 with no observations, got %v", got)
	}
}

func TestFindPattern(t *testing.T) {
	m := defaultTestModel()
	m.Patterns = []RoutingPattern{
		{Signature: "payments|billing|b4|specs", Assignee: shared.PoolAI, Confidence: 0.8},
	}

	p, ok := m.FindPattern("payments|billing|b4|specs")
	if !ok || p.Assignee != shared.PoolAI {
		t.Fatalf("expected ai pattern, got %+v ok=%v", p, ok)
	}
	if _, ok := m.FindPattern("unknown"); ok {
		t.Fatal("expected no pattern for unknown signature")
	}
}

func TestSignature(t *testing.T) {
	tests := []struct {
		name     string
		domain   string
		tags     []string
		bucket   int
		specs    bool
		expected string
	}{
		{
			name:     "sorted tags and lowered domain",
			domain:   "Payments",
			tags:     []string{"ui", "backend"},
			bucket:   4,
			specs:    true,
			expected: "payments|backend,ui|b4|specs",
		},
		{
			name:     "empty domain becomes general",
			domain:   "",
			tags:     nil,
			bucket:   0,
			specs:    false,
			expected: "general||b0|nospecs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Signature(tt.domain, tt.tags, tt.bucket, tt.specs)
			if got != tt.expected {
				t.Fatalf("Signature = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestSignatureTagOrderIndependent(t *testing.T) {
	a := Signature("api", []string{"x", "y", "z"}, 3, true)
	b := Signature("api", []string{"z", "x", "y"}, 3, true)
	if a != b {
		t.Fatalf("signatures differ by tag order: %q vs %q", a, b)
	}
}
