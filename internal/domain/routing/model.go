// Package routing defines the versioned routing model snapshot consumed by the
// scoring components and rebuilt by the learner.
package routing

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/blackms/taskrouter-go/internal/shared"
)

// ComplexityThresholds bound which complexity totals are routable to each pool.
type ComplexityThresholds struct {
	// AIMax is the highest complexity total still safe for unattended
	// automation.
	AIMax float64 `json:"aiMax"`
	// HumanMin is the lowest complexity total that always goes to a human.
	HumanMin float64 `json:"humanMin"`
}

// RecommendationBands hold the complexity cutoffs for the analyzer's
// categorical recommendation. They live in the model snapshot so the learner
// can move them without redeploying the analyzer.
type RecommendationBands struct {
	AutomatedMax float64 `json:"automatedMax"`
	ReviewMax    float64 `json:"reviewMax"`
	HybridMax    float64 `json:"hybridMax"`
}

// ComplexityWeights weight the five complexity sub-scores.
type ComplexityWeights struct {
	Code            float64 `json:"code"`
	DomainKnowledge float64 `json:"domainKnowledge"`
	Creativity      float64 `json:"creativity"`
	Uncertainty     float64 `json:"uncertainty"`
	Dependencies    float64 `json:"dependencies"`
}

// PriorityWeights weight the five priority factors.
type PriorityWeights struct {
	BusinessValue    float64 `json:"businessValue"`
	Urgency          float64 `json:"urgency"`
	DependencyImpact float64 `json:"dependencyImpact"`
	Complexity       float64 `json:"complexity"`
	RiskReduction    float64 `json:"riskReduction"`
}

// DecisionWeights hold the tunable weights for all three scoring components.
type DecisionWeights struct {
	Complexity ComplexityWeights `json:"complexity"`
	Priority   PriorityWeights   `json:"priority"`
	// LeafConfidence maps classifier leaf keys to their tunable confidences.
	LeafConfidence map[string]float64 `json:"leafConfidence"`
}

// Classifier leaf keys. The tree shape is fixed; only these confidences learn.
const (
	LeafCreativeNovel     = "creative-novel"
	LeafCreativePatterns  = "creative-patterns"
	LeafCreativeDefault   = "creative-default"
	LeafRoutineSpecs      = "routine-specs"
	LeafRoutineUnclear    = "routine-unclear"
	LeafExpertiseCaptured = "expertise-captured"
	LeafExpertiseMissing  = "expertise-missing"
	LeafFallbackHuman     = "fallback-human"
	LeafFallbackAutomated = "fallback-automated"
)

// RoutingPattern is a learned signature -> assignee association.
type RoutingPattern struct {
	Signature   string      `json:"signature"`
	Assignee    shared.Pool `json:"assignee"`
	Confidence  float64     `json:"confidence"`
	Occurrences int         `json:"occurrences"`
	SuccessRate float64     `json:"successRate"`
}

// Model is an immutable routing model snapshot. Exactly one snapshot is
// current at any time; readers always see a complete, internally consistent
// snapshot.
type Model struct {
	Version        int64                       `json:"version"`
	UpdatedAt      int64                       `json:"updatedAt"`
	AccuracyByPool map[shared.Pool]float64     `json:"accuracyByPool"`
	Thresholds     ComplexityThresholds        `json:"thresholds"`
	Bands          RecommendationBands         `json:"bands"`
	Weights        DecisionWeights             `json:"weights"`
	Patterns       []RoutingPattern            `json:"patterns,omitempty"`
}

// DefaultLeafConfidence returns the initial classifier leaf confidences.
func DefaultLeafConfidence() map[string]float64 {
	return map[string]float64{
		LeafCreativeNovel:     0.95,
		LeafCreativePatterns:  0.8,
		LeafCreativeDefault:   0.85,
		LeafRoutineSpecs:      0.9,
		LeafRoutineUnclear:    0.7,
		LeafExpertiseCaptured: 0.75,
		LeafExpertiseMissing:  0.9,
		LeafFallbackHuman:     0.8,
		LeafFallbackAutomated: 0.85,
	}
}

// DefaultModel returns the initial model snapshot for the given configuration.
func DefaultModel(cfg shared.EngineConfig) *Model {
	cfg = cfg.Normalize()
	return &Model{
		Version:   1,
		UpdatedAt: shared.Now(),
		AccuracyByPool: map[shared.Pool]float64{
			shared.PoolHuman:  0.5,
			shared.PoolAI:     0.5,
			shared.PoolHybrid: 0.5,
		},
		Thresholds: ComplexityThresholds{AIMax: cfg.InitialAIMax, HumanMin: cfg.InitialHumanMin},
		Bands:      RecommendationBands{AutomatedMax: 3, ReviewMax: 5, HybridMax: 7},
		Weights: DecisionWeights{
			Complexity: ComplexityWeights{
				Code:            0.30,
				DomainKnowledge: 0.20,
				Creativity:      0.20,
				Uncertainty:     0.15,
				Dependencies:    0.15,
			},
			Priority: PriorityWeights{
				BusinessValue:    0.35,
				Urgency:          0.25,
				DependencyImpact: 0.20,
				Complexity:       0.10,
				RiskReduction:    0.10,
			},
			LeafConfidence: DefaultLeafConfidence(),
		},
	}
}

// LeafConfidence returns the confidence for a classifier leaf, falling back to
// the built-in default when the snapshot has no entry.
func (m *Model) LeafConfidence(key string) float64 {
	if m.Weights.LeafConfidence != nil {
		if v, ok := m.Weights.LeafConfidence[key]; ok {
			return v
		}
	}
	if v, ok := DefaultLeafConfidence()[key]; ok {
		return v
	}
	return 0.5
}

// Accuracy returns the observed accuracy rate for a pool, defaulting to 0.5
// with zero observations.
func (m *Model) Accuracy(pool shared.Pool) float64 {
	if m.AccuracyByPool == nil {
		return 0.5
	}
	if v, ok := m.AccuracyByPool[pool]; ok {
		return v
	}
	return 0.5
}

// FindPattern returns the learned pattern for a signature, if any.
func (m *Model) FindPattern(signature string) (RoutingPattern, bool) {
	for _, p := range m.Patterns {
		if p.Signature == signature {
			return p, true
		}
	}
	return RoutingPattern{}, false
}

// Clone returns a deep copy of the model so callers can never mutate the
// published snapshot in place.
func (m *Model) Clone() *Model {
	if m == nil {
		return nil
	}
	out := *m
	out.AccuracyByPool = make(map[shared.Pool]float64, len(m.AccuracyByPool))
	for k, v := range m.AccuracyByPool {
		out.AccuracyByPool[k] = v
	}
	if m.Weights.LeafConfidence != nil {
		out.Weights.LeafConfidence = make(map[string]float64, len(m.Weights.LeafConfidence))
		for k, v := range m.Weights.LeafConfidence {
			out.Weights.LeafConfidence[k] = v
		}
	}
	if m.Patterns != nil {
		out.Patterns = make([]RoutingPattern, len(m.Patterns))
		copy(out.Patterns, m.Patterns)
	}
	return &out
}

// Validate rejects internally inconsistent snapshots. A failing model is never
// published; the previous snapshot stays in effect.
func (m *Model) Validate() error {
	t := m.Thresholds
	if t.AIMax < 1 || t.AIMax > 10 {
		return shared.NewModelCorruptionError("aiMax out of range",
			map[string]interface{}{"aiMax": t.AIMax})
	}
	if t.HumanMin <= t.AIMax || t.HumanMin > 10 {
		return shared.NewModelCorruptionError("humanMin must be in (aiMax, 10]",
			map[string]interface{}{"aiMax": t.AIMax, "humanMin": t.HumanMin})
	}
	b := m.Bands
	if !(b.AutomatedMax < b.ReviewMax && b.ReviewMax < b.HybridMax && b.HybridMax <= 10) {
		return shared.NewModelCorruptionError("recommendation bands must be strictly increasing",
			map[string]interface{}{"bands": fmt.Sprintf("%+v", b)})
	}
	if err := validateWeightGroup("complexity", []float64{
		m.Weights.Complexity.Code,
		m.Weights.Complexity.DomainKnowledge,
		m.Weights.Complexity.Creativity,
		m.Weights.Complexity.Uncertainty,
		m.Weights.Complexity.Dependencies,
	}); err != nil {
		return err
	}
	if err := validateWeightGroup("priority", []float64{
		m.Weights.Priority.BusinessValue,
		m.Weights.Priority.Urgency,
		m.Weights.Priority.DependencyImpact,
		m.Weights.Priority.Complexity,
		m.Weights.Priority.RiskReduction,
	}); err != nil {
		return err
	}
	for pool, acc := range m.AccuracyByPool {
		if acc < 0 || acc > 1 {
			return shared.NewModelCorruptionError("accuracy out of range",
				map[string]interface{}{"pool": pool, "accuracy": acc})
		}
	}
	return nil
}

func validateWeightGroup(name string, weights []float64) error {
	sum := 0.0
	for _, w := range weights {
		if w <= 0 {
			return shared.NewModelCorruptionError(name+" weight must be positive",
				map[string]interface{}{"group": name})
		}
		sum += w
	}
	if math.Abs(sum-1) > 0.01 {
		return shared.NewModelCorruptionError(name+" weights must sum to 1",
			map[string]interface{}{"group": name, "sum": sum})
	}
	return nil
}

// Signature builds the canonical pattern signature for a task's routing
// characteristics: (task domain, tag set, complexity bucket, specification
// completeness).
func Signature(domain string, tags []string, complexityBucket int, hasDetailedSpecs bool) string {
	sorted := make([]string, len(tags))
	copy(sorted, tags)
	sort.Strings(sorted)
	specs := "nospecs"
	if hasDetailedSpecs {
		specs = "specs"
	}
	if domain == "" {
		domain = "general"
	}
	return strings.Join([]string{
		strings.ToLower(domain),
		strings.ToLower(strings.Join(sorted, ",")),
		"b" + strconv.Itoa(complexityBucket),
		specs,
	}, "|")
}
