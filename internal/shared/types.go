// Package shared provides shared types used across all modules in taskrouter-go.
package shared

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Pools and Categories
// ============================================================================

// Pool identifies an execution pool that can take on work.
type Pool string

const (
	PoolHuman  Pool = "human"
	PoolAI     Pool = "ai"
	PoolHybrid Pool = "hybrid"
)

// AssigneeCategory is the categorical leaning produced by scoring components,
// independent of live capacity.
type AssigneeCategory string

const (
	CategoryAutomated       AssigneeCategory = "automated"
	CategoryAutomatedReview AssigneeCategory = "automated-with-review"
	CategoryHybrid          AssigneeCategory = "hybrid"
	CategoryHuman           AssigneeCategory = "human"
)

// PoolFor maps an assignee category to the pool that serves it.
func (c AssigneeCategory) PoolFor() Pool {
	switch c {
	case CategoryHuman:
		return PoolHuman
	case CategoryHybrid:
		return PoolHybrid
	default:
		return PoolAI
	}
}

// ============================================================================
// Task Types
// ============================================================================

// TaskRequest is a unit of work entering the pipeline. Immutable once submitted.
type TaskRequest struct {
	ID               string   `json:"id"`
	Description      string   `json:"description"`
	Tags             []string `json:"tags,omitempty"`
	EstimatedFiles   int      `json:"estimatedFiles,omitempty"`
	EstimatedHours   float64  `json:"estimatedHours,omitempty"`
	AffectedUsers    int      `json:"affectedUsers,omitempty"`
	EstimatedRevenue float64  `json:"estimatedRevenue,omitempty"`
	DeadlineAt       int64    `json:"deadlineAt,omitempty"` // unix millis, 0 = none
	ExternalDeadline bool     `json:"externalDeadline,omitempty"`
	Domain           string   `json:"domain,omitempty"`
	HasDetailedSpecs bool     `json:"hasDetailedSpecs,omitempty"`
	HasExistingPatterns bool  `json:"hasExistingPatterns,omitempty"`
	SubmittedAt      int64    `json:"submittedAt,omitempty"`
}

// HasTag reports whether the task carries the given tag.
func (t TaskRequest) HasTag(tag string) bool {
	for _, tg := range t.Tags {
		if tg == tag {
			return true
		}
	}
	return false
}

// ============================================================================
// Scores
// ============================================================================

// Recommendation is a categorical assignment leaning with confidence.
type Recommendation struct {
	Category   AssigneeCategory `json:"category"`
	Confidence float64          `json:"confidence"`
	Reason     string           `json:"reason,omitempty"`
}

// Complexity breakdown factor names.
const (
	FactorCode            = "code"
	FactorDomainKnowledge = "domainKnowledge"
	FactorCreativity      = "creativity"
	FactorUncertainty     = "uncertainty"
	FactorDependencies    = "dependencies"
)

// ComplexityScore is the intrinsic difficulty of a task in [0,10].
// It is a pure function of (TaskRequest, model snapshot), never persisted as
// source of truth.
type ComplexityScore struct {
	Total          float64            `json:"total"`
	Breakdown      map[string]float64 `json:"breakdown"`
	Recommendation Recommendation     `json:"recommendation"`
}

// Bucket returns the integer complexity bucket for the score total.
func (c ComplexityScore) Bucket() int {
	b := int(math.Floor(c.Total))
	if b < 0 {
		b = 0
	}
	if b > 10 {
		b = 10
	}
	return b
}

// PriorityLevel is the coarse priority band for a score total.
type PriorityLevel string

const (
	PriorityCritical PriorityLevel = "critical"
	PriorityHigh     PriorityLevel = "high"
	PriorityMedium   PriorityLevel = "medium"
	PriorityLow      PriorityLevel = "low"
)

// LevelForScore maps a priority total to its level. Monotonic in the total.
func LevelForScore(total float64) PriorityLevel {
	switch {
	case total >= 8.5:
		return PriorityCritical
	case total >= 7:
		return PriorityHigh
	case total >= 4:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Priority breakdown factor names.
const (
	FactorBusinessValue    = "businessValue"
	FactorUrgency          = "urgency"
	FactorDependencyImpact = "dependencyImpact"
	FactorComplexity       = "complexity"
	FactorRiskReduction    = "riskReduction"
)

// PriorityScore is the business urgency/value of a task in [0,10].
type PriorityScore struct {
	Total     float64            `json:"total"`
	Level     PriorityLevel      `json:"level"`
	Breakdown map[string]float64 `json:"breakdown"`
	Reasoning string             `json:"reasoning,omitempty"`
}

// ============================================================================
// Scheduling Context
// ============================================================================

// SchedulingContext supplies the live dependency graph and blocked-task set.
// Read-only to all scoring components.
type SchedulingContext struct {
	// Dependents maps task ID -> number of tasks blocked by it.
	Dependents map[string]int `json:"dependents,omitempty"`
	// CriticalPathImpact maps task ID -> fraction [0,1] of the critical path
	// that runs through it.
	CriticalPathImpact map[string]float64 `json:"criticalPathImpact,omitempty"`
	// Blocked is the set of task IDs currently blocked.
	Blocked map[string]bool `json:"blocked,omitempty"`
}

// DependentsOf returns the number of tasks blocked by the given task.
func (c SchedulingContext) DependentsOf(taskID string) int {
	if c.Dependents == nil {
		return 0
	}
	return c.Dependents[taskID]
}

// CriticalPathShare returns the critical-path impact fraction for a task.
func (c SchedulingContext) CriticalPathShare(taskID string) float64 {
	if c.CriticalPathImpact == nil {
		return 0
	}
	return c.CriticalPathImpact[taskID]
}

// ============================================================================
// Assignments and Outcomes
// ============================================================================

// AssignmentStatus describes whether an assignment starts now or waits.
type AssignmentStatus string

const (
	AssignmentImmediate AssignmentStatus = "immediate"
	AssignmentQueued    AssignmentStatus = "queued"
)

// Assignment is the committed routing decision for one task in a balancing
// pass. Reassignment is recorded as a new TaskOutcome, not a mutation.
type Assignment struct {
	TaskID     string           `json:"taskId"`
	Pool       Pool             `json:"pool"`
	Status     AssignmentStatus `json:"status"`
	StartAt    int64            `json:"startAt,omitempty"` // unix millis, 0 when queued
	Confidence float64          `json:"confidence"`
	Reason     string           `json:"reason,omitempty"`
}

// Deferred reports whether this assignment was queued for lack of capacity.
func (a Assignment) Deferred() bool {
	return a.Status == AssignmentQueued
}

// TaskOutcome is the feedback record for a completed task. Append-only; the
// sole input to the RoutingLearner.
type TaskOutcome struct {
	TaskID           string   `json:"taskId"`
	OriginalAssignee Pool     `json:"originalAssignee"`
	FinalAssignee    Pool     `json:"finalAssignee"`
	WasReassigned    bool     `json:"wasReassigned"`
	Successful       bool     `json:"successful"`
	Failed           bool     `json:"failed"`
	Domain           string   `json:"domain,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	ComplexityBucket int      `json:"complexityBucket"`
	HasDetailedSpecs bool     `json:"hasDetailedSpecs,omitempty"`
	RecordedAt       int64    `json:"recordedAt,omitempty"`
}

// ============================================================================
// Event Types
// ============================================================================

// EventType represents the type of an engine event.
type EventType string

const (
	EventTaskAssigned     EventType = "task:assigned"
	EventTaskDeferred     EventType = "task:deferred"
	EventOutcomeRecorded  EventType = "outcome:recorded"
	EventModelRecalibrated EventType = "model:recalibrated"
	EventModelRejected    EventType = "model:rejected"
)

// Event represents a generic event in the engine.
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp int64                  `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
}

// ============================================================================
// Error Types
// ============================================================================

// RouterError is the base error type for all taskrouter errors.
type RouterError struct {
	Message string
	Code    string
	Details map[string]interface{}
}

func (e *RouterError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidInputError reports a task missing required fields. It never aborts
// a batch; the offending task proceeds with a neutral score.
func NewInvalidInputError(message string, details map[string]interface{}) *RouterError {
	return &RouterError{Message: message, Code: "INVALID_INPUT", Details: details}
}

// NewModelCorruptionError reports a recalibration that produced invalid
// thresholds. The previous model stays in effect.
func NewModelCorruptionError(message string, details map[string]interface{}) *RouterError {
	return &RouterError{Message: message, Code: "MODEL_CORRUPTION", Details: details}
}

// ============================================================================
// Utility Functions
// ============================================================================

// Now returns the current time in milliseconds.
func Now() int64 {
	return time.Now().UnixMilli()
}

// GenerateID returns a prefixed unique identifier.
func GenerateID(prefix string) string {
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "-" + uuid.NewString()
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
