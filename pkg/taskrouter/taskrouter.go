// Package taskrouter provides the public API for taskrouter-go.
//
// The engine decides, for each unit of work entering a development pipeline,
// which execution pool (human, automated, or hybrid) should handle it, at what
// priority, and whether capacity exists to start it now.
//
// Example:
//
//	eng, err := taskrouter.New(taskrouter.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	assignments := eng.AssignBatch(tasks, taskrouter.SchedulingContext{})
package taskrouter

import (
	"github.com/blackms/taskrouter-go/internal/application/engine"
	"github.com/blackms/taskrouter-go/internal/domain/routing"
	"github.com/blackms/taskrouter-go/internal/infrastructure/balancer"
	"github.com/blackms/taskrouter-go/internal/shared"
)

// Re-export types for the public API.
type (
	Pool              = shared.Pool
	AssigneeCategory  = shared.AssigneeCategory
	TaskRequest       = shared.TaskRequest
	Recommendation    = shared.Recommendation
	ComplexityScore   = shared.ComplexityScore
	PriorityScore     = shared.PriorityScore
	PriorityLevel     = shared.PriorityLevel
	SchedulingContext = shared.SchedulingContext
	Assignment        = shared.Assignment
	AssignmentStatus  = shared.AssignmentStatus
	TaskOutcome       = shared.TaskOutcome
	Event             = shared.Event
	EventType         = shared.EventType
	Config            = shared.EngineConfig
	Model             = routing.Model
	RoutingPattern    = routing.RoutingPattern
	WorkloadSnapshot  = balancer.WorkloadSnapshot
	Engine            = engine.Engine
	Stats             = engine.Stats
)

// Pool and category constants.
const (
	PoolHuman  = shared.PoolHuman
	PoolAI     = shared.PoolAI
	PoolHybrid = shared.PoolHybrid

	CategoryAutomated       = shared.CategoryAutomated
	CategoryAutomatedReview = shared.CategoryAutomatedReview
	CategoryHybrid          = shared.CategoryHybrid
	CategoryHuman           = shared.CategoryHuman

	PriorityCritical = shared.PriorityCritical
	PriorityHigh     = shared.PriorityHigh
	PriorityMedium   = shared.PriorityMedium
	PriorityLow      = shared.PriorityLow

	AssignmentImmediate = shared.AssignmentImmediate
	AssignmentQueued    = shared.AssignmentQueued
)

// New creates a routing engine for the given configuration.
func New(cfg Config) (*Engine, error) {
	return engine.New(cfg)
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return shared.DefaultEngineConfig()
}

// LoadConfig reads an engine configuration from a YAML file.
func LoadConfig(path string) (Config, error) {
	return engine.LoadConfig(path)
}
