package balancer

import (
	"github.com/blackms/taskrouter-go/internal/shared"
)

// WorkloadState tracks live pool occupancy. Fields are unexported so mutation
// outside the balancer's exclusive section is structurally impossible, not
// merely detected.
type WorkloadState struct {
	cfg shared.EngineConfig

	activeHuman      int
	activeAI         int
	hoursWorkedToday float64
	apiCallsToday    int

	deferred *deferredQueue
}

// WorkloadSnapshot is a read-only copy of the state for callers.
type WorkloadSnapshot struct {
	ActiveHumanTasks int      `json:"activeHumanTasks"`
	ActiveAITasks    int      `json:"activeAiTasks"`
	HoursWorkedToday float64  `json:"hoursWorkedToday"`
	APICallsToday    int      `json:"apiCallsToday"`
	DeferredTaskIDs  []string `json:"deferredTaskIds,omitempty"`
}

// NewWorkloadState creates an empty workload state for the given limits.
func NewWorkloadState(cfg shared.EngineConfig) *WorkloadState {
	return &WorkloadState{
		cfg:      cfg.Normalize(),
		deferred: newDeferredQueue(16),
	}
}

// Preload seeds occupancy counters from external storage at startup. It is a
// bootstrap operation, not part of the assignment path.
func (s *WorkloadState) Preload(activeHuman, activeAI int, hoursWorked float64, apiCalls int) {
	s.activeHuman = activeHuman
	s.activeAI = activeAI
	s.hoursWorkedToday = hoursWorked
	s.apiCallsToday = apiCalls
}

// Snapshot returns a value copy of the current state.
func (s *WorkloadState) Snapshot() WorkloadSnapshot {
	return WorkloadSnapshot{
		ActiveHumanTasks: s.activeHuman,
		ActiveAITasks:    s.activeAI,
		HoursWorkedToday: s.hoursWorkedToday,
		APICallsToday:    s.apiCallsToday,
		DeferredTaskIDs:  s.deferred.items(),
	}
}

// humanAtCapacity reports whether the human pool is at its hard cap.
func (s *WorkloadState) humanAtCapacity() bool {
	return s.activeHuman >= s.cfg.MaxHumanTasks
}

// aiAtCapacity reports whether the AI pool is at its hard cap.
func (s *WorkloadState) aiAtCapacity() bool {
	return s.activeAI >= s.cfg.MaxAITasks
}

// commit reserves capacity for an assignment. Only the balancer calls this,
// inside its exclusive section.
func (s *WorkloadState) commit(pool shared.Pool, estimatedHours float64) {
	hours := estimatedHours
	if hours < 1 {
		hours = 1
	}
	switch pool {
	case shared.PoolHuman:
		s.activeHuman++
		s.hoursWorkedToday += hours
	case shared.PoolAI:
		s.activeAI++
		s.apiCallsToday++
	case shared.PoolHybrid:
		// Hybrid work occupies a slot in both pools.
		s.activeHuman++
		s.hoursWorkedToday += hours
		s.activeAI++
		s.apiCallsToday++
	}
}

// defer records an assignment the balancer could not start.
func (s *WorkloadState) deferTask(taskID string) {
	s.deferred.pushBack(taskID)
}

// release frees a pool slot when the caller reports completion. Reached only
// through the balancer's exclusive section.
func (s *WorkloadState) release(pool shared.Pool) {
	switch pool {
	case shared.PoolHuman:
		if s.activeHuman > 0 {
			s.activeHuman--
		}
	case shared.PoolAI:
		if s.activeAI > 0 {
			s.activeAI--
		}
	case shared.PoolHybrid:
		if s.activeHuman > 0 {
			s.activeHuman--
		}
		if s.activeAI > 0 {
			s.activeAI--
		}
	}
}

// popDeferred removes and returns the oldest deferred task ID, for callers
// that choose to re-submit. Reached only through the balancer.
func (s *WorkloadState) popDeferred() (string, bool) {
	return s.deferred.popFront()
}
