package classify

import (
	"strings"

	"github.com/blackms/taskrouter-go/internal/domain/routing"
	"github.com/blackms/taskrouter-go/internal/shared"
)

// Input carries everything a branch predicate may inspect. Predicates are pure
// functions of this value, so the tree is fully reproducible given the same
// task, context, and model snapshot.
type Input struct {
	Task       shared.TaskRequest
	Ctx        shared.SchedulingContext
	Model      *routing.Model
	Complexity shared.ComplexityScore
}

// predicateFunc is a deterministic, side-effect-free branch test.
type predicateFunc func(in Input) bool

// Predicate names. The tree references predicates by name through the
// registry so each one can be unit-tested independently of traversal.
const (
	predIsCreative           = "isCreative"
	predNeedsNovelSolution   = "needsNovelSolution"
	predCanFollowPatterns    = "canFollowPatterns"
	predIsRoutine            = "isRoutine"
	predHasClearSpecs        = "hasClearSpecs"
	predNeedsDomainExpertise = "needsDomainExpertise"
	predExpertiseCaptured    = "expertiseCaptured"
	predComplexityAboveHumanMin = "complexityAboveHumanMin"
)

var creativeWords = []string{"design", "novel", "creative", "invent", "brainstorm", "reimagine"}
var novelWords = []string{"novel", "from scratch", "invent", "greenfield", "first of its kind"}
var routineWords = []string{"crud", "routine", "repetitive", "boilerplate", "bump", "chore", "rename"}
var expertiseWords = []string{"compliance", "regulation", "security", "payment", "billing", "tax", "legal", "medical"}

var predicates = map[string]predicateFunc{
	predIsCreative: func(in Input) bool {
		if in.Task.HasTag("creative") || in.Task.HasTag("design") {
			return true
		}
		return containsAny(in.Task.Description, creativeWords)
	},
	predNeedsNovelSolution: func(in Input) bool {
		return !in.Task.HasExistingPatterns && containsAny(in.Task.Description, novelWords)
	},
	predCanFollowPatterns: func(in Input) bool {
		return in.Task.HasExistingPatterns
	},
	predIsRoutine: func(in Input) bool {
		if in.Task.HasTag("routine") {
			return true
		}
		return containsAny(in.Task.Description, routineWords)
	},
	predHasClearSpecs: func(in Input) bool {
		return in.Task.HasDetailedSpecs
	},
	predNeedsDomainExpertise: func(in Input) bool {
		if in.Task.Domain != "" {
			return true
		}
		return containsAny(in.Task.Description, expertiseWords)
	},
	// expertiseCaptured checks whether the learner has already extracted a
	// successful automation pattern for this task's signature.
	predExpertiseCaptured: func(in Input) bool {
		sig := routing.Signature(in.Task.Domain, in.Task.Tags, in.Complexity.Bucket(), in.Task.HasDetailedSpecs)
		pattern, ok := in.Model.FindPattern(sig)
		return ok && pattern.Assignee == shared.PoolAI
	},
	predComplexityAboveHumanMin: func(in Input) bool {
		return in.Complexity.Total > in.Model.Thresholds.HumanMin
	},
}

func containsAny(text string, words []string) bool {
	text = strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
