// Package classify implements the assignment classifier: a fixed-shape boolean
// decision tree producing an initial categorical leaning (human / automated /
// hybrid) independent of current capacity. Only the leaf confidences are
// tunable through the model snapshot; the tree shape never learns.
package classify

import (
	"fmt"
	"strings"

	"github.com/blackms/taskrouter-go/internal/domain/routing"
	"github.com/blackms/taskrouter-go/internal/shared"
)

// node is a tagged variant: either a predicate branch or a leaf assignment.
type node struct {
	// Branch fields. Predicate is a key into the predicate registry.
	Predicate string
	Yes       *node
	No        *node

	// Leaf fields.
	Category shared.AssigneeCategory
	LeafKey  string
}

func (n *node) isLeaf() bool {
	return n.Predicate == ""
}

func leaf(category shared.AssigneeCategory, key string) *node {
	return &node{Category: category, LeafKey: key}
}

func branch(predicate string, yes, no *node) *node {
	return &node{Predicate: predicate, Yes: yes, No: no}
}

// decisionTree is the fixed tree shape.
var decisionTree = branch(predIsCreative,
	branch(predNeedsNovelSolution,
		leaf(shared.CategoryHuman, routing.LeafCreativeNovel),
		branch(predCanFollowPatterns,
			leaf(shared.CategoryHybrid, routing.LeafCreativePatterns),
			leaf(shared.CategoryHuman, routing.LeafCreativeDefault),
		),
	),
	branch(predIsRoutine,
		branch(predHasClearSpecs,
			leaf(shared.CategoryAutomated, routing.LeafRoutineSpecs),
			leaf(shared.CategoryHybrid, routing.LeafRoutineUnclear),
		),
		branch(predNeedsDomainExpertise,
			branch(predExpertiseCaptured,
				leaf(shared.CategoryAutomated, routing.LeafExpertiseCaptured),
				leaf(shared.CategoryHuman, routing.LeafExpertiseMissing),
			),
			branch(predComplexityAboveHumanMin,
				leaf(shared.CategoryHuman, routing.LeafFallbackHuman),
				leaf(shared.CategoryAutomated, routing.LeafFallbackAutomated),
			),
		),
	),
)

// Classifier traverses the decision tree for a task.
type Classifier struct{}

// NewClassifier creates a new Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify returns the categorical leaning for a task. The complexity score
// must be the one derived for the same task and model so the fallback branch
// stays consistent with the analyzer.
func (c *Classifier) Classify(task shared.TaskRequest, ctx shared.SchedulingContext, model *routing.Model, complexity shared.ComplexityScore) shared.Recommendation {
	in := Input{Task: task, Ctx: ctx, Model: model, Complexity: complexity}

	var path []string
	n := decisionTree
	for !n.isLeaf() {
		pred, ok := predicates[n.Predicate]
		if !ok {
			// Unknown predicate means a broken tree definition; fail toward
			// the conservative side instead of panicking mid-batch.
			return shared.Recommendation{
				Category:   shared.CategoryHuman,
				Confidence: 0.5,
				Reason:     fmt.Sprintf("unknown predicate %q", n.Predicate),
			}
		}
		if pred(in) {
			path = append(path, n.Predicate+"=yes")
			n = n.Yes
		} else {
			path = append(path, n.Predicate+"=no")
			n = n.No
		}
	}

	return shared.Recommendation{
		Category:   n.Category,
		Confidence: model.LeafConfidence(n.LeafKey),
		Reason:     "rule path: " + strings.Join(path, " -> "),
	}
}
