package learner

import (
	"sort"

	"github.com/blackms/taskrouter-go/internal/domain/routing"
	"github.com/blackms/taskrouter-go/internal/shared"
)

// thresholdStep is how far one offending complexity bucket moves a threshold
// per recalibration.
const thresholdStep = 0.5

// patternMinConfidence gates which extracted signatures survive into the model.
const patternMinConfidence = 0.7

// recompute builds a candidate model snapshot from the outcome window. It
// never mutates the previous model; the caller validates and publishes.
func recompute(prev *routing.Model, window []shared.TaskOutcome) *routing.Model {
	next := prev.Clone()
	next.Version = prev.Version + 1
	next.UpdatedAt = shared.Now()
	next.AccuracyByPool = accuracyByPool(window)
	next.Thresholds = adjustThresholds(prev.Thresholds, window)
	next.Patterns = extractPatterns(window)
	return next
}

// accuracyByPool computes successes-without-reassignment over total per pool,
// defaulting to 0.5 with zero observations.
func accuracyByPool(window []shared.TaskOutcome) map[shared.Pool]float64 {
	totals := map[shared.Pool]int{}
	good := map[shared.Pool]int{}
	for _, o := range window {
		totals[o.OriginalAssignee]++
		if o.Successful && !o.WasReassigned {
			good[o.OriginalAssignee]++
		}
	}

	out := map[shared.Pool]float64{}
	for _, pool := range []shared.Pool{shared.PoolHuman, shared.PoolAI, shared.PoolHybrid} {
		if totals[pool] == 0 {
			out[pool] = 0.5
			continue
		}
		out[pool] = float64(good[pool]) / float64(totals[pool])
	}
	return out
}

// adjustThresholds counts reassignment directions per complexity bucket. A
// bucket with more ai->human reassignments than the reverse, sitting below the
// current humanMin, pulls aiMax down; the symmetric case pushes humanMin up.
// Explicit clamps bound drift: aiMax in [1,10], humanMin in [aiMax+1, 10].
func adjustThresholds(cur routing.ComplexityThresholds, window []shared.TaskOutcome) routing.ComplexityThresholds {
	var aiToHuman, humanToAI [11]int
	for _, o := range window {
		if !o.WasReassigned {
			continue
		}
		b := o.ComplexityBucket
		if b < 0 || b > 10 {
			continue
		}
		switch {
		case o.OriginalAssignee == shared.PoolAI && o.FinalAssignee == shared.PoolHuman:
			aiToHuman[b]++
		case o.OriginalAssignee == shared.PoolHuman && o.FinalAssignee == shared.PoolAI:
			humanToAI[b]++
		}
	}

	next := cur
	for b := 0; b <= 10; b++ {
		if aiToHuman[b] > humanToAI[b] && float64(b) < cur.HumanMin {
			next.AIMax -= thresholdStep
		}
		if humanToAI[b] > aiToHuman[b] && float64(b) > cur.AIMax {
			next.HumanMin += thresholdStep
		}
	}

	next.AIMax = shared.Clamp(next.AIMax, 1, 10)
	next.HumanMin = shared.Clamp(next.HumanMin, next.AIMax+1, 10)
	return next
}

type signatureStats struct {
	total     int
	successes int
	byPool    map[shared.Pool]int
}

// extractPatterns groups outcomes by routing signature and keeps signatures
// whose confidence (successRate x min(occurrences/10, 1)) clears the bar,
// sorted descending with a signature tie-break for determinism.
func extractPatterns(window []shared.TaskOutcome) []routing.RoutingPattern {
	stats := map[string]*signatureStats{}
	for _, o := range window {
		sig := routing.Signature(o.Domain, o.Tags, o.ComplexityBucket, o.HasDetailedSpecs)
		s := stats[sig]
		if s == nil {
			s = &signatureStats{byPool: map[shared.Pool]int{}}
			stats[sig] = s
		}
		s.total++
		if o.Successful && !o.WasReassigned {
			s.successes++
			s.byPool[o.FinalAssignee]++
		}
	}

	patterns := make([]routing.RoutingPattern, 0, len(stats))
	for sig, s := range stats {
		if s.successes == 0 {
			continue
		}
		successRate := float64(s.successes) / float64(s.total)
		occurrenceWeight := float64(s.total) / 10
		if occurrenceWeight > 1 {
			occurrenceWeight = 1
		}
		confidence := successRate * occurrenceWeight
		if confidence <= patternMinConfidence {
			continue
		}
		patterns = append(patterns, routing.RoutingPattern{
			Signature:   sig,
			Assignee:    dominantPool(s.byPool),
			Confidence:  confidence,
			Occurrences: s.total,
			SuccessRate: successRate,
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Confidence != patterns[j].Confidence {
			return patterns[i].Confidence > patterns[j].Confidence
		}
		return patterns[i].Signature < patterns[j].Signature
	})
	return patterns
}

func dominantPool(byPool map[shared.Pool]int) shared.Pool {
	best := shared.PoolHuman
	bestCount := -1
	// Fixed order keeps ties deterministic.
	for _, pool := range []shared.Pool{shared.PoolHuman, shared.PoolAI, shared.PoolHybrid} {
		if byPool[pool] > bestCount {
			best = pool
			bestCount = byPool[pool]
		}
	}
	return best
}
