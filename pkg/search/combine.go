package search

import (
	"github.com/bastiangx/quickfind/pkg/graph"
	"golang.org/x/sync/errgroup"
)

// findAndScore resolves every query fragment against one graph view and
// combines the per-fragment score maps under the configured accumulation
// policy.
func (e *Engine[T]) findAndScore(v graph.View[T], fragments []string) map[T]float64 {
	// Single keyword, nothing to combine.
	if len(fragments) == 1 {
		return e.walkAndScore(v, fragments[0])
	}

	if e.parallel {
		if e.accumulation == Intersection {
			return e.forkWalk(v, fragments, intersectScores[T])
		}
		return e.forkWalk(v, fragments, unionScores[T])
	}

	if e.accumulation == Intersection {
		return e.intersectAll(v, fragments)
	}
	return e.unionAll(v, fragments)
}

func (e *Engine[T]) unionAll(v graph.View[T], fragments []string) map[T]float64 {
	accumulated := make(map[T]float64)
	for _, fragment := range fragments {
		accumulated = unionScores(accumulated, e.walkAndScore(v, fragment))
	}
	return accumulated
}

// intersectAll folds fragments left to right, bailing out the moment the
// accumulator empties since intersection only ever shrinks.
func (e *Engine[T]) intersectAll(v graph.View[T], fragments []string) map[T]float64 {
	var accumulated map[T]float64

	for _, fragment := range fragments {
		scores := e.walkAndScore(v, fragment)
		if len(scores) == 0 {
			return scores
		}
		if accumulated == nil {
			accumulated = scores
			continue
		}
		accumulated = intersectScores(accumulated, scores)
		if len(accumulated) == 0 {
			return accumulated
		}
	}

	return accumulated
}

// forkWalk is the divide-and-conquer form: fragments split pairwise onto
// goroutines, maps combined on the way back up. Leaves hold at most two
// fragments to amortize goroutine overhead. The reduction tree yields the
// same membership as the sequential fold; float sums are commutative and
// associative within tolerance.
func (e *Engine[T]) forkWalk(v graph.View[T], fragments []string, combine func(a, b map[T]float64) map[T]float64) map[T]float64 {
	if len(fragments) <= 2 {
		left := e.walkAndScore(v, fragments[0])
		if len(fragments) == 1 {
			return left
		}
		return combine(left, e.walkAndScore(v, fragments[1]))
	}

	mid := len(fragments) / 2
	var left, right map[T]float64

	var g errgroup.Group
	g.Go(func() error {
		left = e.forkWalk(v, fragments[:mid], combine)
		return nil
	})
	g.Go(func() error {
		right = e.forkWalk(v, fragments[mid:], combine)
		return nil
	})
	_ = g.Wait()

	return combine(left, right)
}

// unionScores merges src into dst, summing scores for shared items, and
// returns dst. dst is mutated.
func unionScores[T comparable](dst, src map[T]float64) map[T]float64 {
	for item, score := range src {
		dst[item] += score
	}
	return dst
}

// intersectScores keeps only items present in both maps, summing their
// scores. The smaller map is mutated and returned.
func intersectScores[T comparable](left, right map[T]float64) map[T]float64 {
	smaller, bigger := left, right
	if len(bigger) < len(smaller) {
		smaller, bigger = bigger, smaller
	}

	for item, score := range smaller {
		other, ok := bigger[item]
		if !ok {
			delete(smaller, item)
			continue
		}
		smaller[item] = score + other
	}
	return smaller
}
