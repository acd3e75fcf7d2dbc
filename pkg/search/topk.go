package search

import "container/heap"

type scored[T comparable] struct {
	item  T
	score float64
}

// scoredHeap is a min-heap on score, so the root is always the weakest
// candidate still in the running.
type scoredHeap[T comparable] []scored[T]

func (h scoredHeap[T]) Len() int           { return len(h) }
func (h scoredHeap[T]) Less(i, j int) bool { return h[i].score < h[j].score }
func (h scoredHeap[T]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *scoredHeap[T]) Push(x any)        { *h = append(*h, x.(scored[T])) }
func (h *scoredHeap[T]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topK selects the limit highest scoring entries, best first, without
// sorting the whole map. Items tied at the cut-off score are all eligible;
// which of them survive follows map iteration order.
func topK[T comparable](scores map[T]float64, limit int) []scored[T] {
	if len(scores) == 0 || limit < 1 {
		return nil
	}
	if limit > len(scores) {
		limit = len(scores)
	}

	h := make(scoredHeap[T], 0, limit)
	for item, score := range scores {
		if h.Len() < limit {
			heap.Push(&h, scored[T]{item: item, score: score})
			continue
		}
		if score > h[0].score {
			h[0] = scored[T]{item: item, score: score}
			heap.Fix(&h, 0)
		}
	}

	out := make([]scored[T], h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(scored[T])
	}
	return out
}
