// Package graph is the core, holding the shared fragment index that maps
// every contiguous substring of every registered keyword back to the items
// carrying that keyword.
package graph

import (
	"sort"
	"sync"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Scorer rates a query fragment against a keyword it was found in.
// Implementations must be pure: same inputs, same score, no side effects.
type Scorer func(fragment, keyword string) float64

// Stats is a snapshot of the graph's node counts.
type Stats struct {
	Items     int
	Keywords  int
	Fragments int
}

type keywordNode[T comparable] struct {
	items map[T]struct{}
}

// Graph indexes items against the full substring expansion of their
// keywords. Fragment nodes live in a patricia trie keyed by the fragment
// string; each trie entry holds the keyword edges with their reference
// counts. Readers may run concurrently, writers take the graph exclusively.
type Graph[T comparable] struct {
	mu sync.RWMutex

	items     map[T]map[string]struct{}
	keywords  map[string]*keywordNode[T]
	fragments *patricia.Trie

	numFragments int
}

// New returns an empty graph.
func New[T comparable]() *Graph[T] {
	return &Graph[T]{
		items:     make(map[T]map[string]struct{}),
		keywords:  make(map[string]*keywordNode[T]),
		fragments: patricia.NewTrie(),
	}
}

// Register maps an item against a set of normalized keywords. Keywords the
// item already carries are skipped, so re-adding an item merges instead of
// double counting fragment references. Returns false if no keywords were
// supplied.
func (g *Graph[T]) Register(item T, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	known := g.items[item]
	if known == nil {
		known = make(map[string]struct{}, len(keywords))
		g.items[item] = known
	}

	for _, keyword := range keywords {
		keyword = intern(keyword)
		if _, ok := known[keyword]; ok {
			continue
		}
		known[keyword] = struct{}{}

		node := g.keywords[keyword]
		if node == nil {
			node = &keywordNode[T]{items: make(map[T]struct{})}
			g.keywords[keyword] = node
			// Fragments are expanded once per keyword, not per item.
			g.adjustFragments(keyword, 1)
		}
		node.items[item] = struct{}{}
	}

	return true
}

// Unregister removes an item and every keyword association it holds.
// Keywords left with no items are torn down along with their fragment
// edges. Unknown items are a no-op.
func (g *Graph[T]) Unregister(item T) {
	g.mu.Lock()
	defer g.mu.Unlock()

	known := g.items[item]
	if known == nil {
		return
	}

	for keyword := range known {
		node := g.keywords[keyword]
		delete(node.items, item)
		if len(node.items) == 0 {
			delete(g.keywords, keyword)
			g.adjustFragments(keyword, -1)
		}
	}

	delete(g.items, item)
}

// KeywordsOf returns the keywords currently registered for an item,
// sorted. Unknown items yield nil.
func (g *Graph[T]) KeywordsOf(item T) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	known := g.items[item]
	if known == nil {
		return nil
	}

	keywords := make([]string, 0, len(known))
	for keyword := range known {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)
	return keywords
}

// WalkAndScore visits every keyword reachable from the fragment and sums
// the scorer's verdict into each carrying item. A fragment with no node
// yields an empty map.
func (g *Graph[T]) WalkAndScore(fragment string, scorer Scorer) map[T]float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.walkLocked(fragment, scorer)
}

// A View is a read-locked snapshot of the graph, valid for the duration
// of the function it is handed to. Walks through a view don't lock again,
// so a multi-fragment query sees one consistent graph state even while
// writers queue up. Views may be walked from multiple goroutines.
type View[T comparable] struct {
	g *Graph[T]
}

// View runs fn against a locked snapshot of the graph.
func (g *Graph[T]) View(fn func(View[T])) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	fn(View[T]{g: g})
}

// WalkAndScore is WalkAndScore against the view's snapshot.
func (v View[T]) WalkAndScore(fragment string, scorer Scorer) map[T]float64 {
	return v.g.walkLocked(fragment, scorer)
}

func (g *Graph[T]) walkLocked(fragment string, scorer Scorer) map[T]float64 {
	scores := make(map[T]float64)

	entry := g.fragments.Get(patricia.Prefix(fragment))
	if entry == nil {
		return scores
	}

	for keyword := range entry.(map[string]int) {
		score := scorer(fragment, keyword)
		for item := range g.keywords[keyword].items {
			scores[item] += score
		}
	}

	return scores
}

// Clear drops all items, keywords and fragments.
func (g *Graph[T]) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.items = make(map[T]map[string]struct{})
	g.keywords = make(map[string]*keywordNode[T])
	g.fragments = patricia.NewTrie()
	g.numFragments = 0
}

// Stats reports the current node counts.
func (g *Graph[T]) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return Stats{
		Items:     len(g.items),
		Keywords:  len(g.keywords),
		Fragments: g.numFragments,
	}
}
