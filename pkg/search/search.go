// Package search provides the public quickfind engine: free-form queries
// over items tagged with arbitrary keyword strings, answered from an
// in-memory fragment graph in interactive time.
//
// An engine is built once, optionally configured, and then shared:
//
//	eng := search.New[string]()
//	eng.AddItem("Villain", "Roy Batty Lord Voldemort Colonel Kurtz")
//	eng.AddItem("Hero", "Walt Kowalski Jake Blues Shaun")
//	hit, ok := eng.FindItem("walk") // "Hero"
//
// Queries match any contiguous substring of any keyword, so partially
// entered input already surfaces the top hits. All methods are safe for
// concurrent use.
package search

import (
	"unicode/utf8"

	"github.com/bastiangx/quickfind/pkg/graph"
)

// Match is one scored result, carrying the item's current keywords for
// detail queries.
type Match[T comparable] struct {
	Item     T
	Keywords []string
	Score    float64
}

// Result is the detail form of a query response, echoing the query it
// answers.
type Result[T comparable] struct {
	Query   string
	Matches []Match[T]
}

// Engine answers free-form queries over registered items. The zero value
// is not usable, construct with New.
type Engine[T comparable] struct {
	settings
	graph *graph.Graph[T]
}

// New builds an engine with the supplied options; defaults are the
// extractor, normalizer and scorer documented in this package,
// backtracking on unmatched keywords and union accumulation.
func New[T comparable](opts ...Option) *Engine[T] {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &Engine[T]{settings: s, graph: graph.New[T]()}
}

// AddItem registers an item against a free-form keywords string. Adding
// an existing item merges any new keywords into it. Returns false when no
// keyword survives extraction and normalization, in which case nothing is
// indexed.
func (e *Engine[T]) AddItem(item T, keywords string) bool {
	if keywords == "" {
		return false
	}
	prepared := e.prepare(keywords)
	if len(prepared) == 0 {
		return false
	}
	return e.graph.Register(item, prepared)
}

// RemoveItem drops an item and all of its keyword associations. Removing
// an unknown item does nothing.
func (e *Engine[T]) RemoveItem(item T) {
	e.graph.Unregister(item)
}

// FindItem returns the top scoring item for the query, if any.
func (e *Engine[T]) FindItem(query string) (T, bool) {
	var zero T
	hits := e.doSearch(query, 1)
	if len(hits) == 0 {
		return zero, false
	}
	return hits[0].item, true
}

// FindItems returns up to limit items, best first. Empty queries and
// limits below one yield an empty result.
func (e *Engine[T]) FindItems(query string, limit int) []T {
	hits := e.doSearch(query, limit)
	items := make([]T, len(hits))
	for i, hit := range hits {
		items[i] = hit.item
	}
	return items
}

// FindItemWithDetail returns the top scoring item together with its
// current keywords and accumulated score.
func (e *Engine[T]) FindItemWithDetail(query string) (Match[T], bool) {
	hits := e.doSearch(query, 1)
	if len(hits) == 0 {
		return Match[T]{}, false
	}
	return e.detail(hits[0]), true
}

// FindItemsWithDetail returns up to limit scored matches with their
// keywords, wrapped with the query echo.
func (e *Engine[T]) FindItemsWithDetail(query string, limit int) Result[T] {
	result := Result[T]{Query: query, Matches: []Match[T]{}}
	hits := e.doSearch(query, limit)
	for _, hit := range hits {
		result.Matches = append(result.Matches, e.detail(hit))
	}
	return result
}

// Clear empties the engine.
func (e *Engine[T]) Clear() {
	e.graph.Clear()
}

// Stats reports item, keyword and fragment counts.
func (e *Engine[T]) Stats() graph.Stats {
	return e.graph.Stats()
}

func (e *Engine[T]) detail(hit scored[T]) Match[T] {
	return Match[T]{
		Item:     hit.item,
		Keywords: e.graph.KeywordsOf(hit.item),
		Score:    hit.score,
	}
}

func (e *Engine[T]) doSearch(query string, limit int) []scored[T] {
	if query == "" || limit < 1 {
		return nil
	}
	fragments := e.prepare(query)
	if len(fragments) == 0 {
		return nil
	}

	// the whole combine runs against one view, so a query never observes
	// a half-applied mutation between fragment walks
	var scores map[T]float64
	e.graph.View(func(v graph.View[T]) {
		scores = e.findAndScore(v, fragments)
	})
	return topK(scores, limit)
}

// prepare runs the input pipeline: extract, normalize each token, drop
// empties, deduplicate. The only place user callbacks are invoked, and it
// runs before any lock is taken so a throwing callback leaves the graph
// untouched.
func (e *Engine[T]) prepare(raw string) []string {
	tokens := e.extractor(raw)

	seen := make(map[string]struct{}, len(tokens))
	prepared := make([]string, 0, len(tokens))
	for _, token := range tokens {
		normalized := e.normalizer(token)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		prepared = append(prepared, normalized)
	}
	return prepared
}

// walkAndScore resolves a single query fragment, honoring the unmatched
// policy: under backtracking an empty result retries with the last rune
// trimmed, down to a single rune. At most len(fragment) walks.
func (e *Engine[T]) walkAndScore(v graph.View[T], fragment string) map[T]float64 {
	scores := v.WalkAndScore(fragment, e.scorer)

	if e.unmatched == Backtracking {
		for len(scores) == 0 && utf8.RuneCountInString(fragment) > 1 {
			runes := []rune(fragment)
			fragment = string(runes[:len(runes)-1])
			scores = v.WalkAndScore(fragment, e.scorer)
		}
	}

	return scores
}
