package graph

import (
	"sync"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Registered keywords are long-lived and repeat across items, interning
// keeps a single backing string per keyword.
var keywordPool = sync.Map{}

func intern(s string) string {
	if cached, ok := keywordPool.Load(s); ok {
		return cached.(string)
	}
	keywordPool.Store(s, s)
	return s
}

// adjustFragments applies delta to the fragment edge of every contiguous
// substring of the keyword. The enumeration is per position: a substring
// occurring at two positions ("an" in "banana") contributes twice. Removal
// replays the same enumeration with a negative delta, so counts always
// return to zero.
func (g *Graph[T]) adjustFragments(keyword string, delta int) {
	runes := []rune(keyword)
	for i := 0; i < len(runes); i++ {
		for j := i + 1; j <= len(runes); j++ {
			g.adjustEdge(string(runes[i:j]), keyword, delta)
		}
	}
}

func (g *Graph[T]) adjustEdge(fragment, keyword string, delta int) {
	prefix := patricia.Prefix(fragment)

	var edges map[string]int
	if entry := g.fragments.Get(prefix); entry != nil {
		edges = entry.(map[string]int)
	} else {
		if delta < 0 {
			return
		}
		edges = make(map[string]int, 1)
		g.fragments.Insert(prefix, edges)
		g.numFragments++
	}

	edges[keyword] += delta
	if edges[keyword] <= 0 {
		delete(edges, keyword)
	}
	if len(edges) == 0 {
		g.fragments.Delete(prefix)
		g.numFragments--
	}
}
