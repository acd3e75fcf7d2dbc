package search

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/quickfind/pkg/graph"
)

// UnmatchedPolicy controls what happens when a query keyword matches no
// fragment at all.
type UnmatchedPolicy int

const (
	// Backtracking shortens an unmatched keyword from the tail, one rune
	// at a time, until something matches or a single rune is left.
	Backtracking UnmatchedPolicy = iota
	// Exact gives up immediately on an unmatched keyword.
	Exact
)

// AccumulationPolicy controls how the per-keyword score maps of a
// multi-keyword query are combined.
type AccumulationPolicy int

const (
	// Union keeps every item matched by at least one keyword.
	Union AccumulationPolicy = iota
	// Intersection keeps only items matched by all keywords. Discards
	// candidates as early as possible, so it is also the cheaper policy.
	Intersection
)

// Extractor splits a raw input string into tokens. Order and duplicates
// are irrelevant, the pipeline deduplicates afterwards.
type Extractor func(raw string) []string

// Normalizer maps a single token to its canonical form. Returning the
// empty string drops the token.
type Normalizer func(token string) string

var nonWord = regexp.MustCompile(`\W+`)

// DefaultExtractor replaces runs of non-word characters with spaces and
// splits on whitespace, so "one$two%three" and "one two,three" both come
// out as three tokens.
func DefaultExtractor(raw string) []string {
	return strings.Fields(nonWord.ReplaceAllString(raw, " "))
}

// DefaultNormalizer trims surrounding whitespace and lowercases.
func DefaultNormalizer(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// DefaultScorer rates a fragment by its length relative to the keyword,
// boosted by 1.0 when it matches the keyword's beginning. Matching "pa"
// against "password" gives 0.25 + 1.0, "assword" gives 0.875.
func DefaultScorer(fragment, keyword string) float64 {
	score := float64(utf8.RuneCountInString(fragment)) / float64(utf8.RuneCountInString(keyword))
	if strings.HasPrefix(keyword, fragment) {
		score += 1.0
	}
	return score
}

type settings struct {
	extractor    Extractor
	normalizer   Normalizer
	scorer       graph.Scorer
	unmatched    UnmatchedPolicy
	accumulation AccumulationPolicy
	parallel     bool
}

func defaultSettings() settings {
	return settings{
		extractor:    DefaultExtractor,
		normalizer:   DefaultNormalizer,
		scorer:       DefaultScorer,
		unmatched:    Backtracking,
		accumulation: Union,
	}
}

// Option configures an Engine at construction time.
type Option func(*settings)

// WithExtractor replaces the default keyword extractor.
func WithExtractor(extractor Extractor) Option {
	return func(s *settings) {
		if extractor != nil {
			s.extractor = extractor
		}
	}
}

// WithNormalizer replaces the default keyword normalizer. It is applied
// to every token of both inserted keywords and queries.
func WithNormalizer(normalizer Normalizer) Option {
	return func(s *settings) {
		if normalizer != nil {
			s.normalizer = normalizer
		}
	}
}

// WithScorer replaces the default match scorer. The scorer must be pure;
// with parallel combining enabled it is also called from multiple
// goroutines and must be safe for that.
func WithScorer(scorer graph.Scorer) Option {
	return func(s *settings) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

// WithUnmatchedPolicy selects the retry behavior for unmatched keywords.
func WithUnmatchedPolicy(policy UnmatchedPolicy) Option {
	return func(s *settings) { s.unmatched = policy }
}

// WithAccumulationPolicy selects how multi-keyword results are combined.
func WithAccumulationPolicy(policy AccumulationPolicy) Option {
	return func(s *settings) { s.accumulation = policy }
}

// WithParallelCombine walks the fragments of a multi-keyword query on
// separate goroutines and merges the maps with a pairwise reduction.
// Membership is identical to the sequential result; float sums may differ
// in the last bits since addition order changes.
func WithParallelCombine(enabled bool) Option {
	return func(s *settings) { s.parallel = enabled }
}
