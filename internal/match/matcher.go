package match

import "sort"

// Match is one scored vocabulary hit.
type Match struct {
	Phrase string
	Score  float64
}

// Matcher finds the best approximate matches for a candidate phrase in a
// reference vocabulary.
type Matcher struct {
	scorer SimilarityScorer
}

// NewMatcher creates a Matcher with the given scorer. A nil scorer selects
// the default token-sort scorer.
func NewMatcher(scorer SimilarityScorer) *Matcher {
	if scorer == nil {
		scorer = NewTokenSortScorer()
	}
	return &Matcher{scorer: scorer}
}

// Scorer exposes the underlying similarity scorer.
func (m *Matcher) Scorer() SimilarityScorer {
	return m.scorer
}

// Best returns every vocabulary phrase scoring at least cutoff against
// candidate, ordered by score descending with ties kept in vocabulary
// order, truncated to limit (limit <= 0 means unlimited).
func (m *Matcher) Best(candidate string, vocab []string, cutoff float64, limit int) []Match {
	var matches []Match
	for _, phrase := range vocab {
		if score := m.scorer.Score(candidate, phrase); score >= cutoff {
			matches = append(matches, Match{Phrase: phrase, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
