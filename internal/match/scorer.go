// Package match provides order-insensitive approximate string matching
// with pluggable similarity scoring.
package match

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/sells-group/attribution-cli/internal/textutil"
)

// SimilarityScorer scores how alike two strings are on a 0..100 scale.
// Implementations are symmetric (Score(a,b) == Score(b,a)) and score any
// non-empty string against itself as 100.
type SimilarityScorer interface {
	Score(a, b string) float64
}

// TokenSortScorer scores strings by tokenizing both sides, sorting the
// tokens alphabetically, and computing normalized edit-distance similarity
// over the re-joined strings. Word order therefore does not matter:
// "lanyard custom" scores 100 against "custom lanyard".
type TokenSortScorer struct {
	params *levenshtein.Params
}

// NewTokenSortScorer returns the default token-sort scorer.
func NewTokenSortScorer() *TokenSortScorer {
	return &TokenSortScorer{params: levenshtein.NewParams()}
}

func (s *TokenSortScorer) Score(a, b string) float64 {
	na, nb := tokenSortKey(a), tokenSortKey(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 100
	}
	return levenshtein.Similarity(na, nb, s.params) * 100
}

// tokenSortKey lowercases, tokenizes, sorts, and re-joins a string.
func tokenSortKey(s string) string {
	tokens := textutil.Tokenize(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// ExactScorer is the degraded fallback when approximate similarity is
// disabled: 100 on an exact (normalized) match, 0 otherwise.
type ExactScorer struct{}

func (ExactScorer) Score(a, b string) float64 {
	if textutil.Normalize(a) == "" {
		return 0
	}
	if textutil.Normalize(a) == textutil.Normalize(b) {
		return 100
	}
	return 0
}
