package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenSortScorer_OrderInsensitive(t *testing.T) {
	t.Parallel()

	s := NewTokenSortScorer()
	assert.InDelta(t, 100, s.Score("lanyard custom", "custom lanyard"), 1e-9)
	assert.InDelta(t, 100, s.Score("custom printed mugs", "mugs printed custom"), 1e-9)
}

func TestTokenSortScorer_Identity(t *testing.T) {
	t.Parallel()

	s := NewTokenSortScorer()
	for _, in := range []string{"lanyard", "custom lanyards", "500 leather lanyards"} {
		assert.InDelta(t, 100, s.Score(in, in), 1e-9, "input %q", in)
	}
}

func TestTokenSortScorer_Symmetry(t *testing.T) {
	t.Parallel()

	s := NewTokenSortScorer()
	pairs := [][2]string{
		{"custom lanyard", "lanyards custom printing"},
		{"badge holder", "badge"},
		{"mug", "mugs"},
	}
	for _, p := range pairs {
		assert.InDelta(t, s.Score(p[0], p[1]), s.Score(p[1], p[0]), 1e-9,
			"pair %q / %q", p[0], p[1])
	}
}

func TestTokenSortScorer_Range(t *testing.T) {
	t.Parallel()

	s := NewTokenSortScorer()
	got := s.Score("custom lanyard", "promotional umbrellas")
	assert.GreaterOrEqual(t, got, 0.0)
	assert.Less(t, got, 60.0)

	similar := s.Score("custom lanyard", "custom lanyards")
	assert.Greater(t, similar, 85.0)
}

func TestTokenSortScorer_Empty(t *testing.T) {
	t.Parallel()

	s := NewTokenSortScorer()
	assert.Zero(t, s.Score("", "lanyard"))
	assert.Zero(t, s.Score("lanyard", ""))
	assert.Zero(t, s.Score("", ""))
	assert.Zero(t, s.Score("...", "lanyard"))
}

func TestExactScorer(t *testing.T) {
	t.Parallel()

	s := ExactScorer{}
	assert.InDelta(t, 100, s.Score("lanyard", "lanyard"), 1e-9)
	assert.InDelta(t, 100, s.Score("Lanyard", "lanyard"), 1e-9)
	assert.Zero(t, s.Score("lanyard", "lanyards"))
	assert.Zero(t, s.Score("custom lanyard", "lanyard custom"))
	assert.Zero(t, s.Score("", ""))
}
