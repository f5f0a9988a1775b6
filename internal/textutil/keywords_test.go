package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"simple", "Custom Lanyards", []string{"custom", "lanyards"}},
		{"punctuation", "need 500 lanyards, fast!", []string{"need", "500", "lanyards", "fast"}},
		{"hyphenated", "mock-up", []string{"mock", "up"}},
		{"empty", "", nil},
		{"only punctuation", "...!!!", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestExtract_NGrams(t *testing.T) {
	t.Parallel()

	got := Extract("custom printed lanyards")
	want := []string{
		"custom", "printed", "lanyards",
		"custom printed", "printed lanyards",
		"custom printed lanyards",
	}
	assert.Equal(t, want, got)
}

func TestExtract_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Extract(""))
	assert.Empty(t, Extract("   "))
}

func TestExtract_Deduplicates(t *testing.T) {
	t.Parallel()

	got := Extract("lanyard lanyard")
	assert.Equal(t, []string{"lanyard", "lanyard lanyard"}, got)
}

func TestExtract_TwoWords(t *testing.T) {
	t.Parallel()

	got := Extract("Leather Lanyards")
	assert.Equal(t, []string{"leather", "lanyards", "leather lanyards"}, got)
}

func TestExtractAll_Unions(t *testing.T) {
	t.Parallel()

	products := []string{"Custom Lanyards"}
	subjects := []string{"Lanyards enquiry", "Custom Lanyards"}

	got := ExtractAll(products, subjects)

	assert.Contains(t, got, "custom")
	assert.Contains(t, got, "lanyards")
	assert.Contains(t, got, "custom lanyards")
	assert.Contains(t, got, "enquiry")
	assert.Contains(t, got, "lanyards enquiry")

	// No duplicates across groups.
	seen := map[string]int{}
	for _, kw := range got {
		seen[kw]++
	}
	for kw, n := range seen {
		assert.Equal(t, 1, n, "keyword %q appears %d times", kw, n)
	}
}

func TestExtractAll_EmptyGroups(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ExtractAll(nil, nil))
	assert.Empty(t, ExtractAll([]string{}, []string{""}))
}
