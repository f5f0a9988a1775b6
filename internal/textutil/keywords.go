// Package textutil turns free text into matchable keyword candidates.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// Normalize case-folds and trims a string for matching.
func Normalize(s string) string {
	return strings.TrimSpace(foldCaser.String(s))
}

// Tokenize splits text into lowercase alphanumeric runs. Punctuation and
// whitespace act as boundaries; no stemming or stopword removal.
func Tokenize(text string) []string {
	text = foldCaser.String(text)
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// Extract returns every token of text plus every contiguous 2-word and
// 3-word phrase (sliding window, no gaps), deduplicated in first-seen
// order. Empty input yields an empty slice.
func Extract(text string) []string {
	words := Tokenize(text)
	if len(words) == 0 {
		return nil
	}

	out := make([]string, 0, len(words)*3)
	seen := make(map[string]struct{}, len(words)*3)
	add := func(kw string) {
		if _, ok := seen[kw]; ok {
			return
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}

	for _, w := range words {
		add(w)
	}
	for i := 0; i+1 < len(words); i++ {
		add(words[i] + " " + words[i+1])
	}
	for i := 0; i+2 < len(words); i++ {
		add(words[i] + " " + words[i+1] + " " + words[i+2])
	}
	return out
}

// ExtractAll extracts from each string of each group and unions the
// results, preserving first-seen order. Extraction runs per string, so
// phrases never span two list entries. Used to build a lead's keyword set
// from its product mentions and ticket subjects.
func ExtractAll(groups ...[]string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, group := range groups {
		for _, item := range group {
			for _, kw := range Extract(item) {
				if _, ok := seen[kw]; ok {
					continue
				}
				seen[kw] = struct{}{}
				out = append(out, kw)
			}
		}
	}
	return out
}
