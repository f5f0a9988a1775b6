package catalog

import (
	"math"
	"sort"
	"strings"

	"github.com/sells-group/attribution-cli/internal/match"
	"github.com/sells-group/attribution-cli/internal/rules"
	"github.com/sells-group/attribution-cli/internal/textutil"
)

// TextKind tells the matcher how much text it is looking at, which sets
// the result cap.
type TextKind int

const (
	SubjectText TextKind = iota
	BodyText
)

// Result caps by text kind, without and with buying-intent phrases.
const (
	subjectCap       = 3
	subjectIntentCap = 5
	bodyCap          = 5
	bodyIntentCap    = 7
)

// Tier confidences for the non-scored matching tiers.
const (
	exactConfidence     = 100
	fuzzyCutoff         = 75
	partialWeight       = 80
	indicatorConfidence = 50
	lanyardConfidence   = 60
)

// Mention is one product the matcher found in a piece of text.
type Mention struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Matcher extracts catalog product mentions from text using exact, fuzzy,
// partial multi-word and category-indicator matching, in that priority
// order.
type Matcher struct {
	products []Product
	fuzzy    *match.Matcher
	rules    rules.Rules

	lowerNames []string
	generic    map[string]struct{}
}

// NewMatcher builds a Matcher over the given catalog. A nil fuzzy matcher
// selects the default token-sort matcher.
func NewMatcher(products []Product, fuzzy *match.Matcher, r rules.Rules) *Matcher {
	if fuzzy == nil {
		fuzzy = match.NewMatcher(nil)
	}
	m := &Matcher{
		products:   products,
		fuzzy:      fuzzy,
		rules:      r,
		lowerNames: make([]string, len(products)),
		generic:    make(map[string]struct{}, len(r.GenericTerms)),
	}
	for i, p := range products {
		m.lowerNames[i] = textutil.Normalize(p.Name)
	}
	for _, term := range r.GenericTerms {
		m.generic[textutil.Normalize(term)] = struct{}{}
	}
	return m
}

// Mentions returns the ranked, de-duplicated products mentioned in text,
// capped according to the text kind and the presence of buying-intent
// phrases. Ties keep catalog/insertion order.
func (m *Matcher) Mentions(text string, kind TextKind) []Mention {
	lower := textutil.Normalize(text)
	if lower == "" {
		return nil
	}
	tokens := textutil.Tokenize(lower)
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = struct{}{}
	}

	matched := make(map[string]struct{})
	var mentions []Mention
	add := func(name string, confidence float64) {
		key := textutil.Normalize(name)
		if _, ok := matched[key]; ok {
			return
		}
		matched[key] = struct{}{}
		mentions = append(mentions, Mention{Name: name, Confidence: confidence})
	}

	m.matchExact(lower, add)
	m.matchFuzzy(tokens, matched, add)
	m.matchPartial(tokenSet, matched, add)
	m.matchIndicators(lower, add)

	sort.SliceStable(mentions, func(i, j int) bool {
		return mentions[i].Confidence > mentions[j].Confidence
	})

	limit := m.resultCap(lower, kind)
	if len(mentions) > limit {
		mentions = mentions[:limit]
	}
	return mentions
}

// matchExact finds catalog names appearing verbatim as substrings.
func (m *Matcher) matchExact(lower string, add func(string, float64)) {
	for i, p := range m.products {
		if m.lowerNames[i] != "" && strings.Contains(lower, m.lowerNames[i]) {
			add(p.Name, exactConfidence)
		}
	}
}

// matchFuzzy scores 1..4-word n-grams of the text against catalog names.
// The best score per product wins; generic-only n-grams are skipped.
func (m *Matcher) matchFuzzy(tokens []string, matched map[string]struct{}, add func(string, float64)) {
	best := make(map[int]float64)
	for _, gram := range m.candidateGrams(tokens) {
		for i := range m.products {
			if _, ok := matched[m.lowerNames[i]]; ok {
				continue
			}
			score := m.fuzzy.Scorer().Score(gram, m.lowerNames[i])
			if score >= fuzzyCutoff && score > best[i] {
				best[i] = score
			}
		}
	}

	// Apply in catalog order so equal scores keep a stable order.
	for i, p := range m.products {
		if score, ok := best[i]; ok {
			add(p.Name, score)
		}
	}
}

// candidateGrams builds the 1..4-word sliding-window phrases used for
// fuzzy matching. Single generic or very short words are excluded, as are
// phrases made up entirely of generic terms.
func (m *Matcher) candidateGrams(tokens []string) []string {
	var grams []string
	for n := 1; n <= 4; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			window := tokens[i : i+n]
			if n == 1 && (len(window[0]) <= 3 || m.isGeneric(window[0])) {
				continue
			}
			if m.allGeneric(window) {
				continue
			}
			grams = append(grams, strings.Join(window, " "))
		}
	}
	return grams
}

func (m *Matcher) isGeneric(word string) bool {
	_, ok := m.generic[word]
	return ok
}

func (m *Matcher) allGeneric(words []string) bool {
	for _, w := range words {
		if !m.isGeneric(w) {
			return false
		}
	}
	return true
}

// matchPartial matches multi-word catalog names when at least two of their
// significant words appear in the text and those cover at least 60% of the
// name's words.
func (m *Matcher) matchPartial(tokenSet map[string]struct{}, matched map[string]struct{}, add func(string, float64)) {
	for i, p := range m.products {
		if _, ok := matched[m.lowerNames[i]]; ok {
			continue
		}
		nameWords := textutil.Tokenize(m.lowerNames[i])
		if len(nameWords) < 2 {
			continue
		}

		found := 0
		for _, w := range nameWords {
			if len(w) <= 3 || m.isGeneric(w) {
				continue
			}
			if _, ok := tokenSet[w]; ok {
				found++
			}
		}
		if found < 2 {
			continue
		}
		ratio := float64(found) / float64(len(nameWords))
		if ratio < 0.6 {
			continue
		}
		add(p.Name, math.Round(ratio*partialWeight))
	}
}

// matchIndicators applies the lanyard special case, then the generic
// keyword->category table mapping to the shortest catalog name containing
// the keyword.
func (m *Matcher) matchIndicators(lower string, add func(string, float64)) {
	suppressed := make(map[string]struct{})

	if strings.Contains(lower, "lanyard") {
		variant := m.rules.LanyardVariants.Generic
		switch {
		case strings.Contains(lower, "leather"):
			variant = m.rules.LanyardVariants.Leather
		case strings.Contains(lower, "keychain"):
			variant = m.rules.LanyardVariants.Keychain
		}
		if variant != "" {
			add(m.catalogCased(variant), lanyardConfidence)
			// The lanyard phrase consumed these words; keep the generic
			// table from re-matching them as separate products.
			suppressed["lanyard"] = struct{}{}
			suppressed["keychain"] = struct{}{}
		}
	}

	keywords := make([]string, 0, len(m.rules.CategoryIndicators))
	for kw := range m.rules.CategoryIndicators {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	for _, kw := range keywords {
		if _, ok := suppressed[kw]; ok {
			continue
		}
		if !strings.Contains(lower, kw) {
			continue
		}
		if name, ok := m.shortestNameContaining(kw); ok {
			add(name, indicatorConfidence)
		}
	}
}

// catalogCased returns the catalog's casing for a name when the product
// exists, else the name as configured.
func (m *Matcher) catalogCased(name string) string {
	lower := textutil.Normalize(name)
	for i, p := range m.products {
		if m.lowerNames[i] == lower {
			return p.Name
		}
	}
	return name
}

// shortestNameContaining picks the shortest catalog name containing the
// keyword. Earlier catalog entries win length ties.
func (m *Matcher) shortestNameContaining(keyword string) (string, bool) {
	bestIdx := -1
	for i := range m.products {
		if !strings.Contains(m.lowerNames[i], keyword) {
			continue
		}
		if bestIdx < 0 || len(m.lowerNames[i]) < len(m.lowerNames[bestIdx]) {
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return "", false
	}
	return m.products[bestIdx].Name, true
}

// resultCap picks the mention cap for the text kind, loosened when the
// text shows buying intent.
func (m *Matcher) resultCap(lower string, kind TextKind) int {
	intent := false
	for _, phrase := range m.rules.BuyingIntentPhrases {
		if strings.Contains(lower, phrase) {
			intent = true
			break
		}
	}
	switch {
	case kind == SubjectText && intent:
		return subjectIntentCap
	case kind == SubjectText:
		return subjectCap
	case intent:
		return bodyIntentCap
	default:
		return bodyCap
	}
}
