package attribution

import (
	"strings"

	"github.com/sells-group/attribution-cli/internal/model"
)

// Keyword similarity above this gate counts as a match in the SEO and PPC
// stages. Strictly greater-than.
const keywordCutoff = 60

// stage is one classifier in the cascade. Evaluate must be pure: it reads
// the lead and the stage's reference data and never mutates either, so
// leads within a stage can be scored in parallel.
type stage interface {
	name() string
	source() model.Source

	// enabled reports whether the stage's reference data was loaded. A
	// disabled stage attributes nothing.
	enabled() bool

	// prepare runs once per batch before any lead is scored, over the
	// entire lead set, attributed leads included.
	prepare(leads []*model.Lead)

	// eligible filters the still-unattributed leads this stage considers.
	eligible(lead *model.Lead) bool

	evaluate(lead *model.Lead) StageResult
}

// keywordPair records one lead-keyword/record-term match for the evidence
// trail.
type keywordPair struct {
	lead string
	term string
}

// formatPairs renders at most limit pairs as "lead-term; lead-term".
func formatPairs(pairs []keywordPair, limit int) string {
	if len(pairs) > limit {
		pairs = pairs[:limit]
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.lead + "-" + p.term
	}
	return strings.Join(parts, "; ")
}
