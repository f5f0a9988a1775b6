package attribution

import (
	"fmt"
	"math"

	"github.com/sells-group/attribution-cli/internal/match"
	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/textutil"
)

// seoStage matches lead keywords against the organic ranking table. The
// table is either the exported ranking CSV or rows fetched from the search
// analytics API; the scoring is identical, only the provenance tag differs.
type seoStage struct {
	records    []model.SEORecord
	dataSource model.DataSource
	scorer     match.SimilarityScorer
	low        float64

	terms [][]string // n-gram terms per record, extracted once
}

func (s *seoStage) name() string         { return "seo" }
func (s *seoStage) source() model.Source { return model.SourceSEO }
func (s *seoStage) enabled() bool        { return len(s.records) > 0 }

func (s *seoStage) prepare([]*model.Lead) {
	if s.terms != nil {
		return
	}
	s.terms = make([][]string, len(s.records))
	for i, rec := range s.records {
		s.terms[i] = textutil.Extract(rec.Keyword)
	}
}

func (s *seoStage) eligible(*model.Lead) bool { return true }

func (s *seoStage) evaluate(lead *model.Lead) StageResult {
	if len(lead.ExtractedKeywords) == 0 {
		return NoMatch()
	}

	var (
		kms       float64
		pairs     []keywordPair
		positions []float64
	)
	for i, rec := range s.records {
		for _, lk := range lead.ExtractedKeywords {
			for _, term := range s.terms[i] {
				sim := s.scorer.Score(lk, term)
				if sim <= keywordCutoff {
					continue
				}
				kms = math.Max(kms, sim)
				pairs = append(pairs, keywordPair{lead: lk, term: term})
				positions = append(positions, rec.Position)
			}
		}
	}
	if kms == 0 {
		return NoMatch()
	}

	avg := mean(positions)
	confidence := math.Min(100, 0.7*kms+0.3*positionScore(avg))
	if confidence < s.low {
		return NoMatch()
	}

	detail := fmt.Sprintf("Keyword matches: %s, Avg position: %.1f (source: %s)",
		formatPairs(pairs, 3), avg, s.dataSource)
	return Match(confidence, detail, s.dataSource)
}

// positionScore steps the average matched ranking position into a score.
// Page-one rankings score high; anything past position 10 bottoms out at 60.
func positionScore(avg float64) float64 {
	switch {
	case avg <= 1:
		return 100
	case avg <= 3:
		return 90
	case avg <= 5:
		return 80
	case avg <= 10:
		return 70
	default:
		return 60
	}
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
