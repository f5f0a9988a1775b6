package attribution

import (
	"fmt"
	"math"
	"time"

	"github.com/sells-group/attribution-cli/internal/match"
	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/textutil"
)

// Forward buffer on the click window, absorbing clock skew between the ad
// platform's day stamps and the helpdesk's timestamps.
const ppcForwardBuffer = 2 * time.Hour

// ppcStage matches leads against paid-campaign click records inside a
// lookback window. A lead without a first-inquiry timestamp is never
// eligible; a lead with no in-window click activity is skipped.
type ppcStage struct {
	records  []model.PPCRecord
	scorer   match.SimilarityScorer
	low      float64
	lookback time.Duration

	terms [][]string
}

func (s *ppcStage) name() string         { return "ppc" }
func (s *ppcStage) source() model.Source { return model.SourcePPC }
func (s *ppcStage) enabled() bool        { return len(s.records) > 0 }

func (s *ppcStage) prepare([]*model.Lead) {
	if s.terms != nil {
		return
	}
	s.terms = make([][]string, len(s.records))
	for i, rec := range s.records {
		s.terms[i] = textutil.Extract(rec.Keyword)
	}
}

func (s *ppcStage) eligible(lead *model.Lead) bool {
	return lead.FirstInquiryAt != nil
}

func (s *ppcStage) evaluate(lead *model.Lead) StageResult {
	leadTime := lead.FirstInquiryAt.UTC()

	// Candidate records: dated, clicked, and inside the day-granular
	// window [lead-lookback, lead+buffer].
	windowStart := truncateDay(leadTime.Add(-s.lookback))
	windowEnd := truncateDay(leadTime.Add(ppcForwardBuffer))
	leadDay := truncateDay(leadTime)

	minGap := math.Inf(1)
	var candidates []int
	for i, rec := range s.records {
		if rec.Date == nil || rec.Clicks <= 0 {
			continue
		}
		day := truncateDay(rec.Date.UTC())
		if day.Before(windowStart) || day.After(windowEnd) {
			continue
		}
		gap := math.Abs(leadDay.Sub(day).Hours())
		minGap = math.Min(minGap, gap)
		candidates = append(candidates, i)
	}
	if len(candidates) == 0 {
		return NoMatch()
	}

	proximity := proximityScore(minGap)

	var (
		kms   float64
		pairs []keywordPair
	)
	for _, i := range candidates {
		for _, lk := range lead.ExtractedKeywords {
			for _, term := range s.terms[i] {
				sim := s.scorer.Score(lk, term)
				if sim <= keywordCutoff {
					continue
				}
				kms = math.Max(kms, sim)
				pairs = append(pairs, keywordPair{lead: lk, term: term})
			}
		}
	}
	if kms <= 0 || proximity <= 0 {
		return NoMatch()
	}

	confidence := 0.6*kms + 0.4*proximity
	if confidence < s.low {
		return NoMatch()
	}

	detail := fmt.Sprintf("Keyword matches: %s, Time gap: %.1fh, Proximity score: %.1f%% (source: %s)",
		formatPairs(pairs, 3), minGap, proximity, model.DataSourcePPCCSV)
	return Match(confidence, detail, model.DataSourcePPCCSV)
}

// proximityScore steps the hour gap between lead day and click day into a
// score. Gaps past the window decay linearly to zero.
func proximityScore(hours float64) float64 {
	switch {
	case hours <= 1:
		return 100
	case hours <= 6:
		return 95
	case hours <= 12:
		return 85
	case hours <= 24:
		return 75
	case hours <= 48:
		return 60
	default:
		return math.Max(0, 50-(hours-48)/24*10)
	}
}

// truncateDay floors a time to midnight UTC.
func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
