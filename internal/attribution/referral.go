package attribution

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sells-group/attribution-cli/internal/model"
)

// referralStage infers word-of-mouth traffic from patterns no single lead
// carries on its own: several leads from one company domain, or bursts of
// inquiries landing on the same day or within the same hour or two.
type referralStage struct {
	low float64
	ix  *clusterIndex
}

func (s *referralStage) name() string         { return "referral" }
func (s *referralStage) source() model.Source { return model.SourceReferral }
func (s *referralStage) enabled() bool        { return true }

func (s *referralStage) prepare(leads []*model.Lead) {
	s.ix = buildClusterIndex(leads)
}

func (s *referralStage) eligible(lead *model.Lead) bool {
	return lead.FirstInquiryAt != nil
}

func (s *referralStage) evaluate(lead *model.Lead) StageResult {
	t := lead.FirstInquiryAt.UTC()

	var (
		score    float64
		evidence []string
	)

	if domain := lead.Domain(); domain != "" {
		if n := s.ix.domains[domain]; n > 1 {
			score += math.Min(60, float64(n)*15)
			evidence = append(evidence, fmt.Sprintf("Domain pattern: %d leads from %s", n, domain))
		}
	}

	day := truncateDay(t)
	if n := s.ix.dates[day]; n > 2 {
		others := n - 1
		if others > 0 {
			score += math.Min(30, float64(others)*8)
			evidence = append(evidence,
				fmt.Sprintf("Daily cluster: %d other leads on %s", others, day.Format("2006-01-02")))
		}
	}

	// The hour gate keeps isolated leads out of the window scan; only a
	// shared floored hour opens the tighter cluster checks.
	if s.ix.hours[t.Truncate(time.Hour)] > 1 {
		outer := s.ix.countWithin(t, 2*time.Hour) - 1
		if outer > 0 {
			inner := s.ix.countWithin(t, time.Hour) - 1
			if inner > 0 {
				score += math.Min(50, float64(inner)*20)
				evidence = append(evidence,
					fmt.Sprintf("Tight time cluster: %d leads within 1 hour", inner))
			} else {
				score += math.Min(35, float64(outer)*12)
				evidence = append(evidence,
					fmt.Sprintf("Time cluster: %d leads within 2 hours", outer))
			}
		}
	}

	if lead.TicketSpanDays != nil {
		switch span := *lead.TicketSpanDays; {
		case span == 0:
			score += 10
			evidence = append(evidence, "Single-day inquiry (referral indicator)")
		case span <= 1:
			score += 5
			evidence = append(evidence, "Short inquiry span (referral indicator)")
		}
	}

	confidence := math.Min(100, score)
	if confidence < s.low {
		return NoMatch()
	}

	evidence = append(evidence, "Inquiry at "+t.Format("2006-01-02 15:04"), "source: pattern")
	return Match(confidence, strings.Join(evidence, "; "), model.DataSourcePattern)
}
