package report

import (
	"os"
	"strconv"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/attribution-cli/internal/model"
)

// summaryRow is the on-disk shape of one source's aggregate statistics.
// Percentages and confidences are rounded to one decimal.
type summaryRow struct {
	Source              string `csv:"source"`
	LeadCount           int    `csv:"lead_count"`
	Percentage          string `csv:"percentage"`
	AvgConfidence       string `csv:"avg_confidence"`
	MinConfidence       string `csv:"min_confidence"`
	MaxConfidence       string `csv:"max_confidence"`
	HighConfidenceCount int    `csv:"high_confidence_count"`
	HighConfidencePct   string `csv:"high_confidence_pct"`
	TopProduct          string `csv:"top_product"`
}

// WriteSummaryCSV writes per-source aggregate statistics to path, one row
// per source that claimed at least one lead, highest lead count first.
func WriteSummaryCSV(path string, leads []*model.Lead) error {
	stats := BuildStats(leads)
	rows := make([]summaryRow, len(stats))
	for i, st := range stats {
		rows[i] = summaryRow{
			Source:              string(st.Source),
			LeadCount:           st.Leads,
			Percentage:          round1(st.Percentage),
			AvgConfidence:       round1(st.AvgConfidence),
			MinConfidence:       round1(st.MinConfidence),
			MaxConfidence:       round1(st.MaxConfidence),
			HighConfidenceCount: st.HighConfidence,
			HighConfidencePct:   round1(st.HighConfidencePct),
			TopProduct:          st.TopProduct,
		}
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "report: encode summary")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", path)
	}
	return nil
}

func round1(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
