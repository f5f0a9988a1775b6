package report

import (
	"math"
	"sort"
	"strings"

	"github.com/sells-group/attribution-cli/internal/model"
)

// SourceStats aggregates the attribution outcome for one source.
type SourceStats struct {
	Source             model.Source
	Leads              int
	Percentage         float64
	AvgConfidence      float64
	MinConfidence      float64
	MaxConfidence      float64
	HighConfidence     int
	HighConfidencePct  float64
	TopProduct         string
	TopProductMentions int
}

// BuildStats computes per-source aggregates over a finished batch. Sources
// that claimed no leads are omitted; rows come out ordered by lead count
// descending, ties in the fixed reporting order.
func BuildStats(leads []*model.Lead) []SourceStats {
	total := len(leads)
	if total == 0 {
		return nil
	}

	bySource := make(map[model.Source][]*model.Lead)
	for _, l := range leads {
		bySource[l.Source] = append(bySource[l.Source], l)
	}

	stats := make([]SourceStats, 0, len(bySource))
	for _, source := range model.SourceOrder {
		if group := bySource[source]; len(group) > 0 {
			stats = append(stats, sourceStats(source, group, total))
			delete(bySource, source)
		}
	}

	// Leads loaded back from disk can carry source labels outside the
	// fixed order; tally them too rather than dropping them silently.
	extras := make([]model.Source, 0, len(bySource))
	for source := range bySource {
		extras = append(extras, source)
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	for _, source := range extras {
		stats = append(stats, sourceStats(source, bySource[source], total))
	}

	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Leads > stats[j].Leads })
	return stats
}

func sourceStats(source model.Source, group []*model.Lead, total int) SourceStats {
	st := SourceStats{Source: source, Leads: len(group)}
	st.Percentage = float64(st.Leads) / float64(total) * 100

	lo, hi, sum := group[0].Confidence, group[0].Confidence, 0.0
	for _, l := range group {
		sum += l.Confidence
		lo = math.Min(lo, l.Confidence)
		hi = math.Max(hi, l.Confidence)
		if l.ConfidenceLevel == model.ConfidenceHigh {
			st.HighConfidence++
		}
	}
	st.AvgConfidence = sum / float64(st.Leads)
	st.MinConfidence = lo
	st.MaxConfidence = hi
	st.HighConfidencePct = float64(st.HighConfidence) / float64(st.Leads) * 100

	st.TopProduct, st.TopProductMentions = topProduct(group)
	return st
}

type productCount struct {
	name string
	n    int
}

// productCounts tallies product mentions across a lead group, most
// mentioned first, ties in first-seen order.
func productCounts(group []*model.Lead) []productCount {
	counts := make(map[string]int)
	var order []string
	for _, l := range group {
		for _, p := range l.ProductsMentioned {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if counts[p] == 0 {
				order = append(order, p)
			}
			counts[p]++
		}
	}

	out := make([]productCount, 0, len(order))
	for _, p := range order {
		out = append(out, productCount{name: p, n: counts[p]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].n > out[j].n })
	return out
}

func topProduct(group []*model.Lead) (string, int) {
	pc := productCounts(group)
	if len(pc) == 0 {
		return "", 0
	}
	return pc[0].name, pc[0].n
}

var levelOrder = []model.ConfidenceLevel{
	model.ConfidenceHigh,
	model.ConfidenceMedium,
	model.ConfidenceLow,
	model.ConfidenceUnknown,
}

var dataSourceOrder = []model.DataSource{
	model.DataSourceCustomerDB,
	model.DataSourceSEOCSV,
	model.DataSourceGSCAPI,
	model.DataSourcePPCCSV,
	model.DataSourcePattern,
	model.DataSourceUnknown,
}

func levelCounts(leads []*model.Lead) map[model.ConfidenceLevel]int {
	counts := make(map[model.ConfidenceLevel]int)
	for _, l := range leads {
		counts[l.ConfidenceLevel]++
	}
	return counts
}

func dataSourceCounts(leads []*model.Lead) map[model.DataSource]int {
	counts := make(map[model.DataSource]int)
	for _, l := range leads {
		counts[l.DataSource]++
	}
	return counts
}
