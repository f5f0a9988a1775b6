// Package report renders the outputs of a finished attribution run: the
// plain-text analysis report, the per-source summary CSV, and the logged
// final tallies.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/attribution"
	"github.com/sells-group/attribution-cli/internal/model"
)

const (
	reportWidth  = 70
	sectionWidth = 40
	topProducts  = 5
)

// Business hours span 09:00 to 17:59 for the time-pattern section.
const (
	businessHourStart = 9
	businessHourEnd   = 17
)

// WriteTextReport renders the full analysis report for a finished batch
// and writes it to path.
func WriteTextReport(path string, leads []*model.Lead, generatedAt time.Time) error {
	var buf bytes.Buffer
	renderText(&buf, leads, generatedAt)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", path)
	}
	return nil
}

func renderText(w io.Writer, leads []*model.Lead, generatedAt time.Time) {
	total := len(leads)
	stats := BuildStats(leads)
	rule := strings.Repeat("=", reportWidth)

	_, _ = fmt.Fprintln(w, rule)
	_, _ = fmt.Fprintln(w, "TRAFFIC ATTRIBUTION ANALYSIS REPORT")
	_, _ = fmt.Fprintln(w, rule)
	_, _ = fmt.Fprintf(w, "Generated: %s\n", generatedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(w, "Total Leads Analyzed: %d\n", total)

	writeSourceBreakdown(w, stats, leads)
	writeConfidenceLevels(w, leads)
	writeTopProducts(w, stats, leads)
	writeTimePatterns(w, leads)
	writeDataSources(w, leads)
	writeLimitations(w, leads)

	_, _ = fmt.Fprintf(w, "\n%s\nEnd of Report\n%s\n", rule, rule)
}

func section(w io.Writer, title string) {
	_, _ = fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("-", sectionWidth))
}

func writeSourceBreakdown(w io.Writer, stats []SourceStats, leads []*model.Lead) {
	section(w, "1. ATTRIBUTION BREAKDOWN BY SOURCE")

	unknown := 0
	for _, st := range stats {
		_, _ = fmt.Fprintf(w, "%-15s: %4d leads (%5.1f%%)  avg confidence %.1f\n",
			st.Source, st.Leads, st.Percentage, st.AvgConfidence)
		if st.Source == model.SourceUnknown {
			unknown = st.Leads
		}
	}

	total := len(leads)
	attributed := total - unknown
	_, _ = fmt.Fprintf(w, "\nTotal Attributed: %d leads\n", attributed)
	if total > 0 {
		_, _ = fmt.Fprintf(w, "Attribution Rate: %.1f%%\n", float64(attributed)/float64(total)*100)
	}
}

func writeConfidenceLevels(w io.Writer, leads []*model.Lead) {
	section(w, "2. CONFIDENCE LEVEL DISTRIBUTION")

	total := len(leads)
	counts := levelCounts(leads)
	for _, level := range levelOrder {
		n := counts[level]
		if n == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "%-10s: %4d leads (%5.1f%%)\n",
			level, n, float64(n)/float64(total)*100)
	}
}

func writeTopProducts(w io.Writer, stats []SourceStats, leads []*model.Lead) {
	section(w, "3. TOP PRODUCTS BY SOURCE")

	bySource := make(map[model.Source][]*model.Lead)
	for _, l := range leads {
		bySource[l.Source] = append(bySource[l.Source], l)
	}

	for _, st := range stats {
		if st.Source == model.SourceUnknown {
			continue
		}
		_, _ = fmt.Fprintf(w, "\n%s Traffic (%d leads):\n", st.Source, st.Leads)

		products := productCounts(bySource[st.Source])
		if len(products) == 0 {
			_, _ = fmt.Fprintln(w, "  - No specific products identified")
			continue
		}
		if len(products) > topProducts {
			products = products[:topProducts]
		}
		for _, p := range products {
			_, _ = fmt.Fprintf(w, "  - %s: %d mentions\n", p.name, p.n)
		}
	}
}

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

func writeTimePatterns(w io.Writer, leads []*model.Lead) {
	section(w, "4. TIME PATTERNS")

	times := validInquiryTimes(leads)
	if len(times) == 0 {
		_, _ = fmt.Fprintln(w, "No inquiry timestamps available.")
		return
	}

	total := len(leads)
	days := make(map[time.Weekday]int)
	var hours [24]int
	first, last := times[0], times[0]
	business := 0
	for _, t := range times {
		days[t.Weekday()]++
		hours[t.Hour()]++
		if t.Hour() >= businessHourStart && t.Hour() <= businessHourEnd {
			business++
		}
		if t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}

	_, _ = fmt.Fprintln(w, "Day of Week Distribution:")
	for _, day := range weekdayOrder {
		n := days[day]
		if n == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "  %-10s: %3d leads (%4.1f%%)\n",
			day, n, float64(n)/float64(total)*100)
	}

	peakHour, peakCount := 0, 0
	for h, n := range hours {
		if n > peakCount {
			peakHour, peakCount = h, n
		}
	}
	afterHours := len(times) - business

	_, _ = fmt.Fprintf(w, "\nTimestamp Analysis (%d leads with valid timestamps):\n", len(times))
	_, _ = fmt.Fprintf(w, "  Date Range: %s to %s\n",
		first.Format("2006-01-02"), last.Format("2006-01-02"))
	_, _ = fmt.Fprintf(w, "  Peak Hour: %d:00 (%d leads)\n", peakHour, peakCount)
	_, _ = fmt.Fprintf(w, "  Business Hours (9-17): %d leads (%.1f%%)\n",
		business, float64(business)/float64(len(times))*100)
	_, _ = fmt.Fprintf(w, "  After Hours: %d leads (%.1f%%)\n",
		afterHours, float64(afterHours)/float64(len(times))*100)
}

func writeDataSources(w io.Writer, leads []*model.Lead) {
	section(w, "5. DATA SOURCE BREAKDOWN")

	total := len(leads)
	counts := dataSourceCounts(leads)
	for _, ds := range dataSourceOrder {
		n := counts[ds]
		if n == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "%-15s: %4d leads (%5.1f%%)\n",
			ds, n, float64(n)/float64(total)*100)
	}
}

func writeLimitations(w io.Writer, leads []*model.Lead) {
	section(w, "6. DATA LIMITATIONS")

	total := len(leads)
	missing := total - len(validInquiryTimes(leads))
	counts := dataSourceCounts(leads)
	fromCSV := counts[model.DataSourceSEOCSV] + counts[model.DataSourcePPCCSV]

	noted := false
	if missing > 0 {
		_, _ = fmt.Fprintf(w, "- Inquiry timestamps missing for %d leads\n", missing)
		_, _ = fmt.Fprintln(w, "  These leads are excluded from paid-click and time-pattern scoring")
		noted = true
	}
	if total > 0 && float64(fromCSV) > 0.8*float64(total) {
		_, _ = fmt.Fprintln(w, "- Attribution relies heavily on campaign CSV exports")
		_, _ = fmt.Fprintln(w, "  Live ranking data would improve SEO and PPC accuracy")
		noted = true
	}
	if !noted {
		_, _ = fmt.Fprintln(w, "- None")
	}
}

func validInquiryTimes(leads []*model.Lead) []time.Time {
	var times []time.Time
	for _, l := range leads {
		if l.FirstInquiryAt != nil {
			times = append(times, l.FirstInquiryAt.UTC())
		}
	}
	return times
}

// LogSummary writes the final per-source and per-level tallies to the
// global logger. PPC appears even when it claimed no leads.
func LogSummary(sum *attribution.Summary) {
	log := zap.L().With(zap.String("component", "report"))

	for _, source := range model.SourceOrder {
		n := sum.BySource[source]
		if n == 0 && source != model.SourcePPC {
			continue
		}
		pct := 0.0
		if sum.Total > 0 {
			pct = float64(n) / float64(sum.Total) * 100
		}
		log.Info("final attribution",
			zap.String("source", string(source)),
			zap.Int("leads", n),
			zap.Float64("pct", pct))
	}

	for _, level := range levelOrder {
		if n := sum.ByLevel[level]; n > 0 {
			log.Info("confidence level",
				zap.String("level", string(level)),
				zap.Int("leads", n))
		}
	}
}
