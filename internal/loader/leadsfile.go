package loader

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/textutil"
)

// enrichedRow is the on-disk shape of a lead after the enrichment step.
// List columns are "; "-joined, timestamps RFC 3339.
type enrichedRow struct {
	Email                  string `csv:"email"`
	OriginalClassification string `csv:"original_classification"`
	OriginalReason         string `csv:"original_reason"`
	TicketCount            int    `csv:"total_tickets_analyzed"`
	ProductsMentioned      string `csv:"products_mentioned"`
	TicketSubjects         string `csv:"ticket_subjects"`
	FirstInquiryAt         string `csv:"first_inquiry_timestamp"`
	LastTicketAt           string `csv:"last_ticket_timestamp"`
	TicketSpanDays         string `csv:"ticket_span_days"`
	AnalysisPeriod         string `csv:"analysis_period"`
}

// attributedRow appends the attribution verdict to the enriched columns.
type attributedRow struct {
	enrichedRow
	Source          string `csv:"attributed_source"`
	Confidence      string `csv:"attribution_confidence"`
	Detail          string `csv:"attribution_detail"`
	DataSource      string `csv:"data_source"`
	ConfidenceLevel string `csv:"confidence_level"`
}

// WriteEnrichedLeads writes the enrichment output file, one row per lead
// in input order.
func WriteEnrichedLeads(path string, leads []*model.Lead) error {
	rows := make([]enrichedRow, len(leads))
	for i, l := range leads {
		rows[i] = toEnrichedRow(l)
	}
	return writeCSVFile(path, rows)
}

// LoadEnrichedLeads reads an enrichment output file back into leads ready
// for attribution: keyword candidates are re-derived from the product and
// subject columns. Rows without a usable email are skipped and counted;
// unparseable timestamps clear the field but keep the lead, which then
// simply misses the time-dependent stages.
func LoadEnrichedLeads(path string) ([]*model.Lead, int, error) {
	var rows []enrichedRow
	if err := readCSVInto(path, &rows); err != nil {
		return nil, 0, err
	}

	log := zap.L().With(zap.String("component", "loader"))

	leads := make([]*model.Lead, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if !strings.Contains(row.Email, "@") {
			skipped++
			continue
		}
		lead := leadFromEnrichedRow(row, log)
		lead.ExtractedKeywords = textutil.ExtractAll(lead.ProductsMentioned, lead.TicketSubjects)
		leads = append(leads, lead)
	}

	if len(leads) == 0 {
		return nil, 0, eris.Errorf("loader: no valid leads in %s", filepath.Base(path))
	}
	if skipped > 0 {
		log.Warn("enriched lead rows skipped",
			zap.String("file", filepath.Base(path)),
			zap.Int("skipped", skipped))
	}
	return leads, skipped, nil
}

// WriteAttributedLeads writes the final per-lead output, one row per input
// lead in input order.
func WriteAttributedLeads(path string, leads []*model.Lead) error {
	rows := make([]attributedRow, len(leads))
	for i, l := range leads {
		rows[i] = attributedRow{
			enrichedRow:     toEnrichedRow(l),
			Source:          string(l.Source),
			Confidence:      strconv.FormatFloat(l.Confidence, 'f', 2, 64),
			Detail:          l.Detail,
			DataSource:      string(l.DataSource),
			ConfidenceLevel: string(l.ConfidenceLevel),
		}
	}
	return writeCSVFile(path, rows)
}

// LoadAttributedLeads reads a final output file back, for report
// generation over a previous run.
func LoadAttributedLeads(path string) ([]*model.Lead, int, error) {
	var rows []attributedRow
	if err := readCSVInto(path, &rows); err != nil {
		return nil, 0, err
	}

	log := zap.L().With(zap.String("component", "loader"))

	leads := make([]*model.Lead, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if !strings.Contains(row.Email, "@") {
			skipped++
			continue
		}
		lead := leadFromEnrichedRow(row.enrichedRow, log)
		lead.Source = model.Source(row.Source)
		if lead.Source == "" {
			lead.Source = model.SourceUnknown
		}
		if conf, err := strconv.ParseFloat(strings.TrimSpace(row.Confidence), 64); err == nil {
			lead.Confidence = conf
		}
		lead.Detail = row.Detail
		if row.DataSource != "" {
			lead.DataSource = model.DataSource(row.DataSource)
		}
		if row.ConfidenceLevel != "" {
			lead.ConfidenceLevel = model.ConfidenceLevel(row.ConfidenceLevel)
		}
		leads = append(leads, lead)
	}

	if len(leads) == 0 {
		return nil, 0, eris.Errorf("loader: no valid leads in %s", filepath.Base(path))
	}
	return leads, skipped, nil
}

func toEnrichedRow(l *model.Lead) enrichedRow {
	return enrichedRow{
		Email:                  l.Email,
		OriginalClassification: l.OriginalClassification,
		OriginalReason:         l.OriginalReason,
		TicketCount:            l.TicketCount,
		ProductsMentioned:      strings.Join(l.ProductsMentioned, "; "),
		TicketSubjects:         strings.Join(l.TicketSubjects, "; "),
		FirstInquiryAt:         formatTimePtr(l.FirstInquiryAt),
		LastTicketAt:           formatTimePtr(l.LastTicketAt),
		TicketSpanDays:         formatSpanPtr(l.TicketSpanDays),
		AnalysisPeriod:         l.AnalysisPeriod,
	}
}

func leadFromEnrichedRow(row enrichedRow, log *zap.Logger) *model.Lead {
	lead := model.NewLead(row.Email)
	lead.OriginalClassification = row.OriginalClassification
	lead.OriginalReason = row.OriginalReason
	lead.TicketCount = row.TicketCount
	lead.ProductsMentioned = splitList(row.ProductsMentioned)
	lead.TicketSubjects = splitList(row.TicketSubjects)
	lead.FirstInquiryAt = parseTimePtr(row.FirstInquiryAt, "first_inquiry_timestamp", lead.Email, log)
	lead.LastTicketAt = parseTimePtr(row.LastTicketAt, "last_ticket_timestamp", lead.Email, log)
	lead.AnalysisPeriod = row.AnalysisPeriod

	if cell := strings.TrimSpace(row.TicketSpanDays); cell != "" {
		if span, err := strconv.ParseFloat(cell, 64); err == nil {
			lead.TicketSpanDays = &span
		}
	}
	return &lead
}

func writeCSVFile(path string, rows any) error {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "loader: encode csv")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "loader: write csv")
	}
	return nil
}

func readCSVInto(path string, rows any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrap(err, "loader: read csv")
	}
	if err := csvutil.Unmarshal(data, rows); err != nil {
		return eris.Wrap(err, "loader: decode csv")
	}
	return nil
}

func splitList(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	var items []string
	for _, part := range strings.Split(cell, ";") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTimePtr(cell, column, email string, log *zap.Logger) *time.Time {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, cell)
	if err != nil {
		log.Warn("unparseable lead timestamp",
			zap.String("column", column),
			zap.String("email", email),
			zap.String("value", cell))
		return nil
	}
	t = t.UTC()
	return &t
}

func formatSpanPtr(span *float64) string {
	if span == nil {
		return ""
	}
	return strconv.FormatFloat(*span, 'f', 1, 64)
}
