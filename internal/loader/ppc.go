package loader

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/model"
)

// LoadPPCTable reads a paid-campaign export, CSV or XLSX. Standard exports
// name their keyword column "Keyword"; dynamic search ads exports use
// "Dynamic ad target" with values like "Category equals bags/tote bags",
// which are unwrapped to the bare category. Clicks and impressions may
// carry thousands separators. A date column is optional; rows whose date
// fails every known layout keep a nil date and never enter a time window.
func LoadPPCTable(path string, campaign model.CampaignType) ([]model.PPCRecord, int, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, 0, err
	}

	log := zap.L().With(zap.String("component", "loader"))

	keywordAliases := []string{"Keyword"}
	if campaign == model.CampaignDynamic {
		keywordAliases = []string{"Dynamic ad target", "Keyword"}
	}
	hasDate := t.hasColumn("Date")

	var (
		records []model.PPCRecord
		skipped int
	)
	for i, row := range t.rows {
		rowNum := i + 2

		keyword := strings.ToLower(t.col(row, keywordAliases...))
		if strings.Contains(keyword, "category equals") {
			keyword = strings.TrimSpace(strings.ReplaceAll(keyword, "category equals", ""))
		}
		if keyword == "" {
			skipped++
			log.Warn("ppc row dropped",
				zap.Error(&MalformedRecordError{Table: t.name, Row: rowNum, Reason: "empty keyword"}))
			continue
		}

		rec := model.PPCRecord{
			Keyword:     keyword,
			Clicks:      parseCount(t.col(row, "Clicks")),
			Impressions: parseCount(t.col(row, "Impr.", "Impressions")),
			Campaign:    campaign,
		}

		if hasDate {
			if date, ok := parseDate(t.col(row, "Date")); ok {
				rec.Date = &date
			}
		}

		records = append(records, rec)
	}

	if !hasDate {
		log.Warn("ppc table has no date column, time-based scoring disabled for these rows",
			zap.String("file", t.name))
	}
	log.Info("ppc table loaded",
		zap.String("file", t.name),
		zap.String("campaign", string(campaign)),
		zap.Int("keywords", len(records)),
		zap.Int("skipped", skipped))
	return records, skipped, nil
}
