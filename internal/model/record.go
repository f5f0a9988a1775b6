package model

import "time"

// CampaignType distinguishes the two PPC export formats.
type CampaignType string

const (
	CampaignStandard CampaignType = "Standard"
	CampaignDynamic  CampaignType = "Dynamic"
)

// SEORecord is one row of the organic-ranking table. Keyword is lowercased
// by the loader; Position is the search-result rank (lower is better) and
// is always > 0 for loaded rows.
type SEORecord struct {
	Keyword  string  `csv:"keyword" json:"keyword"`
	Position float64 `csv:"position" json:"position"`
}

// PPCRecord is one row of a paid-campaign export. Date is nil when the
// export carried no parseable date for the row; such rows never fall inside
// an attribution window.
type PPCRecord struct {
	Keyword     string       `json:"keyword"`
	Clicks      int          `json:"clicks"`
	Impressions int          `json:"impressions"`
	Date        *time.Time   `json:"date,omitempty"`
	Campaign    CampaignType `json:"campaign_type"`
}

// RankingRow is one row returned by the external click-analytics API. It
// substitutes for an SEORecord when the API is configured as the organic
// data source.
type RankingRow struct {
	Query       string  `json:"query"`
	Clicks      int     `json:"clicks"`
	Impressions int     `json:"impressions"`
	Position    float64 `json:"position"`
}

// SEORecordsFromRanking converts API ranking rows into the SEO table shape
// used by the attribution engine.
func SEORecordsFromRanking(rows []RankingRow) []SEORecord {
	records := make([]SEORecord, 0, len(rows))
	for _, r := range rows {
		if r.Query == "" || r.Position <= 0 {
			continue
		}
		records = append(records, SEORecord{Keyword: r.Query, Position: r.Position})
	}
	return records
}
