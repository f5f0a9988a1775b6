package loader

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/model"
)

// defaultPosition is assumed when an SEO export carries no position column
// at all. It ranks such keywords at the bottom of the score table without
// discarding them.
const defaultPosition = 100

// LoadSEOTable reads an organic-ranking export, CSV or XLSX. Vendor column
// names are normalized ("Keyphrase" and "Keyword" both map to the keyword,
// "Current Position" and "Position" to the rank). Rows with an empty
// keyword, a non-numeric position, or a position of zero or below are
// dropped as malformed and counted.
func LoadSEOTable(path string) ([]model.SEORecord, int, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, 0, err
	}

	log := zap.L().With(zap.String("component", "loader"))
	hasPosition := t.hasColumn("Current Position", "Position")

	var (
		records []model.SEORecord
		skipped int
	)
	for i, row := range t.rows {
		rowNum := i + 2 // 1-based, after the header

		keyword := strings.ToLower(t.col(row, "Keyphrase", "Keyword"))
		if keyword == "" {
			skipped++
			log.Warn("seo row dropped",
				zap.Error(&MalformedRecordError{Table: t.name, Row: rowNum, Reason: "empty keyword"}))
			continue
		}

		position := float64(defaultPosition)
		if hasPosition {
			cell := t.col(row, "Current Position", "Position")
			position, err = strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				skipped++
				log.Warn("seo row dropped",
					zap.Error(&MalformedRecordError{Table: t.name, Row: rowNum, Reason: "non-numeric position " + strconv.Quote(cell)}))
				continue
			}
			if position <= 0 {
				skipped++
				log.Warn("seo row dropped",
					zap.Error(&MalformedRecordError{Table: t.name, Row: rowNum, Reason: "position not ranking"}))
				continue
			}
		}

		records = append(records, model.SEORecord{Keyword: keyword, Position: position})
	}

	log.Info("seo table loaded",
		zap.String("file", t.name),
		zap.Int("keywords", len(records)),
		zap.Int("skipped", skipped))
	return records, skipped, nil
}
