package notion

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// summaryProperty maps a summary CSV column to its Notion property name.
var summaryProperty = map[string]string{
	"source":                "Source",
	"lead_count":            "Leads",
	"percentage":            "Percentage",
	"avg_confidence":        "Avg Confidence",
	"min_confidence":        "Min Confidence",
	"max_confidence":        "Max Confidence",
	"high_confidence_count": "High Confidence Leads",
	"high_confidence_pct":   "High Confidence %",
	"top_product":           "Top Product",
}

// numericColumn columns become Notion number properties.
var numericColumn = map[string]bool{
	"lead_count":            true,
	"percentage":            true,
	"avg_confidence":        true,
	"min_confidence":        true,
	"max_confidence":        true,
	"high_confidence_count": true,
	"high_confidence_pct":   true,
}

// PublishSummaryCSV reads an attribution summary CSV and creates one page
// per row in the given database. period labels each page with the analysis
// window (for example "March 2025 - May 2025") so successive runs stay
// distinguishable. Returns the number of pages created.
func PublishSummaryCSV(ctx context.Context, c Client, dbID, period, csvPath string) (int, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, eris.Wrap(err, fmt.Sprintf("notion: open summary csv %s", csvPath))
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return 0, eris.Wrap(err, "notion: read summary csv")
	}

	if len(records) < 2 {
		return 0, nil // header only or empty
	}

	headers := records[0]
	created := 0
	for _, record := range records[1:] {
		if ctx.Err() != nil {
			return created, eris.Wrap(ctx.Err(), "notion: publish cancelled")
		}

		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[strings.ToLower(strings.TrimSpace(h))] = record[i]
			}
		}

		req := &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(dbID),
			},
			Properties: buildSummaryProperties(row, period),
		}

		if _, err := c.CreatePage(ctx, req); err != nil {
			return created, eris.Wrap(err, "notion: create summary page")
		}
		created++
	}

	return created, nil
}

// buildSummaryProperties converts a summary row to Notion page properties.
// The source column becomes the title; known numeric columns become number
// properties; everything else passes through as rich_text.
func buildSummaryProperties(row map[string]string, period string) notionapi.Properties {
	props := make(notionapi.Properties)

	for col, val := range row {
		name, known := summaryProperty[col]
		if !known {
			name = col
		}

		switch {
		case col == "source":
			props[name] = notionapi.TitleProperty{
				Type: notionapi.PropertyTypeTitle,
				Title: []notionapi.RichText{
					{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: val}},
				},
			}
		case numericColumn[col]:
			n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
			if err != nil {
				continue
			}
			props[name] = notionapi.NumberProperty{
				Type:   notionapi.PropertyTypeNumber,
				Number: n,
			}
		default:
			if val == "" {
				continue
			}
			props[name] = notionapi.RichTextProperty{
				Type: notionapi.PropertyTypeRichText,
				RichText: []notionapi.RichText{
					{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: val}},
				},
			}
		}
	}

	if period != "" {
		props["Analysis Period"] = notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: period}},
			},
		}
	}

	return props
}
