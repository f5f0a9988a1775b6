// Package loader reads the flat tabular inputs of an attribution run:
// raw lead lists, the domain whitelist, SEO and PPC campaign exports, and
// customer email dumps. Loaders normalize vendor column names to canonical
// ones, drop malformed rows with a counted warning, and never abort a batch
// for a single bad record. Only a missing or unreadable primary table is
// fatal.
package loader

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/attribution-cli/internal/fetcher"
)

// dateFormats are tried in order when parsing campaign export dates.
// Agency exports mix day-first and month-first conventions.
var dateFormats = []string{
	"2/1/06",
	"2/1/2006",
	"1/2/06",
	"1/2/2006",
	"2006-01-02",
	"2-1-2006",
}

// table is a parsed tabular file: one header row plus data rows. Header
// names are kept raw; lookups go through colIdx with normalized keys.
type table struct {
	name   string
	header []string
	rows   [][]string
	colIdx map[string]int
}

// readTable loads a CSV or XLSX file into memory. The first row is the
// header. Files with no data rows are an error.
func readTable(path string) (*table, error) {
	var (
		records [][]string
		err     error
	)

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		records, err = fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
		if err != nil {
			return nil, err
		}
	} else {
		records, err = readCSVFile(path)
		if err != nil {
			return nil, err
		}
	}

	name := filepath.Base(path)
	if len(records) < 2 {
		return nil, eris.Errorf("loader: %s has no data rows", name)
	}

	t := &table{
		name:   name,
		header: records[0],
		rows:   records[1:],
		colIdx: make(map[string]int, len(records[0])),
	}
	for i, col := range t.header {
		t.colIdx[normalizeColumn(col)] = i
	}
	return t, nil
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "loader: open csv")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "loader: read csv")
	}
	return records, nil
}

// col returns the trimmed value of the named column in a row, resolving the
// first alias that exists in the header. Missing columns and short rows
// yield "".
func (t *table) col(row []string, aliases ...string) string {
	for _, alias := range aliases {
		idx, ok := t.colIdx[normalizeColumn(alias)]
		if !ok || idx >= len(row) {
			continue
		}
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// hasColumn reports whether any of the aliases appears in the header.
func (t *table) hasColumn(aliases ...string) bool {
	for _, alias := range aliases {
		if _, ok := t.colIdx[normalizeColumn(alias)]; ok {
			return true
		}
	}
	return false
}

// normalizeColumn folds a header name for alias matching: lowercased, with
// spaces, dots, underscores, and hyphens stripped. "Current Position",
// "current_position", and "CurrentPosition" all collide.
func normalizeColumn(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch r {
		case ' ', '.', '_', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// parseCount parses an integer cell that may carry thousands separators,
// as Google Ads exports write them ("1,204"). Empty or unparseable cells
// return 0.
func parseCount(cell string) int {
	cleaned := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if cleaned == "" {
		return 0
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	return n
}

// parseDate tries each known export date layout in order. The bool result
// is false when no layout matches; callers keep the row but leave its date
// unset so it never lands in a time window.
func parseDate(cell string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.ParseInLocation(layout, cell, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
