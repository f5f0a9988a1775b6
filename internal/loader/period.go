package loader

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/attribution-cli/internal/model"
)

// Lead files are named for the months they cover. Three forms are
// recognized, checked in order:
//
//	leads_mar2025-may2025.csv   explicit month range
//	leads_may2025.csv           single month
//	leads_q1_2025.csv           calendar quarter
var (
	periodRangePattern   = regexp.MustCompile(`^([a-z]+)(\d{4})-([a-z]+)(\d{4})$`)
	periodMonthPattern   = regexp.MustCompile(`^([a-z]+)(\d{4})$`)
	periodQuarterPattern = regexp.MustCompile(`^q(\d)_(\d{4})$`)
)

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// PeriodFromFilename derives the analysis period from a lead file's name.
// The second result is false when the name matches no known form; callers
// then fall back to the configured default period.
func PeriodFromFilename(path string) (model.Period, bool) {
	name := strings.ToLower(filepath.Base(path))
	if !strings.HasPrefix(name, "leads_") || !strings.HasSuffix(name, ".csv") {
		return model.Period{}, false
	}
	return ParsePeriod(strings.TrimSuffix(strings.TrimPrefix(name, "leads_"), ".csv"))
}

// ParsePeriod parses a bare period token in the same forms the lead file
// names carry: "mar2025-may2025", "may2025", or "q1_2025".
func ParsePeriod(s string) (model.Period, bool) {
	name := strings.ToLower(strings.TrimSpace(s))

	if m := periodRangePattern.FindStringSubmatch(name); m != nil {
		startMonth, okStart := monthNames[m[1]]
		endMonth, okEnd := monthNames[m[3]]
		if okStart && okEnd {
			startYear, _ := strconv.Atoi(m[2])
			endYear, _ := strconv.Atoi(m[4])
			return model.MonthRange(startYear, startMonth, endYear, endMonth), true
		}
	}

	if m := periodMonthPattern.FindStringSubmatch(name); m != nil {
		if month, ok := monthNames[m[1]]; ok {
			year, _ := strconv.Atoi(m[2])
			return model.MonthRange(year, month, year, month), true
		}
	}

	if m := periodQuarterPattern.FindStringSubmatch(name); m != nil {
		quarter, _ := strconv.Atoi(m[1])
		if quarter >= 1 && quarter <= 4 {
			year, _ := strconv.Atoi(m[2])
			startMonth := time.Month(3*(quarter-1) + 1)
			return model.MonthRange(year, startMonth, year, startMonth+2), true
		}
	}

	return model.Period{}, false
}
