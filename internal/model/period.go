package model

import "time"

// Period is the inclusive UTC date range one analysis run covers. Ticket
// history, campaign tables, and reason strings are all bounded by it.
type Period struct {
	Start time.Time
	End   time.Time
}

// MonthRange builds a period spanning whole months, from the first instant
// of the start month to the last second of the end month.
func MonthRange(startYear int, startMonth time.Month, endYear int, endMonth time.Month) Period {
	return Period{
		Start: time.Date(startYear, startMonth, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(endYear, endMonth+1, 0, 23, 59, 59, 0, time.UTC),
	}
}

// Contains reports whether t falls inside the period, bounds included.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// IsZero reports whether the period was never set.
func (p Period) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero()
}

// String renders the period the way it appears in classification reasons
// and report headers, e.g. "March 2025 - May 2025".
func (p Period) String() string {
	return p.Start.Format("January 2006") + " - " + p.End.Format("January 2006")
}
