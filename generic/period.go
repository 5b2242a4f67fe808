package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - A closed range of calendar days
// =============================================================================

// Period is a billing window [Start, End], both inclusive calendar days.
//
// Examples:
//   - Water tax Q1 2025: Apr 1 - Jun 30
//   - Fiscal year 2025-26: Apr 1 2025 - Mar 31 2026
//   - Property tax first half: Apr 1 - Sep 30
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains returns true if the day of t is within [Start, End].
func (p Period) Contains(t time.Time) bool {
	d := StartOfDay(t)
	return !d.Before(StartOfDay(p.Start)) && !d.After(StartOfDay(p.End))
}

func (p Period) String() string {
	return "[" + FormatDate(p.Start) + ", " + FormatDate(p.End) + "]"
}

// =============================================================================
// FISCAL CALENDAR - April to March
// =============================================================================

// FiscalYearStartMonth is the first month of the municipal fiscal year.
const FiscalYearStartMonth = time.April

// FiscalYearFor returns the April-March fiscal year containing t.
func FiscalYearFor(t time.Time) Period {
	year := t.UTC().Year()
	start := Date(year, FiscalYearStartMonth, 1)
	if t.Before(start) {
		start = Date(year-1, FiscalYearStartMonth, 1)
	}
	return Period{Start: start, End: AddYears(start, 1).AddDate(0, 0, -1)}
}

// FiscalYearLabel renders a fiscal year as "2025-26".
func FiscalYearLabel(p Period) string {
	return fmt.Sprintf("%d-%02d", p.Start.Year(), (p.Start.Year()+1)%100)
}

// HalfYear is one of the two property-tax collection windows.
type HalfYear struct {
	Label   string // "April-September 2025" or "October-March 2026"
	Period  Period
	DueDate time.Time
}

// HalfYearFor returns the property-tax half year containing t. The first
// half runs April-September and is due on Sep 30; the second runs
// October-March and is due on Mar 31.
func HalfYearFor(t time.Time) HalfYear {
	t = t.UTC()
	year := t.Year()
	month := t.Month()

	if month >= time.April && month <= time.September {
		return HalfYear{
			Label:   fmt.Sprintf("April-September %d", year),
			Period:  Period{Start: Date(year, time.April, 1), End: Date(year, time.September, 30)},
			DueDate: Date(year, time.September, 30),
		}
	}

	startYear := year
	if month <= time.March {
		startYear = year - 1
	}
	return HalfYear{
		Label:   fmt.Sprintf("October-March %d", startYear+1),
		Period:  Period{Start: Date(startYear, time.October, 1), End: Date(startYear+1, time.March, 31)},
		DueDate: Date(startYear+1, time.March, 31),
	}
}
