package watertax

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/municipal/watertax/generic"
)

// =============================================================================
// TARIFF - Rates and the quarterly schedule
// =============================================================================

// AverageMonth is the month unit penalties accrue in: 30.44 days, i.e.
// exactly 2,630,016,000 ms. Delays are counted in these units, not in
// calendar months.
const AverageMonth = 2_630_016_000 * time.Millisecond

var (
	DefaultDailyRate   = decimal.NewFromInt(2)
	DefaultPenaltyRate = decimal.RequireFromString("0.01")
)

// DefaultGraceYears is how long after its due date a quarter stays
// penalty-free.
const DefaultGraceYears = 1

// Tariff holds everything the engine needs besides the citizen's state.
// It is a plain value; copies never share mutable data.
type Tariff struct {
	DailyRate   decimal.Decimal
	PenaltyRate decimal.Decimal
	GraceYears  int
	MonthLength time.Duration
	Schedule    [NumQuarters]QuarterConfig
}

// DefaultTariff is the fixed 2025-26 fiscal-year schedule.
func DefaultTariff() Tariff {
	return Tariff{
		DailyRate:   DefaultDailyRate,
		PenaltyRate: DefaultPenaltyRate,
		GraceYears:  DefaultGraceYears,
		MonthLength: AverageMonth,
		Schedule: [NumQuarters]QuarterConfig{
			{Quarter: Q1, DisplayName: "Q1 (April-June)", Days: 91, DueDate: generic.Date(2025, time.June, 30)},
			{Quarter: Q2, DisplayName: "Q2 (July-September)", Days: 92, DueDate: generic.Date(2025, time.September, 30)},
			{Quarter: Q3, DisplayName: "Q3 (October-December)", Days: 92, DueDate: generic.Date(2025, time.December, 31)},
			{Quarter: Q4, DisplayName: "Q4 (January-March)", Days: 90, DueDate: generic.Date(2026, time.March, 31)},
		},
	}
}

// Config looks up the schedule row for q.
func (t Tariff) Config(q Quarter) (QuarterConfig, error) {
	i := q.index()
	if i < 0 {
		return QuarterConfig{}, &generic.InvalidQuarterError{Quarter: string(q)}
	}
	return t.Schedule[i], nil
}

// OriginalAmount is DailyRate x Days for the quarter, before rounding.
func (t Tariff) OriginalAmount(c QuarterConfig) generic.Money {
	return generic.NewMoney(t.DailyRate).MulInt(c.Days)
}

// AnnualAmount is the sum of all four quarters' original amounts.
func (t Tariff) AnnualAmount() generic.Money {
	total := generic.ZeroMoney()
	for _, c := range t.Schedule {
		total = total.Add(t.OriginalAmount(c))
	}
	return total.Round2()
}

// Validate checks the schedule is complete and rates are usable.
func (t Tariff) Validate() error {
	if t.DailyRate.IsNegative() {
		return fmt.Errorf("%w: daily rate %s is negative", generic.ErrInvalidTariff, t.DailyRate)
	}
	if t.PenaltyRate.IsNegative() {
		return fmt.Errorf("%w: penalty rate %s is negative", generic.ErrInvalidTariff, t.PenaltyRate)
	}
	if t.GraceYears < 0 {
		return fmt.Errorf("%w: grace years %d is negative", generic.ErrInvalidTariff, t.GraceYears)
	}
	if t.MonthLength < time.Millisecond {
		return fmt.Errorf("%w: month length %v is too short", generic.ErrInvalidTariff, t.MonthLength)
	}
	for i, q := range Quarters() {
		c := t.Schedule[i]
		if c.Quarter != q {
			return fmt.Errorf("%w: slot %d holds %q, want %q", generic.ErrInvalidTariff, i, c.Quarter, q)
		}
		if c.Days <= 0 {
			return fmt.Errorf("%w: %s has %d days", generic.ErrInvalidTariff, q, c.Days)
		}
		if c.DueDate.IsZero() {
			return fmt.Errorf("%w: %s has no due date", generic.ErrInvalidTariff, q)
		}
		if c.DisplayName == "" {
			return fmt.Errorf("%w: %s has no display name", generic.ErrInvalidTariff, q)
		}
		if i > 0 {
			prev := t.Schedule[i-1].BillingPeriod()
			cur := c.BillingPeriod()
			if prev.Contains(cur.Start) || cur.Start.Before(prev.Start) {
				return fmt.Errorf("%w: %s %s overlaps or precedes %s %s",
					generic.ErrInvalidTariff, q, cur, t.Schedule[i-1].Quarter, prev)
			}
		}
	}
	return nil
}
