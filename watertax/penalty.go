/*
penalty.go - Quarterly water-tax penalty calculation

PURPOSE:
  Computes what a citizen owes for each water-tax quarter at a given
  instant: the original charge, whether a late penalty applies, the
  penalty itself and the total.

ALGORITHM (per quarter):
  1. original = DailyRate x Days
  2. Paid quarter: flat original, no penalty, whatever the payment date
  3. gracePeriodEnd = DueDate + GraceYears (calendar addition)
  4. at <= gracePeriodEnd: no penalty
  5. at >  gracePeriodEnd:
       monthsDelayed = ceil((at - gracePeriodEnd) / AverageMonth)
       penalty       = original x PenaltyRate x monthsDelayed
  6. original, penalty and total are each rounded to 2 dp

  Instants are compared at millisecond resolution.

EXAMPLE:
  Q1 unpaid, due 2025-06-30, grace ends 2026-06-30, at = 2026-08-15
    elapsed 46 days -> ceil(46 / 30.44) = 2 months
    182.00 x 0.01 x 2 = 3.64 -> total 185.64

AGGREGATION:
  CalculateAllQuartersTotal lists all four quarters but only sums the
  unpaid ones. A paid quarter shows its nominal amount in the detail and
  contributes nothing to the total due.

CONCURRENCY:
  Engine is an immutable value. Every call reads only its arguments, so
  any number of goroutines may share one Engine.

SEE ALSO:
  - tariff.go: Rates and the quarterly schedule
  - reminder.go: Reminder text built from a Summary
  - payment.go: Recording a payment using these amounts
*/
package watertax

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/municipal/watertax/generic"
)

// Engine evaluates water-tax dues against one tariff. Build it with
// NewEngine or DefaultEngine; the zero value has an empty schedule and
// falls back to AverageMonth for the month unit.
type Engine struct {
	tariff Tariff
}

// NewEngine validates the tariff and returns an engine bound to it.
func NewEngine(t Tariff) (Engine, error) {
	if err := t.Validate(); err != nil {
		return Engine{}, err
	}
	return Engine{tariff: t}, nil
}

// DefaultEngine uses DefaultTariff.
func DefaultEngine() Engine { return Engine{tariff: DefaultTariff()} }

// Tariff returns a copy of the engine's tariff.
func (e Engine) Tariff() Tariff { return e.tariff }

// GracePeriodEnd is the last instant at which c can be paid without penalty.
func (e Engine) GracePeriodEnd(c QuarterConfig) time.Time {
	return generic.AddYears(c.DueDate, e.tariff.GraceYears)
}

// MonthsDelayed counts the started average months between the end of the
// grace period and at. It is zero at or before the grace period end.
func (e Engine) MonthsDelayed(gracePeriodEnd, at time.Time) int {
	elapsed := generic.MillisBetween(gracePeriodEnd, at)
	if elapsed <= 0 {
		return 0
	}
	return int(generic.CeilDiv(elapsed, e.monthLength().Milliseconds()))
}

func (e Engine) monthLength() time.Duration {
	if e.tariff.MonthLength < time.Millisecond {
		return AverageMonth
	}
	return e.tariff.MonthLength
}

// CalculateQuarterPenalty computes the dues of one quarter at instant at.
// It fails only for an unknown quarter key.
func (e Engine) CalculateQuarterPenalty(state WaterTaxState, q Quarter, at time.Time) (PenaltyResult, error) {
	cfg, err := e.tariff.Config(q)
	if err != nil {
		return PenaltyResult{}, err
	}

	original := e.tariff.OriginalAmount(cfg)
	result := PenaltyResult{
		Quarter:        q,
		QuarterName:    cfg.DisplayName,
		OriginalAmount: original.Round2(),
		PenaltyAmount:  generic.ZeroMoney().Round2(),
		TotalAmount:    original.Round2(),
		DueDate:        cfg.DueDate,
		GracePeriodEnd: e.GracePeriodEnd(cfg),
		BillingPeriod:  cfg.BillingPeriod(),
		CurrentDate:    at,
		Paid:           state.IsPaid(q),
	}

	// Once paid the quarter reports its flat amount; no retroactive penalty.
	if result.Paid {
		return result, nil
	}

	months := e.MonthsDelayed(result.GracePeriodEnd, at)
	if months == 0 {
		return result, nil
	}

	penalty := original.Mul(e.tariff.PenaltyRate).Mul(decimal.NewFromInt(int64(months)))
	result.HasPenalty = true
	result.MonthsDelayed = months
	result.PenaltyAmount = penalty.Round2()
	result.TotalAmount = original.Add(penalty).Round2()
	return result, nil
}

// CalculateAllQuartersTotal evaluates q1..q4 and sums the unpaid ones.
func (e Engine) CalculateAllQuartersTotal(state WaterTaxState, at time.Time) (Summary, error) {
	summary := Summary{Quarters: make([]PenaltyResult, 0, NumQuarters)}
	var originals, penalties, totals []generic.Money

	for _, q := range Quarters() {
		r, err := e.CalculateQuarterPenalty(state, q, at)
		if err != nil {
			return Summary{}, err
		}
		summary.Quarters = append(summary.Quarters, r)

		if r.Paid {
			continue
		}
		originals = append(originals, r.OriginalAmount)
		penalties = append(penalties, r.PenaltyAmount)
		totals = append(totals, r.TotalAmount)
		if r.PenaltyAmount.IsPositive() {
			summary.HasAnyPenalty = true
		}
	}

	summary.TotalOriginalAmount = generic.SumMoney(originals...).Round2()
	summary.TotalPenaltyAmount = generic.SumMoney(penalties...).Round2()
	summary.TotalAmount = generic.SumMoney(totals...).Round2()
	return summary, nil
}

// DetailedBreakdown is CalculateAllQuartersTotal plus pending quarters and
// counts for reporting.
func (e Engine) DetailedBreakdown(state WaterTaxState, at time.Time) (Breakdown, error) {
	summary, err := e.CalculateAllQuartersTotal(state, at)
	if err != nil {
		return Breakdown{}, err
	}

	pending := summary.Pending()
	withPenalty := 0
	for _, r := range pending {
		if r.HasPenalty {
			withPenalty++
		}
	}

	return Breakdown{
		Summary:         summary,
		PendingQuarters: pending,
		Counts: BreakdownCounts{
			TotalQuarters:       NumQuarters,
			PaidQuarters:        NumQuarters - len(pending),
			PendingQuarters:     len(pending),
			QuartersWithPenalty: withPenalty,
		},
	}, nil
}

// =============================================================================
// PACKAGE-LEVEL HELPERS - DefaultTariff
// =============================================================================

// CalculateQuarterPenalty runs Engine.CalculateQuarterPenalty with DefaultTariff.
func CalculateQuarterPenalty(state WaterTaxState, q Quarter, at time.Time) (PenaltyResult, error) {
	return DefaultEngine().CalculateQuarterPenalty(state, q, at)
}

// CalculateAllQuartersTotal runs Engine.CalculateAllQuartersTotal with DefaultTariff.
func CalculateAllQuartersTotal(state WaterTaxState, at time.Time) (Summary, error) {
	return DefaultEngine().CalculateAllQuartersTotal(state, at)
}

// DetailedBreakdown runs Engine.DetailedBreakdown with DefaultTariff.
func DetailedBreakdown(state WaterTaxState, at time.Time) (Breakdown, error) {
	return DefaultEngine().DetailedBreakdown(state, at)
}
