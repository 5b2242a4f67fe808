/*
Package factory converts tariff definitions into watertax.Tariff values.

PURPOSE:
  Lets the municipality publish next year's quarterly schedule and rates
  as a YAML (or JSON) document instead of a code change. The factory
  validates the document and fills anything left out from the
  built-in 2025-26 tariff.

SCHEMA:
  daily_rate: 2
  penalty_rate: 0.01
  grace_years: 1
  month_length_days: 30.44
  quarters:
    - {key: q1, name: "Q1 (April-June)",       days: 91, due_date: 2025-06-30}
    - {key: q2, name: "Q2 (July-September)",   days: 92, due_date: 2025-09-30}
    - {key: q3, name: "Q3 (October-December)", days: 92, due_date: 2025-12-31}
    - {key: q4, name: "Q4 (January-March)",    days: 90, due_date: 2026-03-31}

RULES:
  - Every field is optional; omitted ones keep the default value
  - If quarters is present it must list each of q1..q4 exactly once
  - JSON is accepted as-is since it parses as YAML

USAGE:
  tariff, err := factory.ParseTariff(data)
  engine, err := watertax.NewEngine(tariff)

SEE ALSO:
  - watertax/tariff.go: Tariff type and DefaultTariff
  - config/config.go: Where the tariff file path comes from
*/
package factory

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/municipal/watertax/generic"
	"github.com/municipal/watertax/watertax"
)

// MaxMonthLengthDays bounds month_length_days.
const MaxMonthLengthDays = 366

// =============================================================================
// SCHEMA TYPES
// =============================================================================

// TariffDoc is the on-disk representation of a tariff.
type TariffDoc struct {
	DailyRate       *string      `yaml:"daily_rate,omitempty" json:"daily_rate,omitempty"`
	PenaltyRate     *string      `yaml:"penalty_rate,omitempty" json:"penalty_rate,omitempty"`
	GraceYears      *int         `yaml:"grace_years,omitempty" json:"grace_years,omitempty"`
	MonthLengthDays *string      `yaml:"month_length_days,omitempty" json:"month_length_days,omitempty"`
	Quarters        []QuarterDoc `yaml:"quarters,omitempty" json:"quarters,omitempty"`
}

// QuarterDoc is one schedule row.
type QuarterDoc struct {
	Key     string `yaml:"key" json:"key"`
	Name    string `yaml:"name" json:"name"`
	Days    int    `yaml:"days" json:"days"`
	DueDate string `yaml:"due_date" json:"due_date"`
}

// =============================================================================
// PARSING
// =============================================================================

// LoadTariffFile reads and parses a tariff document from disk.
func LoadTariffFile(path string) (watertax.Tariff, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return watertax.Tariff{}, fmt.Errorf("read tariff %s: %w", path, err)
	}
	return ParseTariff(data)
}

// ParseTariff decodes a YAML/JSON tariff document and validates it.
func ParseTariff(data []byte) (watertax.Tariff, error) {
	var doc TariffDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return watertax.Tariff{}, fmt.Errorf("%w: %v", generic.ErrInvalidTariff, err)
	}
	return doc.Build()
}

// Build applies the document on top of watertax.DefaultTariff.
func (d TariffDoc) Build() (watertax.Tariff, error) {
	t := watertax.DefaultTariff()

	if d.DailyRate != nil {
		v, err := parseRate("daily_rate", *d.DailyRate)
		if err != nil {
			return t, err
		}
		t.DailyRate = v
	}
	if d.PenaltyRate != nil {
		v, err := parseRate("penalty_rate", *d.PenaltyRate)
		if err != nil {
			return t, err
		}
		t.PenaltyRate = v
	}
	if d.GraceYears != nil {
		t.GraceYears = *d.GraceYears
	}
	if d.MonthLengthDays != nil {
		days, err := parseRate("month_length_days", *d.MonthLengthDays)
		if err != nil {
			return t, err
		}
		if !days.IsPositive() || days.GreaterThan(decimal.NewFromInt(MaxMonthLengthDays)) {
			return t, fmt.Errorf("%w: month_length_days %s out of range (0, %d]",
				generic.ErrInvalidTariff, days, MaxMonthLengthDays)
		}
		ms := days.Mul(decimal.NewFromInt(24 * 60 * 60 * 1000)).Round(0).IntPart()
		t.MonthLength = time.Duration(ms) * time.Millisecond
	}

	if len(d.Quarters) > 0 {
		schedule, err := buildSchedule(d.Quarters)
		if err != nil {
			return t, err
		}
		t.Schedule = schedule
	}

	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

func buildSchedule(rows []QuarterDoc) ([watertax.NumQuarters]watertax.QuarterConfig, error) {
	var schedule [watertax.NumQuarters]watertax.QuarterConfig
	if len(rows) != watertax.NumQuarters {
		return schedule, fmt.Errorf("%w: want %d quarters, got %d", generic.ErrInvalidTariff, watertax.NumQuarters, len(rows))
	}

	seen := make(map[watertax.Quarter]bool, watertax.NumQuarters)
	for _, row := range rows {
		q, err := watertax.ParseQuarter(row.Key)
		if err != nil {
			return schedule, fmt.Errorf("%w: %v", generic.ErrInvalidTariff, err)
		}
		if seen[q] {
			return schedule, fmt.Errorf("%w: duplicate quarter %s", generic.ErrInvalidTariff, q)
		}
		seen[q] = true

		due, err := generic.ParseDate(row.DueDate)
		if err != nil {
			return schedule, fmt.Errorf("%w: %s: %v", generic.ErrInvalidTariff, q, err)
		}

		for i, want := range watertax.Quarters() {
			if want == q {
				schedule[i] = watertax.QuarterConfig{
					Quarter:     q,
					DisplayName: row.Name,
					Days:        row.Days,
					DueDate:     due,
				}
			}
		}
	}
	return schedule, nil
}

func parseRate(field, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q: %v", generic.ErrInvalidTariff, field, raw, err)
	}
	return v, nil
}

// =============================================================================
// EXPORT
// =============================================================================

// DocFromTariff is the inverse of Build, used by GET /api/tariff.
func DocFromTariff(t watertax.Tariff) TariffDoc {
	daily := t.DailyRate.String()
	penalty := t.PenaltyRate.String()
	grace := t.GraceYears
	monthDays := decimal.NewFromInt(t.MonthLength.Milliseconds()).
		Div(decimal.NewFromInt(24 * 60 * 60 * 1000)).String()

	doc := TariffDoc{
		DailyRate:       &daily,
		PenaltyRate:     &penalty,
		GraceYears:      &grace,
		MonthLengthDays: &monthDays,
	}
	for _, c := range t.Schedule {
		doc.Quarters = append(doc.Quarters, QuarterDoc{
			Key:     string(c.Quarter),
			Name:    c.DisplayName,
			Days:    c.Days,
			DueDate: generic.FormatDate(c.DueDate),
		})
	}
	return doc
}
