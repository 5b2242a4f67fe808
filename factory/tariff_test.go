package factory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/municipal/watertax/generic"
	"github.com/municipal/watertax/watertax"
)

const fy2026 = `
daily_rate: 2.5
penalty_rate: 0.015
grace_years: 1
month_length_days: 30.44
quarters:
  - {key: q1, name: "Q1 (April-June)", days: 91, due_date: 2026-06-30}
  - {key: q2, name: "Q2 (July-September)", days: 92, due_date: 2026-09-30}
  - {key: q3, name: "Q3 (October-December)", days: 92, due_date: 2026-12-31}
  - {key: q4, name: "Q4 (January-March)", days: 90, due_date: 2027-03-31}
`

func TestParseTariff_FullDocument(t *testing.T) {
	tariff, err := ParseTariff([]byte(fy2026))
	require.NoError(t, err)

	assert.Equal(t, "2.5", tariff.DailyRate.String())
	assert.Equal(t, "0.015", tariff.PenaltyRate.String())
	assert.Equal(t, watertax.AverageMonth, tariff.MonthLength)
	assert.Equal(t, generic.Date(2027, time.March, 31), tariff.Schedule[3].DueDate)

	// 2.5 x 91 = 227.50 for Q1.
	e, err := watertax.NewEngine(tariff)
	require.NoError(t, err)
	r, err := e.CalculateQuarterPenalty(watertax.WaterTaxState{}, watertax.Q1, generic.Date(2027, time.July, 1))
	require.NoError(t, err)
	assert.Equal(t, "₹227.50", r.OriginalAmount.String())
	assert.Equal(t, 1, r.MonthsDelayed)
	// 227.5 x 0.015 = 3.4125 -> 3.41
	assert.Equal(t, "₹3.41", r.PenaltyAmount.String())
	assert.Equal(t, "₹230.91", r.TotalAmount.String())
}

func TestParseTariff_EmptyDocumentIsDefault(t *testing.T) {
	tariff, err := ParseTariff([]byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, watertax.DefaultTariff(), tariff)
}

func TestParseTariff_JSON(t *testing.T) {
	tariff, err := ParseTariff([]byte(`{"penalty_rate": "0.02"}`))
	require.NoError(t, err)
	assert.Equal(t, "0.02", tariff.PenaltyRate.String())
	assert.Equal(t, "2", tariff.DailyRate.String())
}

func TestParseTariff_Rejects(t *testing.T) {
	tests := map[string]string{
		"bad yaml":          "daily_rate: [",
		"bad rate":          "daily_rate: two",
		"negative penalty":  "penalty_rate: -0.01",
		"zero month":        "month_length_days: 0",
		"huge month":        "month_length_days: 200000",
		"three quarters":    "quarters: [{key: q1, name: a, days: 1, due_date: 2025-01-01}, {key: q2, name: b, days: 1, due_date: 2025-01-01}, {key: q3, name: c, days: 1, due_date: 2025-01-01}]",
		"duplicate quarter": "quarters: [{key: q1, name: a, days: 1, due_date: 2025-01-01}, {key: q1, name: b, days: 1, due_date: 2025-01-01}, {key: q3, name: c, days: 1, due_date: 2025-01-01}, {key: q4, name: d, days: 1, due_date: 2025-01-01}]",
		"unknown quarter":   "quarters: [{key: q1, name: a, days: 1, due_date: 2025-01-01}, {key: q2, name: b, days: 1, due_date: 2025-01-01}, {key: q3, name: c, days: 1, due_date: 2025-01-01}, {key: q9, name: d, days: 1, due_date: 2025-01-01}]",
		"zero days":         "quarters: [{key: q1, name: a, days: 0, due_date: 2025-01-01}, {key: q2, name: b, days: 1, due_date: 2025-01-01}, {key: q3, name: c, days: 1, due_date: 2025-01-01}, {key: q4, name: d, days: 1, due_date: 2025-01-01}]",
		"bad due date":      "quarters: [{key: q1, name: a, days: 1, due_date: 30-06-2025}, {key: q2, name: b, days: 1, due_date: 2025-01-01}, {key: q3, name: c, days: 1, due_date: 2025-01-01}, {key: q4, name: d, days: 1, due_date: 2025-01-01}]",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTariff([]byte(doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, generic.ErrInvalidTariff), err.Error())
		})
	}
}

func TestParseTariff_MonthLengthOutOfRange(t *testing.T) {
	_, err := ParseTariff([]byte("month_length_days: 200000"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	tariff, err := ParseTariff([]byte("month_length_days: 366"))
	require.NoError(t, err)
	assert.Equal(t, 366*24*time.Hour, tariff.MonthLength)
}

func TestDocFromTariff_RoundTrip(t *testing.T) {
	doc := DocFromTariff(watertax.DefaultTariff())
	assert.Equal(t, "30.44", *doc.MonthLengthDays)

	data, err := yaml.Marshal(doc)
	require.NoError(t, err)

	back, err := ParseTariff(data)
	require.NoError(t, err)
	assert.Equal(t, watertax.DefaultTariff().Schedule, back.Schedule)
	assert.True(t, back.DailyRate.Equal(watertax.DefaultDailyRate))
	assert.Equal(t, watertax.AverageMonth, back.MonthLength)
}

func TestLoadTariffFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tariff.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fy2026), 0o600))

	tariff, err := LoadTariffFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Q2 (July-September)", tariff.Schedule[1].DisplayName)

	_, err = LoadTariffFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
