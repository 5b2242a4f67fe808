package watertax_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/municipal/watertax/generic"
	"github.com/municipal/watertax/watertax"
)

func TestProjectDues_StepsEachMonthUnit(t *testing.T) {
	engine := watertax.DefaultEngine()

	points, err := engine.ProjectDues(watertax.WaterTaxState{}, watertax.ProjectionInput{
		From:  date(2026, time.June, 30),
		Steps: 2,
	})
	require.NoError(t, err)
	require.Len(t, points, 3)

	// Grace boundary itself carries no penalty.
	assertMoney(t, "730.00", points[0].TotalAmount)
	assert.Equal(t, 0, points[0].QuartersPenalised)

	assert.Equal(t, date(2026, time.June, 30).Add(watertax.AverageMonth), points[1].At)
	assertMoney(t, "1.82", points[1].TotalPenaltyAmount)
	assertMoney(t, "731.82", points[1].TotalAmount)

	// Q2's grace period is still running.
	assertMoney(t, "3.64", points[2].TotalPenaltyAmount)
	assertMoney(t, "733.64", points[2].TotalAmount)
	assert.Equal(t, 1, points[2].QuartersPenalised)
}

func TestProjectDues_PaidStateStaysZero(t *testing.T) {
	points, err := watertax.DefaultEngine().ProjectDues(
		paidState(watertax.Quarters()...),
		watertax.ProjectionInput{From: date(2027, time.January, 1), Steps: 5, Interval: 24 * time.Hour * 90},
	)
	require.NoError(t, err)
	for _, p := range points {
		assert.True(t, p.TotalAmount.IsZero())
	}
}

func TestProjectDues_RejectsBadInput(t *testing.T) {
	engine := watertax.DefaultEngine()

	_, err := engine.ProjectDues(watertax.WaterTaxState{}, watertax.ProjectionInput{Steps: watertax.MaxProjectionSteps + 1})
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)

	_, err = engine.ProjectDues(watertax.WaterTaxState{}, watertax.ProjectionInput{Steps: 1, Interval: -time.Hour})
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
}
