package watertax_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/municipal/watertax/watertax"
)

func TestReminder_AllPaid_NoReminder(t *testing.T) {
	text, ok := watertax.GenerateReminderText(paidState(watertax.Quarters()...), "Asha", date(2030, time.January, 1))
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestReminder_PendingWithoutPenalty(t *testing.T) {
	text, ok := watertax.GenerateReminderText(paidState(watertax.Q1, watertax.Q2), "Asha", date(2025, time.December, 1))
	require.True(t, ok)

	assert.Contains(t, text, "Dear Asha, Water Tax Reminder: ")
	assert.Contains(t, text, "Q3 (October-December) (₹184.00)")
	assert.Contains(t, text, "Q4 (January-March) (₹180.00)")
	assert.Contains(t, text, "Total Due: ₹364.00.")
	assert.NotContains(t, text, "Q1 (April-June)")
	assert.NotContains(t, text, "penalty)")
	assert.Contains(t, text, "- Municipal Corporation")
}

func TestReminder_PenaltyDetails(t *testing.T) {
	// Only Q1 pending, 46 days past its grace period.
	state := paidState(watertax.Q2, watertax.Q3, watertax.Q4)
	text, ok := watertax.GenerateReminderText(state, "Ravi", date(2026, time.August, 15))
	require.True(t, ok)

	assert.Contains(t, text, "Q1 (April-June) (₹185.64 incl. ₹3.64 penalty for 2 months delay)")
	assert.Contains(t, text, "Total Due: ₹185.64 (₹182.00 + ₹3.64 penalty)")
}

func TestReminder_SingleMonthWording(t *testing.T) {
	state := paidState(watertax.Q2, watertax.Q3, watertax.Q4)
	text, ok := watertax.GenerateReminderText(state, "Ravi", date(2026, time.July, 1))
	require.True(t, ok)

	assert.Contains(t, text, "incl. ₹1.82 penalty for 1 month delay")
}

func TestReminderClause_EmptyWhenNothingDue(t *testing.T) {
	s, err := watertax.CalculateAllQuartersTotal(paidState(watertax.Quarters()...), date(2026, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, "", watertax.ReminderClause(s))
}
