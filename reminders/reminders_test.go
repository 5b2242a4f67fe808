package reminders

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/municipal/watertax/generic"
	"github.com/municipal/watertax/metrics"
	"github.com/municipal/watertax/watertax"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) time.Time {
	return generic.Date(year, month, day)
}

func allPaid() watertax.WaterTaxState {
	s := watertax.WaterTaxState{Q1Paid: true, Q2Paid: true, Q3Paid: true, Q4Paid: true}
	for _, q := range watertax.Quarters() {
		s.PaymentHistory = append(s.PaymentHistory, watertax.PaymentRecord{Quarter: q})
	}
	return s
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("rem-%d", n)
	}
}

type recordingSender struct {
	sent []string
	fail map[string]error
}

func (s *recordingSender) Send(ctx context.Context, phone, message string) (string, error) {
	if err := s.fail[phone]; err != nil {
		return "", err
	}
	s.sent = append(s.sent, phone)
	return "msg-" + phone, nil
}

// =============================================================================
// PLANNER
// =============================================================================

func TestPlan_SkipsAccountsWithNothingDue(t *testing.T) {
	p := &Planner{Engine: watertax.DefaultEngine(), NewID: sequentialIDs()}

	accounts := []Account{
		{ID: "c-1", Name: "Asha", Phone: "98765 43210", WaterTax: allPaid(),
			PropertyTax: PropertyTax{Amount: generic.NewMoneyFromInt(1200), Status: "paid"}},
		{ID: "c-2", Name: "Ravi", Phone: "9123456780", WaterTax: watertax.WaterTaxState{}},
	}

	got, err := p.Plan(accounts, date(2025, time.July, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)

	r := got[0]
	assert.Equal(t, "rem-1", r.ID)
	assert.Equal(t, generic.CitizenID("c-2"), r.AccountID)
	assert.Equal(t, "₹730.00", r.WaterTaxDue.String())
	assert.Equal(t, "₹730.00", r.TotalDue.String())
	assert.False(t, r.HasPenalty)
	assert.Contains(t, r.Message, "Water Tax: Pending quarters: Q1 (April-June) (₹182.00)")
	assert.Contains(t, r.Message, "Due date: 30th September 2025.")
	assert.NotContains(t, r.Message, "Property Tax")
}

func TestPlan_PropertyAndWaterWithPenalty(t *testing.T) {
	p := &Planner{Engine: watertax.DefaultEngine(), NewID: sequentialIDs()}

	state := allPaid()
	state.Q1Paid = false
	state.PaymentHistory = state.PaymentHistory[1:]

	r, ok, err := p.PlanAccount(Account{
		ID:          "c-3",
		Name:        "Meena",
		Phone:       "+91 99999 00000",
		PropertyTax: PropertyTax{Amount: generic.NewMoneyFromInt(1200), Status: "pending"},
		WaterTax:    state,
	}, date(2026, time.August, 15))
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, r.HasPenalty)
	assert.Equal(t, "₹1385.64", r.TotalDue.String())
	assert.Equal(t,
		"Property Tax: ₹1200.00 is pending. "+
			"Water Tax: Pending quarters: Q1 (April-June) (₹185.64 incl. ₹3.64 penalty for 2 months delay). "+
			"Total Due: ₹185.64 (₹182.00 + ₹3.64 penalty). "+
			"Due date: 30th September 2026. "+
			"Pay online at municipal portal to avoid further penalties. - Municipal Corporation",
		r.Message)
}

func TestOrdinalDate(t *testing.T) {
	assert.Equal(t, "31st March 2026", OrdinalDate(date(2026, time.March, 31)))
	assert.Equal(t, "30th September 2025", OrdinalDate(date(2025, time.September, 30)))
	assert.Equal(t, "2nd May 2025", OrdinalDate(date(2025, time.May, 2)))
	assert.Equal(t, "13th May 2025", OrdinalDate(date(2025, time.May, 13)))
	assert.Equal(t, "23rd May 2025", OrdinalDate(date(2025, time.May, 23)))
}

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone("98765-43210")
	require.NoError(t, err)
	assert.Equal(t, "9876543210", got)

	_, err = NormalizePhone("12345")
	assert.ErrorIs(t, err, generic.ErrInvalidPhone)
}

// =============================================================================
// DISPATCHER
// =============================================================================

func TestDispatch_CountsFailuresAndContinues(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := metrics.New(prometheus.NewRegistry())
	sender := &recordingSender{fail: map[string]error{"9000000002": errors.New("gateway rejected")}}
	d := NewDispatcher(sender, 1000, 10, zap.New(core), m)

	batch := []Reminder{
		{ID: "r1", AccountID: "c-1", Phone: "9000000001", Message: "a"},
		{ID: "r2", AccountID: "c-2", Phone: "9000000002", Message: "b"},
		{ID: "r3", AccountID: "c-3", Phone: "123", Message: "c"},
		{ID: "r4", AccountID: "c-4", Phone: "90000 00004", Message: "d"},
	}

	res, err := d.Dispatch(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, "r2", res.Failures[0].ReminderID)
	assert.Equal(t, "r3", res.Failures[1].ReminderID)
	assert.Equal(t, []string{"9000000001", "9000000004"}, sender.sent)
	assert.Equal(t, "Reminders sent: 2 successful, 2 failed", res.String())

	assert.Equal(t, 2, logs.FilterMessage("Reminder sent").Len())
	assert.Equal(t, 2, logs.FilterMessage("Reminder failed").Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RemindersTotal.WithLabelValues(metrics.ResultError)))
}

func TestDispatch_StopsOnCancel(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, 1000, 1, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := d.Dispatch(ctx, []Reminder{{ID: "r1", Phone: "9000000001"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Sent)
}

func TestNotify_NormalizesAndCounts(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	sender := &recordingSender{}
	d := NewDispatcher(sender, 1000, 1, nil, m)

	id, err := d.Notify(context.Background(), "90000-00007", "paid")
	require.NoError(t, err)
	assert.Equal(t, "msg-9000000007", id)
	assert.Equal(t, []string{"9000000007"}, sender.sent)

	_, err = d.Notify(context.Background(), "12", "paid")
	assert.ErrorIs(t, err, generic.ErrInvalidPhone)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemindersTotal.WithLabelValues(metrics.ResultError)))
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	id, err := LogSender{Logger: zap.New(core)}.Send(context.Background(), "9000000001", "hello")
	require.NoError(t, err)
	assert.Contains(t, id, "log-")
	assert.Equal(t, 1, logs.FilterMessage("SMS").Len())
}
