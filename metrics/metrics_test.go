package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCalculation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCalculation("quarter_penalty", time.Now(), nil)
	m.ObserveCalculation("quarter_penalty", time.Now(), errors.New("invalid quarter"))
	m.ObserveCalculation("summary", time.Now(), nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CalculationsTotal.WithLabelValues("quarter_penalty", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CalculationsTotal.WithLabelValues("quarter_penalty", ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CalculationsTotal.WithLabelValues("summary", ResultSuccess)))
}

func TestObservePenalisedAndReminders(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObservePenalised(3)
	m.ObservePenalised(0)
	m.ObserveReminder(nil)
	m.ObserveReminder(errors.New("gateway down"))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.PenalisedQuarters))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemindersTotal.WithLabelValues(ResultError)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCalculation("summary", time.Now(), nil)
		m.ObservePenalised(1)
		m.ObserveReminder(nil)
	})
}
