package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "watertax_"

	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics bundles the engine and reminder metrics.
type Metrics struct {
	CalculationsTotal  *prometheus.CounterVec
	CalculationLatency *prometheus.HistogramVec
	PenalisedQuarters  prometheus.Counter
	RemindersTotal     *prometheus.CounterVec
}

// New constructs the metrics and registers them on reg. Pass
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CalculationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "calculations_total",
				Help: "Total engine calculations by operation and result",
			},
			[]string{"operation", "result"},
		),
		CalculationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "calculation_latency_seconds",
				Help:    "Engine calculation latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
			[]string{"operation"},
		),
		PenalisedQuarters: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "penalised_quarters_total",
			Help: "Total quarter evaluations that carried a late penalty",
		}),
		RemindersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reminders_total",
				Help: "Total reminder dispatch attempts by result",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(
		m.CalculationsTotal,
		m.CalculationLatency,
		m.PenalisedQuarters,
		m.RemindersTotal,
	)
	return m
}

// ObserveCalculation records one engine call. A nil receiver is a no-op.
func (m *Metrics) ObserveCalculation(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.CalculationsTotal.WithLabelValues(operation, result).Inc()
	m.CalculationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObservePenalised counts quarters that carried a penalty.
func (m *Metrics) ObservePenalised(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PenalisedQuarters.Add(float64(n))
}

// ObserveReminder records one dispatch attempt.
func (m *Metrics) ObserveReminder(err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.RemindersTotal.WithLabelValues(result).Inc()
}
