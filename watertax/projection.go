/*
projection.go - Future dues projection

PURPOSE:
  Answers "what will I owe if I pay later?" by evaluating the same
  snapshot at a series of future instants. Nothing is recorded; the
  projection is CalculateAllQuartersTotal run repeatedly.

KEY INSIGHT:
  Penalties step once per month unit past each quarter's grace period, so
  sampling the snapshot one month unit apart shows every step. Quarters
  whose grace period has not ended yet stay flat until it does.

EXAMPLE:
  points, _ := engine.ProjectDues(state, watertax.ProjectionInput{
      From:  generic.Date(2026, time.July, 1),
      Steps: 3,
  })
  // points[0] at From, points[1] one month unit later, ...

SEE ALSO:
  - penalty.go: The calculation being sampled
*/
package watertax

import (
	"fmt"
	"time"

	"github.com/municipal/watertax/generic"
)

// MaxProjectionSteps bounds a single projection.
const MaxProjectionSteps = 36

// ProjectionInput configures a projection.
type ProjectionInput struct {
	From time.Time
	// Steps is the number of samples after From. Zero means From only.
	Steps int
	// Interval between samples; the tariff month length when zero.
	Interval time.Duration
}

// ProjectionPoint is the aggregate due at one instant.
type ProjectionPoint struct {
	At                 time.Time     `json:"at"`
	TotalAmount        generic.Money `json:"total_amount"`
	TotalPenaltyAmount generic.Money `json:"total_penalty_amount"`
	QuartersPenalised  int           `json:"quarters_penalised"`
}

// ProjectDues samples the aggregate due for state from in.From forward.
func (e Engine) ProjectDues(state WaterTaxState, in ProjectionInput) ([]ProjectionPoint, error) {
	if in.Steps < 0 || in.Steps > MaxProjectionSteps {
		return nil, fmt.Errorf("%w: projection steps %d not in 0..%d", generic.ErrInvalidPeriod, in.Steps, MaxProjectionSteps)
	}
	interval := in.Interval
	if interval == 0 {
		interval = e.monthLength()
	}
	if interval < 0 {
		return nil, fmt.Errorf("%w: negative projection interval", generic.ErrInvalidPeriod)
	}

	points := make([]ProjectionPoint, 0, in.Steps+1)
	for i := 0; i <= in.Steps; i++ {
		at := in.From.Add(time.Duration(i) * interval)
		summary, err := e.CalculateAllQuartersTotal(state, at)
		if err != nil {
			return nil, err
		}

		penalised := 0
		for _, r := range summary.Pending() {
			if r.HasPenalty {
				penalised++
			}
		}
		points = append(points, ProjectionPoint{
			At:                 at,
			TotalAmount:        summary.TotalAmount,
			TotalPenaltyAmount: summary.TotalPenaltyAmount,
			QuartersPenalised:  penalised,
		})
	}
	return points, nil
}
