// Package watertax implements the quarterly water-tax penalty engine.
// It computes dues, late penalties and totals from a citizen's tax-state
// snapshot and an explicit reference time, using the generic money and
// date primitives.
package watertax

import (
	"time"

	"github.com/municipal/watertax/generic"
)

// =============================================================================
// QUARTERS
// =============================================================================

// Quarter is a fiscal-year billing quarter key.
type Quarter string

const (
	Q1 Quarter = "q1"
	Q2 Quarter = "q2"
	Q3 Quarter = "q3"
	Q4 Quarter = "q4"
)

// NumQuarters is the number of billing quarters in a fiscal year.
const NumQuarters = 4

// Quarters returns the four quarters in billing order.
func Quarters() []Quarter { return []Quarter{Q1, Q2, Q3, Q4} }

// index maps a quarter onto its schedule slot, or -1 when unknown.
func (q Quarter) index() int {
	switch q {
	case Q1:
		return 0
	case Q2:
		return 1
	case Q3:
		return 2
	case Q4:
		return 3
	default:
		return -1
	}
}

// Valid reports whether q is one of q1..q4.
func (q Quarter) Valid() bool { return q.index() >= 0 }

// String returns the quarter key, e.g. "q1".
func (q Quarter) String() string { return string(q) }

// ParseQuarter validates a raw quarter key.
func ParseQuarter(s string) (Quarter, error) {
	q := Quarter(s)
	if !q.Valid() {
		return "", &generic.InvalidQuarterError{Quarter: s}
	}
	return q, nil
}

// QuarterConfig is one row of the fixed quarterly schedule.
type QuarterConfig struct {
	Quarter     Quarter   `json:"quarter" yaml:"key"`
	DisplayName string    `json:"name" yaml:"name"`
	Days        int       `json:"days" yaml:"days"`
	DueDate     time.Time `json:"due_date" yaml:"-"`
}

// BillingPeriod is the run of days the quarter charges for, ending on the
// due date.
func (c QuarterConfig) BillingPeriod() generic.Period {
	return generic.Period{Start: c.DueDate.AddDate(0, 0, -(c.Days - 1)), End: c.DueDate}
}

// =============================================================================
// TAX STATE - The citizen's water-tax billing record (read-only here)
// =============================================================================

// WaterTaxState is the snapshot of a citizen's water-tax record. The
// engine never modifies it; RecordPayment returns an updated copy.
type WaterTaxState struct {
	Q1Paid bool `json:"q1_paid"`
	Q2Paid bool `json:"q2_paid"`
	Q3Paid bool `json:"q3_paid"`
	Q4Paid bool `json:"q4_paid"`

	Q1Receipt string `json:"q1_receipt"`
	Q2Receipt string `json:"q2_receipt"`
	Q3Receipt string `json:"q3_receipt"`
	Q4Receipt string `json:"q4_receipt"`

	LastPaidDate *time.Time `json:"last_paid_date,omitempty"`

	PenaltyHistory []PenaltyRecord `json:"penalty_history"`
	PaymentHistory []PaymentRecord `json:"payment_history"`
}

// PenaltyRecord is appended when a payment settles a penalised quarter.
type PenaltyRecord struct {
	Quarter        Quarter       `json:"quarter"`
	OriginalAmount generic.Money `json:"original_amount"`
	PenaltyAmount  generic.Money `json:"penalty_amount"`
	MonthsDelayed  int           `json:"months_delayed"`
	CalculatedDate time.Time     `json:"calculated_date"`
	PaidDate       time.Time     `json:"paid_date"`
}

// PaymentRecord is appended for every completed quarter payment.
type PaymentRecord struct {
	Period         string        `json:"period"`
	Amount         generic.Money `json:"amount"`
	PaidDate       time.Time     `json:"paid_date"`
	DueDate        time.Time     `json:"due_date"`
	ReceiptNumber  string        `json:"receipt_number"`
	Quarter        Quarter       `json:"quarter"`
	PenaltyAmount  generic.Money `json:"penalty_amount"`
	OriginalAmount generic.Money `json:"original_amount"`
	TransactionID  string        `json:"transaction_id,omitempty"`
	PaymentMethod  string        `json:"payment_method,omitempty"`
}

// Status is the overall water-tax collection status.
type Status string

const (
	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

// =============================================================================
// RESULTS - Produced fresh on every call, never persisted by the engine
// =============================================================================

// PenaltyResult is the engine's answer for one quarter.
type PenaltyResult struct {
	Quarter        Quarter        `json:"quarter"`
	QuarterName    string         `json:"quarter_name"`
	HasPenalty     bool           `json:"has_penalty"`
	OriginalAmount generic.Money  `json:"original_amount"`
	PenaltyAmount  generic.Money  `json:"penalty_amount"`
	TotalAmount    generic.Money  `json:"total_amount"`
	MonthsDelayed  int            `json:"months_delayed"`
	DueDate        time.Time      `json:"due_date"`
	GracePeriodEnd time.Time      `json:"grace_period_end"`
	BillingPeriod  generic.Period `json:"billing_period"`
	CurrentDate    time.Time      `json:"current_date"`
	Paid           bool           `json:"paid"`
}

// Summary aggregates all four quarters. Totals cover unpaid quarters only;
// Quarters still lists every quarter, paid ones at their flat amount.
type Summary struct {
	Quarters            []PenaltyResult `json:"quarter_details"`
	TotalOriginalAmount generic.Money   `json:"total_original_amount"`
	TotalPenaltyAmount  generic.Money   `json:"total_penalty_amount"`
	TotalAmount         generic.Money   `json:"total_amount"`
	HasAnyPenalty       bool            `json:"has_any_penalty"`
}

// Pending returns the per-quarter results of unpaid quarters.
func (s Summary) Pending() []PenaltyResult {
	out := make([]PenaltyResult, 0, len(s.Quarters))
	for _, r := range s.Quarters {
		if !r.Paid {
			out = append(out, r)
		}
	}
	return out
}

// Breakdown is the summary plus quarter counts for dashboards.
type Breakdown struct {
	Summary
	PendingQuarters []PenaltyResult `json:"pending_quarters"`
	Counts          BreakdownCounts `json:"summary"`
}

// BreakdownCounts tallies quarters by payment and penalty status.
type BreakdownCounts struct {
	TotalQuarters       int `json:"total_quarters"`
	PaidQuarters        int `json:"paid_quarters"`
	PendingQuarters     int `json:"pending_quarters"`
	QuartersWithPenalty int `json:"quarters_with_penalty"`
}
