package watertax

import (
	"github.com/municipal/watertax/generic"
)

// IsPaid reports the paid flag of q. Unknown quarters are never paid.
func (s WaterTaxState) IsPaid(q Quarter) bool {
	switch q {
	case Q1:
		return s.Q1Paid
	case Q2:
		return s.Q2Paid
	case Q3:
		return s.Q3Paid
	case Q4:
		return s.Q4Paid
	default:
		return false
	}
}

// Receipt returns the receipt number of q, empty while unpaid.
func (s WaterTaxState) Receipt(q Quarter) string {
	switch q {
	case Q1:
		return s.Q1Receipt
	case Q2:
		return s.Q2Receipt
	case Q3:
		return s.Q3Receipt
	case Q4:
		return s.Q4Receipt
	default:
		return ""
	}
}

// markPaid sets the paid flag and receipt of q on the receiver.
// Only called on a private copy.
func (s *WaterTaxState) markPaid(q Quarter, receipt string) {
	switch q {
	case Q1:
		s.Q1Paid, s.Q1Receipt = true, receipt
	case Q2:
		s.Q2Paid, s.Q2Receipt = true, receipt
	case Q3:
		s.Q3Paid, s.Q3Receipt = true, receipt
	case Q4:
		s.Q4Paid, s.Q4Receipt = true, receipt
	}
}

// PaidCount is the number of quarters with the paid flag set.
func (s WaterTaxState) PaidCount() int {
	n := 0
	for _, q := range Quarters() {
		if s.IsPaid(q) {
			n++
		}
	}
	return n
}

// Status derives the overall collection status from the paid flags.
func (s WaterTaxState) Status() Status {
	switch s.PaidCount() {
	case 0:
		return StatusPending
	case NumQuarters:
		return StatusPaid
	default:
		return StatusPartial
	}
}

// Clone returns a deep copy with fresh history slices.
func (s WaterTaxState) Clone() WaterTaxState {
	out := s
	if s.LastPaidDate != nil {
		t := *s.LastPaidDate
		out.LastPaidDate = &t
	}
	if s.PenaltyHistory != nil {
		out.PenaltyHistory = append([]PenaltyRecord(nil), s.PenaltyHistory...)
	}
	if s.PaymentHistory != nil {
		out.PaymentHistory = append([]PaymentRecord(nil), s.PaymentHistory...)
	}
	return out
}

// Validate checks that each quarter is flagged paid if and only if the
// payment history holds an entry for it.
func (s WaterTaxState) Validate() error {
	recorded := make(map[Quarter]bool, NumQuarters)
	for _, p := range s.PaymentHistory {
		if p.Quarter == "" {
			continue
		}
		if !p.Quarter.Valid() {
			return &generic.InvalidQuarterError{Quarter: string(p.Quarter)}
		}
		recorded[p.Quarter] = true
	}

	for _, q := range Quarters() {
		switch {
		case s.IsPaid(q) && !recorded[q]:
			return &generic.StateError{Quarter: string(q), Reason: "flagged paid without a payment record"}
		case !s.IsPaid(q) && recorded[q]:
			return &generic.StateError{Quarter: string(q), Reason: "payment recorded but not flagged paid"}
		}
	}
	return nil
}
