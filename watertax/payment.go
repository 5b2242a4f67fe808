package watertax

import (
	"fmt"
	"time"

	"github.com/municipal/watertax/generic"
)

// ReceiptPrefix starts every water-tax receipt number.
const ReceiptPrefix = "WTR"

// NewReceiptNumber derives a receipt number from the payment instant.
func NewReceiptNumber(at time.Time) string {
	return fmt.Sprintf("%s%d", ReceiptPrefix, at.UnixMilli())
}

// Payment describes a completed quarter payment reported by the payment
// gateway.
type Payment struct {
	Period        string
	Amount        generic.Money // zero means "the computed total"
	PaidAt        time.Time
	Receipt       string // generated from PaidAt when empty
	TransactionID string
	Method        string
}

// PaymentOutcome is the updated state plus what was appended to it.
type PaymentOutcome struct {
	State   WaterTaxState  `json:"state"`
	Result  PenaltyResult  `json:"calculation"`
	Payment PaymentRecord  `json:"payment"`
	Penalty *PenaltyRecord `json:"penalty,omitempty"`
}

// FullYearPaymentOutcome is the updated state after every unpaid quarter
// was settled under one receipt.
type FullYearPaymentOutcome struct {
	State     WaterTaxState   `json:"state"`
	Period    string          `json:"period"`
	Receipt   string          `json:"receipt_number"`
	Amount    generic.Money   `json:"amount"`
	Quarters  []Quarter       `json:"quarters"`
	Payments  []PaymentRecord `json:"payments"`
	Penalties []PenaltyRecord `json:"penalties,omitempty"`
}

// FullYearPeriod labels a full-year payment made at t, e.g. "Full Year 2025-26".
func FullYearPeriod(t time.Time) string {
	return "Full Year " + generic.FiscalYearLabel(generic.FiscalYearFor(t))
}

// ConfirmationText is the SMS sent to the citizen once a payment is recorded.
func ConfirmationText(amount generic.Money, period, receipt string) string {
	return fmt.Sprintf("Thank you! Your water tax of %s for %s has been paid successfully. Receipt No: %s - Municipal Corporation",
		amount.Round2(), period, receipt)
}

// RecordPayment computes the original/penalty split of q at p.PaidAt and
// returns a copy of state with the quarter settled. The input state is not
// modified; persisting the outcome is up to the caller.
func (e Engine) RecordPayment(state WaterTaxState, q Quarter, p Payment) (PaymentOutcome, error) {
	if !q.Valid() {
		return PaymentOutcome{}, &generic.InvalidQuarterError{Quarter: string(q)}
	}
	if err := checkPayment(state, p); err != nil {
		return PaymentOutcome{}, err
	}
	if state.IsPaid(q) {
		return PaymentOutcome{}, fmt.Errorf("%w: %s (receipt %s)", generic.ErrQuarterAlreadyPaid, q, state.Receipt(q))
	}

	result, err := e.CalculateQuarterPenalty(state, q, p.PaidAt)
	if err != nil {
		return PaymentOutcome{}, err
	}

	receipt := p.Receipt
	if receipt == "" {
		receipt = NewReceiptNumber(p.PaidAt)
	}
	amount := p.Amount
	if amount.IsZero() {
		amount = result.TotalAmount
	}
	period := p.Period
	if period == "" {
		period = result.QuarterName + " " + generic.FiscalYearLabel(generic.FiscalYearFor(result.DueDate))
	}

	next := state.Clone()
	pay, pen := settle(&next, result, p, receipt, period, amount)

	return PaymentOutcome{State: next, Result: result, Payment: pay, Penalty: pen}, nil
}

// RecordFullYearPayment settles every unpaid quarter at p.PaidAt under a
// single receipt. Each quarter is recorded at its own computed total; the
// outcome amount is p.Amount, or the sum of those totals when zero.
func (e Engine) RecordFullYearPayment(state WaterTaxState, p Payment) (FullYearPaymentOutcome, error) {
	if err := checkPayment(state, p); err != nil {
		return FullYearPaymentOutcome{}, err
	}

	summary, err := e.CalculateAllQuartersTotal(state, p.PaidAt)
	if err != nil {
		return FullYearPaymentOutcome{}, err
	}
	pending := summary.Pending()
	if len(pending) == 0 {
		return FullYearPaymentOutcome{}, fmt.Errorf("%w: all quarters", generic.ErrQuarterAlreadyPaid)
	}

	receipt := p.Receipt
	if receipt == "" {
		receipt = NewReceiptNumber(p.PaidAt)
	}
	period := p.Period
	if period == "" {
		period = FullYearPeriod(p.PaidAt)
	}

	out := FullYearPaymentOutcome{Period: period, Receipt: receipt}
	next := state.Clone()
	for _, r := range pending {
		pay, pen := settle(&next, r, p, receipt, period, r.TotalAmount)
		out.Quarters = append(out.Quarters, r.Quarter)
		out.Payments = append(out.Payments, pay)
		if pen != nil {
			out.Penalties = append(out.Penalties, *pen)
		}
	}

	out.Amount = p.Amount.Round2()
	if p.Amount.IsZero() {
		out.Amount = summary.TotalAmount
	}
	out.State = next
	return out, nil
}

func checkPayment(state WaterTaxState, p Payment) error {
	if p.Amount.IsNegative() {
		return fmt.Errorf("%w: %s", generic.ErrInvalidAmount, p.Amount)
	}
	return state.Validate()
}

// settle marks r's quarter paid on next and appends its history entries.
func settle(next *WaterTaxState, r PenaltyResult, p Payment, receipt, period string, amount generic.Money) (PaymentRecord, *PenaltyRecord) {
	next.markPaid(r.Quarter, receipt)
	paidAt := p.PaidAt
	next.LastPaidDate = &paidAt

	var pen *PenaltyRecord
	if r.PenaltyAmount.IsPositive() {
		rec := PenaltyRecord{
			Quarter:        r.Quarter,
			OriginalAmount: r.OriginalAmount,
			PenaltyAmount:  r.PenaltyAmount,
			MonthsDelayed:  r.MonthsDelayed,
			CalculatedDate: p.PaidAt,
			PaidDate:       p.PaidAt,
		}
		next.PenaltyHistory = append(next.PenaltyHistory, rec)
		pen = &rec
	}

	pay := PaymentRecord{
		Period:         period,
		Amount:         amount.Round2(),
		PaidDate:       p.PaidAt,
		DueDate:        generic.AddMonths(p.PaidAt, 3),
		ReceiptNumber:  receipt,
		Quarter:        r.Quarter,
		PenaltyAmount:  r.PenaltyAmount,
		OriginalAmount: r.OriginalAmount,
		TransactionID:  p.TransactionID,
		PaymentMethod:  p.Method,
	}
	next.PaymentHistory = append(next.PaymentHistory, pay)
	return pay, pen
}
