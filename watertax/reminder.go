package watertax

import (
	"fmt"
	"strings"
	"time"
)

const reminderSignature = "Pay online at municipal portal to avoid further penalties. - Municipal Corporation"

// ReminderClause renders the water-tax part of a reminder from a summary:
// the pending quarters with their totals, penalty details where a penalty
// applies, and the grand total. It returns "" when nothing is due.
func ReminderClause(summary Summary) string {
	if summary.TotalAmount.IsZero() {
		return ""
	}

	var b strings.Builder
	pending := summary.Pending()
	if len(pending) > 0 {
		b.WriteString("Pending quarters: ")
		for i, r := range pending {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s (%s", r.QuarterName, r.TotalAmount)
			if r.HasPenalty {
				fmt.Fprintf(&b, " incl. %s penalty for %d %s delay",
					r.PenaltyAmount, r.MonthsDelayed, pluralMonths(r.MonthsDelayed))
			}
			b.WriteString(")")
		}
		b.WriteString(". ")
	}

	fmt.Fprintf(&b, "Total Due: %s", summary.TotalAmount)
	if summary.HasAnyPenalty {
		fmt.Fprintf(&b, " (%s + %s penalty)", summary.TotalOriginalAmount, summary.TotalPenaltyAmount)
	}
	return b.String()
}

func pluralMonths(n int) string {
	if n == 1 {
		return "month"
	}
	return "months"
}

// GenerateReminderText builds the SMS reminder for a citizen. The boolean
// is false when nothing is pending and no reminder should be sent.
func (e Engine) GenerateReminderText(state WaterTaxState, customerName string, at time.Time) (string, bool, error) {
	summary, err := e.CalculateAllQuartersTotal(state, at)
	if err != nil {
		return "", false, err
	}
	clause := ReminderClause(summary)
	if clause == "" {
		return "", false, nil
	}
	return fmt.Sprintf("Dear %s, Water Tax Reminder: %s. %s", customerName, clause, reminderSignature), true, nil
}

// GenerateReminderText uses DefaultTariff. The default schedule is always
// complete, so the error is dropped.
func GenerateReminderText(state WaterTaxState, customerName string, at time.Time) (string, bool) {
	text, ok, _ := DefaultEngine().GenerateReminderText(state, customerName, at)
	return text, ok
}
