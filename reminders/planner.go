/*
Package reminders turns tax snapshots into outbound payment reminders.

PURPOSE:
  Decides which citizens get a reminder and what it says, then hands the
  messages to a Sender at a bounded rate. The SMS gateway itself lives
  behind the Sender interface; this package never talks to a provider.

FLOW:
  1. Planner.Plan evaluates each account at one reference instant
  2. Accounts with nothing pending are skipped
  3. Dispatcher.Dispatch normalizes phones and sends, rate-limited
  4. The batch result counts sent and failed messages

MESSAGE SHAPE:
  Property Tax: ₹1200.00 is pending. Water Tax: Pending quarters: ...
  Total Due: ₹365.64 (₹362.00 + ₹3.64 penalty). Due date: 30th September
  2026. Pay online at municipal portal to avoid further penalties.
  - Municipal Corporation

SEE ALSO:
  - watertax/reminder.go: Water-tax clause
  - dispatcher.go: Rate-limited delivery
*/
package reminders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/municipal/watertax/generic"
	"github.com/municipal/watertax/watertax"
)

// =============================================================================
// ACCOUNTS
// =============================================================================

// PropertyTax is the half-yearly property-tax position of a citizen.
type PropertyTax struct {
	Amount generic.Money `json:"amount"`
	Status string        `json:"status"` // "pending" or "paid"
}

func (p PropertyTax) Pending() bool { return p.Status == "pending" && p.Amount.IsPositive() }

// Account is the subset of a citizen record the planner reads.
type Account struct {
	ID          generic.CitizenID      `json:"id"`
	Name        string                 `json:"name"`
	Phone       string                 `json:"phone_number"`
	PropertyTax PropertyTax            `json:"property_tax"`
	WaterTax    watertax.WaterTaxState `json:"water_tax"`
}

// Reminder is one planned outbound message.
type Reminder struct {
	ID             string            `json:"id"`
	AccountID      generic.CitizenID `json:"account_id"`
	Name           string            `json:"name"`
	Phone          string            `json:"phone_number"`
	Message        string            `json:"message"`
	PropertyTaxDue generic.Money     `json:"property_tax_due"`
	WaterTaxDue    generic.Money     `json:"water_tax_due"`
	TotalDue       generic.Money     `json:"total_due"`
	HasPenalty     bool              `json:"has_penalty"`
}

// =============================================================================
// PLANNER
// =============================================================================

const signature = "Pay online at municipal portal to avoid further penalties. - Municipal Corporation"

// Planner builds reminders with one engine.
type Planner struct {
	Engine watertax.Engine
	// NewID generates reminder IDs; uuid.NewString when nil.
	NewID func() string
}

func NewPlanner(engine watertax.Engine) *Planner {
	return &Planner{Engine: engine}
}

// Plan returns one reminder per account with anything pending at at.
func (p *Planner) Plan(accounts []Account, at time.Time) ([]Reminder, error) {
	out := make([]Reminder, 0, len(accounts))
	for _, a := range accounts {
		r, ok, err := p.PlanAccount(a, at)
		if err != nil {
			return nil, fmt.Errorf("plan reminder for %s: %w", a.ID, err)
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// PlanAccount builds the reminder for a single account. The boolean is
// false when the account owes nothing.
func (p *Planner) PlanAccount(a Account, at time.Time) (Reminder, bool, error) {
	var parts []string
	r := Reminder{
		AccountID:      a.ID,
		Name:           a.Name,
		Phone:          a.Phone,
		PropertyTaxDue: generic.ZeroMoney(),
		WaterTaxDue:    generic.ZeroMoney(),
	}

	if a.PropertyTax.Pending() {
		r.PropertyTaxDue = a.PropertyTax.Amount.Round2()
		parts = append(parts, fmt.Sprintf("Property Tax: %s is pending.", r.PropertyTaxDue))
	}

	if a.WaterTax.Status() != watertax.StatusPaid {
		summary, err := p.Engine.CalculateAllQuartersTotal(a.WaterTax, at)
		if err != nil {
			return Reminder{}, false, err
		}
		if clause := watertax.ReminderClause(summary); clause != "" {
			r.WaterTaxDue = summary.TotalAmount
			r.HasPenalty = summary.HasAnyPenalty
			parts = append(parts, "Water Tax: "+clause+".")
		}
	}

	if len(parts) == 0 {
		return Reminder{}, false, nil
	}

	due := generic.HalfYearFor(at).DueDate
	parts = append(parts, "Due date: "+OrdinalDate(due)+".", signature)

	r.ID = p.newID()
	r.Message = strings.Join(parts, " ")
	r.TotalDue = r.PropertyTaxDue.Add(r.WaterTaxDue).Round2()
	return r, true, nil
}

func (p *Planner) newID() string {
	if p.NewID != nil {
		return p.NewID()
	}
	return uuid.NewString()
}

// OrdinalDate renders a date as "30th September 2025".
func OrdinalDate(t time.Time) string {
	return fmt.Sprintf("%d%s %s %d", t.Day(), ordinalSuffix(t.Day()), t.Month(), t.Year())
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
