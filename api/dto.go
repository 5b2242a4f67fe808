/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. The engine's own
  result types (watertax.PenaltyResult, Summary, Breakdown) already carry
  JSON tags and are returned as-is; the types here wrap request input.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response: Response wrappers

TIME INPUT:
  as_of / paid_at accept RFC3339 or YYYY-MM-DD. When omitted the server
  clock is used. Pass them explicitly for reproducible results.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - watertax/types.go: Result types
*/
package api

import (
	"github.com/municipal/watertax/factory"
	"github.com/municipal/watertax/generic"
	"github.com/municipal/watertax/reminders"
	"github.com/municipal/watertax/watertax"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// StateRequest carries a snapshot and the instant to evaluate it at.
type StateRequest struct {
	State watertax.WaterTaxState `json:"state"`
	AsOf  string                 `json:"as_of,omitempty"`
}

// ReminderRequest asks for the reminder text of one citizen.
type ReminderRequest struct {
	State        watertax.WaterTaxState `json:"state"`
	CustomerName string                 `json:"customer_name"`
	AsOf         string                 `json:"as_of,omitempty"`
}

// FullYearQuarter is the quarter value that pays every unpaid quarter.
const FullYearQuarter = "full"

// PaymentRequest records a completed quarter payment.
type PaymentRequest struct {
	State         watertax.WaterTaxState `json:"state"`
	Quarter       string                 `json:"quarter"`
	Period        string                 `json:"period,omitempty"`
	Amount        *generic.Money         `json:"amount,omitempty"`
	PaidAt        string                 `json:"paid_at,omitempty"`
	ReceiptNumber string                 `json:"receipt_number,omitempty"`
	TransactionID string                 `json:"transaction_id,omitempty"`
	PaymentMethod string                 `json:"payment_method,omitempty"`
	PhoneNumber   string                 `json:"phone_number,omitempty"`
}

// PaymentResponse is the recorded quarter payment.
type PaymentResponse struct {
	watertax.PaymentOutcome
	ConfirmationSent bool `json:"confirmation_sent"`
}

// FullYearPaymentResponse is the recorded full-year payment.
type FullYearPaymentResponse struct {
	watertax.FullYearPaymentOutcome
	ConfirmationSent bool `json:"confirmation_sent"`
}

// ProjectionRequest asks how dues grow over the coming months.
type ProjectionRequest struct {
	State watertax.WaterTaxState `json:"state"`
	AsOf  string                 `json:"as_of,omitempty"`
	Steps int                    `json:"steps"`
}

// AccountsRequest carries a batch of accounts for reminder planning.
type AccountsRequest struct {
	Accounts []reminders.Account `json:"accounts"`
	AsOf     string              `json:"as_of,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ReminderResponse is the reminder decision for one citizen.
type ReminderResponse struct {
	Send    bool   `json:"send"`
	Message string `json:"message,omitempty"`
}

// PlanResponse lists the reminders that would be sent.
type PlanResponse struct {
	AsOf      string               `json:"as_of"`
	Reminders []reminders.Reminder `json:"reminders"`
}

// SendResponse is the outcome of a dispatch run.
type SendResponse struct {
	AsOf    string                `json:"as_of"`
	Result  reminders.BatchResult `json:"result"`
	Message string                `json:"message"`
}

// ProjectionResponse lists the projected aggregate at each step.
type ProjectionResponse struct {
	Points []watertax.ProjectionPoint `json:"points"`
}

// TariffResponse describes the tariff the engine runs with.
type TariffResponse struct {
	Tariff       factory.TariffDoc `json:"tariff"`
	AnnualAmount generic.Money     `json:"annual_amount"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}
