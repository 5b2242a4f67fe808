/*
handlers.go - HTTP API handlers for the water-tax engine

PURPOSE:
  Exposes the penalty engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic. Nothing is stored:
  every request carries the tax-state snapshot it wants evaluated.

ENDPOINTS:
  Water tax:
    POST   /api/water-tax/quarters/{quarter}/penalty  One quarter
    POST   /api/water-tax/summary                     All quarters + totals
    POST   /api/water-tax/breakdown                   Summary + counts
    POST   /api/water-tax/reminder                    Reminder text
    POST   /api/water-tax/payments                    Settle a quarter or "full"
    POST   /api/water-tax/projection                  Dues if paid later

  Reminders:
    POST   /api/reminders/plan                        Plan a batch
    POST   /api/reminders/send                        Plan and dispatch

  Tariff:
    GET    /api/tariff                                Active tariff

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Engine: The penalty engine (immutable, shared)
  - Planner / Dispatcher: Reminder collaborators
  - Metrics, Logger
  - Now: The only clock read, used when a request omits as_of

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid quarter or amount, malformed body or timestamp
  - 409: Quarter already paid, inconsistent snapshot
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/municipal/watertax/factory"
	"github.com/municipal/watertax/generic"
	"github.com/municipal/watertax/metrics"
	"github.com/municipal/watertax/reminders"
	"github.com/municipal/watertax/watertax"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine     watertax.Engine
	Planner    *reminders.Planner
	Dispatcher *reminders.Dispatcher
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewHandler creates a handler around engine. dispatcher, m and logger may
// be nil.
func NewHandler(engine watertax.Engine, dispatcher *reminders.Dispatcher, m *metrics.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Engine:     engine,
		Planner:    reminders.NewPlanner(engine),
		Dispatcher: dispatcher,
		Metrics:    m,
		Logger:     logger,
		Now:        time.Now,
	}
}

// asOf resolves the reference instant of a request.
func (h *Handler) asOf(raw string) (time.Time, error) {
	if raw == "" {
		return h.Now().UTC(), nil
	}
	return generic.ParseInstant(raw)
}

// =============================================================================
// WATER TAX HANDLERS
// =============================================================================

// QuarterPenalty handles POST /api/water-tax/quarters/{quarter}/penalty
func (h *Handler) QuarterPenalty(w http.ResponseWriter, r *http.Request) {
	var req StateRequest
	if !decode(w, r, &req) {
		return
	}
	at, err := h.asOf(req.AsOf)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of", err)
		return
	}

	start := time.Now()
	result, err := h.Engine.CalculateQuarterPenalty(req.State, watertax.Quarter(chi.URLParam(r, "quarter")), at)
	h.Metrics.ObserveCalculation("quarter_penalty", start, err)
	if err != nil {
		h.writeEngineError(w, "Failed to calculate penalty", err)
		return
	}
	if result.HasPenalty {
		h.Metrics.ObservePenalised(1)
	}

	writeJSON(w, http.StatusOK, result)
}

// Summary handles POST /api/water-tax/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	var req StateRequest
	if !decode(w, r, &req) {
		return
	}
	at, err := h.asOf(req.AsOf)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of", err)
		return
	}

	start := time.Now()
	summary, err := h.Engine.CalculateAllQuartersTotal(req.State, at)
	h.Metrics.ObserveCalculation("summary", start, err)
	if err != nil {
		h.writeEngineError(w, "Failed to calculate summary", err)
		return
	}
	h.Metrics.ObservePenalised(countPenalised(summary.Pending()))

	writeJSON(w, http.StatusOK, summary)
}

// Breakdown handles POST /api/water-tax/breakdown
func (h *Handler) Breakdown(w http.ResponseWriter, r *http.Request) {
	var req StateRequest
	if !decode(w, r, &req) {
		return
	}
	at, err := h.asOf(req.AsOf)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of", err)
		return
	}

	start := time.Now()
	breakdown, err := h.Engine.DetailedBreakdown(req.State, at)
	h.Metrics.ObserveCalculation("breakdown", start, err)
	if err != nil {
		h.writeEngineError(w, "Failed to calculate breakdown", err)
		return
	}

	writeJSON(w, http.StatusOK, breakdown)
}

// Reminder handles POST /api/water-tax/reminder
func (h *Handler) Reminder(w http.ResponseWriter, r *http.Request) {
	var req ReminderRequest
	if !decode(w, r, &req) {
		return
	}
	at, err := h.asOf(req.AsOf)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of", err)
		return
	}

	start := time.Now()
	text, ok, err := h.Engine.GenerateReminderText(req.State, req.CustomerName, at)
	h.Metrics.ObserveCalculation("reminder", start, err)
	if err != nil {
		h.writeEngineError(w, "Failed to build reminder", err)
		return
	}

	writeJSON(w, http.StatusOK, ReminderResponse{Send: ok, Message: text})
}

// RecordPayment handles POST /api/water-tax/payments
//
// quarter "full" settles every unpaid quarter under one receipt. When
// phone_number is set a confirmation SMS is sent; a failed send is logged
// and the payment still succeeds.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if !decode(w, r, &req) {
		return
	}
	full := req.Quarter == FullYearQuarter
	var q watertax.Quarter
	if !full {
		var err error
		if q, err = watertax.ParseQuarter(req.Quarter); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid quarter", err)
			return
		}
	}
	paidAt, err := h.asOf(req.PaidAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid paid_at", err)
		return
	}

	payment := watertax.Payment{
		Period:        req.Period,
		PaidAt:        paidAt,
		Receipt:       req.ReceiptNumber,
		TransactionID: req.TransactionID,
		Method:        req.PaymentMethod,
	}
	if req.Amount != nil {
		payment.Amount = *req.Amount
	}

	if full {
		start := time.Now()
		outcome, err := h.Engine.RecordFullYearPayment(req.State, payment)
		h.Metrics.ObserveCalculation("payment", start, err)
		if err != nil {
			h.writeEngineError(w, "Failed to record payment", err)
			return
		}

		h.Logger.Info("Water tax full year payment recorded",
			zap.Int("quarters", len(outcome.Quarters)),
			zap.String("receipt", outcome.Receipt),
			zap.String("amount", outcome.Amount.String()))

		sent := h.confirm(r.Context(), req.PhoneNumber, outcome.Receipt,
			watertax.ConfirmationText(outcome.Amount, outcome.Period, outcome.Receipt))
		writeJSON(w, http.StatusOK, FullYearPaymentResponse{FullYearPaymentOutcome: outcome, ConfirmationSent: sent})
		return
	}

	start := time.Now()
	outcome, err := h.Engine.RecordPayment(req.State, q, payment)
	h.Metrics.ObserveCalculation("payment", start, err)
	if err != nil {
		h.writeEngineError(w, "Failed to record payment", err)
		return
	}

	h.Logger.Info("Water tax payment recorded",
		zap.String("quarter", string(q)),
		zap.String("receipt", outcome.Payment.ReceiptNumber),
		zap.String("original", outcome.Result.OriginalAmount.String()),
		zap.String("penalty", outcome.Result.PenaltyAmount.String()))

	sent := h.confirm(r.Context(), req.PhoneNumber, outcome.Payment.ReceiptNumber,
		watertax.ConfirmationText(outcome.Payment.Amount, outcome.Payment.Period, outcome.Payment.ReceiptNumber))
	writeJSON(w, http.StatusOK, PaymentResponse{PaymentOutcome: outcome, ConfirmationSent: sent})
}

// confirm sends the payment confirmation SMS and reports whether it went out.
func (h *Handler) confirm(ctx context.Context, phone, receipt, message string) bool {
	if phone == "" || h.Dispatcher == nil {
		return false
	}
	if _, err := h.Dispatcher.Notify(ctx, phone, message); err != nil {
		h.Logger.Warn("Payment confirmation failed",
			zap.String("receipt", receipt),
			zap.Error(err))
		return false
	}
	return true
}

// Projection handles POST /api/water-tax/projection
func (h *Handler) Projection(w http.ResponseWriter, r *http.Request) {
	var req ProjectionRequest
	if !decode(w, r, &req) {
		return
	}
	at, err := h.asOf(req.AsOf)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of", err)
		return
	}

	start := time.Now()
	points, err := h.Engine.ProjectDues(req.State, watertax.ProjectionInput{From: at, Steps: req.Steps})
	h.Metrics.ObserveCalculation("projection", start, err)
	if err != nil {
		h.writeEngineError(w, "Failed to project dues", err)
		return
	}

	writeJSON(w, http.StatusOK, ProjectionResponse{Points: points})
}

// =============================================================================
// REMINDER HANDLERS
// =============================================================================

// PlanReminders handles POST /api/reminders/plan
func (h *Handler) PlanReminders(w http.ResponseWriter, r *http.Request) {
	var req AccountsRequest
	if !decode(w, r, &req) {
		return
	}
	at, err := h.asOf(req.AsOf)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of", err)
		return
	}

	planned, err := h.Planner.Plan(req.Accounts, at)
	if err != nil {
		h.writeEngineError(w, "Failed to plan reminders", err)
		return
	}

	writeJSON(w, http.StatusOK, PlanResponse{AsOf: at.Format(time.RFC3339), Reminders: planned})
}

// SendReminders handles POST /api/reminders/send
func (h *Handler) SendReminders(w http.ResponseWriter, r *http.Request) {
	if h.Dispatcher == nil {
		writeError(w, http.StatusServiceUnavailable, "Reminder dispatch is not configured", nil)
		return
	}

	var req AccountsRequest
	if !decode(w, r, &req) {
		return
	}
	at, err := h.asOf(req.AsOf)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of", err)
		return
	}

	planned, err := h.Planner.Plan(req.Accounts, at)
	if err != nil {
		h.writeEngineError(w, "Failed to plan reminders", err)
		return
	}

	result, err := h.Dispatcher.Dispatch(r.Context(), planned)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Reminder dispatch interrupted", err)
		return
	}

	h.Logger.Info("Reminder batch dispatched",
		zap.Int("accounts", len(req.Accounts)),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed))

	writeJSON(w, http.StatusOK, SendResponse{
		AsOf:    at.Format(time.RFC3339),
		Result:  result,
		Message: result.String(),
	})
}

// =============================================================================
// TARIFF / HEALTH
// =============================================================================

// GetTariff handles GET /api/tariff
func (h *Handler) GetTariff(w http.ResponseWriter, r *http.Request) {
	t := h.Engine.Tariff()
	writeJSON(w, http.StatusOK, TariffResponse{
		Tariff:       factory.DocFromTariff(t),
		AnnualAmount: t.AnnualAmount(),
	})
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func countPenalised(results []watertax.PenaltyResult) int {
	n := 0
	for _, r := range results {
		if r.HasPenalty {
			n++
		}
	}
	return n
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case generic.IsClientError(err):
		return http.StatusBadRequest
	case generic.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeEngineError(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error(message, zap.Error(err))
	}

	var qe *generic.InvalidQuarterError
	if errors.As(err, &qe) {
		message = fmt.Sprintf("Invalid quarter %q", qe.Quarter)
	}
	writeError(w, status, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
