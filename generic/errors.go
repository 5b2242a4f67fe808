/*
errors.go - Centralized error types for the tax engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Input errors - Unknown quarter keys, malformed tariffs, negative
     amounts, bad phones
  2. State errors - Snapshots that violate billing invariants
  3. Conflict errors - Paying a quarter twice

USAGE:
  if errors.Is(err, generic.ErrInvalidQuarter) {
      writeError(w, http.StatusBadRequest, "Invalid quarter", err)
  }

SEE ALSO:
  - watertax/penalty.go: Raises InvalidQuarterError
  - watertax/payment.go: Raises ErrQuarterAlreadyPaid
  - api/handlers.go: Maps these errors onto HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidQuarter is returned when a quarter key is not one of q1..q4.
	ErrInvalidQuarter = errors.New("invalid quarter")

	// ErrQuarterAlreadyPaid is returned when recording a second payment for
	// a quarter whose paid flag is already set.
	ErrQuarterAlreadyPaid = errors.New("quarter already paid")

	// ErrInconsistentState is returned when a paid flag and the payment
	// history disagree.
	ErrInconsistentState = errors.New("inconsistent tax state")

	// ErrInvalidTariff is returned when a tariff definition is malformed.
	ErrInvalidTariff = errors.New("invalid tariff")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidAmount is returned when a payment amount is negative.
	ErrInvalidAmount = errors.New("invalid payment amount")

	// ErrInvalidPhone is returned when a phone number is not 10 digits.
	ErrInvalidPhone = errors.New("phone number must be 10 digits")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidQuarterError names the rejected quarter key.
type InvalidQuarterError struct {
	Quarter string
}

func (e *InvalidQuarterError) Error() string {
	return fmt.Sprintf("invalid quarter: %q", e.Quarter)
}

func (e *InvalidQuarterError) Unwrap() error {
	return ErrInvalidQuarter
}

// StateError describes which quarter broke the paid-flag/history invariant.
type StateError struct {
	Quarter string
	Reason  string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("inconsistent tax state for %s: %s", e.Quarter, e.Reason)
}

func (e *StateError) Unwrap() error {
	return ErrInconsistentState
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidQuarter) ||
		errors.Is(err, ErrInvalidTariff) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidPhone)
}

// IsConflict returns true if the request clashes with the current state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrQuarterAlreadyPaid) ||
		errors.Is(err, ErrInconsistentState)
}
