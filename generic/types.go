/*
Package generic provides the domain-agnostic building blocks of the tax engine.

PURPOSE:
  This package contains the money, date and error types shared by every
  billing domain. The water-tax engine (package watertax) is built on top
  of it, but nothing in here knows about quarters or penalties.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A decimal amount with a currency (e.g., ₹182.00)
  - Identifiers: Type-safe citizen and receipt identifiers

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Rounding: Monetary results are rounded half-up to 2 decimal places
  3. Type Safety: Strong typing for IDs prevents mixing citizen/receipt IDs

USAGE:
  original := generic.NewMoneyFromInt(182)
  penalty := original.Mul(decimal.RequireFromString("0.02")).Round2()
  total := original.Add(penalty)

SEE ALSO:
  - time.go: Date construction and arithmetic
  - period.go: Fiscal periods
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Decimal amount with currency
// =============================================================================

type Currency string

const (
	CurrencyINR Currency = "INR"
)

// Symbol returns the display symbol used in receipts and reminders.
func (c Currency) Symbol() string {
	switch c {
	case CurrencyINR, "":
		return "₹"
	default:
		return string(c) + " "
	}
}

// MoneyDecimalPlaces is the precision every monetary result is rounded to.
const MoneyDecimalPlaces = 2

type Money struct {
	Value    decimal.Decimal
	Currency Currency
}

func NewMoney(value decimal.Decimal) Money {
	return Money{Value: value, Currency: CurrencyINR}
}

func NewMoneyFromInt(value int64) Money {
	return Money{Value: decimal.NewFromInt(value), Currency: CurrencyINR}
}

func ZeroMoney() Money { return Money{Value: decimal.Zero, Currency: CurrencyINR} }

// MustParseDecimal parses s and panics on malformed input.
func MustParseDecimal(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (m Money) Add(b Money) Money { return Money{Value: m.Value.Add(b.Value), Currency: m.Currency} }
func (m Money) Mul(s decimal.Decimal) Money { return Money{Value: m.Value.Mul(s), Currency: m.Currency} }
func (m Money) MulInt(n int) Money { return m.Mul(decimal.NewFromInt(int64(n))) }
func (m Money) IsZero() bool { return m.Value.IsZero() }
func (m Money) IsPositive() bool { return m.Value.IsPositive() }
func (m Money) IsNegative() bool { return m.Value.IsNegative() }
func (m Money) Equal(b Money) bool { return m.Value.Equal(b.Value) }

// Round2 rounds half away from zero to 2 decimal places. For the
// non-negative amounts billed here that is the same as half-up.
func (m Money) Round2() Money {
	return Money{Value: m.Value.Round(MoneyDecimalPlaces), Currency: m.Currency}
}

// String renders the amount with its currency symbol, e.g. "₹185.64".
func (m Money) String() string {
	return m.Currency.Symbol() + m.Value.StringFixed(MoneyDecimalPlaces)
}

// MarshalJSON encodes money as a plain JSON number with 2 decimal places.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Value.StringFixed(MoneyDecimalPlaces)), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	m.Value = d
	if m.Currency == "" {
		m.Currency = CurrencyINR
	}
	return nil
}

// SumMoney adds up amounts in order. An empty input yields zero.
func SumMoney(amounts ...Money) Money {
	total := ZeroMoney()
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CitizenID string
type ReceiptNumber string
