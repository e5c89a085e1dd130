package event

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Money is an amount in a single ISO 4217 currency. There is no conversion
// between currencies; every amount on an invoice shares one currency.
type Money struct {
	Currency string          `json:"currency"`
	Value    decimal.Decimal `json:"value"`
}

// NewMoney constructs a Money after validating the currency code.
func NewMoney(code string, value decimal.Decimal) (Money, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Money{}, fmt.Errorf("invalid currency %q: %w", code, err)
	}
	return Money{Currency: unit.String(), Value: value}, nil
}

// Add returns m + other. Both amounts must share a currency; callers enforce
// this before arithmetic (see billing.MixedCurrencyError).
func (m Money) Add(other Money) Money {
	return Money{Currency: m.Currency, Value: m.Value.Add(other.Value)}
}

// MulDecimal returns m scaled by q, rounded to 2 decimal places using
// banker's rounding.
func (m Money) MulDecimal(q decimal.Decimal) Money {
	return Money{Currency: m.Currency, Value: m.Value.Mul(q).RoundBank(2)}
}

// Neg returns the negated amount.
func (m Money) Neg() Money {
	return Money{Currency: m.Currency, Value: m.Value.Neg()}
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Value.StringFixed(2), m.Currency)
}

// Unit is the billing unit a rate applies per.
type Unit string

// UnitHour is the only billing unit: hours worked within a period.
const UnitHour Unit = "hour"

// Rate is an effective-dated billing rate.
type Rate struct {
	Amount Money `json:"amount"`
	Per    Unit  `json:"per"`
}

func (r Rate) String() string {
	return fmt.Sprintf("%s/%s", r.Amount, r.Per)
}

// TaxRate is a named tax expressed as a fraction (0.08 for 8%).
type TaxRate struct {
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`
}

func (t TaxRate) String() string {
	// Shift preserves significant digits, so 0.08 renders as 8 rather than 8.00.
	return fmt.Sprintf("%s @ %s%%", t.Name, t.Rate.Shift(2))
}
