package event

import "github.com/shopspring/decimal"

// Invoice is the fully materialized invoice embedded in an invoice.created
// event. Every amount is computed once, at creation time, and stored
// verbatim; projection never recomputes an invoice from later rates or taxes.
type Invoice struct {
	// ID is globally unique. Number is the 1-based per-client sequence.
	ID     string `json:"id"`
	Number int    `json:"number"`

	Date   Date   `json:"date"`
	Period Period `json:"period"`

	Items    []LineItem `json:"items"`
	Subtotal Money      `json:"subtotal"`

	// Taxes is the tax snapshot: the exact rates applied and the amounts
	// they produced, frozen at creation.
	Taxes []TaxLine `json:"taxes"`
	Total Money     `json:"total"`
}

// LineItem is one billed service entry.
type LineItem struct {
	Service string          `json:"service"`
	Hours   decimal.Decimal `json:"hours"`
	Rate    Rate            `json:"rate"`
	Amount  Money           `json:"amount"`
}

// TaxLine is one applied tax with its computed amount.
type TaxLine struct {
	Name   string          `json:"name"`
	Rate   decimal.Decimal `json:"rate"`
	Amount Money           `json:"amount"`
}
