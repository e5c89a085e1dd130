// Package billing computes invoices from projected state and produces the
// events that record them. It never writes to the log itself; the caller
// appends the returned event through the store.
//
// Rate policy: a billing period is billed at the rate in force at the
// period's end. A rate change announced mid-period therefore applies to the
// whole period and never requires splitting it. Taxes resolve the same way.
// The computed amounts and the tax snapshot are embedded verbatim in the
// produced event, so the invoice stays reproducible after later rate or tax
// changes.
package billing

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clerkbill/clerk/internal/event"
	"github.com/clerkbill/clerk/internal/project"
)

// CreateInvoice assembles an invoice.created event for the client, billing
// the given hours per service over the period. Errors are precondition
// failures visible to the caller; none are retryable without correcting the
// input.
func CreateInvoice(st *project.State, key string, period event.Period, hours map[string]decimal.Decimal, at time.Time) (event.Event, error) {
	if !period.Valid() {
		return event.Event{}, &EmptyPeriodError{Period: period}
	}
	client, ok := st.Client(key)
	if !ok {
		return event.Event{}, &UnknownClientError{Key: key}
	}
	if len(hours) == 0 {
		return event.Event{}, ErrNoLineItems
	}

	services := make([]string, 0, len(hours))
	for name := range hours {
		services = append(services, name)
	}
	sort.Strings(services)

	var items []event.LineItem
	var subtotal event.Money
	for i, name := range services {
		if !client.HasService(name) {
			return event.Event{}, &UnknownServiceError{Key: key, Service: name}
		}
		rate, err := client.RateAsOf(name, period.Until)
		if err != nil {
			return event.Event{}, err
		}
		if i == 0 {
			subtotal = event.Money{Currency: rate.Amount.Currency, Value: decimal.Zero}
		} else if rate.Amount.Currency != subtotal.Currency {
			return event.Event{}, &MixedCurrencyError{Have: subtotal.Currency, Got: rate.Amount.Currency}
		}
		amount := rate.Amount.MulDecimal(hours[name])
		items = append(items, event.LineItem{
			Service: name,
			Hours:   hours[name],
			Rate:    rate,
			Amount:  amount,
		})
		subtotal = subtotal.Add(amount)
	}

	taxRates, err := client.TaxesAsOf(period.Until)
	if err != nil {
		return event.Event{}, err
	}

	total := subtotal
	taxes := make([]event.TaxLine, 0, len(taxRates))
	for _, tr := range taxRates {
		amount := subtotal.MulDecimal(tr.Rate)
		taxes = append(taxes, event.TaxLine{Name: tr.Name, Rate: tr.Rate, Amount: amount})
		total = total.Add(amount)
	}

	inv := event.Invoice{
		ID:       uuid.Must(uuid.NewV7()).String(),
		Number:   client.NextInvoiceNumber(),
		Date:     event.DateOf(at),
		Period:   period,
		Items:    items,
		Subtotal: subtotal,
		Taxes:    taxes,
		Total:    total,
	}
	return event.NewInvoiceCreated(at, key, inv), nil
}

// MarkPaid assembles an invoice.paid event. Paying an already-paid invoice
// is rejected with AlreadyPaidError and leaves the invoice unchanged.
func MarkPaid(st *project.State, invoiceID string, on event.Date, at time.Time) (event.Event, error) {
	inv, ok := st.Invoice(invoiceID)
	if !ok {
		return event.Event{}, &UnknownInvoiceError{ID: invoiceID}
	}
	if inv.Paid {
		return event.Event{}, &AlreadyPaidError{ID: inv.ID, Number: inv.Number, On: inv.PaidOn}
	}
	return event.NewInvoicePaid(at, inv.ClientKey, inv.ID, on), nil
}
