package billing

import (
	"errors"
	"fmt"

	"github.com/clerkbill/clerk/internal/event"
)

// ErrNoLineItems rejects an invoice request with no hours at all.
var ErrNoLineItems = errors.New("invoice has no line items")

// UnknownClientError reports a client key not present in projected state.
type UnknownClientError struct {
	Key string
}

func (e *UnknownClientError) Error() string {
	return fmt.Sprintf("no client found for %q", e.Key)
}

// UnknownServiceError reports hours billed against a service the client
// never registered.
type UnknownServiceError struct {
	Key     string
	Service string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("client %q has no service %q", e.Key, e.Service)
}

// UnknownInvoiceError reports an invoice id not present in projected state.
type UnknownInvoiceError struct {
	ID string
}

func (e *UnknownInvoiceError) Error() string {
	return fmt.Sprintf("no invoice found for id %s", e.ID)
}

// AlreadyPaidError rejects a second payment. The rejection is explicit, not
// a silent no-op: no event is appended and the invoice is unchanged.
type AlreadyPaidError struct {
	ID     string
	Number int
	On     event.Date
}

func (e *AlreadyPaidError) Error() string {
	return fmt.Sprintf("invoice #%d (%s) was already paid on %s", e.Number, e.ID, e.On)
}

// EmptyPeriodError rejects a billing period whose start is not strictly
// before its end.
type EmptyPeriodError struct {
	Period event.Period
}

func (e *EmptyPeriodError) Error() string {
	return fmt.Sprintf("empty billing period %s", e.Period)
}

// MixedCurrencyError rejects an invoice whose resolved rates span more than
// one currency; there is no conversion.
type MixedCurrencyError struct {
	Have string
	Got  string
}

func (e *MixedCurrencyError) Error() string {
	return fmt.Sprintf("invoice mixes currencies %s and %s", e.Have, e.Got)
}
