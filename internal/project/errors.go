package project

import (
	"fmt"

	"github.com/clerkbill/clerk/internal/event"
)

// IntegrityError reports an event that cannot be applied to the accumulated
// state: a reference to a nonexistent entity, a reused key, an out-of-order
// invoice number. It indicates a corrupt log or a codec/migration bug, never
// a caller mistake, so projection fails rather than skipping the event.
type IntegrityError struct {
	EventID string
	Kind    event.Kind
	Reason  string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("log integrity fault at event %s (%s): %s", e.EventID, e.Kind, e.Reason)
}

func integrityErr(e event.Event, format string, args ...any) error {
	return &IntegrityError{
		EventID: e.ID,
		Kind:    e.Kind,
		Reason:  fmt.Sprintf(format, args...),
	}
}

// NoRateError reports a rate lookup with no effective entry at the query
// date. Billing is never defaulted; the caller must set a rate first.
type NoRateError struct {
	Key     string
	Service string
	AsOf    event.Date
}

func (e *NoRateError) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("no billing rate set for client %q, service %q as of %s", e.Key, e.Service, e.AsOf)
	}
	return fmt.Sprintf("no billing rate set for client %q as of %s", e.Key, e.AsOf)
}

// NoTaxError reports a tax lookup with no effective entry at the query date.
// A client with an explicit empty tax list is configured; a client that
// never had taxes.set is not.
type NoTaxError struct {
	Key  string
	AsOf event.Date
}

func (e *NoTaxError) Error() string {
	return fmt.Sprintf("no tax rates set for client %q as of %s", e.Key, e.AsOf)
}
