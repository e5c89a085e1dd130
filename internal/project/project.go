// Package project derives state from the event log. Projection is a pure
// fold: the same event sequence always yields the same State, no matter how
// often it runs, and running it never touches the log itself. Temporal
// queries ("what was true on date D") are the same fold truncated at a
// cutoff timestamp.
package project

import (
	"time"

	"github.com/clerkbill/clerk/internal/event"
)

// Project folds the full event sequence into current state.
func Project(events []event.Event) (*State, error) {
	return projectUntil(events, time.Time{})
}

// ProjectAsOf folds only events with timestamp ≤ cutoff, answering what was
// true at that instant. Ties on equal timestamps keep log order.
func ProjectAsOf(events []event.Event, cutoff time.Time) (*State, error) {
	return projectUntil(events, cutoff)
}

func projectUntil(events []event.Event, cutoff time.Time) (*State, error) {
	ordered := make([]event.Event, len(events))
	copy(ordered, events)
	event.SortStable(ordered)

	st := newState()
	for _, e := range ordered {
		if !cutoff.IsZero() && e.At.After(cutoff) {
			break
		}
		if err := apply(st, e); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// apply folds one event into the accumulator. Events referencing entities
// that do not exist (or keys that already do, for client.added) are
// integrity faults: the command layer validates before appending, so such an
// event can only come from a corrupt log.
func apply(st *State, e event.Event) error {
	if err := e.Validate(); err != nil {
		return integrityErr(e, "%v", err)
	}

	switch e.Kind {
	case event.KindClientAdded:
		p := e.ClientAdded
		if _, exists := st.clients[p.Key]; exists {
			// Keys are never reused, not even after removal.
			return integrityErr(e, "client key %q already exists", p.Key)
		}
		st.clients[p.Key] = &Client{
			Key:          p.Key,
			Name:         p.Name,
			Address:      p.Address,
			serviceRates: make(map[string]*historical[event.Rate]),
		}

	case event.KindClientRenamed:
		c, err := resolveClient(st, e, e.ClientRenamed.Key)
		if err != nil {
			return err
		}
		c.Name = e.ClientRenamed.Name

	case event.KindClientReaddressed:
		c, err := resolveClient(st, e, e.ClientReaddressed.Key)
		if err != nil {
			return err
		}
		c.Address = e.ClientReaddressed.Address

	case event.KindClientRemoved:
		c, err := resolveClient(st, e, e.ClientRemoved.Key)
		if err != nil {
			return err
		}
		if c.Removed {
			return integrityErr(e, "client %q already removed", c.Key)
		}
		c.Removed = true

	case event.KindServiceAdded:
		c, err := resolveClient(st, e, e.ServiceAdded.Key)
		if err != nil {
			return err
		}
		if !c.HasService(e.ServiceAdded.Service) {
			c.services = append(c.services, e.ServiceAdded.Service)
		}

	case event.KindRateSet:
		p := e.RateSet
		c, err := resolveClient(st, e, p.Key)
		if err != nil {
			return err
		}
		if p.Service == "" {
			c.defaultRates.set(p.Effective, p.Rate)
			break
		}
		h, ok := c.serviceRates[p.Service]
		if !ok {
			h = &historical[event.Rate]{}
			c.serviceRates[p.Service] = h
		}
		h.set(p.Effective, p.Rate)

	case event.KindTaxesSet:
		p := e.TaxesSet
		c, err := resolveClient(st, e, p.Key)
		if err != nil {
			return err
		}
		c.taxes.set(p.Effective, p.Taxes)

	case event.KindInvoiceCreated:
		p := e.InvoiceCreated
		c, err := resolveClient(st, e, p.Key)
		if err != nil {
			return err
		}
		if _, exists := st.invoices[p.Invoice.ID]; exists {
			return integrityErr(e, "invoice id %s already exists", p.Invoice.ID)
		}
		if want := c.NextInvoiceNumber(); p.Invoice.Number != want {
			return integrityErr(e, "invoice #%d for client %q out of sequence, expected #%d",
				p.Invoice.Number, p.Key, want)
		}
		st.invoices[p.Invoice.ID] = &Invoice{
			Invoice:   p.Invoice,
			ClientKey: p.Key,
		}
		c.invoiceIDs = append(c.invoiceIDs, p.Invoice.ID)

	case event.KindInvoicePaid:
		p := e.InvoicePaid
		inv, ok := st.invoices[p.InvoiceID]
		if !ok {
			return integrityErr(e, "invoice %s does not exist", p.InvoiceID)
		}
		if inv.ClientKey != p.Key {
			return integrityErr(e, "invoice %s belongs to client %q, not %q",
				p.InvoiceID, inv.ClientKey, p.Key)
		}
		if inv.Paid {
			return integrityErr(e, "invoice %s already paid on %s", p.InvoiceID, inv.PaidOn)
		}
		inv.Paid = true
		inv.PaidOn = p.On
	}

	return nil
}

func resolveClient(st *State, e event.Event, key string) (*Client, error) {
	c, ok := st.clients[key]
	if !ok {
		return nil, integrityErr(e, "client %q does not exist", key)
	}
	return c, nil
}
