package event

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Kind tags the payload variant carried by an event.
type Kind string

const (
	KindClientAdded       Kind = "client.added"
	KindClientRenamed     Kind = "client.renamed"
	KindClientReaddressed Kind = "client.readdressed"
	KindClientRemoved     Kind = "client.removed"
	KindServiceAdded      Kind = "service.added"
	KindRateSet           Kind = "rate.set"
	KindTaxesSet          Kind = "taxes.set"
	KindInvoiceCreated    Kind = "invoice.created"
	KindInvoicePaid       Kind = "invoice.paid"
)

// Event is one immutable, timestamped fact in the log. Exactly one payload
// field matching Kind is set. Events are never edited or deleted; corrections
// are appended as new events.
type Event struct {
	ID   string    `json:"id"`
	At   time.Time `json:"at"`
	Kind Kind      `json:"kind"`

	ClientAdded       *ClientAdded       `json:"client_added,omitempty"`
	ClientRenamed     *ClientRenamed     `json:"client_renamed,omitempty"`
	ClientReaddressed *ClientReaddressed `json:"client_readdressed,omitempty"`
	ClientRemoved     *ClientRemoved     `json:"client_removed,omitempty"`
	ServiceAdded      *ServiceAdded      `json:"service_added,omitempty"`
	RateSet           *RateSet           `json:"rate_set,omitempty"`
	TaxesSet          *TaxesSet          `json:"taxes_set,omitempty"`
	InvoiceCreated    *InvoiceCreated    `json:"invoice_created,omitempty"`
	InvoicePaid       *InvoicePaid       `json:"invoice_paid,omitempty"`
}

// ClientAdded records a new client. Key is the stable client id; it is
// chosen at creation and never reused, even after removal.
type ClientAdded struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// ClientRenamed changes a client's display name.
type ClientRenamed struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// ClientReaddressed changes a client's billing address.
type ClientReaddressed struct {
	Key     string `json:"key"`
	Address string `json:"address"`
}

// ClientRemoved soft-deletes a client. History and invoices are retained;
// the client is only excluded from active listings.
type ClientRemoved struct {
	Key string `json:"key"`
}

// ServiceAdded registers a billable service for a client.
type ServiceAdded struct {
	Key     string `json:"key"`
	Service string `json:"service"`
}

// RateSet records an effective-dated billing rate. An empty Service sets the
// client's default rate; a named Service overrides the default for that
// service only.
type RateSet struct {
	Key       string `json:"key"`
	Service   string `json:"service,omitempty"`
	Rate      Rate   `json:"rate"`
	Effective Date   `json:"effective"`
}

// TaxesSet records the full set of tax rates in force from Effective.
// An empty list is a valid configuration (tax-exempt client).
type TaxesSet struct {
	Key       string    `json:"key"`
	Taxes     []TaxRate `json:"taxes"`
	Effective Date      `json:"effective"`
}

// InvoiceCreated records a fully computed invoice.
type InvoiceCreated struct {
	Key     string  `json:"key"`
	Invoice Invoice `json:"invoice"`
}

// InvoicePaid marks an invoice paid. The transition is one-way.
type InvoicePaid struct {
	Key       string `json:"key"`
	InvoiceID string `json:"invoice_id"`
	On        Date   `json:"on"`
}

// newEnvelope stamps the common fields. IDs are UUIDv7 so records sort by
// creation time even outside the log.
func newEnvelope(at time.Time, kind Kind) Event {
	return Event{
		ID:   uuid.Must(uuid.NewV7()).String(),
		At:   at.UTC().Round(0),
		Kind: kind,
	}
}

// NewClientAdded builds a client.added event.
func NewClientAdded(at time.Time, key, name, address string) Event {
	e := newEnvelope(at, KindClientAdded)
	e.ClientAdded = &ClientAdded{Key: key, Name: name, Address: address}
	return e
}

// NewClientRenamed builds a client.renamed event.
func NewClientRenamed(at time.Time, key, name string) Event {
	e := newEnvelope(at, KindClientRenamed)
	e.ClientRenamed = &ClientRenamed{Key: key, Name: name}
	return e
}

// NewClientReaddressed builds a client.readdressed event.
func NewClientReaddressed(at time.Time, key, address string) Event {
	e := newEnvelope(at, KindClientReaddressed)
	e.ClientReaddressed = &ClientReaddressed{Key: key, Address: address}
	return e
}

// NewClientRemoved builds a client.removed event.
func NewClientRemoved(at time.Time, key string) Event {
	e := newEnvelope(at, KindClientRemoved)
	e.ClientRemoved = &ClientRemoved{Key: key}
	return e
}

// NewServiceAdded builds a service.added event.
func NewServiceAdded(at time.Time, key, service string) Event {
	e := newEnvelope(at, KindServiceAdded)
	e.ServiceAdded = &ServiceAdded{Key: key, Service: service}
	return e
}

// NewRateSet builds a rate.set event. service may be empty for the client
// default rate.
func NewRateSet(at time.Time, key, service string, rate Rate, effective Date) Event {
	e := newEnvelope(at, KindRateSet)
	e.RateSet = &RateSet{Key: key, Service: service, Rate: rate, Effective: effective}
	return e
}

// NewTaxesSet builds a taxes.set event.
func NewTaxesSet(at time.Time, key string, taxes []TaxRate, effective Date) Event {
	e := newEnvelope(at, KindTaxesSet)
	e.TaxesSet = &TaxesSet{Key: key, Taxes: taxes, Effective: effective}
	return e
}

// NewInvoiceCreated builds an invoice.created event.
func NewInvoiceCreated(at time.Time, key string, inv Invoice) Event {
	e := newEnvelope(at, KindInvoiceCreated)
	e.InvoiceCreated = &InvoiceCreated{Key: key, Invoice: inv}
	return e
}

// NewInvoicePaid builds an invoice.paid event.
func NewInvoicePaid(at time.Time, key, invoiceID string, on Date) Event {
	e := newEnvelope(at, KindInvoicePaid)
	e.InvoicePaid = &InvoicePaid{Key: key, InvoiceID: invoiceID, On: on}
	return e
}

// Validate checks that the envelope is well formed: non-empty id and
// timestamp, a known kind, and exactly the payload matching that kind.
func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event has no id")
	}
	if e.At.IsZero() {
		return fmt.Errorf("event %s has no timestamp", e.ID)
	}

	payloads := map[Kind]bool{
		KindClientAdded:       e.ClientAdded != nil,
		KindClientRenamed:     e.ClientRenamed != nil,
		KindClientReaddressed: e.ClientReaddressed != nil,
		KindClientRemoved:     e.ClientRemoved != nil,
		KindServiceAdded:      e.ServiceAdded != nil,
		KindRateSet:           e.RateSet != nil,
		KindTaxesSet:          e.TaxesSet != nil,
		KindInvoiceCreated:    e.InvoiceCreated != nil,
		KindInvoicePaid:       e.InvoicePaid != nil,
	}

	set, known := payloads[e.Kind]
	if !known {
		return fmt.Errorf("event %s has unknown kind %q", e.ID, e.Kind)
	}
	if !set {
		return fmt.Errorf("event %s (%s) is missing its payload", e.ID, e.Kind)
	}
	for kind, present := range payloads {
		if present && kind != e.Kind {
			return fmt.Errorf("event %s (%s) carries extra %s payload", e.ID, e.Kind, kind)
		}
	}
	return nil
}

// ClientKey returns the client the event refers to.
func (e Event) ClientKey() string {
	switch e.Kind {
	case KindClientAdded:
		return e.ClientAdded.Key
	case KindClientRenamed:
		return e.ClientRenamed.Key
	case KindClientReaddressed:
		return e.ClientReaddressed.Key
	case KindClientRemoved:
		return e.ClientRemoved.Key
	case KindServiceAdded:
		return e.ServiceAdded.Key
	case KindRateSet:
		return e.RateSet.Key
	case KindTaxesSet:
		return e.TaxesSet.Key
	case KindInvoiceCreated:
		return e.InvoiceCreated.Key
	case KindInvoicePaid:
		return e.InvoicePaid.Key
	}
	return ""
}

// SortStable orders events by timestamp, keeping log position as the
// tiebreak: of two events with equal timestamps, the one appended later
// stays later. Sorting is in place.
func SortStable(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At.Before(events[j].At)
	})
}
