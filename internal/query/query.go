// Package query is the single surface the CLI and renderers use. Reads
// re-project the store's event sequence on every call; the log is
// personal-scale, so re-projection keeps the model simple and needs no cache
// to be correct. Mutations validate against projected state, build one
// event, and append it through the store; either the event is fully
// persisted or no observable change occurs.
package query

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clerkbill/clerk/internal/billing"
	"github.com/clerkbill/clerk/internal/event"
	"github.com/clerkbill/clerk/internal/project"
	"github.com/clerkbill/clerk/internal/store"
)

// Facade wraps a store with the fixed set of lookups and commands the
// invoicing workflow needs.
type Facade struct {
	store *store.Store

	// Now allows tests to pin the clock. Nil means time.Now.
	Now func() time.Time
}

// New creates a façade over an open store.
func New(s *store.Store) *Facade {
	return &Facade{store: s}
}

func (f *Facade) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// State projects the full event sequence.
func (f *Facade) State() (*project.State, error) {
	return project.Project(f.store.Events())
}

// StateAsOf projects only events up to the cutoff.
func (f *Facade) StateAsOf(cutoff time.Time) (*project.State, error) {
	return project.ProjectAsOf(f.store.Events(), cutoff)
}

// Client resolves a client by key, including removed clients.
func (f *Facade) Client(key string) (*project.Client, error) {
	st, err := f.State()
	if err != nil {
		return nil, err
	}
	c, ok := st.Client(key)
	if !ok {
		return nil, &billing.UnknownClientError{Key: key}
	}
	return c, nil
}

// Clients lists clients sorted by key.
func (f *Facade) Clients(includeRemoved bool) ([]*project.Client, error) {
	st, err := f.State()
	if err != nil {
		return nil, err
	}
	return st.Clients(includeRemoved), nil
}

// Invoice resolves an invoice by its unique id.
func (f *Facade) Invoice(id string) (*project.Invoice, error) {
	st, err := f.State()
	if err != nil {
		return nil, err
	}
	inv, ok := st.Invoice(id)
	if !ok {
		return nil, &billing.UnknownInvoiceError{ID: id}
	}
	return inv, nil
}

// InvoiceByNumber resolves a client's invoice by per-client number.
func (f *Facade) InvoiceByNumber(key string, number int) (*project.Invoice, error) {
	st, err := f.State()
	if err != nil {
		return nil, err
	}
	if _, ok := st.Client(key); !ok {
		return nil, &billing.UnknownClientError{Key: key}
	}
	inv, ok := st.InvoiceByNumber(key, number)
	if !ok {
		return nil, &billing.UnknownInvoiceError{ID: fmt.Sprintf("%s#%d", key, number)}
	}
	return inv, nil
}

// InvoicesForClient lists a client's invoices in creation order, whether or
// not the client has been removed.
func (f *Facade) InvoicesForClient(key string) ([]*project.Invoice, error) {
	st, err := f.State()
	if err != nil {
		return nil, err
	}
	if _, ok := st.Client(key); !ok {
		return nil, &billing.UnknownClientError{Key: key}
	}
	return st.InvoicesFor(key), nil
}

// RateHistory returns the ordered rate changes for a client service (empty
// service means the client default rate).
func (f *Facade) RateHistory(key, service string) ([]project.RateChange, error) {
	c, err := f.Client(key)
	if err != nil {
		return nil, err
	}
	return c.RateHistory(service), nil
}

// TaxHistory returns the ordered tax changes for a client.
func (f *Facade) TaxHistory(key string) ([]project.TaxChange, error) {
	c, err := f.Client(key)
	if err != nil {
		return nil, err
	}
	return c.TaxHistory(), nil
}

// RateAsOf answers "what rate applied to this client's service on date D".
func (f *Facade) RateAsOf(key, service string, d event.Date) (event.Rate, error) {
	c, err := f.Client(key)
	if err != nil {
		return event.Rate{}, err
	}
	return c.RateAsOf(service, d)
}

// TaxesAsOf answers "what taxes applied to this client on date D".
func (f *Facade) TaxesAsOf(key string, d event.Date) ([]event.TaxRate, error) {
	c, err := f.Client(key)
	if err != nil {
		return nil, err
	}
	return c.TaxesAsOf(d)
}

// AddClient records a new client. Keys are unique forever; re-adding a
// removed client's key is rejected.
func (f *Facade) AddClient(key, name, address string) error {
	st, err := f.State()
	if err != nil {
		return err
	}
	if _, exists := st.Client(key); exists {
		return &DuplicateClientError{Key: key}
	}
	return f.store.Append(event.NewClientAdded(f.now(), key, name, address))
}

// RenameClient records a name change.
func (f *Facade) RenameClient(key, name string) error {
	if err := f.requireClient(key); err != nil {
		return err
	}
	return f.store.Append(event.NewClientRenamed(f.now(), key, name))
}

// ReaddressClient records an address change.
func (f *Facade) ReaddressClient(key, address string) error {
	if err := f.requireClient(key); err != nil {
		return err
	}
	return f.store.Append(event.NewClientReaddressed(f.now(), key, address))
}

// RemoveClient soft-deletes a client. History and invoices stay queryable.
func (f *Facade) RemoveClient(key string) error {
	st, err := f.State()
	if err != nil {
		return err
	}
	c, ok := st.Client(key)
	if !ok {
		return &billing.UnknownClientError{Key: key}
	}
	if c.Removed {
		return &AlreadyRemovedError{Key: key}
	}
	return f.store.Append(event.NewClientRemoved(f.now(), key))
}

// AddService registers a billable service for a client.
func (f *Facade) AddService(key, service string) error {
	st, err := f.State()
	if err != nil {
		return err
	}
	c, ok := st.Client(key)
	if !ok {
		return &billing.UnknownClientError{Key: key}
	}
	if c.HasService(service) {
		return &DuplicateServiceError{Key: key, Service: service}
	}
	return f.store.Append(event.NewServiceAdded(f.now(), key, service))
}

// SetRate records an effective-dated rate. An empty service sets the client
// default; a named service must be registered.
func (f *Facade) SetRate(key, service string, rate event.Rate, effective event.Date) error {
	st, err := f.State()
	if err != nil {
		return err
	}
	c, ok := st.Client(key)
	if !ok {
		return &billing.UnknownClientError{Key: key}
	}
	if service != "" && !c.HasService(service) {
		return &billing.UnknownServiceError{Key: key, Service: service}
	}
	return f.store.Append(event.NewRateSet(f.now(), key, service, rate, effective))
}

// SetTaxes records the effective-dated set of tax rates. An empty set is a
// valid configuration.
func (f *Facade) SetTaxes(key string, taxes []event.TaxRate, effective event.Date) error {
	if err := f.requireClient(key); err != nil {
		return err
	}
	return f.store.Append(event.NewTaxesSet(f.now(), key, taxes, effective))
}

// CreateInvoice bills the given hours per service over the period and
// persists the resulting invoice. The returned invoice is the frozen record
// embedded in the appended event.
func (f *Facade) CreateInvoice(key string, period event.Period, hours map[string]decimal.Decimal) (event.Invoice, error) {
	st, err := f.State()
	if err != nil {
		return event.Invoice{}, err
	}
	e, err := billing.CreateInvoice(st, key, period, hours, f.now())
	if err != nil {
		return event.Invoice{}, err
	}
	if err := f.store.Append(e); err != nil {
		return event.Invoice{}, err
	}
	return e.InvoiceCreated.Invoice, nil
}

// MarkPaid records a payment against a client's invoice number.
func (f *Facade) MarkPaid(key string, number int, on event.Date) error {
	st, err := f.State()
	if err != nil {
		return err
	}
	if _, ok := st.Client(key); !ok {
		return &billing.UnknownClientError{Key: key}
	}
	inv, ok := st.InvoiceByNumber(key, number)
	if !ok {
		return &billing.UnknownInvoiceError{ID: fmt.Sprintf("%s#%d", key, number)}
	}
	e, err := billing.MarkPaid(st, inv.ID, on, f.now())
	if err != nil {
		return err
	}
	return f.store.Append(e)
}

func (f *Facade) requireClient(key string) error {
	st, err := f.State()
	if err != nil {
		return err
	}
	if _, ok := st.Client(key); !ok {
		return &billing.UnknownClientError{Key: key}
	}
	return nil
}
