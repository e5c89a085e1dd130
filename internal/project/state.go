package project

import (
	"sort"

	"github.com/clerkbill/clerk/internal/event"
)

// State is the materialized view derived from an event sequence. It is a
// read-only value: all components receive it from Project and query it; only
// new events change what the next projection yields.
type State struct {
	clients  map[string]*Client
	invoices map[string]*Invoice
}

// Client is the derived client entity.
type Client struct {
	Key     string
	Name    string
	Address string
	Removed bool

	services     []string
	defaultRates historical[event.Rate]
	serviceRates map[string]*historical[event.Rate]
	taxes        historical[[]event.TaxRate]
	invoiceIDs   []string
}

// Invoice is the derived invoice entity: the frozen invoice from its
// creation event plus the paid transition.
type Invoice struct {
	event.Invoice
	ClientKey string
	Paid      bool
	PaidOn    event.Date
}

// RateChange is one entry of a rate history.
type RateChange struct {
	Effective event.Date
	Rate      event.Rate
}

// TaxChange is one entry of a tax history.
type TaxChange struct {
	Effective event.Date
	Taxes     []event.TaxRate
}

func newState() *State {
	return &State{
		clients:  make(map[string]*Client),
		invoices: make(map[string]*Invoice),
	}
}

// Client resolves a client by key. Removed clients still resolve; their
// history is preserved.
func (s *State) Client(key string) (*Client, bool) {
	c, ok := s.clients[key]
	return c, ok
}

// Clients lists clients sorted by key. Removed clients are excluded unless
// includeRemoved is set.
func (s *State) Clients(includeRemoved bool) []*Client {
	out := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		if c.Removed && !includeRemoved {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Invoice resolves an invoice by its unique id.
func (s *State) Invoice(id string) (*Invoice, bool) {
	inv, ok := s.invoices[id]
	return inv, ok
}

// InvoicesFor lists a client's invoices in creation order. Invoices of
// removed clients remain listed.
func (s *State) InvoicesFor(key string) []*Invoice {
	c, ok := s.clients[key]
	if !ok {
		return nil
	}
	out := make([]*Invoice, 0, len(c.invoiceIDs))
	for _, id := range c.invoiceIDs {
		out = append(out, s.invoices[id])
	}
	return out
}

// Services lists the client's registered services in registration order.
func (c *Client) Services() []string {
	out := make([]string, len(c.services))
	copy(out, c.services)
	return out
}

// HasService reports whether the service is registered for the client.
func (c *Client) HasService(name string) bool {
	for _, s := range c.services {
		if s == name {
			return true
		}
	}
	return false
}

// RateAsOf resolves the rate in force for a service on the given date. A
// service-specific rate wins over the client default; with neither in force
// the lookup fails with NoRateError rather than defaulting.
func (c *Client) RateAsOf(service string, d event.Date) (event.Rate, error) {
	if service != "" {
		if h, ok := c.serviceRates[service]; ok {
			if rate, ok := h.asOf(d); ok {
				return rate, nil
			}
		}
	}
	if rate, ok := c.defaultRates.asOf(d); ok {
		return rate, nil
	}
	return event.Rate{}, &NoRateError{Key: c.Key, Service: service, AsOf: d}
}

// TaxesAsOf resolves the tax rates in force on the given date. An empty
// configured list is valid (tax-exempt); a client never configured fails
// with NoTaxError.
func (c *Client) TaxesAsOf(d event.Date) ([]event.TaxRate, error) {
	taxes, ok := c.taxes.asOf(d)
	if !ok {
		return nil, &NoTaxError{Key: c.Key, AsOf: d}
	}
	out := make([]event.TaxRate, len(taxes))
	copy(out, taxes)
	return out, nil
}

// RateHistory returns the ordered rate changes for a service, or for the
// client default when service is empty.
func (c *Client) RateHistory(service string) []RateChange {
	var h *historical[event.Rate]
	if service == "" {
		h = &c.defaultRates
	} else if sh, ok := c.serviceRates[service]; ok {
		h = sh
	} else {
		return nil
	}
	entries := h.all()
	out := make([]RateChange, len(entries))
	for i, e := range entries {
		out[i] = RateChange{Effective: e.Effective, Rate: e.Value}
	}
	return out
}

// TaxHistory returns the ordered tax changes.
func (c *Client) TaxHistory() []TaxChange {
	entries := c.taxes.all()
	out := make([]TaxChange, len(entries))
	for i, e := range entries {
		out[i] = TaxChange{Effective: e.Effective, Taxes: e.Value}
	}
	return out
}

// NextInvoiceNumber returns the per-client sequence number the next invoice
// must carry.
func (c *Client) NextInvoiceNumber() int {
	return len(c.invoiceIDs) + 1
}

// InvoiceCount returns how many invoices the client has.
func (c *Client) InvoiceCount() int {
	return len(c.invoiceIDs)
}

// BilledUntil returns the end of the last invoiced period, if any invoice
// exists.
func (s *State) BilledUntil(key string) (event.Date, bool) {
	invoices := s.InvoicesFor(key)
	if len(invoices) == 0 {
		return event.Date{}, false
	}
	last := invoices[len(invoices)-1]
	return last.Period.Until, true
}

// InvoiceByNumber resolves a client's invoice by its per-client number.
func (s *State) InvoiceByNumber(key string, number int) (*Invoice, bool) {
	c, ok := s.clients[key]
	if !ok || number < 1 || number > len(c.invoiceIDs) {
		return nil, false
	}
	return s.invoices[c.invoiceIDs[number-1]], true
}
