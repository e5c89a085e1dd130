package query

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clerkbill/clerk/internal/billing"
	"github.com/clerkbill/clerk/internal/event"
	"github.com/clerkbill/clerk/internal/store"
)

// newFacade opens a façade over a fresh log with a deterministic clock that
// advances one minute per observation.
func newFacade(t *testing.T) *Facade {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "client.history"))
	require.NoError(t, err)

	f := New(s)
	tick := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	f.Now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}
	return f
}

// seedAcme records the standard fixture client: one service at 50 USD/hour
// and an 8% tax, effective January 1st 2024.
func seedAcme(t *testing.T, f *Facade) {
	t.Helper()
	jan1 := event.NewDate(2024, time.January, 1)
	rate := event.Rate{Amount: mustUSD(t, "50"), Per: event.UnitHour}

	require.NoError(t, f.AddClient("acme", "Acme Corp", "1 Main St"))
	require.NoError(t, f.AddService("acme", "consulting"))
	require.NoError(t, f.SetRate("acme", "", rate, jan1))
	require.NoError(t, f.SetTaxes("acme",
		[]event.TaxRate{{Name: "VAT", Rate: decimal.RequireFromString("0.08")}}, jan1))
}

func mustUSD(t *testing.T, amount string) event.Money {
	t.Helper()
	m, err := event.NewMoney("USD", decimal.RequireFromString(amount))
	require.NoError(t, err)
	return m
}

func february() event.Period {
	return event.NewPeriod(event.NewDate(2024, time.February, 1), event.NewDate(2024, time.February, 29))
}

func TestClientCommands(t *testing.T) {
	f := newFacade(t)
	seedAcme(t, f)

	c, err := f.Client("acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", c.Name)

	require.NoError(t, f.RenameClient("acme", "Acme Inc"))
	require.NoError(t, f.ReaddressClient("acme", "2 Side St"))

	c, err = f.Client("acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc", c.Name)
	assert.Equal(t, "2 Side St", c.Address)

	_, err = f.Client("ghost")
	var unknown *billing.UnknownClientError
	assert.ErrorAs(t, err, &unknown)
}

func TestAddClientRejectsDuplicateKey(t *testing.T) {
	f := newFacade(t)
	require.NoError(t, f.AddClient("acme", "Acme Corp", ""))

	var dup *DuplicateClientError
	require.ErrorAs(t, f.AddClient("acme", "Another", ""), &dup)
	assert.Equal(t, "acme", dup.Key)

	// A removed client's key stays taken.
	require.NoError(t, f.RemoveClient("acme"))
	assert.ErrorAs(t, f.AddClient("acme", "Reborn", ""), &dup)
}

func TestRemoveClient(t *testing.T) {
	f := newFacade(t)
	seedAcme(t, f)

	require.NoError(t, f.RemoveClient("acme"))

	clients, err := f.Clients(false)
	require.NoError(t, err)
	assert.Empty(t, clients)
	clients, err = f.Clients(true)
	require.NoError(t, err)
	assert.Len(t, clients, 1)

	var already *AlreadyRemovedError
	assert.ErrorAs(t, f.RemoveClient("acme"), &already)
}

func TestAddServiceRejectsDuplicate(t *testing.T) {
	f := newFacade(t)
	seedAcme(t, f)

	var dup *DuplicateServiceError
	require.ErrorAs(t, f.AddService("acme", "consulting"), &dup)
	assert.Equal(t, "consulting", dup.Service)
}

func TestSetRateRequiresRegisteredService(t *testing.T) {
	f := newFacade(t)
	seedAcme(t, f)
	rate := event.Rate{Amount: mustUSD(t, "75"), Per: event.UnitHour}

	var unknown *billing.UnknownServiceError
	err := f.SetRate("acme", "design", rate, event.NewDate(2024, time.February, 1))
	require.ErrorAs(t, err, &unknown)

	// The default rate needs no service.
	assert.NoError(t, f.SetRate("acme", "", rate, event.NewDate(2024, time.February, 1)))
}

func TestRateQueries(t *testing.T) {
	f := newFacade(t)
	seedAcme(t, f)
	rate := event.Rate{Amount: mustUSD(t, "60"), Per: event.UnitHour}
	require.NoError(t, f.SetRate("acme", "", rate, event.NewDate(2024, time.March, 1)))

	got, err := f.RateAsOf("acme", "consulting", event.NewDate(2024, time.February, 15))
	require.NoError(t, err)
	assert.Equal(t, "50.00 USD/hour", got.String())

	got, err = f.RateAsOf("acme", "consulting", event.NewDate(2024, time.March, 15))
	require.NoError(t, err)
	assert.Equal(t, "60.00 USD/hour", got.String())

	history, err := f.RateHistory("acme", "")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	taxes, err := f.TaxesAsOf("acme", event.NewDate(2024, time.February, 15))
	require.NoError(t, err)
	require.Len(t, taxes, 1)
	assert.Equal(t, "VAT", taxes[0].Name)

	taxHistory, err := f.TaxHistory("acme")
	require.NoError(t, err)
	assert.Len(t, taxHistory, 1)
}

func TestCreateInvoiceAndMarkPaid(t *testing.T) {
	f := newFacade(t)
	seedAcme(t, f)

	inv, err := f.CreateInvoice("acme", february(),
		map[string]decimal.Decimal{"consulting": decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, 1, inv.Number)
	assert.Equal(t, "540.00 USD", inv.Total.String())

	looked, err := f.InvoiceByNumber("acme", 1)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, looked.ID)
	assert.False(t, looked.Paid)

	paidOn := event.NewDate(2024, time.March, 10)
	require.NoError(t, f.MarkPaid("acme", 1, paidOn))

	looked, err = f.InvoiceByNumber("acme", 1)
	require.NoError(t, err)
	assert.True(t, looked.Paid)
	assert.True(t, looked.PaidOn.Equal(paidOn))

	var already *billing.AlreadyPaidError
	assert.ErrorAs(t, f.MarkPaid("acme", 1, paidOn.AddDays(1)), &already)

	var unknownInv *billing.UnknownInvoiceError
	assert.ErrorAs(t, f.MarkPaid("acme", 9, paidOn), &unknownInv)
}

func TestInvoiceIsImmutableUnderLaterChanges(t *testing.T) {
	f := newFacade(t)
	seedAcme(t, f)

	inv, err := f.CreateInvoice("acme", february(),
		map[string]decimal.Decimal{"consulting": decimal.NewFromInt(10)})
	require.NoError(t, err)
	require.Equal(t, "540.00 USD", inv.Total.String())

	// Raising the rate and the tax afterwards, even retroactively, must not
	// change the stored invoice.
	steep := event.Rate{Amount: mustUSD(t, "90"), Per: event.UnitHour}
	require.NoError(t, f.SetRate("acme", "", steep, event.NewDate(2024, time.January, 1)))
	require.NoError(t, f.SetTaxes("acme",
		[]event.TaxRate{{Name: "VAT", Rate: decimal.RequireFromString("0.20")}},
		event.NewDate(2024, time.January, 1)))

	looked, err := f.InvoiceByNumber("acme", 1)
	require.NoError(t, err)
	assert.Equal(t, "540.00 USD", looked.Total.String())
	assert.Equal(t, "50.00 USD/hour", looked.Items[0].Rate.String())
	require.Len(t, looked.Taxes, 1)
	assert.Equal(t, "40.00 USD", looked.Taxes[0].Amount.String())
}

func TestStateAsOfAnswersHistorically(t *testing.T) {
	f := newFacade(t)
	require.NoError(t, f.AddClient("acme", "Acme Corp", ""))
	require.NoError(t, f.RenameClient("acme", "Acme Inc"))

	// The façade clock ticks one minute per command, so the add happened at
	// 12:01 and the rename at 12:02.
	st, err := f.StateAsOf(time.Date(2024, time.January, 1, 12, 1, 30, 0, time.UTC))
	require.NoError(t, err)
	c, ok := st.Client("acme")
	require.True(t, ok)
	assert.Equal(t, "Acme Corp", c.Name)
}

func TestMutationsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.history")
	s, err := store.Open(path)
	require.NoError(t, err)
	f := New(s)
	seedAcme(t, f)
	_, err = f.CreateInvoice("acme", february(),
		map[string]decimal.Decimal{"consulting": decimal.NewFromInt(10)})
	require.NoError(t, err)

	reopened, err := store.Open(path)
	require.NoError(t, err)
	g := New(reopened)

	inv, err := g.InvoiceByNumber("acme", 1)
	require.NoError(t, err)
	assert.Equal(t, "540.00 USD", inv.Total.String())
	invoices, err := g.InvoicesForClient("acme")
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
}
