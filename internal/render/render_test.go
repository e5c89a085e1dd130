package render

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clerkbill/clerk/internal/event"
	"github.com/clerkbill/clerk/internal/project"
)

func golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func usd(t *testing.T, amount string) event.Money {
	t.Helper()
	m, err := event.NewMoney("USD", decimal.RequireFromString(amount))
	require.NoError(t, err)
	return m
}

// fixtureInvoice projects the canonical one-item invoice: 10 hours of
// consulting at 50 USD/hour with 8% VAT, billed for February 2024.
func fixtureInvoice(t *testing.T, paid bool) (*project.Invoice, *project.Client) {
	t.Helper()

	rate := event.Rate{Amount: usd(t, "50"), Per: event.UnitHour}
	inv := event.Invoice{
		ID:     "inv-1",
		Number: 1,
		Date:   event.NewDate(2024, time.March, 1),
		Period: event.NewPeriod(event.NewDate(2024, time.February, 1), event.NewDate(2024, time.February, 29)),
		Items: []event.LineItem{{
			Service: "consulting",
			Hours:   decimal.NewFromInt(10),
			Rate:    rate,
			Amount:  usd(t, "500"),
		}},
		Subtotal: usd(t, "500"),
		Taxes: []event.TaxLine{{
			Name:   "VAT",
			Rate:   decimal.RequireFromString("0.08"),
			Amount: usd(t, "40"),
		}},
		Total: usd(t, "540"),
	}

	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	events := []event.Event{
		event.NewClientAdded(base, "acme", "Acme Corp", "1 Main St\nSpringfield"),
		event.NewInvoiceCreated(base.Add(time.Minute), "acme", inv),
	}
	if paid {
		events = append(events,
			event.NewInvoicePaid(base.Add(2*time.Minute), "acme", "inv-1", event.NewDate(2024, time.March, 10)))
	}

	st, err := project.Project(events)
	require.NoError(t, err)
	projected, ok := st.Invoice("inv-1")
	require.True(t, ok)
	client, ok := st.Client("acme")
	require.True(t, ok)
	return projected, client
}

func TestPosting(t *testing.T) {
	inv, client := fixtureInvoice(t, false)
	golden(t).Assert(t, "posting", []byte(Posting(inv, client.Name)))
}

func TestPayment(t *testing.T) {
	inv, client := fixtureInvoice(t, true)

	out, err := Payment(inv, client.Name)
	require.NoError(t, err)
	golden(t).Assert(t, "payment", []byte(out))
}

func TestPaymentRequiresPaidInvoice(t *testing.T) {
	inv, client := fixtureInvoice(t, false)
	_, err := Payment(inv, client.Name)
	assert.Error(t, err)
}

func TestLatex(t *testing.T) {
	inv, client := fixtureInvoice(t, false)

	out, err := Latex(inv, client)
	require.NoError(t, err)
	golden(t).Assert(t, "invoice_latex", []byte(out))
}

func TestLatexEscapesSpecialCharacters(t *testing.T) {
	inv, client := fixtureInvoice(t, false)
	client.Name = "Brown & Sons #1"
	inv.Items[0].Service = "r_and_d"

	out, err := Latex(inv, client)
	require.NoError(t, err)
	assert.Contains(t, out, `Brown \& Sons \#1`)
	assert.Contains(t, out, `r\_and\_d`)
	assert.NotContains(t, out, "Brown & Sons")
}

func TestPeriodComment(t *testing.T) {
	feb := event.NewPeriod(event.NewDate(2024, time.February, 1), event.NewDate(2024, time.February, 29))
	assert.Equal(t, "Feb 1 - 29", periodComment(feb))

	spanning := event.NewPeriod(event.NewDate(2024, time.February, 15), event.NewDate(2024, time.March, 15))
	assert.Equal(t, "Feb 15 - Mar 15", periodComment(spanning))
}
