// Package render turns query results into text: ledger-style postings and a
// LaTeX invoice document. Renderers are stateless transforms; they never
// touch the log and never recompute amounts, they format what the invoice
// recorded.
package render

import (
	"fmt"
	"strings"

	"github.com/clerkbill/clerk/internal/event"
	"github.com/clerkbill/clerk/internal/project"
)

// ledgerAmount formats money in commodity-suffix ledger notation.
func ledgerAmount(m event.Money) string {
	return fmt.Sprintf("%s %s", m.Value.StringFixed(2), m.Currency)
}

// periodComment renders the billing period for the posting comment,
// collapsing the month when both ends share it ("Feb 1 - 28").
func periodComment(p event.Period) string {
	start := p.From.Time().Format("Jan 2")
	layout := "Jan 2"
	if p.From.Time().Month() == p.Until.Time().Month() && p.From.Time().Year() == p.Until.Time().Year() {
		layout = "2"
	}
	return fmt.Sprintf("%s - %s", start, p.Until.Time().Format(layout))
}

// Posting renders the invoice as a ledger transaction: the subtotal and each
// tax as receivables, balanced against client revenue.
func Posting(inv *project.Invoice, clientName string) string {
	lines := make([]postingLine, 0, len(inv.Taxes)+2)
	lines = append(lines, postingLine{
		account: "assets:receivable:" + clientName,
		amount:  ledgerAmount(inv.Subtotal),
	})
	for _, tax := range inv.Taxes {
		lines = append(lines, postingLine{
			account: "assets:receivable:" + tax.Name,
			amount:  ledgerAmount(tax.Amount),
		})
	}
	lines = append(lines, postingLine{
		account: "revenues:clients:" + clientName,
		amount:  ledgerAmount(inv.Total.Neg()),
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s invoice  ; %s\n", inv.Date, clientName, periodComment(inv.Period))
	writeAligned(&b, lines)
	return b.String()
}

// Payment renders the payment that settles the invoice: cash in, receivables
// cleared. The invoice must be paid.
func Payment(inv *project.Invoice, clientName string) (string, error) {
	if !inv.Paid {
		return "", fmt.Errorf("invoice #%d is not paid", inv.Number)
	}

	lines := make([]postingLine, 0, len(inv.Taxes)+2)
	lines = append(lines, postingLine{
		account: "assets:bank:checking",
		amount:  ledgerAmount(inv.Total),
	})
	lines = append(lines, postingLine{
		account: "assets:receivable:" + clientName,
		amount:  ledgerAmount(inv.Subtotal.Neg()),
	})
	for _, tax := range inv.Taxes {
		lines = append(lines, postingLine{
			account: "assets:receivable:" + tax.Name,
			amount:  ledgerAmount(tax.Amount.Neg()),
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s payment  ; invoice #%d\n", inv.PaidOn, clientName, inv.Number)
	writeAligned(&b, lines)
	return b.String(), nil
}

type postingLine struct {
	account string
	amount  string
}

// writeAligned right-aligns amounts so the widest account/amount pair sets
// the column, matching hand-kept ledger files.
func writeAligned(b *strings.Builder, lines []postingLine) {
	maxLen := 0
	for _, l := range lines {
		if n := len(l.account) + len(l.amount); n > maxLen {
			maxLen = n
		}
	}
	for _, l := range lines {
		padding := maxLen - len(l.account) + 4
		fmt.Fprintf(b, "    %s%*s\n", l.account, padding, l.amount)
	}
}
