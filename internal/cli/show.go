package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/clerkbill/clerk/internal/event"
	"github.com/clerkbill/clerk/internal/project"
	"github.com/clerkbill/clerk/internal/query"
	"github.com/clerkbill/clerk/internal/render"
)

// NewShowCommand creates the show command with its subcommands.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show clients and invoices",
	}
	cmd.AddCommand(newShowClientCommand(rootOpts))
	cmd.AddCommand(newShowRatesCommand(rootOpts))
	cmd.AddCommand(newShowTaxesCommand(rootOpts))
	cmd.AddCommand(newShowInvoiceCommand(rootOpts))
	return cmd
}

func newShowClientCommand(rootOpts *RootOptions) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "client <key>",
		Short: "Show a client's details",
		Long: `Show a client's details: name, address, services with their current
rates, taxes in force, and outstanding invoices.

With --as-of, the client is shown as it was on that date, projected from
only the events recorded up to then.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openFacade(rootOpts)
			if err != nil {
				return err
			}

			queryDate := event.DateOf(time.Now())
			var st *project.State
			if asOf == "" {
				st, err = f.State()
			} else {
				queryDate, err = event.ParseDate(asOf)
				if err != nil {
					return failure(err)
				}
				// Include every event recorded on the as-of day.
				st, err = f.StateAsOf(queryDate.Time().Add(24*time.Hour - time.Nanosecond))
			}
			if err != nil {
				return failure(err)
			}

			client, ok := st.Client(args[0])
			if !ok {
				return failure(fmt.Errorf("no client found for %q", args[0]))
			}

			text := formatClient(st, client, queryDate)
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Emit(text, clientListing{
				Key: client.Key, Name: client.Name, Address: client.Address, Removed: client.Removed,
			})
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "show the client as of this date (YYYY-MM-DD)")

	return cmd
}

func formatClient(st *project.State, client *project.Client, queryDate event.Date) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n\n%s\n%s\n", client.Key, client.Name, client.Address)
	if client.Removed {
		fmt.Fprintf(&b, "(removed)\n")
	}
	b.WriteString("\n")

	for _, name := range client.Services() {
		if rate, err := client.RateAsOf(name, queryDate); err == nil {
			fmt.Fprintf(&b, "%s %s\n", name, rate)
		} else {
			fmt.Fprintf(&b, "%s (no current rate set)\n", name)
		}
	}

	if taxes, err := client.TaxesAsOf(queryDate); err == nil {
		for _, tax := range taxes {
			fmt.Fprintf(&b, "Tax: %s\n", tax)
		}
	}

	if until, ok := st.BilledUntil(client.Key); ok {
		fmt.Fprintf(&b, "Billed Until: %s\n", until)
	}

	b.WriteString("Outstanding invoices:")
	for _, inv := range st.InvoicesFor(client.Key) {
		if !inv.Paid {
			fmt.Fprintf(&b, " #%d", inv.Number)
		}
	}
	b.WriteString("\n")
	return b.String()
}

// rateChangeListing is the JSON payload for one rate history entry.
type rateChangeListing struct {
	Effective string `json:"effective"`
	Rate      string `json:"rate"`
}

func newShowRatesCommand(rootOpts *RootOptions) *cobra.Command {
	var service string

	cmd := &cobra.Command{
		Use:           "rates <client>",
		Short:         "Show a client's rate history",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openFacade(rootOpts)
			if err != nil {
				return err
			}
			history, err := f.RateHistory(args[0], service)
			if err != nil {
				return failure(err)
			}

			var text strings.Builder
			listings := make([]rateChangeListing, 0, len(history))
			for _, change := range history {
				fmt.Fprintf(&text, "%s: %s\n", change.Effective, change.Rate)
				listings = append(listings, rateChangeListing{
					Effective: change.Effective.String(), Rate: change.Rate.String(),
				})
			}

			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Emit(text.String(), listings)
		},
	}

	cmd.Flags().StringVar(&service, "service", "", "service name (default: client default rate)")

	return cmd
}

// taxChangeListing is the JSON payload for one tax history entry.
type taxChangeListing struct {
	Effective string   `json:"effective"`
	Taxes     []string `json:"taxes"`
}

func newShowTaxesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "taxes <client>",
		Short:         "Show a client's tax history",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openFacade(rootOpts)
			if err != nil {
				return err
			}
			history, err := f.TaxHistory(args[0])
			if err != nil {
				return failure(err)
			}

			var text strings.Builder
			listings := make([]taxChangeListing, 0, len(history))
			for _, change := range history {
				listing := taxChangeListing{Effective: change.Effective.String()}
				fmt.Fprintf(&text, "%s:", change.Effective)
				if len(change.Taxes) == 0 {
					text.WriteString(" (none)")
				}
				for _, tax := range change.Taxes {
					fmt.Fprintf(&text, " %s", tax)
					listing.Taxes = append(listing.Taxes, tax.String())
				}
				text.WriteString("\n")
				listings = append(listings, listing)
			}

			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Emit(text.String(), listings)
		},
	}
	return cmd
}

func newShowInvoiceCommand(rootOpts *RootOptions) *cobra.Command {
	var view string

	cmd := &cobra.Command{
		Use:   "invoice <client> <number>",
		Short: "Show an invoice, optionally in a specialized format",
		Long: `Show one of a client's invoices by number.

Views:
  text      full invoice details (default)
  latex     LaTeX source of the invoice document
  posting   invoice as a ledger posting
  payment   payment as a ledger posting (paid invoices only)`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[1])
			if err != nil {
				return failure(fmt.Errorf("invalid invoice number %q", args[1]))
			}
			f, err := openFacade(rootOpts)
			if err != nil {
				return err
			}

			text, err := renderInvoiceView(f, args[0], number, view)
			if err != nil {
				return failure(err)
			}

			inv, err := f.InvoiceByNumber(args[0], number)
			if err != nil {
				return failure(err)
			}
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Emit(text, map[string]any{
				"invoice": invoiceListingOf(inv),
				"view":    view,
				"text":    text,
			})
		},
	}

	cmd.Flags().StringVar(&view, "view", "text", "view: text, latex, posting, or payment")

	return cmd
}

func renderInvoiceView(f *query.Facade, key string, number int, view string) (string, error) {
	inv, err := f.InvoiceByNumber(key, number)
	if err != nil {
		return "", err
	}
	client, err := f.Client(key)
	if err != nil {
		return "", err
	}

	switch view {
	case "text":
		return formatInvoice(inv), nil
	case "latex":
		return render.Latex(inv, client)
	case "posting":
		return render.Posting(inv, client.Name), nil
	case "payment":
		return render.Payment(inv, client.Name)
	default:
		return "", fmt.Errorf("unknown view %q", view)
	}
}

// formatInvoice renders the full plain-text invoice.
func formatInvoice(inv *project.Invoice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Invoice: #%d\nDate: %s\n\n", inv.Number, inv.Date)

	for _, item := range inv.Items {
		fmt.Fprintf(&b, "%s %s, %s @ %s: %s\n",
			item.Service, inv.Period, item.Hours, item.Rate, item.Amount)
	}

	fmt.Fprintf(&b, "\nSubtotal: %s\n", inv.Subtotal)
	for _, tax := range inv.Taxes {
		fmt.Fprintf(&b, "%s @ %s%%: %s\n", tax.Name, tax.Rate.Shift(2), tax.Amount)
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", inv.Total)

	if inv.Paid {
		fmt.Fprintf(&b, "Paid: %s\n", inv.PaidOn)
	}
	return b.String()
}
