package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/clerkbill/clerk/internal/event"
	"github.com/clerkbill/clerk/internal/project"
)

// NewListCommand creates the list command with its subcommands.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients, services, or invoices",
	}
	cmd.AddCommand(newListClientsCommand(rootOpts))
	cmd.AddCommand(newListServicesCommand(rootOpts))
	cmd.AddCommand(newListInvoicesCommand(rootOpts))
	return cmd
}

// clientListing is the JSON payload for one listed client.
type clientListing struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Removed bool   `json:"removed,omitempty"`
}

func newListClientsCommand(rootOpts *RootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:           "clients",
		Short:         "List current clients",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openFacade(rootOpts)
			if err != nil {
				return err
			}
			clients, err := f.Clients(all)
			if err != nil {
				return failure(err)
			}

			var text strings.Builder
			listings := make([]clientListing, 0, len(clients))
			for _, c := range clients {
				suffix := ""
				if c.Removed {
					suffix = " (removed)"
				}
				fmt.Fprintf(&text, "%s: %s%s\n", c.Key, c.Name, suffix)
				listings = append(listings, clientListing{
					Key: c.Key, Name: c.Name, Address: c.Address, Removed: c.Removed,
				})
			}

			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Emit(text.String(), listings)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include removed clients")

	return cmd
}

// serviceListing is the JSON payload for one listed service.
type serviceListing struct {
	Service string `json:"service"`
	Rate    string `json:"rate,omitempty"`
}

func newListServicesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "services <client>",
		Short:         "List services billable to a client",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openFacade(rootOpts)
			if err != nil {
				return err
			}
			client, err := f.Client(args[0])
			if err != nil {
				return failure(err)
			}

			var text strings.Builder
			var listings []serviceListing
			today := event.DateOf(time.Now())
			for _, name := range client.Services() {
				listing := serviceListing{Service: name}
				rate, err := client.RateAsOf(name, today)
				if err == nil {
					listing.Rate = rate.String()
					fmt.Fprintf(&text, "%s %s\n", name, rate)
				} else {
					fmt.Fprintf(&text, "%s (no current rate set)\n", name)
				}
				listings = append(listings, listing)
			}

			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Emit(text.String(), listings)
		},
	}
	return cmd
}

// invoiceListing is the JSON payload for one listed invoice.
type invoiceListing struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Date   string `json:"date"`
	Total  string `json:"total"`
	Paid   bool   `json:"paid"`
	PaidOn string `json:"paid_on,omitempty"`
}

func newListInvoicesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "invoices <client>",
		Short:         "List invoices for a client",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openFacade(rootOpts)
			if err != nil {
				return err
			}
			invoices, err := f.InvoicesForClient(args[0])
			if err != nil {
				return failure(err)
			}

			var text strings.Builder
			listings := make([]invoiceListing, 0, len(invoices))
			for _, inv := range invoices {
				listings = append(listings, invoiceListingOf(inv))
				fmt.Fprintf(&text, "#%d %s, %s (%s)\n", inv.Number, inv.Date, inv.Total, paidLabel(inv))
			}

			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Emit(text.String(), listings)
		},
	}
	return cmd
}

func invoiceListingOf(inv *project.Invoice) invoiceListing {
	listing := invoiceListing{
		ID:     inv.ID,
		Number: inv.Number,
		Date:   inv.Date.String(),
		Total:  inv.Total.String(),
		Paid:   inv.Paid,
	}
	if inv.Paid {
		listing.PaidOn = inv.PaidOn.String()
	}
	return listing
}

func paidLabel(inv *project.Invoice) string {
	if inv.Paid {
		return fmt.Sprintf("Paid %s", inv.PaidOn)
	}
	return "Unpaid"
}
