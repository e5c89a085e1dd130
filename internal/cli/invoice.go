package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/clerkbill/clerk/internal/event"
)

// NewInvoiceCommand creates the invoice command.
func NewInvoiceCommand(rootOpts *RootOptions) *cobra.Command {
	var from, until string
	var hours []string

	cmd := &cobra.Command{
		Use:   "invoice <client>",
		Short: "Generate a new invoice for a client",
		Long: `Generate and record an invoice billing the given hours per service over a
period. The rate and taxes in force at the period's end apply to the whole
period. Amounts are computed once and frozen into the invoice; later rate
or tax changes never alter it.

--until defaults to the end of --from's month.

Example:
  clerk invoice acme --from 2024-02-01 --hours consulting=10`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := event.ParseDate(from)
			if err != nil {
				return failure(err)
			}
			end, err := parseDateFlag(until, start.EndOfMonth())
			if err != nil {
				return failure(err)
			}
			parsedHours, err := parseHours(hours)
			if err != nil {
				return failure(err)
			}

			f, err := openFacade(rootOpts)
			if err != nil {
				return err
			}
			if _, err := f.CreateInvoice(args[0], event.NewPeriod(start, end), parsedHours); err != nil {
				return failure(err)
			}

			inv, err := f.InvoicesForClient(args[0])
			if err != nil {
				return failure(err)
			}
			created := inv[len(inv)-1]
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Emit(
				fmt.Sprintf("Added invoice:\n\n%s", formatInvoice(created)),
				invoiceListingOf(created),
			)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "period start, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&until, "until", "", "period end, YYYY-MM-DD (default: end of start month)")
	cmd.Flags().StringArrayVar(&hours, "hours", nil, "hours as service=hours, repeatable (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("hours")

	return cmd
}

// NewMarkPaidCommand creates the mark-paid command.
func NewMarkPaidCommand(rootOpts *RootOptions) *cobra.Command {
	var on string

	cmd := &cobra.Command{
		Use:   "mark-paid <client> <number>",
		Short: "Record an invoice as paid",
		Long: `Record a payment against an invoice. Paying twice is rejected: the second
attempt fails and records nothing.`,
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

			paidOn, err := parseDateFlag(on, event.DateOf(time.Now()))
			if err != nil {
				return failure(err)
			}

			if err := f.MarkPaid(args[0], number, paidOn); err != nil {
				return failure(err)
			}
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Emit(
				fmt.Sprintf("Marked invoice #%d as paid on %s\n", number, paidOn),
				map[string]any{"key": args[0], "number": number, "on": paidOn.String()},
			)
		},
	}

	cmd.Flags().StringVar(&on, "on", "", "payment date, YYYY-MM-DD (default: today)")

	return cmd
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <client>",
		Short: "Remove a client, all history will be maintained",
		Long: `Remove a client from active listings. The removal is soft: the client's
history, rates and invoices are retained and stay queryable, and the key
is never reused.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openFacade(rootOpts)
			if err != nil {
				return err
			}
			if err := f.RemoveClient(args[0]); err != nil {
				return failure(err)
			}
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Emit(
				fmt.Sprintf("Removed client %s (history preserved)\n", args[0]),
				map[string]string{"key": args[0]},
			)
		},
	}
	return cmd
}
