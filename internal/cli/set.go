package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clerkbill/clerk/internal/event"
)

// NewSetCommand creates the set command with its subcommands.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set properties of clients and services",
	}
	cmd.AddCommand(newSetRateCommand(rootOpts))
	cmd.AddCommand(newSetTaxesCommand(rootOpts))
	cmd.AddCommand(newSetNameCommand(rootOpts))
	cmd.AddCommand(newSetAddressCommand(rootOpts))
	return cmd
}

func newSetRateCommand(rootOpts *RootOptions) *cobra.Command {
	var amount, code, service, effective string

	cmd := &cobra.Command{
		Use:   "rate <client>",
		Short: "Set the billing rate for a client",
		Long: `Set an effective-dated hourly billing rate.

Without --service the rate becomes the client's default; with --service it
overrides the default for that service only. Billing periods are billed at
the rate in force at the period's end.

Example:
  clerk set rate acme --amount 50 --currency USD --effective 2024-01-01`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := parseRate(amount, code)
			if err != nil {
				return failure(err)
			}
			from, err := event.ParseDate(effective)
			if err != nil {
				return failure(err)
			}
			f, err := openFacade(rootOpts)
			if err != nil {
				return err
			}
			if err := f.SetRate(args[0], service, rate, from); err != nil {
				return failure(err)
			}
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Emit(
				fmt.Sprintf("Set rate for %s to %s, effective %s\n", args[0], rate, from),
				map[string]string{"key": args[0], "service": service, "rate": rate.String(), "effective": from.String()},
			)
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "hourly amount (required)")
	cmd.Flags().StringVar(&code, "currency", "", "ISO 4217 currency code (required)")
	cmd.Flags().StringVar(&service, "service", "", "service the rate applies to (default: whole client)")
	cmd.Flags().StringVar(&effective, "effective", "", "date the rate takes effect, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("currency")
	_ = cmd.MarkFlagRequired("effective")

	return cmd
}

func newSetTaxesCommand(rootOpts *RootOptions) *cobra.Command {
	var taxes []string
	var effective string

	cmd := &cobra.Command{
		Use:   "taxes <client>",
		Short: "Set the tax rates for a client",
		Long: `Set the full set of tax rates in force from the effective date. Rates are
fractions: --tax VAT=0.08 is 8%. Giving no --tax records a tax-exempt
configuration, which is distinct from never having set taxes.

Example:
  clerk set taxes acme --tax GST=0.05 --tax QST=0.09975 --effective 2024-01-01`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseTaxes(taxes)
			if err != nil {
				return failure(err)
			}
			from, err := event.ParseDate(effective)
			if err != nil {
				return failure(err)
			}
			f, err := openFacade(rootOpts)
			if err != nil {
				return err
			}
			if err := f.SetTaxes(args[0], parsed, from); err != nil {
				return failure(err)
			}

			var text strings.Builder
			fmt.Fprintf(&text, "Set taxes for %s, effective %s:\n", args[0], from)
			for _, tax := range parsed {
				fmt.Fprintf(&text, "  %s\n", tax)
			}
			if len(parsed) == 0 {
				text.WriteString("  (none)\n")
			}
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Emit(text.String(), map[string]any{
				"key": args[0], "taxes": taxes, "effective": from.String(),
			})
		},
	}

	cmd.Flags().StringArrayVar(&taxes, "tax", nil, "tax as name=rate, repeatable")
	cmd.Flags().StringVar(&effective, "effective", "", "date the taxes take effect, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("effective")

	return cmd
}

func newSetNameCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "name <client> <name>",
		Short:         "Change a client's name",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openFacade(rootOpts)
			if err != nil {
				return err
			}
			if err := f.RenameClient(args[0], args[1]); err != nil {
				return failure(err)
			}
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Emit(
				fmt.Sprintf("Renamed client %s to %s\n", args[0], args[1]),
				map[string]string{"key": args[0], "name": args[1]},
			)
		},
	}
	return cmd
}

func newSetAddressCommand(rootOpts *RootOptions) *cobra.Command {
	var address []string

	cmd := &cobra.Command{
		Use:           "address <client>",
		Short:         "Change a client's address",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openFacade(rootOpts)
			if err != nil {
				return err
			}
			addr := strings.Join(address, "\n")
			if err := f.ReaddressClient(args[0], addr); err != nil {
				return failure(err)
			}
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Emit(
				fmt.Sprintf("Changed address for %s to:\n\n%s\n", args[0], addr),
				map[string]string{"key": args[0], "address": addr},
			)
		},
	}

	cmd.Flags().StringArrayVar(&address, "address", nil, "address line, repeat for multiple lines")
	_ = cmd.MarkFlagRequired("address")

	return cmd
}
