package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewAddCommand creates the add command with its client and service
// subcommands.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new client or service",
	}
	cmd.AddCommand(newAddClientCommand(rootOpts))
	cmd.AddCommand(newAddServiceCommand(rootOpts))
	return cmd
}

func newAddClientCommand(rootOpts *RootOptions) *cobra.Command {
	var name string
	var address []string

	cmd := &cobra.Command{
		Use:   "client <key>",
		Short: "Add a new client",
		Long: `Add a new client under a stable key.

The key identifies the client in every other command and is never reused,
not even after the client is removed.

Example:
  clerk add client acme --name "Acme Corp" --address "1 Main St" --address "Springfield"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			f, err := openFacade(rootOpts)
			if err != nil {
				return err
			}
			addr := strings.Join(address, "\n")
			if err := f.AddClient(key, name, addr); err != nil {
				return failure(err)
			}
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Emit(
				fmt.Sprintf("Added client %s:\n\n%s\n%s\n", key, name, addr),
				map[string]string{"key": key, "name": name, "address": addr},
			)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "client display name (required)")
	cmd.Flags().StringArrayVar(&address, "address", nil, "address line, repeat for multiple lines")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newAddServiceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "service <client> <service>",
		Short:         "Register a billable service for a client",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, service := args[0], args[1]
			f, err := openFacade(rootOpts)
			if err != nil {
				return err
			}
			if err := f.AddService(key, service); err != nil {
				return failure(err)
			}
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Emit(
				fmt.Sprintf("Added service %s for client %s\n", service, key),
				map[string]string{"key": key, "service": service},
			)
		},
	}
	return cmd
}
