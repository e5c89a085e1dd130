package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "clerk", cmd.Use)
	assert.Contains(t, cmd.Long, "event")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"add", "list", "show", "set", "invoice", "mark-paid", "remove"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	fileFlag := cmd.PersistentFlags().Lookup("file")
	require.NotNil(t, fileFlag)
	assert.Equal(t, "f", fileFlag.Shorthand)
	assert.Equal(t, DefaultHistoryFile, fileFlag.DefValue)

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestAddClientCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	addClient, _, err := cmd.Find([]string{"add", "client"})
	require.NoError(t, err)

	nameFlag := addClient.Flags().Lookup("name")
	require.NotNil(t, nameFlag)

	addressFlag := addClient.Flags().Lookup("address")
	require.NotNil(t, addressFlag)
}

func TestSetRateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	setRate, _, err := cmd.Find([]string{"set", "rate"})
	require.NoError(t, err)

	for _, name := range []string{"amount", "currency", "service", "effective"} {
		require.NotNil(t, setRate.Flags().Lookup(name), "flag --%s should exist", name)
	}
}

func TestInvoiceCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	invoiceCmd, _, err := cmd.Find([]string{"invoice"})
	require.NoError(t, err)

	fromFlag := invoiceCmd.Flags().Lookup("from")
	require.NotNil(t, fromFlag)
	// --until defaults to the end of the start month, so its default is empty
	untilFlag := invoiceCmd.Flags().Lookup("until")
	require.NotNil(t, untilFlag)
	assert.Equal(t, "", untilFlag.DefValue)

	hoursFlag := invoiceCmd.Flags().Lookup("hours")
	require.NotNil(t, hoursFlag)
}

func TestShowInvoiceCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	showInvoice, _, err := cmd.Find([]string{"show", "invoice"})
	require.NoError(t, err)

	viewFlag := showInvoice.Flags().Lookup("view")
	require.NotNil(t, viewFlag)
	assert.Equal(t, "text", viewFlag.DefValue)
}

func TestInvalidFormatRejected(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--format", "xml", "list", "clients"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
