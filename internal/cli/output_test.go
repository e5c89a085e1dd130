package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.Emit("Added client acme\n", map[string]string{"key": "acme"})
	require.NoError(t, err)
	assert.Equal(t, "Added client acme\n", buf.String())
}

func TestOutputFormatter_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Emit("Added client acme\n", map[string]string{"key": "acme"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "acme", data["key"])
}

func TestExitError(t *testing.T) {
	underlying := errors.New("no client found for \"ghost\"")
	err := WrapExitError(ExitFailure, "command rejected", underlying)

	assert.Equal(t, "command rejected: no client found for \"ghost\"", err.Error())
	assert.ErrorIs(t, err, underlying)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "bad log", nil)))
	// Non-ExitError failures default to the generic failure code.
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}
