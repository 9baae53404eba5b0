package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execValidate(t *testing.T, format string, machinePath string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{machinePath})
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidate_ValidMachine(t *testing.T) {
	out, err := execValidate(t, "text", filepath.Join("testdata", "machines", "arcade.cue"))
	require.NoError(t, err)
	assert.Contains(t, out, "valid")
	assert.Contains(t, out, "arcade")
}

func TestValidate_ValidMachineJSON(t *testing.T) {
	out, err := execValidate(t, "json", filepath.Join("testdata", "machines", "arcade.cue"))
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidate_CyclicMachineFails(t *testing.T) {
	out, err := execValidate(t, "text", filepath.Join("testdata", "machines", "cyclic.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E110")
}

func TestValidate_MissingFileIsCommandError(t *testing.T) {
	_, err := execValidate(t, "text", filepath.Join("testdata", "machines", "nope.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
