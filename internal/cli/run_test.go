package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phasekit/phase/internal/journal"
	"github.com/phasekit/phase/internal/testutil"
)

func execRun(t *testing.T, opts *RunOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	if opts.RootOptions == nil {
		opts.RootOptions = &RootOptions{Format: "text"}
	}
	cmd := newRunCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRun_PassingScenario(t *testing.T) {
	out, err := execRun(t, &RunOptions{RootOptions: &RootOptions{Format: "text"}},
		filepath.Join("testdata", "scenarios", "boot.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "PASS boot")
	assert.Contains(t, out, "enter")
}

func TestRun_PassingScenarioJSON(t *testing.T) {
	out, err := execRun(t, &RunOptions{RootOptions: &RootOptions{Format: "json"}},
		filepath.Join("testdata", "scenarios", "boot.yaml"))
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestRun_FailingScenarioExitsOne(t *testing.T) {
	out, err := execRun(t, &RunOptions{RootOptions: &RootOptions{Format: "text"}},
		filepath.Join("testdata", "scenarios", "failing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL failing")
}

func TestRun_MissingScenarioIsCommandError(t *testing.T) {
	_, err := execRun(t, &RunOptions{RootOptions: &RootOptions{Format: "text"}},
		filepath.Join("testdata", "scenarios", "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_RecordsToJournal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "trace.db")

	opts := &RunOptions{
		RootOptions:    &RootOptions{Format: "text"},
		TokenGenerator: testutil.NewFixedRunGenerator("test-run-boot"),
	}
	out, err := execRun(t, opts,
		filepath.Join("testdata", "scenarios", "boot.yaml"),
		"--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "test-run-boot")

	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	defer j.Close()

	records, err := j.ReadRun(context.Background(), "test-run-boot")
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "game.phase", records[0].Key)
	assert.Equal(t, "enter", records[0].Kind)

	runs, err := j.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "boot", runs[0].Machine)
}

func TestRun_ExplicitTokenFlagWins(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "trace.db")

	opts := &RunOptions{
		RootOptions:    &RootOptions{Format: "text"},
		TokenGenerator: testutil.NewFixedRunGenerator("generator-token"),
	}
	_, err := execRun(t, opts,
		filepath.Join("testdata", "scenarios", "boot.yaml"),
		"--db", dbPath,
		"--token", "flag-token")
	require.NoError(t, err)

	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	defer j.Close()

	records, err := j.ReadRun(context.Background(), "flag-token")
	require.NoError(t, err)
	assert.NotEmpty(t, records)
}
