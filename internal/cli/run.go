package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/phasekit/phase/internal/engine"
	"github.com/phasekit/phase/internal/harness"
	"github.com/phasekit/phase/internal/journal"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Token    string

	// TokenGenerator allows overriding the run token generator (for
	// testing). If nil, defaults to UUIDv7Generator.
	TokenGenerator journal.TokenGenerator
}

// RunReport is the run command's output payload.
type RunReport struct {
	Scenario    string               `json:"scenario"`
	Pass        bool                 `json:"pass"`
	Transitions int                  `json:"transitions"`
	RunToken    string               `json:"run_token,omitempty"`
	Errors      []string             `json:"errors,omitempty"`
	Trace       []harness.TraceEvent `json:"trace"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario against its machine",
		Long: `Run a scripted scenario: compile the machine it names, drive the
registry through the scripted ticks and report the transition trace.

With --db, every transition is also recorded to a journal under a run
token, readable later with "phase trace".

Exit codes:
  0 - Scenario passed
  1 - Scenario expectations failed
  2 - Command error (bad scenario, bad machine, database error)

Examples:
  phase run ./scenarios/boot.yaml
  phase run ./scenarios/boot.yaml --db ./trace.db
  phase run ./scenarios/boot.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioCmd(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record transitions to this SQLite journal")
	cmd.Flags().StringVar(&opts.Token, "token", "", "run token for journal recording (default: generated)")

	return cmd
}

func runScenarioCmd(opts *RunOptions, scenarioPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := harness.LoadScenario(scenarioPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	formatter.VerboseLog("Loaded scenario %q (%d ticks)", scenario.Name, len(scenario.Ticks))

	var registryOpts []engine.RegistryOption
	var token string
	if opts.Database != "" {
		j, err := journal.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()

		token = runToken(opts, scenario)
		if err := j.BeginRun(context.Background(), token, scenario.Name); err != nil {
			return WrapExitError(ExitCommandError, "failed to begin run", err)
		}
		formatter.VerboseLog("Recording run %s to %s", token, opts.Database)

		recorder := journal.NewRecorder(j, token, slog.Default())
		registryOpts = append(registryOpts, engine.WithObserver(recorder.Observer()))
	}

	result, err := harness.Run(scenario, registryOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario could not run", err)
	}

	report := RunReport{
		Scenario:    scenario.Name,
		Pass:        result.Pass,
		Transitions: len(result.Trace),
		RunToken:    token,
		Errors:      result.Errors,
		Trace:       result.Trace,
	}

	if opts.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		printRunReport(cmd, report)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("%d expectation(s) failed", len(result.Errors)))
	}
	return nil
}

// runToken picks the token for journal recording: --token beats the
// scenario's run_token beats a generated UUIDv7.
func runToken(opts *RunOptions, scenario *harness.Scenario) string {
	if opts.Token != "" {
		return opts.Token
	}
	if scenario.RunToken != "" {
		return scenario.RunToken
	}
	gen := opts.TokenGenerator
	if gen == nil {
		gen = journal.UUIDv7Generator{}
	}
	return gen.Generate()
}

func printRunReport(cmd *cobra.Command, report RunReport) {
	out := cmd.OutOrStdout()
	for _, event := range report.Trace {
		fmt.Fprintf(out, "tick %d  %-12s %s %s\n",
			event.Tick, event.Kind, event.Key, formatChange(event.Old, event.New))
	}
	if report.RunToken != "" {
		fmt.Fprintf(out, "recorded as run %s\n", report.RunToken)
	}
	if report.Pass {
		fmt.Fprintf(out, "PASS %s (%d transitions)\n", report.Scenario, report.Transitions)
		return
	}
	for _, msg := range report.Errors {
		fmt.Fprintf(out, "  %s\n", msg)
	}
	fmt.Fprintf(out, "FAIL %s\n", report.Scenario)
}

func formatChange(before, after *string) string {
	switch {
	case before == nil && after == nil:
		return ""
	case before == nil:
		return fmt.Sprintf("-> %q", *after)
	case after == nil:
		return fmt.Sprintf("%q ->", *before)
	default:
		return fmt.Sprintf("%q -> %q", *before, *after)
	}
}
