package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/phasekit/phase/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunToken string
	State    string // optional - filter to one state key
}

// TraceResult holds the complete trace output for one run.
type TraceResult struct {
	RunToken string           `json:"run_token"`
	Timeline []journal.Record `json:"timeline"`
	Stats    TraceStats       `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalTransitions int            `json:"total_transitions"`
	Ticks            uint64         `json:"ticks"`
	ByKind           map[string]int `json:"by_kind"`
}

// RunListing is the output when no run token is given.
type RunListing struct {
	Runs []journal.RunInfo `json:"runs"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Read recorded transitions from a journal",
		Long: `Read a run's transition trace from a journal database.

Without --run, lists all recorded runs. With --run, prints the run's
transitions in flush order; --state narrows to one state's history.

Examples:
  phase trace --db ./trace.db
  phase trace --db ./trace.db --run test-run-1
  phase trace --db ./trace.db --run test-run-1 --state game.phase
  phase trace --db ./trace.db --run test-run-1 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunToken, "run", "", "run token to trace (omit to list runs)")
	cmd.Flags().StringVar(&opts.State, "state", "", "filter to one state key")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	j, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()

	if opts.RunToken == "" {
		return listRuns(ctx, j, opts, cmd)
	}

	var records []journal.Record
	if opts.State != "" {
		records, err = j.ReadStateHistory(ctx, opts.RunToken, opts.State)
	} else {
		records, err = j.ReadRun(ctx, opts.RunToken)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	if len(records) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no transitions recorded for run %q", opts.RunToken))
	}

	result := TraceResult{
		RunToken: opts.RunToken,
		Timeline: records,
		Stats:    buildStats(records),
	}

	if opts.Format == "json" {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s\n", result.RunToken)
	for _, rec := range result.Timeline {
		fmt.Fprintf(out, "  seq %-4d tick %-4d %-12s %s %s\n",
			rec.Seq, rec.Tick, rec.Kind, rec.Key, formatChange(rec.Old, rec.New))
	}
	fmt.Fprintf(out, "%d transition(s) over %d tick(s)\n",
		result.Stats.TotalTransitions, result.Stats.Ticks)
	return nil
}

func listRuns(ctx context.Context, j *journal.Journal, opts *TraceOptions, cmd *cobra.Command) error {
	runs, err := j.Runs(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(RunListing{Runs: runs})
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(out, "%s  machine=%s  transitions=%d\n", run.Token, run.Machine, run.Transitions)
	}
	return nil
}

func buildStats(records []journal.Record) TraceStats {
	stats := TraceStats{
		TotalTransitions: len(records),
		ByKind:           make(map[string]int),
	}
	for _, rec := range records {
		stats.ByKind[rec.Kind]++
		if rec.Tick > stats.Ticks {
			stats.Ticks = rec.Tick
		}
	}
	return stats
}
