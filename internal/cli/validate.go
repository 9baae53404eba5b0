package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phasekit/phase/internal/compiler"
)

// ValidationResult holds validation results for one machine file.
type ValidationResult struct {
	Machine string                     `json:"machine"`
	Valid   bool                       `json:"valid"`
	States  int                        `json:"states"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <machine.cue>",
		Short: "Validate a machine definition",
		Long: `Validate a CUE machine definition without building a registry.

Performs syntax checking, reference checking (computed sources, sub
parents) and dependency cycle detection.

Exit codes:
  0 - Machine is valid
  1 - Validation errors found
  2 - Command error (file not found, CUE syntax error)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, machinePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	def, err := compiler.LoadMachine(machinePath)
	if err != nil {
		_ = formatter.Error("E001", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load machine", err)
	}

	formatter.VerboseLog("Loaded machine %q with %d state(s)", def.Name, len(def.States))

	result := ValidationResult{
		Machine: def.Name,
		States:  len(def.States),
		Errors:  compiler.Validate(def),
	}
	result.Valid = len(result.Errors) == 0

	if !result.Valid {
		if opts.Format == "json" {
			if err := formatter.Success(result); err != nil {
				return err
			}
		} else {
			var lines []string
			for _, verr := range result.Errors {
				lines = append(lines, "  "+verr.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Machine %q is invalid:\n%s\n",
				def.Name, strings.Join(lines, "\n"))
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(result.Errors)))
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Machine %q is valid (%d states).\n", def.Name, result.States)
	return nil
}
