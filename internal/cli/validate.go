package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tac-tics/spectra-lexer/internal/rules"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <rules-file>",
		Short: "Check a rule definition file for structural errors",
		Long: `Load a rule definition file and run full structural validation:
schema shape, flag vocabulary, child rule references, letter spans, and
parent/child key coverage. Every violation found is reported.

Exit codes: 0 valid, 1 structural errors, 2 command error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			repo, err := rules.LoadFile(args[0])
			var structural *rules.StructuralError
			if errors.As(err, &structural) {
				_ = out.Emit(structural.Errors, func() string { return structural.Error() })
				return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d violations in %s", len(structural.Errors), args[0])}
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "loading rules", err)
			}

			return out.Emit(
				map[string]any{"valid": true, "rules": repo.Len()},
				func() string { return fmt.Sprintf("%s: %d rules, no violations", args[0], repo.Len()) },
			)
		},
	}
}
