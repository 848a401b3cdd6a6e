package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tac-tics/spectra-lexer/internal/index"
)

// ExamplesOptions holds flags for the examples command.
type ExamplesOptions struct {
	*RootOptions
	Limit int
}

// NewExamplesCommand creates the examples command.
func NewExamplesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExamplesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "examples <db> <rule-id>",
		Short: "List translations that exercise a rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := index.Open(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "opening index", err)
			}
			defer store.Close()

			examples, err := store.ExamplesFor(cmd.Context(), args[1], opts.Limit)
			if err != nil {
				return WrapExitError(ExitCommandError, "querying index", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Emit(examples, func() string {
				if len(examples) == 0 {
					return fmt.Sprintf("no examples for rule %q", args[1])
				}
				lines := make([]string, len(examples))
				for i, ex := range examples {
					lines[i] = fmt.Sprintf("%-16s %s", ex.Keys, ex.Word)
				}
				return strings.Join(lines, "\n")
			})
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum examples to list (0 = all)")

	return cmd
}
