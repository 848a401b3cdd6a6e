package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tac-tics/spectra-lexer/internal/analyzer"
	"github.com/tac-tics/spectra-lexer/internal/lexer"
	"github.com/tac-tics/spectra-lexer/internal/rules"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	AllKeys bool
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze <rules-file> <keys> <word>",
		Short: "Decompose one translation",
		Long: `Run a single lexer query mapping raw stroke notation to a word and
print the selected decomposition.

Example:
  spectra analyze rules.yaml TEFT test
  spectra analyze rules.yaml KAT/HROG catalog --all-keys --format json`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := rules.LoadFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "loading rules", err)
			}

			d := analyzer.New(repo).Query(args[1], args[2], opts.AllKeys)

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Emit(d, func() string { return renderDecomposition(d) })
		},
	}

	cmd.Flags().BoolVar(&opts.AllKeys, "all-keys", false, "only accept decompositions matching every key")

	return cmd
}

// renderDecomposition formats a decomposition as a small text table: one
// header line for the translation, one line per rule span.
func renderDecomposition(d lexer.Decomposition) string {
	var b strings.Builder
	status := "complete"
	switch {
	case d.Fallback():
		status = "unmatched"
	case !d.Complete():
		status = fmt.Sprintf("partial, %s left over", d.Unmatched)
	}
	fmt.Fprintf(&b, "%s -> %q (%s)\n", d.Keys, d.Word, status)
	for _, item := range d.Map {
		letters := item.Rule.Letters
		if rules.IsUnmatched(item.Rule) {
			letters = "?"
		}
		fmt.Fprintf(&b, "  %-12s %-10s %q at %d\n", item.Rule.ID, item.Rule.Keys, letters, item.Start)
	}
	return strings.TrimRight(b.String(), "\n")
}
