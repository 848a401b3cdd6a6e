package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/tac-tics/spectra-lexer/internal/analyzer"
	"github.com/tac-tics/spectra-lexer/internal/index"
	"github.com/tac-tics/spectra-lexer/internal/rules"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Database string
	Workers  int
}

// batchSummary is the batch command's result payload.
type batchSummary struct {
	Total    int    `json:"total"`
	Complete int    `json:"complete"`
	Elapsed  string `json:"elapsed"`
	RunID    string `json:"run_id,omitempty"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <rules-file> <translations-file>",
		Short: "Analyze a whole translation set",
		Long: `Run the lexer over every translation in a dictionary file, in
parallel, with all-keys matching forced on. With --db, complete
decompositions are saved to the examples index.

Example:
  spectra batch rules.yaml dict.json --db examples.db --workers 8`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := rules.LoadFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "loading rules", err)
			}
			pairs, err := analyzer.LoadPairs(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "loading translations", err)
			}
			slog.Debug("starting bulk analysis", "rules", repo.Len(), "pairs", len(pairs), "workers", opts.Workers)

			start := time.Now()
			results := analyzer.New(repo).QueryBulk(cmd.Context(), pairs, analyzer.WithWorkers(opts.Workers))

			summary := batchSummary{Total: len(results), Elapsed: time.Since(start).Round(time.Millisecond).String()}
			for _, d := range results {
				if d.Complete() {
					summary.Complete++
				}
			}

			if opts.Database != "" {
				store, err := index.Open(opts.Database)
				if err != nil {
					return WrapExitError(ExitCommandError, "opening index", err)
				}
				defer store.Close()
				run, err := store.SaveRun(cmd.Context(), results)
				if err != nil {
					return WrapExitError(ExitCommandError, "saving run", err)
				}
				summary.RunID = run.ID
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Emit(summary, func() string {
				s := fmt.Sprintf("%d analyzed, %d complete, %s", summary.Total, summary.Complete, summary.Elapsed)
				if summary.RunID != "" {
					s += ", run " + summary.RunID
				}
				return s
			})
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to examples index database")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "worker count (default GOMAXPROCS)")

	return cmd
}
