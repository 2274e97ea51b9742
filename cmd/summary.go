package cmd

import (
	"github.com/spf13/cobra"

	"github.com/naka-gawa/pr-sheet-sync/internal/usecase"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarizes the tracked pull requests per repository as JSON",
	Long:  `Reads the sheet and outputs, per repository, how many pull requests are tracked, how many are merged, and the mean and median number of requested reviewers.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		results, err := usecase.NewSummarizer(a.store, a.logger).Summarize(ctx, a.cfg.Target())
		if err != nil {
			return err
		}
		return printJSON(cmd, results)
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
