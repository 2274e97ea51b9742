package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/pr-sheet-sync/internal/domain"
	"github.com/naka-gawa/pr-sheet-sync/internal/event"
	"github.com/naka-gawa/pr-sheet-sync/internal/usecase"
)

var syncCmd = &cobra.Command{
	Use:   "sync <payload|->",
	Short: "Synchronizes one pull request payload into the sheet",
	Long: `Synchronizes a pull request passed as JSON, either the flattened record built by the
workflow, a REST pull request object or a pull_request webhook event. Use "-" to read
the payload from standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		payload := []byte(args[0])
		if args[0] == "-" {
			var err error
			if payload, err = io.ReadAll(cmd.InOrStdin()); err != nil {
				return fmt.Errorf("failed to read payload from stdin: %w", err)
			}
		} else if path, ok := payloadFile(args[0]); ok {
			var err error
			if payload, err = os.ReadFile(path); err != nil {
				return fmt.Errorf("failed to read payload file: %w", err)
			}
		}
		pr, err := event.Parse(payload)
		if err != nil {
			return err
		}
		// Ineligible pull requests never need the sheet, so configuration
		// and credentials are not even loaded for them.
		if reason := domain.SkipReason(pr); reason != "" {
			verbose, _ := cmd.Flags().GetBool("verbose")
			logger := newLogger(verbose)
			logger.Info().Str("url", pr.URL).Str("author", pr.AuthorLogin).Str("reason", reason).Msg("PR skipped")
			return printJSON(cmd, domain.Outcome{Action: domain.ActionSkipped, Reason: reason})
		}

		a, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		syncer := usecase.NewSyncer(nil, usecase.NewReconciler(a.store, a.logger), a.logger)
		outcome, err := syncer.Sync(ctx, a.cfg.Target(), pr)
		if err != nil {
			return err
		}
		return printJSON(cmd, outcome)
	},
}

// payloadFile recognizes the @path form, e.g. @$GITHUB_EVENT_PATH.
func payloadFile(arg string) (string, bool) {
	if len(arg) > 1 && arg[0] == '@' {
		return arg[1:], true
	}
	return "", false
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
