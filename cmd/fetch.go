package cmd

import (
	"github.com/spf13/cobra"

	"github.com/naka-gawa/pr-sheet-sync/internal/config"
	"github.com/naka-gawa/pr-sheet-sync/internal/domain"
	"github.com/naka-gawa/pr-sheet-sync/internal/gateway"
	"github.com/naka-gawa/pr-sheet-sync/internal/usecase"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <pull-request>...",
	Short: "Fetches pull requests from GitHub and synchronizes them into the sheet",
	Long: `Fetches each pull request from GitHub and synchronizes it into the sheet, in the
order given. A pull request is referenced by its API URL, its web URL or owner/repo#number.
GITHUB_TOKEN is used when set and is required with --api graphql.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		refs := make([]domain.PullRequestRef, 0, len(args))
		for _, arg := range args {
			ref, err := domain.ParsePullRequestRef(arg)
			if err != nil {
				return err
			}
			refs = append(refs, ref)
		}

		a, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		githubGateway, err := gateway.NewGitHubGateway(a.cfg.GitHubToken, a.cfg.GitHubAPI, a.logger)
		if err != nil {
			return err
		}
		syncer := usecase.NewSyncer(githubGateway, usecase.NewReconciler(a.store, a.logger), a.logger)
		outcomes, err := syncer.SyncRefs(ctx, a.cfg.Target(), refs)
		if err != nil {
			return err
		}
		a.logger.Info().Int("count", len(outcomes)).Msg("script completed successfully")
		return printJSON(cmd, outcomes)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().String("api", gateway.APIREST, "GitHub API used to fetch pull requests (rest or graphql, env GITHUB_API)")
	_ = v.BindPFlag(config.KeyGitHubAPI, fetchCmd.Flags().Lookup("api"))
}
