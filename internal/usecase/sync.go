package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/pr-sheet-sync/internal/domain"
	"github.com/naka-gawa/pr-sheet-sync/internal/gateway"
)

// ErrNoFetcher is returned by SyncRefs when the Syncer was built without a Fetcher.
var ErrNoFetcher = errors.New("no pull request fetcher configured")

// maxConcurrentFetches bounds the GitHub requests made by SyncRefs.
const maxConcurrentFetches = 4

// Syncer is the use case for synchronizing pull requests into the sheet.
// It filters out ineligible pull requests before the sheet is touched.
type Syncer struct {
	fetcher    gateway.Fetcher
	reconciler *Reconciler
	logger     zerolog.Logger
}

// NewSyncer creates a new Syncer instance. fetcher may be nil when pull
// requests are only passed in directly.
func NewSyncer(fetcher gateway.Fetcher, reconciler *Reconciler, logger zerolog.Logger) *Syncer {
	return &Syncer{
		fetcher:    fetcher,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Sync records a single pull request.
func (s *Syncer) Sync(ctx context.Context, target domain.SheetTarget, pr domain.PullRequest) (domain.Outcome, error) {
	if reason := domain.SkipReason(pr); reason != "" {
		s.logger.Info().Str("url", pr.URL).Str("author", pr.AuthorLogin).Str("reason", reason).Msg("PR skipped")
		return domain.Outcome{Action: domain.ActionSkipped, Reason: reason}, nil
	}
	return s.reconciler.Reconcile(ctx, target, pr)
}

// SyncRefs fetches the referenced pull requests concurrently, then syncs them
// one after another in the given order. A failed fetch aborts the run before
// any sheet call is made.
func (s *Syncer) SyncRefs(ctx context.Context, target domain.SheetTarget, refs []domain.PullRequestRef) ([]domain.Outcome, error) {
	if s.fetcher == nil {
		return nil, ErrNoFetcher
	}

	prs := make([]*domain.PullRequest, len(refs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentFetches)
	for i, ref := range refs {
		i, ref := i, ref
		eg.Go(func() error {
			pr, err := s.fetcher.FetchPullRequest(egCtx, ref)
			if err != nil {
				return err
			}
			prs[i] = pr
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	s.logger.Debug().Int("count", len(prs)).Msg("all pull requests fetched")

	outcomes := make([]domain.Outcome, 0, len(prs))
	for i, pr := range prs {
		outcome, err := s.Sync(ctx, target, *pr)
		if err != nil {
			return outcomes, fmt.Errorf("failed to sync %s: %w", refs[i], err)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}
