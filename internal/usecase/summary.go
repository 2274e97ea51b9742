package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog"

	"github.com/naka-gawa/pr-sheet-sync/internal/domain"
	"github.com/naka-gawa/pr-sheet-sync/internal/gateway"
)

// Summarizer is the use case for reporting what the sheet currently tracks.
type Summarizer struct {
	store  gateway.SheetStore
	logger zerolog.Logger
}

// NewSummarizer creates a new Summarizer instance.
func NewSummarizer(store gateway.SheetStore, logger zerolog.Logger) *Summarizer {
	return &Summarizer{
		store:  store,
		logger: logger,
	}
}

// Summarize reads the sheet once and aggregates its data rows per repository.
// Rows without a URL are not pull request rows and are ignored.
func (s *Summarizer) Summarize(ctx context.Context, target domain.SheetTarget) ([]*domain.RepoSummary, error) {
	s.logger.Debug().Str("sheet", target.SheetName).Msg("starting summary")

	rows, err := s.store.Read(ctx, target.SpreadsheetID, target.ReadRange())
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", target.SheetName, err)
	}

	summaries := make(map[string]*domain.RepoSummary)
	reviewers := make(map[string]stats.Float64Data)
	for i := 1; i < len(rows); i++ {
		row := domain.RowFromCells(rows[i])
		if row[domain.KeyColumn] == "" {
			continue
		}
		repoName := row[domain.ColRepoName]
		if _, ok := summaries[repoName]; !ok {
			summaries[repoName] = &domain.RepoSummary{Name: repoName}
		}
		summaries[repoName].PullRequests++
		if row[domain.ColMergedDate] != "" {
			summaries[repoName].Merged++
		}
		reviewers[repoName] = append(reviewers[repoName], float64(countLogins(row[domain.ColReviewers])))
	}

	sorted := make([]*domain.RepoSummary, 0, len(summaries))
	for repoName, summary := range summaries {
		// Every repository has at least one sample, so neither call can fail.
		summary.ReviewersMean, _ = stats.Mean(reviewers[repoName])
		summary.ReviewersMedian, _ = stats.Median(reviewers[repoName])
		sorted = append(sorted, summary)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	s.logger.Debug().Int("repositories", len(sorted)).Msg("summary complete")
	return sorted, nil
}

func countLogins(cell string) int {
	n := 0
	for _, l := range strings.Split(cell, ",") {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n
}
