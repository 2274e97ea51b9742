// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/naka-gawa/pr-sheet-sync/internal/domain"
	"github.com/naka-gawa/pr-sheet-sync/internal/gateway"
)

// Reconciler keeps the row of one pull request in the sheet up to date.
type Reconciler struct {
	store  gateway.SheetStore
	logger zerolog.Logger
}

// NewReconciler creates a new Reconciler instance.
func NewReconciler(store gateway.SheetStore, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		store:  store,
		logger: logger,
	}
}

// Reconcile appends the pull request's row when the sheet has no row with its
// URL, or rewrites only the cells that changed in the first row that has it.
// The decision is made against a single read of the whole sheet. Read and
// write errors are returned as they are; nothing is retried.
func (r *Reconciler) Reconcile(ctx context.Context, target domain.SheetTarget, pr domain.PullRequest) (domain.Outcome, error) {
	row := domain.NewRow(pr)
	log := r.logger.With().Str("url", pr.URL).Logger()

	rows, err := r.store.Read(ctx, target.SpreadsheetID, target.ReadRange())
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("failed to read sheet %s: %w", target.SheetName, err)
	}

	rowNumber, existing := findRow(rows, pr.URL)
	if rowNumber == 0 {
		if err := r.store.Append(ctx, target.SpreadsheetID, target.AppendRange(), row.Cells()); err != nil {
			return domain.Outcome{}, fmt.Errorf("failed to append row to sheet %s: %w", target.SheetName, err)
		}
		log.Info().Msg("added new row")
		return domain.Outcome{Action: domain.ActionAppended}, nil
	}
	log = log.With().Int("row", rowNumber).Logger()

	if domain.Fingerprint(existing) == domain.Fingerprint(row.Cells()) {
		log.Info().Msg("no changes detected")
		return domain.Outcome{Action: domain.ActionUnchanged, Row: rowNumber}, nil
	}
	log.Debug().Msg("detected changes")

	cols := domain.RowFromCells(existing).Diff(row)
	if len(cols) == 0 {
		// The Sheets API trims trailing blank cells, so a short row is routine.
		// Anything else here has cells past the last column.
		if len(existing) < domain.RowWidth {
			log.Debug().Int("cells", len(existing)).Msg("no changes detected")
		} else {
			log.Warn().Int("cells", len(existing)).Msg("no changes detected in tracked columns")
		}
		return domain.Outcome{Action: domain.ActionUnchanged, Row: rowNumber}, nil
	}

	updates := make([]domain.CellUpdate, 0, len(cols))
	changed := make([]string, 0, len(cols))
	for _, col := range cols {
		updates = append(updates, domain.CellUpdate{
			Range: target.CellRange(col, rowNumber),
			Value: row[col],
		})
		changed = append(changed, domain.ColumnNames[col])
	}
	if err := r.store.BatchUpdate(ctx, target.SpreadsheetID, updates); err != nil {
		return domain.Outcome{}, fmt.Errorf("failed to update row %d in sheet %s: %w", rowNumber, target.SheetName, err)
	}
	log.Info().Strs("columns", changed).Msg("updated row")
	return domain.Outcome{Action: domain.ActionUpdated, Row: rowNumber, ChangedColumns: changed}, nil
}

// findRow returns the 1-based number and cells of the first data row whose key
// column equals url, or zero when there is none. Later duplicates are ignored.
func findRow(rows [][]string, url string) (int, []string) {
	if url == "" {
		return 0, nil
	}
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) > domain.KeyColumn && rows[i][domain.KeyColumn] == url {
			return i + 1, rows[i]
		}
	}
	return 0, nil
}
