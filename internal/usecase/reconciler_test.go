package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/pr-sheet-sync/internal/domain"
)

var (
	testTarget = domain.SheetTarget{SpreadsheetID: "sheet-id", SheetName: "PRs"}
	header     = []string{"Merged", "URL", "Author", "Title", "Repo", "Updated", "Reviewers", "Assignees"}
)

func newTestPR(t *testing.T) domain.PullRequest {
	t.Helper()
	updated, err := time.Parse(time.RFC3339, "2024-01-02T10:00:00Z")
	require.NoError(t, err)
	return domain.PullRequest{
		URL:               "https://x/pr/1",
		AuthorLogin:       "alice",
		Title:             "Fix bug",
		RepoName:          "repo",
		UpdatedAt:         updated,
		AuthorType:        "User",
		AuthorAssociation: "CONTRIBUTOR",
	}
}

// TestReconciler_Reconcile uses a table-driven approach to test the reconciler.
func TestReconciler_Reconcile(t *testing.T) {
	pr := newTestPR(t)
	projected := []string{"", "https://x/pr/1", "alice", "Fix bug", "repo", "2024-01-02", "", ""}
	stale := []string{"", "https://x/pr/1", "alice", "Old title", "repo", "2024-01-02", "", ""}
	other := []string{"", "https://x/pr/2", "bob", "Other", "repo", "2024-01-01", "", ""}
	readErr := errors.New("sheets api unavailable")
	writeErr := errors.New("quota exceeded")

	testCases := []struct {
		name            string
		rows            [][]string
		readErr         error
		expectAppend    bool
		appendErr       error
		expectedUpdates []domain.CellUpdate
		updateErr       error
		expected        domain.Outcome
		expectedErr     error
	}{
		{
			name:         "header only - appends the projected row",
			rows:         [][]string{header},
			expectAppend: true,
			expected:     domain.Outcome{Action: domain.ActionAppended},
		},
		{
			name:         "no data at all - appends",
			rows:         [][]string{},
			expectAppend: true,
			expected:     domain.Outcome{Action: domain.ActionAppended},
		},
		{
			name:         "header is never matched",
			rows:         [][]string{projected, other},
			expectAppend: true,
			expected:     domain.Outcome{Action: domain.ActionAppended},
		},
		{
			name:     "identical row - no write",
			rows:     [][]string{header, other, projected},
			expected: domain.Outcome{Action: domain.ActionUnchanged, Row: 3},
		},
		{
			name:            "one changed cell - single cell update",
			rows:            [][]string{header, stale},
			expectedUpdates: []domain.CellUpdate{{Range: "PRs!D2", Value: "Fix bug"}},
			expected:        domain.Outcome{Action: domain.ActionUpdated, Row: 2, ChangedColumns: []string{"title"}},
		},
		{
			name: "several changed cells - one batched update",
			rows: [][]string{header, other, {"2023-12-31", "https://x/pr/1", "alice", "Fix bug", "old-repo", "2024-01-01", "bob", ""}},
			expectedUpdates: []domain.CellUpdate{
				{Range: "PRs!A3", Value: ""},
				{Range: "PRs!E3", Value: "repo"},
				{Range: "PRs!F3", Value: "2024-01-02"},
				{Range: "PRs!G3", Value: ""},
			},
			expected: domain.Outcome{Action: domain.ActionUpdated, Row: 3, ChangedColumns: []string{"mergedDate", "repoName", "updatedDate", "reviewers"}},
		},
		{
			name:            "duplicate urls - only the earliest row is updated",
			rows:            [][]string{header, stale, stale},
			expectedUpdates: []domain.CellUpdate{{Range: "PRs!D2", Value: "Fix bug"}},
			expected:        domain.Outcome{Action: domain.ActionUpdated, Row: 2, ChangedColumns: []string{"title"}},
		},
		{
			name:     "trimmed trailing blanks - composite differs but no column does",
			rows:     [][]string{header, projected[:6]},
			expected: domain.Outcome{Action: domain.ActionUnchanged, Row: 2},
		},
		{
			name:     "extra cells past the last column are left alone",
			rows:     [][]string{header, append(append([]string(nil), projected...), "note")},
			expected: domain.Outcome{Action: domain.ActionUnchanged, Row: 2},
		},
		{
			name:            "short stale row - missing cells are written",
			rows:            [][]string{header, {"", "https://x/pr/1", "alice"}},
			expectedUpdates: []domain.CellUpdate{{Range: "PRs!D2", Value: "Fix bug"}, {Range: "PRs!E2", Value: "repo"}, {Range: "PRs!F2", Value: "2024-01-02"}},
			expected:        domain.Outcome{Action: domain.ActionUpdated, Row: 2, ChangedColumns: []string{"title", "repoName", "updatedDate"}},
		},
		{
			name:        "error case - read fails, nothing is written",
			readErr:     readErr,
			expectedErr: readErr,
		},
		{
			name:         "error case - append fails",
			rows:         [][]string{header},
			expectAppend: true,
			appendErr:    writeErr,
			expectedErr:  writeErr,
		},
		{
			name:            "error case - batch update fails",
			rows:            [][]string{header, stale},
			expectedUpdates: []domain.CellUpdate{{Range: "PRs!D2", Value: "Fix bug"}},
			updateErr:       writeErr,
			expectedErr:     writeErr,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			store := new(mockSheetStore)
			store.On("Read", mock.Anything, "sheet-id", "PRs").Return(tc.rows, tc.readErr).Once()
			if tc.expectAppend {
				store.On("Append", mock.Anything, "sheet-id", "PRs!A:H", projected).Return(tc.appendErr).Once()
			}
			if tc.expectedUpdates != nil {
				store.On("BatchUpdate", mock.Anything, "sheet-id", tc.expectedUpdates).Return(tc.updateErr).Once()
			}
			reconciler := NewReconciler(store, zerolog.Nop())

			// --- Act ---
			outcome, err := reconciler.Reconcile(context.Background(), testTarget, pr)

			// --- Assert ---
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, outcome)
			}
			if !tc.expectAppend {
				store.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
			if tc.expectedUpdates == nil {
				store.AssertNotCalled(t, "BatchUpdate", mock.Anything, mock.Anything, mock.Anything)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestReconciler_Idempotent(t *testing.T) {
	pr := newTestPR(t)
	sheet := &memorySheet{rows: [][]string{header}}
	reconciler := NewReconciler(sheet, zerolog.Nop())
	ctx := context.Background()

	first, err := reconciler.Reconcile(ctx, testTarget, pr)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionAppended, first.Action)

	second, err := reconciler.Reconcile(ctx, testTarget, pr)
	require.NoError(t, err)
	assert.Equal(t, domain.Outcome{Action: domain.ActionUnchanged, Row: 2}, second)

	pr.Title = "New title"
	third, err := reconciler.Reconcile(ctx, testTarget, pr)
	require.NoError(t, err)
	assert.Equal(t, domain.Outcome{Action: domain.ActionUpdated, Row: 2, ChangedColumns: []string{"title"}}, third)

	fourth, err := reconciler.Reconcile(ctx, testTarget, pr)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionUnchanged, fourth.Action)

	assert.Equal(t, 1, sheet.appends)
	assert.Equal(t, 1, sheet.updates)
	assert.Equal(t, []string{"", "https://x/pr/1", "alice", "New title", "repo", "2024-01-02", "", ""}, sheet.rows[1])
}

func TestReconciler_ZeroDiffLogLevel(t *testing.T) {
	projected := []string{"", "https://x/pr/1", "alice", "Fix bug", "repo", "2024-01-02", "", ""}
	testCases := []struct {
		name          string
		existing      []string
		expectedLevel string
		unexpected    string
	}{
		{
			name:          "trimmed trailing blanks are routine",
			existing:      projected[:6],
			expectedLevel: `"level":"debug"`,
			unexpected:    `"level":"warn"`,
		},
		{
			name:          "cells past the last column are reported",
			existing:      append(append([]string(nil), projected...), "note"),
			expectedLevel: `"level":"warn"`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			sheet := &memorySheet{rows: [][]string{header, tc.existing}}
			reconciler := NewReconciler(sheet, zerolog.New(&buf).Level(zerolog.DebugLevel))

			outcome, err := reconciler.Reconcile(context.Background(), testTarget, newTestPR(t))

			require.NoError(t, err)
			assert.Equal(t, domain.Outcome{Action: domain.ActionUnchanged, Row: 2}, outcome)
			assert.Contains(t, buf.String(), tc.expectedLevel)
			if tc.unexpected != "" {
				assert.NotContains(t, buf.String(), tc.unexpected)
			}
			assert.Zero(t, sheet.updates)
		})
	}
}
