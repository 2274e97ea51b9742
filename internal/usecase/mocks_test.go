package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/naka-gawa/pr-sheet-sync/internal/domain"
)

// mockSheetStore is a mock implementation of the gateway.SheetStore interface.
type mockSheetStore struct {
	mock.Mock
}

func (m *mockSheetStore) Read(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	args := m.Called(ctx, spreadsheetID, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]string), args.Error(1)
}

func (m *mockSheetStore) Append(ctx context.Context, spreadsheetID, rng string, cells []string) error {
	args := m.Called(ctx, spreadsheetID, rng, cells)
	return args.Error(0)
}

func (m *mockSheetStore) BatchUpdate(ctx context.Context, spreadsheetID string, updates []domain.CellUpdate) error {
	args := m.Called(ctx, spreadsheetID, updates)
	return args.Error(0)
}

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchPullRequest(ctx context.Context, ref domain.PullRequestRef) (*domain.PullRequest, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PullRequest), args.Error(1)
}

// memorySheet is an in-memory sheet that applies appends and single-letter
// column updates, used to run several passes against the same state.
type memorySheet struct {
	rows    [][]string
	appends int
	updates int
}

func (s *memorySheet) Read(_ context.Context, _, _ string) ([][]string, error) {
	rows := make([][]string, len(s.rows))
	for i, r := range s.rows {
		rows[i] = append([]string(nil), r...)
	}
	return rows, nil
}

func (s *memorySheet) Append(_ context.Context, _, _ string, cells []string) error {
	s.appends++
	s.rows = append(s.rows, append([]string(nil), cells...))
	return nil
}

func (s *memorySheet) BatchUpdate(_ context.Context, _ string, updates []domain.CellUpdate) error {
	s.updates++
	for _, u := range updates {
		_, cell, _ := strings.Cut(u.Range, "!")
		col := int(cell[0] - 'A')
		row, err := strconv.Atoi(cell[1:])
		if err != nil {
			return fmt.Errorf("bad cell %q: %w", u.Range, err)
		}
		for len(s.rows[row-1]) <= col {
			s.rows[row-1] = append(s.rows[row-1], "")
		}
		s.rows[row-1][col] = u.Value
	}
	return nil
}
