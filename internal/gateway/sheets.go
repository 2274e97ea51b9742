package gateway

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/naka-gawa/pr-sheet-sync/internal/domain"
)

// valueInputRaw stores values as literal strings, without formula evaluation.
const valueInputRaw = "RAW"

// SheetStore defines the spreadsheet calls the synchronization depends on.
type SheetStore interface {
	// Read returns every row in rng. A range without data yields no rows.
	Read(ctx context.Context, spreadsheetID, rng string) ([][]string, error)
	// Append adds cells as a new row after the last row of the table in rng.
	Append(ctx context.Context, spreadsheetID, rng string, cells []string) error
	// BatchUpdate writes all updates in a single request.
	BatchUpdate(ctx context.Context, spreadsheetID string, updates []domain.CellUpdate) error
}

// SheetsGateway is the Google Sheets implementation of SheetStore.
type SheetsGateway struct {
	service *sheets.Service
	logger  zerolog.Logger
}

// NewSheetsGateway authenticates with service account credentials and returns
// a gateway allowed to read and write spreadsheets.
func NewSheetsGateway(ctx context.Context, credentialsJSON []byte, logger zerolog.Logger) (*SheetsGateway, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Google credentials: %w", err)
	}
	return newSheetsGateway(ctx, logger, option.WithCredentials(creds))
}

func newSheetsGateway(ctx context.Context, logger zerolog.Logger, opts ...option.ClientOption) (*SheetsGateway, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	return &SheetsGateway{service: service, logger: logger}, nil
}

func (g *SheetsGateway) Read(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	g.logger.Debug().Str("range", rng).Msg("reading sheet values")
	resp, err := g.service.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", rng, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, values := range resp.Values {
		cells := make([]string, len(values))
		for i, v := range values {
			if s, ok := v.(string); ok {
				cells[i] = s
			} else if v != nil {
				cells[i] = fmt.Sprint(v)
			}
		}
		rows = append(rows, cells)
	}
	g.logger.Debug().Str("range", rng).Int("rows", len(rows)).Msg("read sheet values")
	return rows, nil
}

func (g *SheetsGateway) Append(ctx context.Context, spreadsheetID, rng string, cells []string) error {
	body := &sheets.ValueRange{Values: [][]interface{}{toValues(cells)}}
	_, err := g.service.Spreadsheets.Values.Append(spreadsheetID, rng, body).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row to %s: %w", rng, err)
	}
	return nil
}

func (g *SheetsGateway) BatchUpdate(ctx context.Context, spreadsheetID string, updates []domain.CellUpdate) error {
	data := make([]*sheets.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheets.ValueRange{
			Range:  u.Range,
			Values: [][]interface{}{{u.Value}},
		})
	}
	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: valueInputRaw,
		Data:             data,
	}
	if _, err := g.service.Spreadsheets.Values.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to batch update %d cells: %w", len(updates), err)
	}
	return nil
}

func toValues(cells []string) []interface{} {
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	return values
}
