package export

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/grubmail/grubmail/internal/scrape"
)

const (
	ordersSheetTitle = "Orders"
	itemsSheetTitle  = "Order Items"
)

// Sheets writes the order tables into two worksheets of one Google
// Sheets spreadsheet, mirroring the CSV layout.
type Sheets struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheets creates a Sheets exporter for the given spreadsheet.
func NewSheets(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Sheets, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &Sheets{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Export clears and rewrites both worksheets, creating them if the
// spreadsheet does not have them yet.
func (s *Sheets) Export(ctx context.Context, orders []scrape.Order) error {
	header, rows := OrdersTable(orders)
	if err := s.writeSheet(ctx, ordersSheetTitle, header, rows); err != nil {
		return err
	}

	header, rows = ItemsTable(orders)
	return s.writeSheet(ctx, itemsSheetTitle, header, rows)
}

func (s *Sheets) writeSheet(ctx context.Context, title string, header []string, rows [][]string) error {
	if err := s.ensureSheet(ctx, title); err != nil {
		return err
	}

	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, toCells(header))
	for _, row := range rows {
		values = append(values, toCells(row))
	}

	clearRange := fmt.Sprintf("'%s'", title)
	if _, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clearing sheet %s: %w", title, err)
	}

	updateRange := fmt.Sprintf("'%s'!A1", title)
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, updateRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("updating sheet %s: %w", title, err)
	}
	return nil
}

// ensureSheet adds a worksheet with the given title when the
// spreadsheet does not have one yet.
func (s *Sheets) ensureSheet(ctx context.Context, title string) error {
	spreadsheet, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("getting spreadsheet: %w", err)
	}
	for _, sh := range spreadsheet.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("adding sheet %s: %w", title, err)
	}
	return nil
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}
