package sheets

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/api/sheets/v4"
)

// Table is a handle on one sheet. Row indexes in this API are 0-based data
// rows: row 0 is the first row below the header. Positions shift across
// deletes, so callers address records by ID lookup, never by stored index.
type Table struct {
	sheetsService *sheets.Service
	spreadsheetID string
	name          string
	log           zerolog.Logger
}

// Name returns the sheet title.
func (t *Table) Name() string {
	return t.name
}

// Header reads the live header row. The codec builds its name→index map
// from this on every encode, so reordered columns keep working.
func (t *Table) Header(ctx context.Context) ([]string, error) {
	const op = "Header"

	resp, err := t.sheetsService.Spreadsheets.Values.Get(
		t.spreadsheetID, fmt.Sprintf("%s!1:1", t.name),
	).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read header of %s: %w", op, t.name, err)
	}
	if len(resp.Values) == 0 {
		return nil, fmt.Errorf("%s: sheet %s has no header row", op, t.name)
	}
	return toStrings(resp.Values[0]), nil
}

// Rows reads every data row below the header.
func (t *Table) Rows(ctx context.Context) ([][]string, error) {
	const op = "Rows"

	resp, err := t.sheetsService.Spreadsheets.Values.Get(
		t.spreadsheetID, fmt.Sprintf("%s!2:100000", t.name),
	).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read rows of %s: %w", op, t.name, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, v := range resp.Values {
		rows = append(rows, toStrings(v))
	}
	return rows, nil
}

// Append writes row at the next free row of the sheet. USER_ENTERED keeps
// the storage engine's value coercion in play, which is why the codec
// escapes period-like cells with a leading apostrophe.
func (t *Table) Append(ctx context.Context, row []string) error {
	const op = "Append"

	valueRange := &sheets.ValueRange{Values: [][]interface{}{toValues(row)}}
	_, err := t.sheetsService.Spreadsheets.Values.Append(
		t.spreadsheetID, t.name, valueRange,
	).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to append to %s: %w", op, t.name, err)
	}

	t.log.Debug().Int("cells", len(row)).Msg("Appended row")
	return nil
}

// Update overwrites the data row at rowIndex with row, starting at column A.
func (t *Table) Update(ctx context.Context, rowIndex int, row []string) error {
	const op = "Update"

	rangeSpec := fmt.Sprintf("%s!A%d", t.name, rowIndex+2)
	valueRange := &sheets.ValueRange{Values: [][]interface{}{toValues(row)}}
	_, err := t.sheetsService.Spreadsheets.Values.Update(
		t.spreadsheetID, rangeSpec, valueRange,
	).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to update %s row %d: %w", op, t.name, rowIndex, err)
	}

	t.log.Debug().Int("row", rowIndex).Msg("Overwrote row")
	return nil
}

// Delete removes the physical data row at rowIndex.
func (t *Table) Delete(ctx context.Context, rowIndex int) error {
	const op = "Delete"

	sheetID, err := t.sheetID(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				DeleteDimension: &sheets.DeleteDimensionRequest{
					Range: &sheets.DimensionRange{
						SheetId:    sheetID,
						Dimension:  "ROWS",
						StartIndex: int64(rowIndex + 1), // +1 skips the header
						EndIndex:   int64(rowIndex + 2),
					},
				},
			},
		},
	}

	_, err = t.sheetsService.Spreadsheets.BatchUpdate(t.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to delete %s row %d: %w", op, t.name, rowIndex, err)
	}

	t.log.Debug().Int("row", rowIndex).Msg("Deleted row")
	return nil
}

// sheetID resolves the numeric sheet id for batch updates.
func (t *Table) sheetID(ctx context.Context) (int64, error) {
	spreadsheet, err := t.sheetsService.Spreadsheets.Get(t.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to get spreadsheet: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == t.name {
			return sheet.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %s not found in spreadsheet", t.name)
}

func toStrings(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func toValues(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
