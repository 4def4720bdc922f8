// Package google mirrors transactions into a Google Sheets tab.
//
// The tab holds one row per transaction with columns id, date, amount, type
// and category. Row 1 is a header. Rows are located by the id in column A.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"bilancio/internal/core"
)

var header = []any{"id", "date", "amount", "type", "category"}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	sheetID       *int64
}

// New creates a client authenticated with a service account.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, sheetName string, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}
	if len(opts) == 0 {
		creds, err := serviceAccountJSON(ctx)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func serviceAccountJSON(ctx context.Context) ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		slog.InfoContext(ctx, "Using inline service account credentials")
		return []byte(inline), nil
	}
	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	slog.InfoContext(ctx, "Reading service account credentials", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

// Upsert overwrites the row holding t.ID, or appends a new row.
func (c *Client) Upsert(ctx context.Context, t core.Transaction) error {
	values, err := c.readRows(ctx)
	if err != nil {
		return err
	}
	if n := findRow(values, t.ID); n > 0 {
		rng := fmt.Sprintf("%s!A%d:E%d", c.sheetName, n, n)
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{rowValues(t)}}).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update %s: %w", rng, err)
		}
		slog.InfoContext(ctx, "Updated transaction row", "id", t.ID, "row", n)
		return nil
	}

	rows := [][]any{rowValues(t)}
	if len(values) == 0 {
		rows = [][]any{header, rowValues(t)}
	}
	rng := fmt.Sprintf("%s!A:E", c.sheetName)
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", c.sheetName, err)
	}
	slog.InfoContext(ctx, "Appended transaction row", "id", t.ID)
	return nil
}

// Delete removes the row holding id. A missing row is not an error.
func (c *Client) Delete(ctx context.Context, id int64) error {
	values, err := c.readRows(ctx)
	if err != nil {
		return err
	}
	n := findRow(values, id)
	if n == 0 {
		slog.InfoContext(ctx, "Transaction row already absent", "id", id)
		return nil
	}
	sheetID, err := c.resolveSheetID(ctx)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteDimension: &gsheet.DeleteDimensionRequest{Range: &gsheet.DimensionRange{
			SheetId:    sheetID,
			Dimension:  "ROWS",
			StartIndex: int64(n - 1),
			EndIndex:   int64(n),
		}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d: %w", n, err)
	}
	slog.InfoContext(ctx, "Deleted transaction row", "id", id, "row", n)
	return nil
}

// List reads every transaction row. Rows that do not parse are skipped.
func (c *Client) List(ctx context.Context) ([]core.Transaction, error) {
	values, err := c.readRows(ctx)
	if err != nil {
		return nil, err
	}
	out := []core.Transaction{}
	for i, row := range values {
		t, err := parseRow(row)
		if err != nil {
			if i > 0 {
				slog.WarnContext(ctx, "Skipping unreadable row", "row", i+1, "error", err)
			}
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (c *Client) Close() error { return nil }

func (c *Client) readRows(ctx context.Context) ([][]any, error) {
	rng := fmt.Sprintf("%s!A:E", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) resolveSheetID(ctx context.Context) (int64, error) {
	if c.sheetID != nil {
		return *c.sheetID, nil
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == c.sheetName {
			id := s.Properties.SheetId
			c.sheetID = &id
			return id, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", c.sheetName)
}

func rowValues(t core.Transaction) []any {
	return []any{strconv.FormatInt(t.ID, 10), t.Date.String(), t.Amount.String(), string(t.Type), t.Category}
}

// findRow returns the 1-based row number holding id, or 0.
func findRow(values [][]any, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == want {
			return i + 1
		}
	}
	return 0
}

// categoryColumn is stored verbatim; the other cells are trimmed.
const categoryColumn = 4

func parseRow(row []any) (core.Transaction, error) {
	cols := make([]string, len(header))
	for i := range cols {
		if i < len(row) {
			cols[i] = fmt.Sprint(row[i])
		}
		if i != categoryColumn {
			cols[i] = strings.TrimSpace(cols[i])
		}
	}
	id, err := strconv.ParseInt(cols[0], 10, 64)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid id %q", cols[0])
	}
	return core.Draft{ID: id, Date: cols[1], Amount: cols[2], Type: cols[3], Category: &cols[4]}.Transaction()
}
