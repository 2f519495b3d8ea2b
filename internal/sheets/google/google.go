package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
	ports "walletwhisper/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ ports.TransactionExporter = (*Client)(nil)

// Config names the target sheet and the service account used to reach it.
// CredentialsJSON wins over CredentialsFile.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}

	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	c := &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}
	c.logger(ctx).InfoContext(ctx, "Google Sheets exporter ready", log.FieldSheetsRef, c.ref())
	return c, nil
}

// ref names the target as spreadsheet!sheet for logs.
func (c *Client) ref() string {
	return c.spreadsheetID + "!" + c.sheetName
}

func (c *Client) logger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx, nil).WithComponent(log.ComponentSheets)
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

func (c *Client) columns() string {
	return fmt.Sprintf("%s!A:G", c.sheetName)
}

// ExportTransactions reads the id column first and appends only the
// transactions the sheet does not have yet.
func (c *Client) ExportTransactions(ctx context.Context, list []core.Transaction) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if len(list) == 0 {
		return nil
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.columns()).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", c.sheetName, err)
	}

	rows := pendingRows(resp.Values, list)
	if len(rows) == 0 {
		return nil
	}

	vr := &gsheet.ValueRange{Values: rows}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.columns(), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	c.logger(ctx).DebugContext(ctx, "Exported transactions", log.FieldSheetsRef, c.ref(), "rows", len(rows))
	return nil
}

// ReplaceTransactions clears the sheet and writes header plus list.
func (c *Client) ReplaceTransactions(ctx context.Context, list []core.Transaction) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, c.columns(), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear sheet %s: %w", c.sheetName, err)
	}

	vr := &gsheet.ValueRange{Values: pendingRows(nil, list)}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("%s!A1", c.sheetName), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write sheet %s: %w", c.sheetName, err)
	}

	c.logger(ctx).InfoContext(ctx, "Replaced ledger snapshot", log.FieldSheetsRef, c.ref(), "rows", len(list))
	return nil
}

func headerRow() []any {
	row := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		row[i] = h
	}
	return row
}

// pendingRows returns the rows to append given what the sheet already
// holds. An empty sheet gets the header first.
func pendingRows(existing [][]any, list []core.Transaction) [][]any {
	seen := make(map[int64]struct{}, len(existing))
	for _, row := range existing {
		if id, ok := ports.RowID(row); ok {
			seen[id] = struct{}{}
		}
	}

	var out [][]any
	if len(existing) == 0 {
		out = append(out, headerRow())
	}
	for _, tx := range list {
		if _, ok := seen[tx.ID]; ok {
			continue
		}
		seen[tx.ID] = struct{}{}
		out = append(out, ports.Row(tx))
	}
	return out
}
