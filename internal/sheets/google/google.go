// Package google mirrors transactions into a Google Sheets spreadsheet,
// one tab per calendar year.
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

	"catatan/internal/core"
	"catatan/internal/ports"
)

var _ ports.TransactionExporter = (*Client)(nil)

// header of every yearly tab, columns A..G
var header = []any{"ID", "Tanggal", "Judul", "Jenis", "Kategori", "Nominal", "Catatan"}

const lastColumn = "G"

type Options struct {
	SpreadsheetID   string
	SheetName       string // base tab name; the year is prefixed
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
}

// New creates a client authenticated with a service account. Without
// explicit credentials GOOGLE_APPLICATION_CREDENTIALS is used. Extra
// client options are appended after the credentials.
func New(ctx context.Context, o Options, extra ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(o.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	opts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}
	creds, err := credentials(o)
	if err != nil {
		return nil, err
	}
	if creds != nil {
		opts = append(opts, goption.WithCredentialsJSON(creds))
	}
	opts = append(opts, extra...)

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet", o.SpreadsheetID)
	return NewWithService(svc, o.SpreadsheetID, o.SheetName), nil
}

func NewWithService(svc *gsheet.Service, spreadsheetID, sheetBase string) *Client {
	if strings.TrimSpace(sheetBase) == "" {
		sheetBase = "Transaksi"
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetBase: sheetBase}
}

func credentials(o Options) ([]byte, error) {
	if j := strings.TrimSpace(o.CredentialsJSON); j != "" {
		return []byte(j), nil
	}
	path := strings.TrimSpace(o.CredentialsFile)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

// AppendTransaction writes t into the tab of its year and returns the row
// range. A transaction whose id is already present is not written again.
func (c *Client) AppendTransaction(ctx context.Context, t core.Transaction, categoryLabel string) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	sheet := yearPrefixedName(c.sheetBase, t.Date.Year())
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read ids of %s: %w", sheet, err)
	}

	row, found := locateRow(resp.Values, t.ID)
	ref := fmt.Sprintf("%s!A%d:%s%d", sheet, row, lastColumn, row)
	if found {
		slog.InfoContext(ctx, "Transaction already in sheet", "id", t.ID, "ref", ref)
		return ref, nil
	}

	values := [][]any{transactionRow(t, categoryLabel)}
	start := row
	if len(resp.Values) == 0 {
		values = append([][]any{header}, values...)
		start = 1
	}
	rng := fmt.Sprintf("%s!A%d:%s%d", sheet, start, lastColumn, row)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", rng, err)
	}
	return ref, nil
}

// locateRow returns the 1-based row holding id, or the next free row. An
// empty sheet reserves row 1 for the header.
func locateRow(values [][]any, id string) (int, bool) {
	for i, r := range values {
		if len(r) > 0 && strings.TrimSpace(fmt.Sprint(r[0])) == id {
			return i + 1, true
		}
	}
	if len(values) == 0 {
		return 2, false
	}
	return len(values) + 1, false
}

func transactionRow(t core.Transaction, categoryLabel string) []any {
	if categoryLabel == "" {
		categoryLabel = t.CategoryID
	}
	return []any{
		t.ID,
		t.Day().Key(),
		t.Title,
		t.Flow.Label(),
		categoryLabel,
		t.Amount.Units,
		t.Note,
	}
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
