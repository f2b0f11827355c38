// Package google mirrors transactions and the monthly plan into a Google
// spreadsheet, one tab per resource.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"finance/internal/core"
	ports "finance/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Column headers written as the first row of each tab.
var (
	TransactionHeader = []any{"ID", "Text", "Amount", "Created At"}
	PlanHeader        = []any{"ID", "Category", "Amount"}
)

const createdAtLayout = "2006-01-02 15:04:05"

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	planSheet         string
}

// Ensure interface conformance
var _ ports.Mirror = (*Client)(nil)

// Config selects the spreadsheet, its tabs and the service account used to
// write them. CredentialsJSON wins over CredentialsFile.
type Config struct {
	SpreadsheetID     string
	TransactionsSheet string
	PlanSheet         string
	CredentialsJSON   string
	CredentialsFile   string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	creds, err := loadCredentials(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", cfg.SpreadsheetID,
		"transactions_sheet", cfg.TransactionsSheet,
		"plan_sheet", cfg.PlanSheet)
	return NewWithService(svc, cfg)
}

// NewWithService wraps an already configured service. Tests point it at a
// local endpoint.
func NewWithService(svc *gsheet.Service, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	return &Client{
		svc:               svc,
		spreadsheetID:     cfg.SpreadsheetID,
		transactionsSheet: cfg.TransactionsSheet,
		planSheet:         cfg.PlanSheet,
	}, nil
}

func loadCredentials(ctx context.Context, cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)

	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline service account credentials", "json_length", len(inline))
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.DebugContext(ctx, "Read service account credentials", "path", file, "size", len(data))
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// WriteSnapshot rewrites both tabs. The transactions tab is written first;
// an error leaves the plan tab untouched.
func (c *Client) WriteSnapshot(ctx context.Context, snap ports.Snapshot) error {
	if err := c.replaceSheet(ctx, c.transactionsSheet, TransactionRows(snap.Transactions)); err != nil {
		return err
	}
	return c.replaceSheet(ctx, c.planSheet, PlanRows(snap.PlanItems))
}

// replaceSheet clears the whole tab and writes rows starting at A1.
func (c *Client) replaceSheet(ctx context.Context, sheet string, rows [][]any) error {
	all := fmt.Sprintf("%s!A:Z", sheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, all, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", sheet, err)
	}

	rng := fmt.Sprintf("%s!A1", sheet)
	vr := &gsheet.ValueRange{Range: rng, MajorDimension: "ROWS", Values: rows}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update sheet %s: %w", sheet, err)
	}

	slog.DebugContext(ctx, "Sheet rewritten", "sheet", sheet, "rows", len(rows)-1)
	return nil
}

// TransactionRows renders a header row followed by one row per transaction.
func TransactionRows(txs []core.Transaction) [][]any {
	rows := make([][]any, 0, len(txs)+1)
	rows = append(rows, TransactionHeader)
	for _, t := range txs {
		rows = append(rows, []any{
			t.ID.String(),
			t.Text,
			core.FormatAmount(t.Amount),
			t.CreatedAt.UTC().Format(createdAtLayout),
		})
	}
	return rows
}

// PlanRows renders a header row followed by one row per plan item.
func PlanRows(items []core.PlanItem) [][]any {
	rows := make([][]any, 0, len(items)+1)
	rows = append(rows, PlanHeader)
	for _, it := range items {
		rows = append(rows, []any{it.ID, it.Category, core.FormatAmount(it.Amount)})
	}
	return rows
}
