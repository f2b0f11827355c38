package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"finance/internal/core"
	ports "finance/internal/sheets"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type sheetCall struct {
	method string
	path   string
	values [][]any
}

// fakeSheetsAPI records Values.Clear and Values.Update calls.
type fakeSheetsAPI struct {
	mu     sync.Mutex
	calls  []sheetCall
	failOn string
}

func newFakeSheetsAPI(t *testing.T) (*fakeSheetsAPI, *httptest.Server) {
	t.Helper()
	f := &fakeSheetsAPI{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := sheetCall{method: r.Method, path: r.URL.Path}
		if r.Method == http.MethodPut {
			var vr gsheet.ValueRange
			if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			call.values = vr.Values
		}
		f.mu.Lock()
		f.calls = append(f.calls, call)
		fail := f.failOn != "" && strings.Contains(r.URL.Path, f.failOn)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"code":500,"message":"backend error"}}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeSheetsAPI) snapshot() []sheetCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sheetCall(nil), f.calls...)
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	require.NoError(t, err)
	c, err := NewWithService(svc, Config{
		SpreadsheetID:     "sheet-id",
		TransactionsSheet: "Transactions",
		PlanSheet:         "Monthly Plan",
	})
	require.NoError(t, err)
	return c
}

func TestTransactionRows(t *testing.T) {
	id := uuid.MustParse("6f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f")
	created := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

	rows := TransactionRows([]core.Transaction{
		{ID: id, Text: "Salary", Amount: decimal.RequireFromString("2500"), CreatedAt: created},
		{ID: id, Text: "Coffee", Amount: decimal.RequireFromString("-3.5"), CreatedAt: created},
	})

	require.Len(t, rows, 3)
	assert.Equal(t, TransactionHeader, rows[0])
	assert.Equal(t, []any{id.String(), "Salary", "2500.00", "2024-03-05 14:30:00"}, rows[1])
	assert.Equal(t, "-3.50", rows[2][2])
}

func TestPlanRows(t *testing.T) {
	rows := PlanRows([]core.PlanItem{{ID: 7, Category: "Rent", Amount: decimal.NewFromInt(1200)}})

	require.Len(t, rows, 2)
	assert.Equal(t, PlanHeader, rows[0])
	assert.Equal(t, []any{int64(7), "Rent", "1200.00"}, rows[1])
}

func TestRowsOfEmptySnapshotKeepHeader(t *testing.T) {
	assert.Equal(t, [][]any{TransactionHeader}, TransactionRows(nil))
	assert.Equal(t, [][]any{PlanHeader}, PlanRows(nil))
}

func TestWriteSnapshot(t *testing.T) {
	api, srv := newFakeSheetsAPI(t)
	c := newTestClient(t, srv)

	snap := ports.Snapshot{
		Transactions: []core.Transaction{{
			ID:        uuid.New(),
			Text:      "Groceries",
			Amount:    decimal.RequireFromString("-42.10"),
			CreatedAt: time.Now(),
		}},
		PlanItems: []core.PlanItem{{ID: 1, Category: "Food", Amount: decimal.NewFromInt(400)}},
	}
	require.NoError(t, c.WriteSnapshot(context.Background(), snap))

	calls := api.snapshot()
	require.Len(t, calls, 4)

	assert.Equal(t, http.MethodPost, calls[0].method)
	assert.Equal(t, "/v4/spreadsheets/sheet-id/values/Transactions!A:Z:clear", calls[0].path)

	assert.Equal(t, http.MethodPut, calls[1].method)
	assert.Equal(t, "/v4/spreadsheets/sheet-id/values/Transactions!A1", calls[1].path)
	require.Len(t, calls[1].values, 2)
	assert.Equal(t, "Groceries", calls[1].values[1][1])
	assert.Equal(t, "-42.10", calls[1].values[1][2])

	assert.Equal(t, "/v4/spreadsheets/sheet-id/values/Monthly Plan!A:Z:clear", calls[2].path)
	assert.Equal(t, "/v4/spreadsheets/sheet-id/values/Monthly Plan!A1", calls[3].path)
	require.Len(t, calls[3].values, 2)
	assert.Equal(t, "Food", calls[3].values[1][1])
}

func TestWriteSnapshotStopsOnError(t *testing.T) {
	api, srv := newFakeSheetsAPI(t)
	api.failOn = "Transactions"
	c := newTestClient(t, srv)

	err := c.WriteSnapshot(context.Background(), ports.Snapshot{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear sheet Transactions")

	for _, call := range api.snapshot() {
		assert.NotContains(t, call.path, "Monthly Plan")
	}
}

func TestNewWithServiceRequiresSpreadsheetID(t *testing.T) {
	_, err := NewWithService(&gsheet.Service{}, Config{})
	assert.EqualError(t, err, "missing spreadsheet ID")
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet-id"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestNewReportsUnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{
		SpreadsheetID:   "sheet-id",
		CredentialsFile: t.TempDir() + "/missing.json",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}
