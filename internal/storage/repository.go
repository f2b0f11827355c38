package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"finance/internal/core"
	"finance/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Ensure interface conformance
var (
	_ store.TransactionStore = (*SQLiteRepository)(nil)
	_ store.PlanStore        = (*SQLiteRepository)(nil)
	_ store.Pinger           = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time

	// createMu serializes transaction inserts so created_at stays ordered.
	createMu sync.Mutex
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// A single writer connection keeps SQLite from returning SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping implements store.Pinger
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListTransactions implements store.TransactionStore
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := row.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// CreateTransaction implements store.TransactionStore
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	r.createMu.Lock()
	defer r.createMu.Unlock()

	// created_at never goes backwards, even if the wall clock does.
	now := r.now().UTC()
	last, err := r.latestCreatedAt(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	if now.Before(last) {
		now = last
	}

	t, err := core.NewTransaction(in, now)
	if err != nil {
		return core.Transaction{}, err
	}

	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		ID:        t.ID.String(),
		Text:      t.Text,
		Amount:    t.Amount.String(),
		CreatedAt: t.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite", "id", row.ID, "amount", row.Amount)
	return row.toCore()
}

func (r *SQLiteRepository) latestCreatedAt(ctx context.Context) (time.Time, error) {
	raw, err := r.queries.LatestTransactionCreatedAt(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read latest created_at: %w", err)
	}
	last, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse latest created_at %q: %w", raw, err)
	}
	return last, nil
}

// GetTransaction implements store.TransactionStore
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id.String())
	if err != nil {
		return core.Transaction{}, notFound(err, "get transaction %s", id)
	}
	return row.toCore()
}

// UpdateTransaction implements store.TransactionStore
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id uuid.UUID, p core.TransactionPatch) (core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return core.Transaction{}, err
	}

	arg := UpdateTransactionParams{ID: id.String()}
	if p.Text != nil {
		arg.Text = sql.NullString{String: strings.TrimSpace(*p.Text), Valid: true}
	}
	if p.Amount != nil {
		arg.Amount = sql.NullString{String: p.Amount.String(), Valid: true}
	}

	row, err := r.queries.UpdateTransaction(ctx, arg)
	if err != nil {
		return core.Transaction{}, notFound(err, "update transaction %s", id)
	}
	return row.toCore()
}

// DeleteTransaction implements store.TransactionStore
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	n, err := r.queries.DeleteTransaction(ctx, id.String())
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete transaction %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// ListPlanItems implements store.PlanStore
func (r *SQLiteRepository) ListPlanItems(ctx context.Context) ([]core.PlanItem, error) {
	rows, err := r.queries.ListPlanItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plan items: %w", err)
	}

	out := make([]core.PlanItem, 0, len(rows))
	for _, row := range rows {
		it, err := row.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

// CreatePlanItem implements store.PlanStore
func (r *SQLiteRepository) CreatePlanItem(ctx context.Context, in core.PlanItemInput) (core.PlanItem, error) {
	if err := in.Validate(); err != nil {
		return core.PlanItem{}, err
	}

	row, err := r.queries.CreatePlanItem(ctx, CreatePlanItemParams{
		Category: strings.TrimSpace(in.Category),
		Amount:   in.Amount.String(),
	})
	if err != nil {
		return core.PlanItem{}, fmt.Errorf("create plan item: %w", err)
	}

	slog.DebugContext(ctx, "Plan item saved to SQLite", "id", row.ID, "category", row.Category)
	return row.toCore()
}

// GetPlanItem implements store.PlanStore
func (r *SQLiteRepository) GetPlanItem(ctx context.Context, id int64) (core.PlanItem, error) {
	row, err := r.queries.GetPlanItem(ctx, id)
	if err != nil {
		return core.PlanItem{}, notFound(err, "get plan item %d", id)
	}
	return row.toCore()
}

// UpdatePlanItem implements store.PlanStore
func (r *SQLiteRepository) UpdatePlanItem(ctx context.Context, id int64, p core.PlanItemPatch) (core.PlanItem, error) {
	if err := p.Validate(); err != nil {
		return core.PlanItem{}, err
	}

	arg := UpdatePlanItemParams{ID: id}
	if p.Category != nil {
		arg.Category = sql.NullString{String: strings.TrimSpace(*p.Category), Valid: true}
	}
	if p.Amount != nil {
		arg.Amount = sql.NullString{String: p.Amount.String(), Valid: true}
	}

	row, err := r.queries.UpdatePlanItem(ctx, arg)
	if err != nil {
		return core.PlanItem{}, notFound(err, "update plan item %d", id)
	}
	return row.toCore()
}

// DeletePlanItem implements store.PlanStore
func (r *SQLiteRepository) DeletePlanItem(ctx context.Context, id int64) error {
	n, err := r.queries.DeletePlanItem(ctx, id)
	if err != nil {
		return fmt.Errorf("delete plan item %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete plan item %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// notFound wraps err, translating sql.ErrNoRows into core.ErrNotFound.
func notFound(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", msg, core.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func (row TransactionRow) toCore() (core.Transaction, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction id %q: %w", row.ID, err)
	}
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount of transaction %s: %w", row.ID, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at of transaction %s: %w", row.ID, err)
	}
	return core.Transaction{ID: id, Text: row.Text, Amount: amount, CreatedAt: createdAt.UTC()}, nil
}

func (row PlanItemRow) toCore() (core.PlanItem, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.PlanItem{}, fmt.Errorf("parse amount of plan item %d: %w", row.ID, err)
	}
	return core.PlanItem{ID: row.ID, Category: row.Category, Amount: amount}, nil
}
