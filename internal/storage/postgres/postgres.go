// Package postgres stores transactions and plan items in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"finance/internal/core"
	"finance/internal/store"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/shopspring/decimal"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Ensure interface conformance
var (
	_ store.TransactionStore = (*Repository)(nil)
	_ store.PlanStore        = (*Repository)(nil)
	_ store.Pinger           = (*Repository)(nil)
)

type Repository struct {
	Pool *pgxpool.Pool
	now  func() time.Time
}

// Connect opens a pool against databaseURL after bringing the schema up to date.
func Connect(ctx context.Context, databaseURL string) (*Repository, error) {
	if err := RunMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return NewRepository(pool), nil
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool, now: time.Now}
}

func RunMigrations(databaseURL string) error {
	migrateDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := migratepgx.WithInstance(migrateDB, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("create pgx driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "pgx", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	r.Pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.Pool.Ping(ctx)
}

const transactionColumns = `id::text, text, amount::text, created_at`

func (r *Repository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (r *Repository) CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	// Postgres keeps microseconds; truncate so the caller sees what is stored.
	// The insert clamps created_at to the latest stored value.
	t, err := core.NewTransaction(in, r.now().Truncate(time.Microsecond))
	if err != nil {
		return core.Transaction{}, err
	}

	row := r.Pool.QueryRow(ctx,
		`INSERT INTO transactions (id, text, amount, created_at)
		 VALUES ($1::text::uuid, $2, $3::text::numeric,
		         GREATEST($4::timestamptz, COALESCE(
		             (SELECT created_at FROM transactions ORDER BY seq DESC LIMIT 1), $4::timestamptz)))
		 RETURNING `+transactionColumns,
		t.ID.String(), t.Text, t.Amount.String(), t.CreatedAt)
	created, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return created, nil
}

func (r *Repository) GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error) {
	row := r.Pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1::text::uuid`, id.String())
	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, notFound(err, "get transaction %s", id)
	}
	return t, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, id uuid.UUID, p core.TransactionPatch) (core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var text, amount *string
	if p.Text != nil {
		s := strings.TrimSpace(*p.Text)
		text = &s
	}
	if p.Amount != nil {
		s := p.Amount.String()
		amount = &s
	}

	row := r.Pool.QueryRow(ctx,
		`UPDATE transactions
		 SET text = COALESCE($1::text, text),
		     amount = COALESCE($2::text::numeric, amount)
		 WHERE id = $3::text::uuid
		 RETURNING `+transactionColumns,
		text, amount, id.String())
	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, notFound(err, "update transaction %s", id)
	}
	return t, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1::text::uuid`, id.String())
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete transaction %s: %w", id, core.ErrNotFound)
	}
	return nil
}

const planItemColumns = `id, category, amount::text`

func (r *Repository) ListPlanItems(ctx context.Context) ([]core.PlanItem, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+planItemColumns+` FROM monthly_plan_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list plan items: %w", err)
	}
	defer rows.Close()

	var out []core.PlanItem
	for rows.Next() {
		it, err := scanPlanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("list plan items: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list plan items: %w", err)
	}
	return out, nil
}

func (r *Repository) CreatePlanItem(ctx context.Context, in core.PlanItemInput) (core.PlanItem, error) {
	if err := in.Validate(); err != nil {
		return core.PlanItem{}, err
	}
	row := r.Pool.QueryRow(ctx,
		`INSERT INTO monthly_plan_items (category, amount)
		 VALUES ($1, $2::text::numeric)
		 RETURNING `+planItemColumns,
		strings.TrimSpace(in.Category), in.Amount.String())
	it, err := scanPlanItem(row)
	if err != nil {
		return core.PlanItem{}, fmt.Errorf("create plan item: %w", err)
	}
	return it, nil
}

func (r *Repository) GetPlanItem(ctx context.Context, id int64) (core.PlanItem, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+planItemColumns+` FROM monthly_plan_items WHERE id = $1`, id)
	it, err := scanPlanItem(row)
	if err != nil {
		return core.PlanItem{}, notFound(err, "get plan item %d", id)
	}
	return it, nil
}

func (r *Repository) UpdatePlanItem(ctx context.Context, id int64, p core.PlanItemPatch) (core.PlanItem, error) {
	if err := p.Validate(); err != nil {
		return core.PlanItem{}, err
	}

	var category, amount *string
	if p.Category != nil {
		s := strings.TrimSpace(*p.Category)
		category = &s
	}
	if p.Amount != nil {
		s := p.Amount.String()
		amount = &s
	}

	row := r.Pool.QueryRow(ctx,
		`UPDATE monthly_plan_items
		 SET category = COALESCE($1::text, category),
		     amount = COALESCE($2::text::numeric, amount)
		 WHERE id = $3
		 RETURNING `+planItemColumns,
		category, amount, id)
	it, err := scanPlanItem(row)
	if err != nil {
		return core.PlanItem{}, notFound(err, "update plan item %d", id)
	}
	return it, nil
}

func (r *Repository) DeletePlanItem(ctx context.Context, id int64) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM monthly_plan_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete plan item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete plan item %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func scanTransaction(row pgx.Row) (core.Transaction, error) {
	var (
		rawID, text, rawAmount string
		createdAt              time.Time
	)
	if err := row.Scan(&rawID, &text, &rawAmount, &createdAt); err != nil {
		return core.Transaction{}, err
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction id %q: %w", rawID, err)
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount of transaction %s: %w", rawID, err)
	}
	return core.Transaction{ID: id, Text: text, Amount: amount, CreatedAt: createdAt.UTC()}, nil
}

func scanPlanItem(row pgx.Row) (core.PlanItem, error) {
	var (
		it        core.PlanItem
		rawAmount string
	)
	if err := row.Scan(&it.ID, &it.Category, &rawAmount); err != nil {
		return core.PlanItem{}, err
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return core.PlanItem{}, fmt.Errorf("parse amount of plan item %d: %w", it.ID, err)
	}
	it.Amount = amount
	return it, nil
}

func notFound(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", msg, core.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
