package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// TransactionRow mirrors a row of the transactions table.
type TransactionRow struct {
	ID        string
	Text      string
	Amount    string
	CreatedAt string
}

// PlanItemRow mirrors a row of the monthly_plan_items table.
type PlanItemRow struct {
	ID       int64
	Category string
	Amount   string
}

const listTransactions = `
SELECT id, text, amount, created_at FROM transactions
ORDER BY seq
`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(&i.ID, &i.Text, &i.Amount, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createTransaction = `
INSERT INTO transactions (id, text, amount, created_at)
VALUES (?, ?, ?, ?)
RETURNING id, text, amount, created_at
`

type CreateTransactionParams struct {
	ID        string
	Text      string
	Amount    string
	CreatedAt string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, createTransaction, arg.ID, arg.Text, arg.Amount, arg.CreatedAt)
	var i TransactionRow
	err := row.Scan(&i.ID, &i.Text, &i.Amount, &i.CreatedAt)
	return i, err
}

const latestTransactionCreatedAt = `
SELECT created_at FROM transactions
ORDER BY seq DESC
LIMIT 1
`

func (q *Queries) LatestTransactionCreatedAt(ctx context.Context) (string, error) {
	row := q.db.QueryRowContext(ctx, latestTransactionCreatedAt)
	var createdAt string
	err := row.Scan(&createdAt)
	return createdAt, err
}

const getTransaction = `
SELECT id, text, amount, created_at FROM transactions
WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id string) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	var i TransactionRow
	err := row.Scan(&i.ID, &i.Text, &i.Amount, &i.CreatedAt)
	return i, err
}

const updateTransaction = `
UPDATE transactions
SET text = COALESCE(?, text),
    amount = COALESCE(?, amount)
WHERE id = ?
RETURNING id, text, amount, created_at
`

type UpdateTransactionParams struct {
	Text   sql.NullString
	Amount sql.NullString
	ID     string
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, updateTransaction, arg.Text, arg.Amount, arg.ID)
	var i TransactionRow
	err := row.Scan(&i.ID, &i.Text, &i.Amount, &i.CreatedAt)
	return i, err
}

const deleteTransaction = `
DELETE FROM transactions WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listPlanItems = `
SELECT id, category, amount FROM monthly_plan_items
ORDER BY id
`

func (q *Queries) ListPlanItems(ctx context.Context) ([]PlanItemRow, error) {
	rows, err := q.db.QueryContext(ctx, listPlanItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PlanItemRow
	for rows.Next() {
		var i PlanItemRow
		if err := rows.Scan(&i.ID, &i.Category, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createPlanItem = `
INSERT INTO monthly_plan_items (category, amount)
VALUES (?, ?)
RETURNING id, category, amount
`

type CreatePlanItemParams struct {
	Category string
	Amount   string
}

func (q *Queries) CreatePlanItem(ctx context.Context, arg CreatePlanItemParams) (PlanItemRow, error) {
	row := q.db.QueryRowContext(ctx, createPlanItem, arg.Category, arg.Amount)
	var i PlanItemRow
	err := row.Scan(&i.ID, &i.Category, &i.Amount)
	return i, err
}

const getPlanItem = `
SELECT id, category, amount FROM monthly_plan_items
WHERE id = ?
`

func (q *Queries) GetPlanItem(ctx context.Context, id int64) (PlanItemRow, error) {
	row := q.db.QueryRowContext(ctx, getPlanItem, id)
	var i PlanItemRow
	err := row.Scan(&i.ID, &i.Category, &i.Amount)
	return i, err
}

const updatePlanItem = `
UPDATE monthly_plan_items
SET category = COALESCE(?, category),
    amount = COALESCE(?, amount)
WHERE id = ?
RETURNING id, category, amount
`

type UpdatePlanItemParams struct {
	Category sql.NullString
	Amount   sql.NullString
	ID       int64
}

func (q *Queries) UpdatePlanItem(ctx context.Context, arg UpdatePlanItemParams) (PlanItemRow, error) {
	row := q.db.QueryRowContext(ctx, updatePlanItem, arg.Category, arg.Amount, arg.ID)
	var i PlanItemRow
	err := row.Scan(&i.ID, &i.Category, &i.Amount)
	return i, err
}

const deletePlanItem = `
DELETE FROM monthly_plan_items WHERE id = ?
`

func (q *Queries) DeletePlanItem(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePlanItem, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
