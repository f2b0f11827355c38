// Package storetest holds behaviour checks shared by every store backend.
package storetest

import (
	"context"
	"testing"

	"finance/internal/core"
	"finance/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Backend bundles both ports; every backend implements them on one value.
type Backend interface {
	store.TransactionStore
	store.PlanStore
}

// Run exercises the full contract against stores produced by newBackend.
// Each subtest gets a fresh, empty backend.
func Run(t *testing.T, newBackend func(t *testing.T) Backend) {
	t.Run("TransactionRoundTrip", func(t *testing.T) { transactionRoundTrip(t, newBackend(t)) })
	t.Run("TransactionOrderAndUniqueness", func(t *testing.T) { transactionOrder(t, newBackend(t)) })
	t.Run("TransactionUpdate", func(t *testing.T) { transactionUpdate(t, newBackend(t)) })
	t.Run("TransactionDelete", func(t *testing.T) { transactionDelete(t, newBackend(t)) })
	t.Run("PlanItemLifecycle", func(t *testing.T) { planItemLifecycle(t, newBackend(t)) })
	t.Run("PlanItemDuplicatesAllowed", func(t *testing.T) { planItemDuplicates(t, newBackend(t)) })
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func transactionRoundTrip(t *testing.T, b Backend) {
	ctx := context.Background()

	created, err := b.CreateTransaction(ctx, core.TransactionInput{Text: "Coffee", Amount: dec("-4.50")})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := b.GetTransaction(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Coffee", got.Text)
	assert.True(t, got.Amount.Equal(dec("-4.50")), "amount %s", got.Amount)
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt), "created_at %v != %v", got.CreatedAt, created.CreatedAt)

	_, err = b.GetTransaction(ctx, uuid.New())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func transactionOrder(t *testing.T, b Backend) {
	ctx := context.Background()

	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, text := range []string{"Salary", "Rent", "Groceries", "Cinema"} {
		tx, err := b.CreateTransaction(ctx, core.TransactionInput{Text: text, Amount: dec("10")})
		require.NoError(t, err)
		require.False(t, seen[tx.ID], "duplicate id %s", tx.ID)
		seen[tx.ID] = true
		ids = append(ids, tx.ID)
	}

	list, err := b.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, list, len(ids))
	for i := range list {
		assert.Equal(t, ids[i], list[i].ID)
		if i > 0 {
			assert.False(t, list[i].CreatedAt.Before(list[i-1].CreatedAt), "created_at decreased at %d", i)
		}
	}
}

func transactionUpdate(t *testing.T, b Backend) {
	ctx := context.Background()

	orig, err := b.CreateTransaction(ctx, core.TransactionInput{Text: "Salary", Amount: dec("2500")})
	require.NoError(t, err)

	amount := dec("2600")
	updated, err := b.UpdateTransaction(ctx, orig.ID, core.TransactionPatch{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, orig.ID, updated.ID)
	assert.True(t, updated.CreatedAt.Equal(orig.CreatedAt))
	assert.Equal(t, "Salary", updated.Text)
	assert.True(t, updated.Amount.Equal(amount))

	updated, err = b.UpdateTransaction(ctx, orig.ID, core.TransactionInput{Text: "Bonus", Amount: dec("-1.25")}.Patch())
	require.NoError(t, err)
	got, err := b.GetTransaction(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bonus", got.Text)
	assert.True(t, got.Amount.Equal(dec("-1.25")))
	assert.True(t, got.CreatedAt.Equal(orig.CreatedAt))
	assert.Equal(t, updated.Text, got.Text)

	_, err = b.UpdateTransaction(ctx, uuid.New(), core.TransactionPatch{Amount: &amount})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func transactionDelete(t *testing.T, b Backend) {
	ctx := context.Background()

	tx, err := b.CreateTransaction(ctx, core.TransactionInput{Text: "Coffee", Amount: dec("-3")})
	require.NoError(t, err)
	require.NoError(t, b.DeleteTransaction(ctx, tx.ID))

	_, err = b.GetTransaction(ctx, tx.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, b.DeleteTransaction(ctx, tx.ID), core.ErrNotFound)

	unknown := uuid.New()
	assert.ErrorIs(t, b.DeleteTransaction(ctx, unknown), core.ErrNotFound)
	assert.ErrorIs(t, b.DeleteTransaction(ctx, unknown), core.ErrNotFound)

	list, err := b.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func planItemLifecycle(t *testing.T, b Backend) {
	ctx := context.Background()

	rent, err := b.CreatePlanItem(ctx, core.PlanItemInput{Category: "Rent", Amount: dec("1200")})
	require.NoError(t, err)
	food, err := b.CreatePlanItem(ctx, core.PlanItemInput{Category: "Groceries", Amount: dec("350.50")})
	require.NoError(t, err)
	assert.Greater(t, food.ID, rent.ID)

	amount := dec("1300")
	updated, err := b.UpdatePlanItem(ctx, rent.ID, core.PlanItemPatch{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, rent.ID, updated.ID)
	assert.Equal(t, "Rent", updated.Category)
	assert.True(t, updated.Amount.Equal(amount))

	got, err := b.GetPlanItem(ctx, rent.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Category, got.Category)
	assert.True(t, got.Amount.Equal(amount))

	list, err := b.ListPlanItems(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, rent.ID, list[0].ID)
	assert.Equal(t, food.ID, list[1].ID)

	require.NoError(t, b.DeletePlanItem(ctx, rent.ID))
	_, err = b.GetPlanItem(ctx, rent.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, b.DeletePlanItem(ctx, rent.ID), core.ErrNotFound)

	_, err = b.UpdatePlanItem(ctx, 999999, core.PlanItemPatch{Amount: &amount})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func planItemDuplicates(t *testing.T, b Backend) {
	ctx := context.Background()

	a, err := b.CreatePlanItem(ctx, core.PlanItemInput{Category: "Leisure", Amount: dec("50")})
	require.NoError(t, err)
	c, err := b.CreatePlanItem(ctx, core.PlanItemInput{Category: "Leisure", Amount: dec("75")})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, c.ID)
}
