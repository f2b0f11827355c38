package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"finance/internal/amqp"
	"finance/internal/core"
	"finance/internal/store/memory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) PublishChange(_ context.Context, event *amqp.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event.Type()+":"+event.ID)
	return p.err
}

func (p *recordingPublisher) recorded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func TestTransactionService_PublishesEachWrite(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewTransactionService(memory.New(), pub)

	created, err := svc.Create(ctx, core.TransactionInput{Text: "Coffee", Amount: decimal.RequireFromString("3.50")})
	require.NoError(t, err)

	text := "Espresso"
	_, err = svc.Update(ctx, created.ID, core.TransactionPatch{Text: &text})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	id := created.ID.String()
	assert.Equal(t, []string{
		"transaction.created:" + id,
		"transaction.updated:" + id,
		"transaction.deleted:" + id,
	}, pub.recorded())
}

func TestTransactionService_FailedWritesPublishNothing(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewTransactionService(memory.New(), pub)

	_, err := svc.Create(ctx, core.TransactionInput{Text: " ", Amount: decimal.NewFromInt(1)})
	assert.True(t, core.IsValidation(err))

	err = svc.Delete(ctx, uuid.New())
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.Empty(t, pub.recorded())
}

func TestTransactionService_PublishErrorDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewTransactionService(memory.New(), pub)

	created, err := svc.Create(ctx, core.TransactionInput{Text: "Rent", Amount: decimal.NewFromInt(900)})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rent", got.Text)
}

func TestTransactionService_NilPublisher(t *testing.T) {
	svc := NewTransactionService(memory.New(), nil)

	_, err := svc.Create(context.Background(), core.TransactionInput{Text: "Bread", Amount: decimal.NewFromInt(2)})
	require.NoError(t, err)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPlanService_PublishesEachWrite(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewPlanService(memory.New(), pub)

	created, err := svc.Create(ctx, core.PlanItemInput{Category: "Groceries", Amount: decimal.NewFromInt(300)})
	require.NoError(t, err)

	amount := decimal.NewFromInt(350)
	updated, err := svc.Update(ctx, created.ID, core.PlanItemPatch{Amount: &amount})
	require.NoError(t, err)
	assert.True(t, amount.Equal(updated.Amount))

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.Equal(t, []string{
		"plan_item.created:1",
		"plan_item.updated:1",
		"plan_item.deleted:1",
	}, pub.recorded())
}
