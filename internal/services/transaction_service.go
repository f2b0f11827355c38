package services

import (
	"context"
	"fmt"

	"finance/internal/amqp"
	"finance/internal/core"
	"finance/internal/store"

	"github.com/google/uuid"
)

// TransactionService wraps a transaction store and announces every
// successful write.
type TransactionService struct {
	store     store.TransactionStore
	publisher ChangePublisher
}

// NewTransactionService returns a service over s. publisher may be nil.
func NewTransactionService(s store.TransactionStore, publisher ChangePublisher) *TransactionService {
	return &TransactionService{store: s, publisher: publisher}
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

func (s *TransactionService) Get(ctx context.Context, id uuid.UUID) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// Create saves a new transaction and publishes transaction.created.
func (s *TransactionService) Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	t, err := s.store.CreateTransaction(ctx, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	notify(ctx, s.publisher, amqp.ResourceTransaction, amqp.ActionCreated, t.ID.String())
	return t, nil
}

// Update applies p and publishes transaction.updated.
func (s *TransactionService) Update(ctx context.Context, id uuid.UUID, p core.TransactionPatch) (core.Transaction, error) {
	t, err := s.store.UpdateTransaction(ctx, id, p)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	notify(ctx, s.publisher, amqp.ResourceTransaction, amqp.ActionUpdated, t.ID.String())
	return t, nil
}

// Delete removes the transaction and publishes transaction.deleted.
func (s *TransactionService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	notify(ctx, s.publisher, amqp.ResourceTransaction, amqp.ActionDeleted, id.String())
	return nil
}
