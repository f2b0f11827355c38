// Package store declares the persistence ports used by the resource services.
package store

import (
	"context"

	"finance/internal/core"

	"github.com/google/uuid"
)

// Ports for outbound persistence adapters. Lookups of an absent record
// return an error wrapping core.ErrNotFound.
type (
	TransactionStore interface {
		// ListTransactions returns every transaction in creation order.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		// CreateTransaction assigns id and created_at and persists the record.
		CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
		GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, id uuid.UUID, p core.TransactionPatch) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id uuid.UUID) error
	}

	PlanStore interface {
		// ListPlanItems returns every plan item in id order.
		ListPlanItems(ctx context.Context) ([]core.PlanItem, error)
		CreatePlanItem(ctx context.Context, in core.PlanItemInput) (core.PlanItem, error)
		GetPlanItem(ctx context.Context, id int64) (core.PlanItem, error)
		UpdatePlanItem(ctx context.Context, id int64, p core.PlanItemPatch) (core.PlanItem, error)
		DeletePlanItem(ctx context.Context, id int64) error
	}

	// Pinger is implemented by stores that can report their readiness.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
