// Package sheets declares the spreadsheet mirror port fed by the sync worker.
package sheets

import (
	"context"

	"finance/internal/core"
)

// Snapshot is the full content of both resources at one point in time.
type Snapshot struct {
	Transactions []core.Transaction
	PlanItems    []core.PlanItem
}

// Ports for outbound spreadsheet adapters.
type (
	// Mirror replaces the spreadsheet content with a snapshot. Writes are
	// idempotent: pushing the same snapshot twice yields the same sheet.
	Mirror interface {
		WriteSnapshot(ctx context.Context, snap Snapshot) error
	}
)
