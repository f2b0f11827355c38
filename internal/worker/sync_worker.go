// Package worker keeps the spreadsheet mirror in step with the store.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"finance/internal/amqp"
	"finance/internal/core"
	"finance/internal/sheets"

	"golang.org/x/sync/errgroup"
)

const defaultRetryDelay = 5 * time.Second

// Reader is the read side of the store the worker snapshots.
type Reader interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	ListPlanItems(ctx context.Context) ([]core.PlanItem, error)
}

// Stats reports what the worker has done so far.
type Stats struct {
	Events   int64
	Syncs    int64
	Failures int64
	LastSync time.Time
}

// SyncWorker rewrites the mirror from a fresh store snapshot whenever change
// events arrive. Bursts of events inside the debounce window collapse into
// a single sync.
type SyncWorker struct {
	reader     Reader
	mirror     sheets.Mirror
	debounce   time.Duration
	retryDelay time.Duration

	pending chan struct{}

	mu    sync.Mutex
	stats Stats
}

func NewSyncWorker(reader Reader, mirror sheets.Mirror, debounce time.Duration) *SyncWorker {
	return &SyncWorker{
		reader:     reader,
		mirror:     mirror,
		debounce:   debounce,
		retryDelay: defaultRetryDelay,
		pending:    make(chan struct{}, 1),
	}
}

// HandleChange records that the store changed. It never blocks and never
// fails: the next sync reads the whole store, so the event payload is only
// logged.
func (w *SyncWorker) HandleChange(ctx context.Context, event *amqp.ChangeEvent) error {
	slog.DebugContext(ctx, "Change event received",
		"event", event.Type(),
		"id", event.ID)

	w.mu.Lock()
	w.stats.Events++
	w.mu.Unlock()

	w.markDirty()
	return nil
}

func (w *SyncWorker) markDirty() {
	select {
	case w.pending <- struct{}{}:
	default:
	}
}

// Run performs a full sync at startup, then syncs after each debounced burst
// of changes until ctx is done. A failed sync is retried after retryDelay.
func (w *SyncWorker) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Sync worker started",
		"debounce", w.debounce.String(),
		"retry_delay", w.retryDelay.String())

	var timer <-chan time.Time
	if err := w.Sync(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup sync failed", "error", err)
		timer = time.After(w.retryDelay)
	}

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Sync worker stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-w.pending:
			if timer == nil {
				timer = time.After(w.debounce)
			}
		case <-timer:
			timer = nil
			if err := w.Sync(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				slog.ErrorContext(ctx, "Sync failed, retrying",
					"error", err,
					"retry_delay", w.retryDelay.String())
				timer = time.After(w.retryDelay)
			}
		}
	}
}

// Sync loads both resources concurrently and pushes them to the mirror.
func (w *SyncWorker) Sync(ctx context.Context) error {
	start := time.Now()

	var snap sheets.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs, err := w.reader.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		snap.Transactions = txs
		return nil
	})
	g.Go(func() error {
		items, err := w.reader.ListPlanItems(gctx)
		if err != nil {
			return fmt.Errorf("list plan items: %w", err)
		}
		snap.PlanItems = items
		return nil
	})

	err := g.Wait()
	if err == nil {
		err = w.mirror.WriteSnapshot(ctx, snap)
		if err != nil {
			err = fmt.Errorf("write snapshot: %w", err)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.stats.Failures++
		return err
	}
	w.stats.Syncs++
	w.stats.LastSync = time.Now()

	slog.InfoContext(ctx, "Mirror synced",
		"transactions", len(snap.Transactions),
		"plan_items", len(snap.PlanItems),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Stats returns a copy of the worker counters.
func (w *SyncWorker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}
