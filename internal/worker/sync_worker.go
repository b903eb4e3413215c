package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"catatan/internal/amqp"
	"catatan/internal/catalog"
	"catatan/internal/core"
	"catatan/internal/ports"
)

// CategorySource lists categories with the tier that served them.
type CategorySource interface {
	List(ctx context.Context, flow core.Flow) ([]core.Category, catalog.Source)
}

// SyncWorker mirrors stored transactions into the external sheet.
type SyncWorker struct {
	store       ports.SyncStore
	exporter    ports.TransactionExporter
	categories  CategorySource
	batchSize   int
	maxAttempts int
}

func NewSyncWorker(store ports.SyncStore, exporter ports.TransactionExporter, categories CategorySource, batchSize, maxAttempts int) *SyncWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	return &SyncWorker{
		store:       store,
		exporter:    exporter,
		categories:  categories,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
	}
}

// HandleSyncMessage processes a single sync message from AMQP. A message
// for a transaction that no longer exists is dropped.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID, "published_at", msg.Timestamp)

	t, err := w.store.GetTransaction(ctx, msg.ID)
	if errors.Is(err, ports.ErrNotFound) {
		slog.WarnContext(ctx, "Transaction not found, dropping sync message", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.syncTransaction(ctx, t, w.lookup(ctx))
}

// ProcessPending syncs up to limit transactions that were never mirrored.
// It backs up lost AMQP messages.
func (w *SyncWorker) ProcessPending(ctx context.Context, limit int) (synced, failed int, err error) {
	pending, err := w.store.PendingSync(ctx, limit, w.maxAttempts)
	if err != nil {
		return 0, 0, fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))
	labels := w.lookup(ctx)
	for _, t := range pending {
		if ctx.Err() != nil {
			return synced, failed, ctx.Err()
		}
		if err := w.syncTransaction(ctx, t, labels); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction", "id", t.ID, "error", err)
			failed++
			continue
		}
		synced++
	}
	return synced, failed, nil
}

// StartupSyncCheck syncs a larger pending batch when the worker starts.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, failed, err := w.ProcessPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	if synced+failed == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}
	slog.InfoContext(ctx, "Startup sync completed", "synced", synced, "errors", failed)
	return nil
}

func (w *SyncWorker) lookup(ctx context.Context) catalog.Lookup {
	if w.categories == nil {
		return nil
	}
	cats, _ := w.categories.List(ctx, "")
	return catalog.NewLookup(cats)
}

func (w *SyncWorker) syncTransaction(ctx context.Context, t core.Transaction, labels catalog.Lookup) error {
	label := t.CategoryID
	if c, ok := labels.Category(t.CategoryID); ok {
		label = c.Label
	}

	ref, err := w.exporter.AppendTransaction(ctx, t, label)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, t.ID, err); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", t.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	// the row exists now; a failed mark only means a later idempotent retry
	if err := w.store.MarkSynced(ctx, t.ID, ref); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", t.ID, "error", err)
	}

	slog.InfoContext(ctx, "Synced transaction",
		"id", t.ID,
		"sheet_ref", ref,
		"flow", t.Flow,
		"amount", t.Amount.Units)
	return nil
}
