package ports

import (
	"context"
	"errors"

	"catatan/internal/core"
)

// ErrNotFound is returned by stores for a missing row.
var ErrNotFound = errors.New("not found")

// Ports for outbound adapters.
type (
	TransactionWriter interface {
		// CreateTransaction persists a single transaction.
		CreateTransaction(ctx context.Context, t core.Transaction) error
	}

	// TransactionLister returns every stored transaction, newest first.
	TransactionLister interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// CategoryReader lists persisted categories ordered by label. An empty
	// flow lists both flows.
	CategoryReader interface {
		ListCategories(ctx context.Context, flow core.Flow) ([]core.Category, error)
	}

	CategoryWriter interface {
		UpsertCategory(ctx context.Context, c core.Category) error
	}

	// TransactionExporter mirrors a transaction into an external sheet.
	TransactionExporter interface {
		AppendTransaction(ctx context.Context, t core.Transaction, categoryLabel string) (rowRef string, err error)
	}

	// SyncStore tracks which transactions still need mirroring.
	SyncStore interface {
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		// PendingSync returns unsynced transactions with fewer than
		// maxAttempts failed attempts, oldest first.
		PendingSync(ctx context.Context, limit, maxAttempts int) ([]core.Transaction, error)
		MarkSynced(ctx context.Context, id, rowRef string) error
		MarkSyncError(ctx context.Context, id string, cause error) error
	}
)
