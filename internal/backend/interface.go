package backend

import (
	"context"

	"catatan/internal/core"
	"catatan/internal/finance"
	"catatan/internal/ports"
)

// Store is the full storage surface every backend provides.
type Store interface {
	ports.TransactionWriter
	ports.TransactionLister
	ports.CategoryReader
	ports.CategoryWriter
	ports.SyncStore
	Ping(ctx context.Context) error
	Close() error
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult contains the store, the optional sync publisher and a
// cleanup function releasing both.
type BackendResult struct {
	Store     Store
	Publisher finance.Publisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	CreateExporter(ctx context.Context, config Config) (ports.TransactionExporter, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	DatabaseDSN  string

	// AMQP is optional; an empty URL disables publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets; an empty spreadsheet ID selects the in-memory sheet.
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Categories seeded into the memory backend.
	Categories []core.Category
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
