package backend

import (
	"context"

	"finance/internal/amqp"
	"finance/internal/services"
	"finance/internal/store"
)

// Store is the full persistence surface a backend provides.
type Store interface {
	store.TransactionStore
	store.PlanStore
	store.Pinger
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the store, the services wrapping it and an optional
// cleanup function.
type BackendResult struct {
	Store        Store
	Transactions *services.TransactionService
	Plan         *services.PlanService
	// Publisher is nil when change events are disabled or unreachable.
	Publisher *amqp.Client
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend opens the store and wires the services, publishing
	// change events when AMQP is configured.
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)

	// OpenStore opens the store alone.
	OpenStore(ctx context.Context, config Config) (Store, CleanupFunc, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	DatabaseURL  string

	// Memory backend seed directory; empty starts with no records.
	DataDirectory string

	// Change events; disabled when AMQPURL is empty.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
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

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
