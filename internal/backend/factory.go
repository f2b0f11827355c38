package backend

import (
	"context"
	"errors"
	"fmt"

	"finance/internal/amqp"
	applog "finance/internal/log"
	"finance/internal/services"
	"finance/internal/storage"
	"finance/internal/storage/postgres"
	"finance/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	st, closeStore, err := f.OpenStore(ctx, config)
	if err != nil {
		return nil, err
	}

	// A broker outage must not keep the API down; writes are still stored.
	var publisher *amqp.Client
	if config.AMQPURL != "" {
		publisher, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without change events",
				applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeNetwork)
			publisher = nil
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	result := &BackendResult{
		Store:     st,
		Publisher: publisher,
		Cleanup: func() error {
			var errs []error
			if publisher != nil {
				if err := publisher.Close(); err != nil {
					errs = append(errs, fmt.Errorf("amqp: %w", err))
				}
			}
			if closeStore != nil {
				if err := closeStore(); err != nil {
					errs = append(errs, fmt.Errorf("store: %w", err))
				}
			}
			return errors.Join(errs...)
		},
	}

	var pub services.ChangePublisher
	if publisher != nil {
		pub = publisher
	}
	result.Transactions = services.NewTransactionService(st, pub)
	result.Plan = services.NewPlanService(st, pub)

	return result, nil
}

// OpenStore implements Factory.OpenStore
func (f *DefaultFactory) OpenStore(ctx context.Context, config Config) (Store, CleanupFunc, error) {
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, repo.Close, nil

	case PostgresBackend:
		repo, err := postgres.Connect(ctx, config.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize PostgreSQL repository: %w", err)
		}
		f.logger.Info("Initialized PostgreSQL backend")
		return repo, repo.Close, nil

	case MemoryBackend:
		var st *memory.Store
		if config.DataDirectory != "" {
			st = memory.NewFromFiles(config.DataDirectory)
		} else {
			st = memory.New()
		}
		f.logger.Info("Initialized memory backend", "data_directory", config.DataDirectory)
		return st, nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
