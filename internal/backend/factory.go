package backend

import (
	"context"
	"fmt"
	"log/slog"

	"gastos/internal/amqp"
	"gastos/internal/cache"
	gsheet "gastos/internal/sheets/google"
	"gastos/internal/sheets/memory"
	"gastos/internal/storage"
	"gastos/internal/storage/postgres"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	// dialAMQP is swapped in tests.
	dialAMQP func(url, exchange, queue string) (publisherCloser, error)
}

type publisherCloser interface {
	Publisher
	Close() error
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
		dialAMQP: func(url, exchange, queue string) (publisherCloser, error) {
			return amqp.NewClient(url, exchange, queue)
		},
	}
}

// CreateBackend builds the primary store, then layers the mirror publisher
// (local backends with AMQP configured) and the read cache (CacheTTL > 0).
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *BackendResult
		err error
	)
	switch config.Type {
	case MemoryBackend:
		res, err = f.createMemoryBackend(config)
	case SheetsBackend:
		res, err = f.createSheetsBackend(ctx, config)
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(config)
	case PostgresBackend:
		res, err = f.createPostgresBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if config.Type.IsLocal() && config.AMQPURL != "" {
		f.attachPublisher(res, config)
	}

	if config.CacheTTL > 0 {
		cached, err := cache.New(res.Store, config.CacheTTL)
		if err != nil {
			res.Close()
			return nil, err
		}
		res.Store = cached
		res.Cleanup = chain(func() error { cached.Close(); return nil }, res.Cleanup)
		f.logger.Info("Enabled table read cache", "ttl", config.CacheTTL)
	}

	return res, nil
}

func (f *DefaultFactory) attachPublisher(res *BackendResult, config Config) {
	client, err := f.dialAMQP(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without mirror", "error", err)
		return
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	res.Store = NewPublishingStore(res.Store, client, f.logger)
	res.Cleanup = chain(client.Close, res.Cleanup)
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store, err := memory.NewFromFile(config.MemorySeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory store: %w", err)
	}

	f.logger.Info("Initialized memory backend", "seed_file", config.MemorySeedFile)

	return &BackendResult{Store: store}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, config.Google)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend")

	return &BackendResult{Store: cli}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{Store: repo, Cleanup: repo.Close, Ready: repo.Ping}, nil
}

func (f *DefaultFactory) createPostgresBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := postgres.Connect(ctx, config.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL store: %w", err)
	}

	f.logger.Info("Initialized PostgreSQL backend")

	return &BackendResult{Store: store, Cleanup: store.Close, Ready: store.Ping}, nil
}

// chain runs first then rest, returning the first error.
func chain(first, rest CleanupFunc) CleanupFunc {
	return func() error {
		err := first()
		if rest != nil {
			if rerr := rest(); err == nil {
				err = rerr
			}
		}
		return err
	}
}
