package backend

import (
	"context"
	"errors"
	"fmt"

	"walletwhisper/internal/amqp"
	"walletwhisper/internal/log"
	"walletwhisper/internal/metrics"
	"walletwhisper/internal/services"
	"walletwhisper/internal/sheets"
	gsheet "walletwhisper/internal/sheets/google"
	sheetsmem "walletwhisper/internal/sheets/memory"
	"walletwhisper/internal/storage"
	"walletwhisper/internal/store"
	"walletwhisper/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger   *log.Logger
	recorder metrics.Recorder
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger, recorder metrics.Recorder) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &DefaultFactory{
		logger:   logger.WithComponent(log.ComponentBackend),
		recorder: recorder,
	}
}

// CreateBackend implements Factory.CreateBackend. Only the store is
// mandatory: a broker that cannot be reached degrades to local-only events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		st  store.Store
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		st, err = f.createSQLiteStore(ctx, config)
	case MemoryBackend:
		st = f.createMemoryStore(config)
	default:
		err = fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	exporter, err := f.createExporter(ctx, config)
	if err != nil {
		st.Close()
		return nil, err
	}

	result := &BackendResult{
		Store:     st,
		Publisher: services.NoopPublisher{},
		Exporter:  exporter,
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, amqp.WithRecorder(f.recorder))
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Broker = client
			result.Publisher = client
		}
	}

	result.Cleanup = func() error {
		var errs []error
		if result.Broker != nil {
			errs = append(errs, result.Broker.Close())
		}
		errs = append(errs, st.Close())
		return errors.Join(errs...)
	}

	f.logger.InfoContext(ctx, "Initialized backend",
		"backend", config.Type,
		"amqp_enabled", result.Broker != nil,
		"sheets_enabled", config.SheetsEnabled())
	return result, nil
}

func (f *DefaultFactory) seed(config Config) store.SeedData {
	if config.Seed {
		return store.DefaultSeed()
	}
	return store.Empty()
}

func (f *DefaultFactory) createSQLiteStore(ctx context.Context, config Config) (store.Store, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	seeded, err := repo.SeedIfEmpty(ctx, f.seed(config))
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to seed SQLite repository: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized SQLite store",
		"db_path", config.SQLiteDBPath,
		"seeded", seeded)
	return repo, nil
}

func (f *DefaultFactory) createMemoryStore(config Config) store.Store {
	f.logger.Info("Initialized memory store", "sample_data", config.Seed)
	return memory.New(f.seed(config))
}

func (f *DefaultFactory) createExporter(ctx context.Context, config Config) (sheets.TransactionExporter, error) {
	if !config.SheetsEnabled() {
		f.logger.InfoContext(ctx, "Google Sheets disabled, exporting to memory")
		return sheetsmem.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	return client, nil
}
