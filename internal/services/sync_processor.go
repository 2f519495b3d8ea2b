package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"walletwhisper/internal/core"
	"walletwhisper/internal/metrics"
	"walletwhisper/internal/sheets"
	"walletwhisper/internal/store"
)

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often to check for pending transactions (default: 10s)
	PollInterval time.Duration

	// BatchSize is the max number of transactions exported per poll cycle (default: 10)
	BatchSize int

	// MaxRetries is the number of failed attempts before a transaction is
	// given up on (default: 3)
	MaxRetries int
}

// DefaultSyncProcessorConfig returns sensible defaults
func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval: 10 * time.Second,
		BatchSize:    10,
		MaxRetries:   3,
	}
}

// SyncProcessor exports ledger entries that have not reached the sheet yet
// by polling the store. Without a broker it is the only export path; with
// one it picks up entries whose event was never published.
type SyncProcessor struct {
	tracker  store.SyncTracker
	exporter sheets.TransactionExporter
	metrics  metrics.Recorder
	config   SyncProcessorConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncProcessor(tracker store.SyncTracker, exporter sheets.TransactionExporter, recorder metrics.Recorder, config SyncProcessorConfig) *SyncProcessor {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &SyncProcessor{
		tracker:  tracker,
		exporter: exporter,
		metrics:  recorder,
		config:   config,
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	if p.tracker == nil || p.exporter == nil {
		p.mu.Unlock()
		return fmt.Errorf("sync processor not properly initialized")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	pollTicker := time.NewTicker(p.config.PollInterval)
	defer pollTicker.Stop()

	// Process immediately on startup
	p.ProcessBatch(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			p.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch exports one batch of pending transactions and returns how
// many reached the sheet.
func (p *SyncProcessor) ProcessBatch(ctx context.Context) int {
	items, err := p.tracker.PendingSync(ctx, p.config.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load pending transactions", "error", err)
		return 0
	}
	if len(items) == 0 {
		return 0
	}

	slog.DebugContext(ctx, "Processing sync batch", "count", len(items))

	synced := 0
	for _, item := range items {
		select {
		case <-ctx.Done():
			return synced
		default:
		}

		err := p.exporter.ExportTransactions(ctx, []core.Transaction{item.Transaction})
		p.metrics.RecordExport("transaction.sync", 1, err == nil)
		if err != nil {
			p.handleFailure(ctx, item, err)
			continue
		}
		if err := p.tracker.MarkSynced(ctx, item.Transaction.ID); err != nil {
			// The row is in the sheet; the exporter skips it next time.
			slog.WarnContext(ctx, "Failed to mark transaction as synced",
				"transaction_id", item.Transaction.ID, "error", err)
		}
		synced++
	}

	slog.InfoContext(ctx, "Sync batch complete", "synced", synced, "pending", len(items))
	return synced
}

// handleFailure counts a failed attempt and gives up after MaxRetries.
func (p *SyncProcessor) handleFailure(ctx context.Context, item store.PendingSync, exportErr error) {
	attempt := item.Attempts + 1
	final := attempt >= p.config.MaxRetries

	slog.WarnContext(ctx, "Transaction export failed",
		"transaction_id", item.Transaction.ID,
		"attempt", attempt,
		"final", final,
		"error", exportErr)

	if err := p.tracker.RecordSyncFailure(ctx, item.Transaction.ID, exportErr.Error(), final); err != nil {
		slog.ErrorContext(ctx, "Failed to record sync failure",
			"transaction_id", item.Transaction.ID, "error", err)
	}
}
