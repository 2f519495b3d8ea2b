// Package worker turns broker events into spreadsheet writes.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"walletwhisper/internal/amqp"
	"walletwhisper/internal/cache"
	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
	"walletwhisper/internal/metrics"
	"walletwhisper/internal/sheets"
	"walletwhisper/internal/store"
)

// ExportWorker handles wallet events consumed from AMQP.
type ExportWorker struct {
	exporter   sheets.TransactionExporter
	tracker    store.SyncTracker
	metrics    metrics.Recorder
	maxRetries int
	// failures counts attempts per transaction when there is no tracker.
	failures cache.Cache[int]
}

// NewExportWorker builds a worker writing to exporter. tracker may be nil
// when the worker has no access to the ledger database. A transaction whose
// export failed maxRetries times is acknowledged and left to the outbox
// sweep instead of being requeued again.
func NewExportWorker(exporter sheets.TransactionExporter, tracker store.SyncTracker, recorder metrics.Recorder, maxRetries int) *ExportWorker {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &ExportWorker{
		exporter:   exporter,
		tracker:    tracker,
		metrics:    recorder,
		maxRetries: maxRetries,
		failures:   cache.NewLRUCache[int](1024, time.Hour),
	}
}

// Handle dispatches one envelope. A returned error requeues the message.
func (w *ExportWorker) Handle(ctx context.Context, env *amqp.Envelope) error {
	logger := log.FromContext(ctx, nil).
		WithComponent(log.ComponentWorker).
		With(log.NewFields().WithRequestID(env.ID).ToSlice()...)
	ctx = log.NewContext(ctx, logger)

	logger.InfoContext(ctx, "Processing wallet event",
		log.FieldEventKind, env.Kind,
		"timestamp", env.Timestamp)

	switch env.Kind {
	case amqp.KindTransactionSync:
		return w.handleSync(ctx, env)
	case amqp.KindLedgerExport:
		return w.handleExport(ctx, env)
	case amqp.KindReminderAlert:
		return w.handleAlert(ctx, env)
	default:
		return fmt.Errorf("unknown event kind %q", env.Kind)
	}
}

func (w *ExportWorker) handleSync(ctx context.Context, env *amqp.Envelope) error {
	logger := log.FromContext(ctx, nil)
	tx, err := env.Transaction.ToCore()
	if err != nil {
		return fmt.Errorf("decode transaction: %w", err)
	}

	if err := w.exporter.ExportTransactions(ctx, []core.Transaction{tx}); err != nil {
		w.metrics.RecordExport(string(env.Kind), 0, false)
		attempt := w.attempts(ctx, tx.ID) + 1
		final := attempt >= w.maxRetries
		w.recordFailure(ctx, tx.ID, err, final)

		if final {
			logger.ErrorContext(ctx, "Giving up on transaction export",
				log.FieldEntityID, tx.ID,
				"attempt", attempt,
				log.FieldError, err)
			return nil
		}
		return fmt.Errorf("export transaction (attempt %d of %d): %w", attempt, w.maxRetries, err)
	}
	w.metrics.RecordExport(string(env.Kind), 1, true)

	if w.tracker != nil {
		if err := w.tracker.MarkSynced(ctx, tx.ID); err != nil {
			// The row is already in the sheet.
			logger.ErrorContext(ctx, "Failed to mark as synced", log.FieldEntityID, tx.ID, log.FieldError, err)
		}
	}

	logger.InfoContext(ctx, "Successfully exported transaction",
		append([]any{log.FieldEntityID, tx.ID},
			log.NewFields().WithAmount(tx.Amount.Minor, string(tx.Category)).ToSlice()...)...)
	return nil
}

// attempts returns how many exports of id failed before this one.
func (w *ExportWorker) attempts(ctx context.Context, id int64) int {
	if w.tracker != nil {
		n, err := w.tracker.SyncAttempts(ctx, id)
		if err == nil {
			return n
		}
		log.FromContext(ctx, nil).WarnContext(ctx, "Failed to read sync attempts",
			log.FieldEntityID, id, log.FieldError, err)
	}
	n, _ := w.failures.Get(strconv.FormatInt(id, 10))
	return n
}

func (w *ExportWorker) recordFailure(ctx context.Context, id int64, exportErr error, final bool) {
	key := strconv.FormatInt(id, 10)
	n, _ := w.failures.Get(key)
	w.failures.Set(key, n+1)

	if w.tracker == nil {
		return
	}
	if err := w.tracker.RecordSyncFailure(ctx, id, exportErr.Error(), final); err != nil {
		log.FromContext(ctx, nil).ErrorContext(ctx, "Failed to record sync failure",
			log.FieldEntityID, id, log.FieldError, err)
	}
}

func (w *ExportWorker) handleExport(ctx context.Context, env *amqp.Envelope) error {
	logger := log.FromContext(ctx, nil)
	list := make([]core.Transaction, 0, len(env.Transactions))
	for _, p := range env.Transactions {
		tx, err := p.ToCore()
		if err != nil {
			return fmt.Errorf("decode ledger: %w", err)
		}
		list = append(list, tx)
	}

	if err := w.exporter.ReplaceTransactions(ctx, list); err != nil {
		w.metrics.RecordExport(string(env.Kind), 0, false)
		return fmt.Errorf("replace sheet: %w", err)
	}
	w.metrics.RecordExport(string(env.Kind), len(list), true)

	if w.tracker != nil {
		for _, tx := range list {
			if err := w.tracker.MarkSynced(ctx, tx.ID); err != nil {
				logger.WarnContext(ctx, "Failed to mark as synced", log.FieldEntityID, tx.ID, log.FieldError, err)
			}
		}
	}

	logger.InfoContext(ctx, "Ledger export completed", "rows", len(list))
	return nil
}

func (w *ExportWorker) handleAlert(ctx context.Context, env *amqp.Envelope) error {
	a := env.Alert
	w.metrics.RecordAlert(string(a.Level))

	logger := log.FromContext(ctx, nil)
	logFn := logger.InfoContext
	if a.Level == amqp.AlertOverdue {
		logFn = logger.WarnContext
	}
	logFn(ctx, "Reminder alert",
		log.FieldEntityID, a.ReminderID,
		"title", a.Title,
		log.FieldAmount, a.AmountMinor,
		"due_date", a.DueDate,
		"level", a.Level,
		"label", a.Label)
	return nil
}
