package worker

import (
	"context"
	"errors"
	"testing"

	"walletwhisper/internal/amqp"
	"walletwhisper/internal/core"
	"walletwhisper/internal/sheets"
	sheetsmem "walletwhisper/internal/sheets/memory"
	"walletwhisper/internal/store"
	"walletwhisper/internal/store/memory"
)

type brokenExporter struct{}

func (brokenExporter) ExportTransactions(context.Context, []core.Transaction) error {
	return errors.New("quota exceeded")
}

func (brokenExporter) ReplaceTransactions(context.Context, []core.Transaction) error {
	return errors.New("quota exceeded")
}

func sampleTransaction() core.Transaction {
	return core.Transaction{
		ID:       9,
		Amount:   core.NewMoney(1200),
		Category: core.CategoryAirtime,
		Note:     "MTN top-up",
		Date:     core.NewDate(2024, 1, 16),
	}
}

func TestHandle_TransactionSync(t *testing.T) {
	ctx := context.Background()
	st := memory.New(store.Empty())
	tx := sampleTransaction()
	if err := st.InsertTransaction(ctx, tx); err != nil {
		t.Fatal(err)
	}
	exporter := sheetsmem.New()
	w := NewExportWorker(exporter, st, nil, 3)

	if err := w.Handle(ctx, amqp.NewTransactionSync(tx)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	// Redelivery must not duplicate the row.
	if err := w.Handle(ctx, amqp.NewTransactionSync(tx)); err != nil {
		t.Fatalf("Handle() redelivery error = %v", err)
	}

	if rows := exporter.Rows(); len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	pending, _ := st.PendingSync(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0 after export", len(pending))
	}
}

func TestHandle_TransactionSyncFailure(t *testing.T) {
	ctx := context.Background()
	st := memory.New(store.Empty())
	tx := sampleTransaction()
	_ = st.InsertTransaction(ctx, tx)
	w := NewExportWorker(brokenExporter{}, st, nil, 3)

	if err := w.Handle(ctx, amqp.NewTransactionSync(tx)); err == nil {
		t.Fatal("expected error so the message is requeued")
	}
	pending, _ := st.PendingSync(ctx, 10)
	if len(pending) != 1 || pending[0].Attempts != 1 {
		t.Errorf("pending = %+v, want one entry with 1 attempt", pending)
	}
}

func TestHandle_TransactionSyncGivesUpAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name       string
		maxRetries int
		// requeued is how many deliveries fail before the message is acked.
		requeued int
	}{
		{"single attempt", 1, 0},
		{"three attempts", 3, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := memory.New(store.Empty())
			tx := sampleTransaction()
			if err := st.InsertTransaction(ctx, tx); err != nil {
				t.Fatal(err)
			}
			w := NewExportWorker(brokenExporter{}, st, nil, tc.maxRetries)

			for i := 0; i < tc.requeued; i++ {
				if err := w.Handle(ctx, amqp.NewTransactionSync(tx)); err == nil {
					t.Fatalf("delivery %d: expected error so the message is requeued", i+1)
				}
			}
			if err := w.Handle(ctx, amqp.NewTransactionSync(tx)); err != nil {
				t.Fatalf("final delivery should be acked, got %v", err)
			}

			if n, _ := st.SyncAttempts(ctx, tx.ID); n != tc.maxRetries {
				t.Errorf("attempts = %d, want %d", n, tc.maxRetries)
			}
			if pending, _ := st.PendingSync(ctx, 10); len(pending) != 0 {
				t.Errorf("pending = %+v, want none after giving up", pending)
			}
		})
	}
}

func TestHandle_TransactionSyncCapsWithoutTracker(t *testing.T) {
	ctx := context.Background()
	w := NewExportWorker(brokenExporter{}, nil, nil, 2)
	tx := sampleTransaction()

	if err := w.Handle(ctx, amqp.NewTransactionSync(tx)); err == nil {
		t.Fatal("first failure should requeue")
	}
	if err := w.Handle(ctx, amqp.NewTransactionSync(tx)); err != nil {
		t.Fatalf("second failure should be acked, got %v", err)
	}
}

func TestHandle_LedgerExportReplacesSheet(t *testing.T) {
	ctx := context.Background()
	exporter := sheetsmem.New()
	w := NewExportWorker(exporter, nil, nil, 3)

	if err := w.Handle(ctx, amqp.NewTransactionSync(sampleTransaction())); err != nil {
		t.Fatal(err)
	}
	seed := store.DefaultSeed()
	if err := w.Handle(ctx, amqp.NewLedgerExport(seed.Transactions)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	rows := exporter.Rows()
	if len(rows) != len(seed.Transactions) {
		t.Fatalf("rows = %d, want %d", len(rows), len(seed.Transactions))
	}
	for _, row := range rows {
		if id, _ := row[sheets.IDColumn].(int64); id == 9 {
			t.Error("export should replace rows written before it")
		}
	}
}

func TestHandle_LedgerExportFailure(t *testing.T) {
	w := NewExportWorker(brokenExporter{}, nil, nil, 3)
	if err := w.Handle(context.Background(), amqp.NewLedgerExport(store.DefaultSeed().Transactions)); err == nil {
		t.Error("expected error")
	}
}

func TestHandle_ReminderAlert(t *testing.T) {
	w := NewExportWorker(sheetsmem.New(), nil, nil, 3)
	r := store.DefaultSeed().Reminders[0]
	if err := w.Handle(context.Background(), amqp.NewReminderAlert(r, amqp.AlertOverdue, "2 days overdue")); err != nil {
		t.Errorf("Handle() error = %v", err)
	}
}

func TestHandle_UnknownKind(t *testing.T) {
	w := NewExportWorker(sheetsmem.New(), nil, nil, 3)
	env := &amqp.Envelope{ID: "x", Kind: "ledger.delete"}
	if err := w.Handle(context.Background(), env); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestHandle_InvalidPayload(t *testing.T) {
	w := NewExportWorker(sheetsmem.New(), nil, nil, 3)
	env := amqp.NewTransactionSync(sampleTransaction())
	env.Transaction.Category = "Rent"
	if err := w.Handle(context.Background(), env); err == nil {
		t.Error("expected error for unknown category")
	}
}
