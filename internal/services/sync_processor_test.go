package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"walletwhisper/internal/core"
	sheetsmem "walletwhisper/internal/sheets/memory"
	"walletwhisper/internal/store"
	"walletwhisper/internal/store/memory"
)

type failingExporter struct {
	mu    sync.Mutex
	calls int
}

func (e *failingExporter) ExportTransactions(context.Context, []core.Transaction) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	return errors.New("sheet unavailable")
}

func (e *failingExporter) ReplaceTransactions(context.Context, []core.Transaction) error {
	return errors.New("sheet unavailable")
}

func testSyncConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval: 10 * time.Millisecond,
		BatchSize:    10,
		MaxRetries:   3,
	}
}

func TestSyncProcessor_ProcessBatch(t *testing.T) {
	st := memory.New(store.DefaultSeed())
	exporter := sheetsmem.New()
	processor := NewSyncProcessor(st, exporter, nil, testSyncConfig())
	ctx := context.Background()

	if synced := processor.ProcessBatch(ctx); synced != 4 {
		t.Fatalf("first batch synced %d, want 4", synced)
	}
	if rows := exporter.Rows(); len(rows) != 4 {
		t.Errorf("sheet has %d rows, want 4", len(rows))
	}
	if synced := processor.ProcessBatch(ctx); synced != 0 {
		t.Errorf("second batch synced %d, want 0", synced)
	}
}

func TestSyncProcessor_BatchSize(t *testing.T) {
	st := memory.New(store.DefaultSeed())
	config := testSyncConfig()
	config.BatchSize = 3
	processor := NewSyncProcessor(st, sheetsmem.New(), nil, config)
	ctx := context.Background()

	if synced := processor.ProcessBatch(ctx); synced != 3 {
		t.Errorf("first batch synced %d, want 3", synced)
	}
	if synced := processor.ProcessBatch(ctx); synced != 1 {
		t.Errorf("second batch synced %d, want 1", synced)
	}
}

func TestSyncProcessor_GivesUpAfterMaxRetries(t *testing.T) {
	st := memory.New(store.Empty())
	ctx := context.Background()
	if err := st.InsertTransaction(ctx, core.Transaction{
		ID: 1, Amount: core.NewMoney(100), Category: core.CategoryFood, Date: core.NewDate(2024, 1, 15),
	}); err != nil {
		t.Fatal(err)
	}

	exporter := &failingExporter{}
	processor := NewSyncProcessor(st, exporter, nil, testSyncConfig())

	for i := 0; i < 3; i++ {
		if synced := processor.ProcessBatch(ctx); synced != 0 {
			t.Fatalf("attempt %d synced %d, want 0", i+1, synced)
		}
	}
	pending, err := st.PendingSync(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d after max retries, want 0", len(pending))
	}

	processor.ProcessBatch(ctx)
	if exporter.calls != 3 {
		t.Errorf("exporter called %d times, want 3", exporter.calls)
	}
}

func TestSyncProcessor_CountsAttempts(t *testing.T) {
	st := memory.New(store.Empty())
	ctx := context.Background()
	_ = st.InsertTransaction(ctx, core.Transaction{ID: 7, Amount: core.NewMoney(50), Category: core.CategoryMisc})

	processor := NewSyncProcessor(st, &failingExporter{}, nil, testSyncConfig())
	processor.ProcessBatch(ctx)

	pending, _ := st.PendingSync(ctx, 10)
	if len(pending) != 1 || pending[0].Attempts != 1 {
		t.Errorf("pending = %+v, want one entry with 1 attempt", pending)
	}
}

func TestSyncProcessor_StartStop(t *testing.T) {
	st := memory.New(store.DefaultSeed())
	exporter := sheetsmem.New()
	processor := NewSyncProcessor(st, exporter, nil, testSyncConfig())
	ctx := context.Background()

	if err := processor.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !processor.IsRunning() {
		t.Error("expected processor to be running")
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(exporter.Rows()) < 4 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := processor.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if processor.IsRunning() {
		t.Error("expected processor to be stopped")
	}
	if len(exporter.Rows()) != 4 {
		t.Errorf("sheet has %d rows, want 4", len(exporter.Rows()))
	}
}

func TestSyncProcessor_StartTwice(t *testing.T) {
	processor := NewSyncProcessor(memory.NewSeeded(), sheetsmem.New(), nil, testSyncConfig())
	ctx := context.Background()

	if err := processor.Start(ctx); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	defer processor.Stop(ctx)

	if err := processor.Start(ctx); err == nil {
		t.Error("expected error when starting twice")
	}
}

func TestSyncProcessor_StartUninitialized(t *testing.T) {
	processor := NewSyncProcessor(nil, nil, nil, testSyncConfig())
	if err := processor.Start(context.Background()); err == nil {
		t.Error("expected error without tracker and exporter")
	}
}

func TestSyncProcessor_StopNotRunning(t *testing.T) {
	processor := NewSyncProcessor(memory.NewSeeded(), sheetsmem.New(), nil, testSyncConfig())
	if err := processor.Stop(context.Background()); err != nil {
		t.Errorf("Stop() on idle processor = %v", err)
	}
}

func TestDefaultSyncProcessorConfig(t *testing.T) {
	config := DefaultSyncProcessorConfig()
	if config.PollInterval != 10*time.Second || config.BatchSize != 10 || config.MaxRetries != 3 {
		t.Errorf("DefaultSyncProcessorConfig() = %+v", config)
	}
}
