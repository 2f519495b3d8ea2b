package memory

import (
	"context"
	"errors"
	"testing"

	"walletwhisper/internal/core"
	"walletwhisper/internal/store"
)

func TestNewSeededContinuesSequences(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	for kind, want := range map[store.Kind]int64{
		store.KindTransaction: 5,
		store.KindGoal:        4,
		store.KindReminder:    4,
		store.KindPriority:    5,
	} {
		got, err := s.NextID(ctx, kind)
		if err != nil || got != want {
			t.Fatalf("%s: expected %d, got %d (err=%v)", kind, want, got, err)
		}
	}
}

func TestInsertTransactionKeepsNewestFirst(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	if err := s.InsertTransaction(ctx, core.Transaction{ID: 5, Amount: core.NewMoney(10), Category: core.CategoryFood}); err != nil {
		t.Fatal(err)
	}
	list, _ := s.ListTransactions(ctx)
	if len(list) != 5 || list[0].ID != 5 || list[1].ID != 1 {
		t.Fatalf("unexpected ledger order %+v", list)
	}
	list[0].Note = "mutated"
	again, _ := s.ListTransactions(ctx)
	if again[0].Note == "mutated" {
		t.Fatal("list must be a copy")
	}
	if err := s.ClearTransactions(ctx); err != nil {
		t.Fatal(err)
	}
	if list, _ := s.ListTransactions(ctx); len(list) != 0 {
		t.Fatal("expected empty ledger")
	}
}

func TestUpdatesAndDeletes(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	if err := s.UpdateGoal(ctx, core.Goal{ID: 99}); !errors.Is(err, core.ErrGoalNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.DeleteReminder(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteReminder(ctx, 2); err != nil {
		t.Fatal("deleting twice must not fail")
	}
	rs, _ := s.ListReminders(ctx)
	if len(rs) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(rs))
	}
	if err := s.SetBalance(ctx, core.NewMoney(-10)); err != nil {
		t.Fatal(err)
	}
	if b, _ := s.Balance(ctx); b != core.NewMoney(-10) {
		t.Fatalf("unexpected balance %d", b.Minor)
	}
}
