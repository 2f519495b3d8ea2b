// Package store declares the persistence ports the wallet services depend on.
//
// A Store is built once at start-up and handed to the services; nothing in
// the application keeps wallet state in package variables.
package store

import (
	"context"

	"walletwhisper/internal/core"
)

// Kind names an id sequence.
type Kind string

const (
	KindTransaction Kind = "transaction"
	KindGoal        Kind = "goal"
	KindReminder    Kind = "reminder"
	KindPriority    Kind = "priority"
)

// PendingSync is a ledger entry that has not been exported yet.
type PendingSync struct {
	Transaction core.Transaction
	Attempts    int
}

type (
	// Ledger keeps transactions newest-first.
	Ledger interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		InsertTransaction(ctx context.Context, tx core.Transaction) error
		ClearTransactions(ctx context.Context) error
	}

	GoalStore interface {
		ListGoals(ctx context.Context) ([]core.Goal, error)
		InsertGoal(ctx context.Context, g core.Goal) error
		UpdateGoal(ctx context.Context, g core.Goal) error
	}

	ReminderStore interface {
		ListReminders(ctx context.Context) ([]core.Reminder, error)
		InsertReminder(ctx context.Context, r core.Reminder) error
		UpdateReminder(ctx context.Context, r core.Reminder) error
		DeleteReminder(ctx context.Context, id int64) error
	}

	BalanceStore interface {
		Balance(ctx context.Context) (core.Money, error)
		SetBalance(ctx context.Context, m core.Money) error
	}

	PriorityStore interface {
		ListPriorities(ctx context.Context) ([]core.Priority, error)
		UpdatePriority(ctx context.Context, p core.Priority) error
	}

	SettingsStore interface {
		Settings(ctx context.Context) (core.Settings, error)
		SaveSettings(ctx context.Context, s core.Settings) error
	}

	// SyncTracker records which ledger entries reached the export sheet.
	SyncTracker interface {
		PendingSync(ctx context.Context, limit int) ([]PendingSync, error)
		MarkSynced(ctx context.Context, id int64) error
		// RecordSyncFailure counts a failed attempt. With final set the
		// entry stops being pending.
		RecordSyncFailure(ctx context.Context, id int64, reason string, final bool) error
		// SyncAttempts reports how many exports of id have failed so far.
		SyncAttempts(ctx context.Context, id int64) (int, error)
	}

	// IDSource hands out creation-order monotonic ids per kind.
	IDSource interface {
		NextID(ctx context.Context, kind Kind) (int64, error)
	}

	// Store is everything a wallet needs.
	Store interface {
		Ledger
		GoalStore
		ReminderStore
		BalanceStore
		PriorityStore
		SettingsStore
		SyncTracker
		IDSource
		Ping(ctx context.Context) error
		Close() error
	}
)
