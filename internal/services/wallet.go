// Package services owns the wallet's state transitions. Each mutation loads
// the current slice from the store, applies the pure rule from core, writes
// the delta back and answers with the notification the user should see.
package services

import (
	"context"
	"errors"
	"sync"

	"walletwhisper/internal/amqp"
	"walletwhisper/internal/cache"
	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
	"walletwhisper/internal/metrics"
	"walletwhisper/internal/store"
)

// Deps are the collaborators shared by every wallet service.
type Deps struct {
	Store        store.Store
	Clock        core.Clock
	Publisher    EventPublisher
	Metrics      metrics.Recorder
	Logger       *log.Logger
	WeeklyBudget core.Money
	// Snapshots caches analytics per timeframe and day. Nil disables caching.
	Snapshots cache.Cache[AnalyticsSnapshot]
}

// Wallet bundles the per-page services.
type Wallet struct {
	Transactions *TransactionService
	Savings      *SavingsService
	Reminders    *ReminderService
	Dashboard    *DashboardService
	Settings     *SettingsService
	Analytics    *AnalyticsService
}

func NewWallet(d Deps) *Wallet {
	b := newBase(d)
	return &Wallet{
		Transactions: &TransactionService{base: b},
		Savings:      &SavingsService{base: b},
		Reminders:    &ReminderService{base: b},
		Dashboard:    &DashboardService{base: b, budget: d.WeeklyBudget},
		Settings:     &SettingsService{base: b},
		Analytics:    &AnalyticsService{base: b, budget: d.WeeklyBudget},
	}
}

// base is the plumbing every service shares. The mutex is wallet-wide so a
// load, apply, persist sequence never interleaves with another one.
type base struct {
	mu        *sync.Mutex
	store     store.Store
	clock     core.Clock
	events    EventPublisher
	metrics   metrics.Recorder
	log       *log.StructuredLogger
	snapshots cache.Cache[AnalyticsSnapshot]
}

func newBase(d Deps) *base {
	b := &base{
		mu:        &sync.Mutex{},
		store:     d.Store,
		clock:     d.Clock,
		events:    d.Publisher,
		metrics:   d.Metrics,
		snapshots: d.Snapshots,
	}
	if b.clock == nil {
		b.clock = core.SystemClock{}
	}
	if b.events == nil {
		b.events = NoopPublisher{}
	}
	if b.metrics == nil {
		b.metrics = metrics.Noop{}
	}
	logger := d.Logger
	if logger == nil {
		logger = log.Discard()
	}
	b.log = log.NewStructuredLogger(logger)
	return b
}

func (b *base) today() core.Date {
	return core.Today(b.clock)
}

func (b *base) currency(ctx context.Context) core.Currency {
	s, err := b.store.Settings(ctx)
	if err != nil || s.Currency == "" {
		return core.CurrencyNGN
	}
	return s.Currency
}

// done records a successful mutation and returns its notification.
func (b *base) done(ctx context.Context, component, operation, entity string, id int64, n core.Notification) core.Notification {
	return b.doneWith(ctx, component, operation, entity, id, n, nil)
}

// doneWith is done with extra fields for the mutation record.
func (b *base) doneWith(ctx context.Context, component, operation, entity string, id int64, n core.Notification, fields log.LogFields) core.Notification {
	b.metrics.RecordMutation(entity, operation, metrics.OutcomeOK)
	b.log.LogMutation(ctx, component, operation, entity, id, n.Title, fields)
	b.invalidate()
	return n
}

// fail records a refused or broken mutation and returns the error
// notification together with err.
func (b *base) fail(ctx context.Context, component, operation, entity string, err error) (core.Notification, error) {
	if refused(err) {
		b.metrics.RecordMutation(entity, operation, metrics.OutcomeRejected)
		b.log.LogRejected(ctx, component, entity, err)
	} else {
		b.metrics.RecordMutation(entity, operation, metrics.OutcomeError)
		b.log.LogError(ctx, "Wallet update failed", err, component, operation, log.NewFields())
	}
	return core.NotificationFor(err), err
}

// refused reports whether err is a user-facing refusal rather than a fault.
func refused(err error) bool {
	return errors.Is(err, core.ErrValidation) ||
		errors.Is(err, core.ErrGoalLocked) ||
		errors.Is(err, core.ErrGoalNotFound) ||
		errors.Is(err, core.ErrReminderNotFound) ||
		errors.Is(err, core.ErrPriorityNotFound)
}

// publish sends env without failing the caller: the change is already
// stored locally.
func (b *base) publish(ctx context.Context, component string, env *amqp.Envelope) {
	err := b.events.Publish(ctx, env)
	b.metrics.RecordEvent(string(env.Kind), err == nil)
	if err != nil {
		fields := log.NewFields()
		fields[log.FieldEventKind] = env.Kind
		b.log.LogError(ctx, "Failed to publish wallet event", err, component, log.OpSync, fields)
	}
}

func (b *base) invalidate() {
	if b.snapshots != nil {
		b.snapshots.Purge()
	}
}
