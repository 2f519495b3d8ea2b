// Package memory is an in-process Store. It is the default backend for
// demos and the one the service tests run against.
package memory

import (
	"context"
	"sync"

	"walletwhisper/internal/core"
	"walletwhisper/internal/store"
)

type Store struct {
	mu           sync.Mutex
	balance      core.Money
	transactions []core.Transaction
	goals        []core.Goal
	reminders    []core.Reminder
	priorities   []core.Priority
	settings     core.Settings
	seq          map[store.Kind]int64
	syncs        map[int64]syncState
}

type syncState struct {
	attempts int
	done     bool
}

var _ store.Store = (*Store)(nil)

// New builds a store holding seed. Id sequences continue after the
// highest seeded id of each kind.
func New(seed store.SeedData) *Store {
	s := &Store{
		balance:      seed.Balance,
		transactions: append([]core.Transaction(nil), seed.Transactions...),
		goals:        append([]core.Goal(nil), seed.Goals...),
		reminders:    append([]core.Reminder(nil), seed.Reminders...),
		priorities:   append([]core.Priority(nil), seed.Priorities...),
		settings:     seed.Settings,
		seq:          map[store.Kind]int64{},
		syncs:        map[int64]syncState{},
	}
	for _, tx := range s.transactions {
		s.bump(store.KindTransaction, tx.ID)
	}
	for _, g := range s.goals {
		s.bump(store.KindGoal, g.ID)
	}
	for _, r := range s.reminders {
		s.bump(store.KindReminder, r.ID)
	}
	for _, p := range s.priorities {
		s.bump(store.KindPriority, p.ID)
	}
	return s
}

// NewSeeded returns a store holding the sample wallet.
func NewSeeded() *Store {
	return New(store.DefaultSeed())
}

func (s *Store) bump(kind store.Kind, id int64) {
	if id > s.seq[kind] {
		s.seq[kind] = id
	}
}

func (s *Store) NextID(_ context.Context, kind store.Kind) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[kind]++
	return s.seq[kind], nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.transactions...), nil
}

// InsertTransaction puts tx at the head of the ledger.
func (s *Store) InsertTransaction(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append([]core.Transaction{tx}, s.transactions...)
	return nil
}

func (s *Store) ClearTransactions(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = nil
	return nil
}

func (s *Store) ListGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Goal(nil), s.goals...), nil
}

func (s *Store) InsertGoal(_ context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = append(s.goals, g)
	return nil
}

func (s *Store) UpdateGoal(_ context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.goals {
		if s.goals[i].ID == g.ID {
			s.goals[i] = g
			return nil
		}
	}
	return core.ErrGoalNotFound
}

func (s *Store) ListReminders(_ context.Context) ([]core.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Reminder(nil), s.reminders...), nil
}

func (s *Store) InsertReminder(_ context.Context, r core.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders = append(s.reminders, r)
	return nil
}

func (s *Store) UpdateReminder(_ context.Context, r core.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reminders {
		if s.reminders[i].ID == r.ID {
			s.reminders[i] = r
			return nil
		}
	}
	return core.ErrReminderNotFound
}

// DeleteReminder removes id; deleting an absent id is not an error.
func (s *Store) DeleteReminder(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders, _ = core.MarkPaid(s.reminders, id)
	return nil
}

func (s *Store) Balance(_ context.Context) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance, nil
}

func (s *Store) SetBalance(_ context.Context, m core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = m
	return nil
}

func (s *Store) ListPriorities(_ context.Context) ([]core.Priority, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Priority(nil), s.priorities...), nil
}

func (s *Store) UpdatePriority(_ context.Context, p core.Priority) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.priorities {
		if s.priorities[i].ID == p.ID {
			s.priorities[i] = p
			return nil
		}
	}
	return core.ErrPriorityNotFound
}

func (s *Store) Settings(_ context.Context) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *Store) SaveSettings(_ context.Context, st core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = st
	return nil
}

// PendingSync lists unexported entries oldest first.
func (s *Store) PendingSync(_ context.Context, limit int) ([]store.PendingSync, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.PendingSync
	for i := len(s.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		tx := s.transactions[i]
		st := s.syncs[tx.ID]
		if st.done {
			continue
		}
		out = append(out, store.PendingSync{Transaction: tx, Attempts: st.attempts})
	}
	return out, nil
}

func (s *Store) MarkSynced(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncs[id] = syncState{attempts: s.syncs[id].attempts, done: true}
	return nil
}

func (s *Store) RecordSyncFailure(_ context.Context, id int64, _ string, final bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.syncs[id]
	st.attempts++
	st.done = final
	s.syncs[id] = st
	return nil
}

func (s *Store) SyncAttempts(_ context.Context, id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncs[id].attempts, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
