package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"walletwhisper/internal/core"
	"walletwhisper/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable Store.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SeedIfEmpty loads seed into a database that holds no entities yet.
// It reports whether anything was written.
func (r *SQLiteRepository) SeedIfEmpty(ctx context.Context, seed store.SeedData) (bool, error) {
	n, err := r.queries.CountRows(ctx)
	if err != nil {
		return false, fmt.Errorf("count rows: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	// Oldest first so the ledger ends up newest-first by id.
	for i := len(seed.Transactions) - 1; i >= 0; i-- {
		t := seed.Transactions[i]
		if err := q.CreateTransaction(ctx, transactionParams(t)); err != nil {
			return false, fmt.Errorf("seed transaction %d: %w", t.ID, err)
		}
		if err := q.RaiseSequence(ctx, string(store.KindTransaction), t.ID); err != nil {
			return false, err
		}
	}
	for _, g := range seed.Goals {
		if err := q.CreateGoal(ctx, goalRow(g)); err != nil {
			return false, fmt.Errorf("seed goal %d: %w", g.ID, err)
		}
		if err := q.RaiseSequence(ctx, string(store.KindGoal), g.ID); err != nil {
			return false, err
		}
	}
	for _, rem := range seed.Reminders {
		if err := q.CreateReminder(ctx, reminderRow(rem)); err != nil {
			return false, fmt.Errorf("seed reminder %d: %w", rem.ID, err)
		}
		if err := q.RaiseSequence(ctx, string(store.KindReminder), rem.ID); err != nil {
			return false, err
		}
	}
	for _, p := range seed.Priorities {
		if err := q.CreatePriority(ctx, priorityRow(p)); err != nil {
			return false, fmt.Errorf("seed priority %d: %w", p.ID, err)
		}
		if err := q.RaiseSequence(ctx, string(store.KindPriority), p.ID); err != nil {
			return false, err
		}
	}
	if err := q.SetBalance(ctx, seed.Balance.Minor); err != nil {
		return false, fmt.Errorf("seed balance: %w", err)
	}
	if err := q.SaveSettings(ctx, settingsRow(seed.Settings)); err != nil {
		return false, fmt.Errorf("seed settings: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit seed: %w", err)
	}

	slog.InfoContext(ctx, "Seeded sample wallet",
		"transactions", len(seed.Transactions),
		"goals", len(seed.Goals),
		"reminders", len(seed.Reminders))
	return true, nil
}

func (r *SQLiteRepository) NextID(ctx context.Context, kind store.Kind) (int64, error) {
	id, err := r.queries.NextID(ctx, string(kind))
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", kind, err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := row.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, tx core.Transaction) error {
	if err := r.queries.CreateTransaction(ctx, transactionParams(tx)); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"category", tx.Category,
		"amount_minor", tx.Amount.Minor,
		"date", tx.Date.String())
	return nil
}

func (r *SQLiteRepository) ClearTransactions(ctx context.Context) error {
	if err := r.queries.DeleteAllTransactions(ctx); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	return nil
}

// PendingSync returns unexported transactions, oldest first.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]store.PendingSync, error) {
	rows, err := r.queries.ListPendingSync(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list pending sync: %w", err)
	}
	out := make([]store.PendingSync, 0, len(rows))
	for _, row := range rows {
		tx, err := row.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, store.PendingSync{Transaction: tx, Attempts: int(row.SyncAttempts)})
	}
	return out, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.queries.MarkTransactionSynced(ctx, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

func (r *SQLiteRepository) RecordSyncFailure(ctx context.Context, id int64, reason string, final bool) error {
	var err error
	if final {
		err = r.queries.MarkTransactionSyncError(ctx, id, reason)
	} else {
		err = r.queries.IncrementSyncAttempt(ctx, id, reason)
	}
	if err != nil {
		return fmt.Errorf("record sync failure: %w", err)
	}
	return nil
}

// SyncAttempts reports failed export attempts for id. An unknown id has none.
func (r *SQLiteRepository) SyncAttempts(ctx context.Context, id int64) (int, error) {
	n, err := r.queries.GetSyncAttempts(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get sync attempts: %w", err)
	}
	return int(n), nil
}

// SyncStats counts transactions per export state.
func (r *SQLiteRepository) SyncStats(ctx context.Context) (pending, synced, failed int64, err error) {
	s, err := r.queries.GetSyncStats(ctx)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("get sync stats: %w", err)
	}
	return s.Pending.Int64, s.Synced.Int64, s.Failed.Int64, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.queries.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]core.Goal, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Goal{
			ID:        row.ID,
			Title:     row.Title,
			Target:    core.Money{Minor: row.TargetMinor},
			Current:   core.Money{Minor: row.CurrentMinor},
			Notes:     row.Notes,
			Locked:    row.Locked != 0,
			PiggyMode: row.PiggyMode != 0,
		})
	}
	return out, nil
}

func (r *SQLiteRepository) InsertGoal(ctx context.Context, g core.Goal) error {
	if err := r.queries.CreateGoal(ctx, goalRow(g)); err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) error {
	n, err := r.queries.UpdateGoal(ctx, goalRow(g))
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if n == 0 {
		return core.ErrGoalNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListReminders(ctx context.Context) ([]core.Reminder, error) {
	rows, err := r.queries.ListReminders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	out := make([]core.Reminder, 0, len(rows))
	for _, row := range rows {
		due, err := core.ParseDate(row.DueDate)
		if err != nil {
			return nil, fmt.Errorf("reminder %d due date %q: %w", row.ID, row.DueDate, err)
		}
		out = append(out, core.Reminder{
			ID:                  row.ID,
			Title:               row.Title,
			Amount:              core.Money{Minor: row.AmountMinor},
			DueDate:             due,
			Category:            core.ReminderCategory(row.Category),
			Recurring:           row.Recurring != 0,
			NotificationEnabled: row.NotificationEnabled != 0,
		})
	}
	return out, nil
}

func (r *SQLiteRepository) InsertReminder(ctx context.Context, rem core.Reminder) error {
	if err := r.queries.CreateReminder(ctx, reminderRow(rem)); err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateReminder(ctx context.Context, rem core.Reminder) error {
	n, err := r.queries.UpdateReminder(ctx, reminderRow(rem))
	if err != nil {
		return fmt.Errorf("update reminder: %w", err)
	}
	if n == 0 {
		return core.ErrReminderNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteReminder(ctx context.Context, id int64) error {
	if err := r.queries.DeleteReminder(ctx, id); err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Balance(ctx context.Context) (core.Money, error) {
	w, err := r.queries.GetWallet(ctx)
	if err != nil {
		return core.Money{}, fmt.Errorf("get wallet: %w", err)
	}
	return core.Money{Minor: w.BalanceMinor}, nil
}

func (r *SQLiteRepository) SetBalance(ctx context.Context, m core.Money) error {
	if err := r.queries.SetBalance(ctx, m.Minor); err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListPriorities(ctx context.Context) ([]core.Priority, error) {
	rows, err := r.queries.ListPriorities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list priorities: %w", err)
	}
	out := make([]core.Priority, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Priority{
			ID:        row.ID,
			Text:      row.Text,
			Urgent:    row.Urgent != 0,
			Important: row.Important != 0,
			Done:      row.Done != 0,
		})
	}
	return out, nil
}

func (r *SQLiteRepository) UpdatePriority(ctx context.Context, p core.Priority) error {
	n, err := r.queries.UpdatePriority(ctx, priorityRow(p))
	if err != nil {
		return fmt.Errorf("update priority: %w", err)
	}
	if n == 0 {
		return core.ErrPriorityNotFound
	}
	return nil
}

func (r *SQLiteRepository) Settings(ctx context.Context) (core.Settings, error) {
	w, err := r.queries.GetWallet(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultSettings(), nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get wallet: %w", err)
	}
	return core.Settings{
		Profile:         core.Profile{Name: w.ProfileName, Email: w.ProfileEmail},
		Currency:        core.Currency(w.Currency),
		Theme:           core.Theme(w.Theme),
		PasscodeEnabled: w.PasscodeEnabled != 0,
	}, nil
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, s core.Settings) error {
	if err := r.queries.SaveSettings(ctx, settingsRow(s)); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (t Transaction) toCore() (core.Transaction, error) {
	date, err := core.ParseDate(t.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d date %q: %w", t.ID, t.Date, err)
	}
	return core.Transaction{
		ID:          t.ID,
		Amount:      core.Money{Minor: t.AmountMinor},
		Category:    core.Category(t.Category),
		Note:        t.Note,
		Date:        date,
		Recurring:   t.Recurring != 0,
		IsRepayment: t.IsRepayment != 0,
	}, nil
}

func transactionParams(tx core.Transaction) CreateTransactionParams {
	return CreateTransactionParams{
		ID:          tx.ID,
		AmountMinor: tx.Amount.Minor,
		Category:    string(tx.Category),
		Note:        tx.Note,
		Date:        tx.Date.String(),
		Recurring:   boolToInt(tx.Recurring),
		IsRepayment: boolToInt(tx.IsRepayment),
	}
}

func goalRow(g core.Goal) Goal {
	return Goal{
		ID:           g.ID,
		Title:        g.Title,
		TargetMinor:  g.Target.Minor,
		CurrentMinor: g.Current.Minor,
		Notes:        g.Notes,
		Locked:       boolToInt(g.Locked),
		PiggyMode:    boolToInt(g.PiggyMode),
	}
}

func reminderRow(r core.Reminder) Reminder {
	return Reminder{
		ID:                  r.ID,
		Title:               r.Title,
		AmountMinor:         r.Amount.Minor,
		DueDate:             r.DueDate.String(),
		Category:            string(r.Category),
		Recurring:           boolToInt(r.Recurring),
		NotificationEnabled: boolToInt(r.NotificationEnabled),
	}
}

func priorityRow(p core.Priority) Priority {
	return Priority{
		ID:        p.ID,
		Text:      p.Text,
		Urgent:    boolToInt(p.Urgent),
		Important: boolToInt(p.Important),
		Done:      boolToInt(p.Done),
	}
}

func settingsRow(s core.Settings) Wallet {
	return Wallet{
		ProfileName:     s.Profile.Name,
		ProfileEmail:    s.Profile.Email,
		Currency:        string(s.Currency),
		Theme:           string(s.Theme),
		PasscodeEnabled: boolToInt(s.PasscodeEnabled),
	}
}
