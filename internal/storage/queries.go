package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const nextID = `UPDATE id_sequences SET last_id = last_id + 1 WHERE kind = ? RETURNING last_id`

func (q *Queries) NextID(ctx context.Context, kind string) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, nextID, kind).Scan(&id)
	return id, err
}

const raiseSequence = `UPDATE id_sequences SET last_id = MAX(last_id, ?) WHERE kind = ?`

func (q *Queries) RaiseSequence(ctx context.Context, kind string, atLeast int64) error {
	_, err := q.db.ExecContext(ctx, raiseSequence, atLeast, kind)
	return err
}

const listTransactions = `SELECT id, amount_minor, category, note, date, recurring, is_repayment, sync_status, sync_attempts
FROM transactions
ORDER BY id DESC`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(&i.ID, &i.AmountMinor, &i.Category, &i.Note, &i.Date,
			&i.Recurring, &i.IsRepayment, &i.SyncStatus, &i.SyncAttempts); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listPendingSync = `SELECT id, amount_minor, category, note, date, recurring, is_repayment, sync_status, sync_attempts
FROM transactions
WHERE sync_status = 'pending'
ORDER BY id ASC
LIMIT ?`

func (q *Queries) ListPendingSync(ctx context.Context, limit int64) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listPendingSync, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(&i.ID, &i.AmountMinor, &i.Category, &i.Note, &i.Date,
			&i.Recurring, &i.IsRepayment, &i.SyncStatus, &i.SyncAttempts); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createTransaction = `INSERT INTO transactions (id, amount_minor, category, note, date, recurring, is_repayment)
VALUES (?, ?, ?, ?, ?, ?, ?)`

type CreateTransactionParams struct {
	ID          int64
	AmountMinor int64
	Category    string
	Note        string
	Date        string
	Recurring   int64
	IsRepayment int64
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID, arg.AmountMinor, arg.Category, arg.Note, arg.Date, arg.Recurring, arg.IsRepayment)
	return err
}

const deleteAllTransactions = `DELETE FROM transactions`

func (q *Queries) DeleteAllTransactions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllTransactions)
	return err
}

const markTransactionSynced = `UPDATE transactions
SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP, last_sync_error = NULL
WHERE id = ?`

func (q *Queries) MarkTransactionSynced(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markTransactionSynced, id)
	return err
}

const incrementSyncAttempt = `UPDATE transactions
SET sync_attempts = sync_attempts + 1, last_sync_error = ?
WHERE id = ?`

func (q *Queries) IncrementSyncAttempt(ctx context.Context, id int64, lastError string) error {
	_, err := q.db.ExecContext(ctx, incrementSyncAttempt, lastError, id)
	return err
}

const getSyncAttempts = `SELECT sync_attempts FROM transactions WHERE id = ?`

func (q *Queries) GetSyncAttempts(ctx context.Context, id int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, getSyncAttempts, id)
	var attempts int64
	err := row.Scan(&attempts)
	return attempts, err
}

const markTransactionSyncError = `UPDATE transactions
SET sync_status = 'error', sync_attempts = sync_attempts + 1, last_sync_error = ?
WHERE id = ?`

func (q *Queries) MarkTransactionSyncError(ctx context.Context, id int64, lastError string) error {
	_, err := q.db.ExecContext(ctx, markTransactionSyncError, lastError, id)
	return err
}

const getSyncStats = `SELECT
    SUM(CASE WHEN sync_status = 'pending' THEN 1 ELSE 0 END),
    SUM(CASE WHEN sync_status = 'synced' THEN 1 ELSE 0 END),
    SUM(CASE WHEN sync_status = 'error' THEN 1 ELSE 0 END)
FROM transactions`

func (q *Queries) GetSyncStats(ctx context.Context) (SyncStats, error) {
	var s SyncStats
	err := q.db.QueryRowContext(ctx, getSyncStats).Scan(&s.Pending, &s.Synced, &s.Failed)
	return s, err
}

const listGoals = `SELECT id, title, target_minor, current_minor, notes, locked, piggy_mode
FROM goals
ORDER BY id ASC`

func (q *Queries) ListGoals(ctx context.Context) ([]Goal, error) {
	rows, err := q.db.QueryContext(ctx, listGoals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Goal
	for rows.Next() {
		var i Goal
		if err := rows.Scan(&i.ID, &i.Title, &i.TargetMinor, &i.CurrentMinor, &i.Notes, &i.Locked, &i.PiggyMode); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createGoal = `INSERT INTO goals (id, title, target_minor, current_minor, notes, locked, piggy_mode)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateGoal(ctx context.Context, g Goal) error {
	_, err := q.db.ExecContext(ctx, createGoal, g.ID, g.Title, g.TargetMinor, g.CurrentMinor, g.Notes, g.Locked, g.PiggyMode)
	return err
}

const updateGoal = `UPDATE goals
SET title = ?, target_minor = ?, current_minor = ?, notes = ?, locked = ?, piggy_mode = ?
WHERE id = ?`

func (q *Queries) UpdateGoal(ctx context.Context, g Goal) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateGoal, g.Title, g.TargetMinor, g.CurrentMinor, g.Notes, g.Locked, g.PiggyMode, g.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listReminders = `SELECT id, title, amount_minor, due_date, category, recurring, notification_enabled
FROM reminders
ORDER BY id ASC`

func (q *Queries) ListReminders(ctx context.Context) ([]Reminder, error) {
	rows, err := q.db.QueryContext(ctx, listReminders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Reminder
	for rows.Next() {
		var i Reminder
		if err := rows.Scan(&i.ID, &i.Title, &i.AmountMinor, &i.DueDate, &i.Category, &i.Recurring, &i.NotificationEnabled); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createReminder = `INSERT INTO reminders (id, title, amount_minor, due_date, category, recurring, notification_enabled)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateReminder(ctx context.Context, r Reminder) error {
	_, err := q.db.ExecContext(ctx, createReminder, r.ID, r.Title, r.AmountMinor, r.DueDate, r.Category, r.Recurring, r.NotificationEnabled)
	return err
}

const updateReminder = `UPDATE reminders
SET title = ?, amount_minor = ?, due_date = ?, category = ?, recurring = ?, notification_enabled = ?
WHERE id = ?`

func (q *Queries) UpdateReminder(ctx context.Context, r Reminder) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateReminder, r.Title, r.AmountMinor, r.DueDate, r.Category, r.Recurring, r.NotificationEnabled, r.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteReminder = `DELETE FROM reminders WHERE id = ?`

func (q *Queries) DeleteReminder(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteReminder, id)
	return err
}

const listPriorities = `SELECT id, text, urgent, important, done FROM priorities ORDER BY id ASC`

func (q *Queries) ListPriorities(ctx context.Context) ([]Priority, error) {
	rows, err := q.db.QueryContext(ctx, listPriorities)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Priority
	for rows.Next() {
		var i Priority
		if err := rows.Scan(&i.ID, &i.Text, &i.Urgent, &i.Important, &i.Done); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createPriority = `INSERT INTO priorities (id, text, urgent, important, done) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) CreatePriority(ctx context.Context, p Priority) error {
	_, err := q.db.ExecContext(ctx, createPriority, p.ID, p.Text, p.Urgent, p.Important, p.Done)
	return err
}

const updatePriority = `UPDATE priorities SET text = ?, urgent = ?, important = ?, done = ? WHERE id = ?`

func (q *Queries) UpdatePriority(ctx context.Context, p Priority) (int64, error) {
	res, err := q.db.ExecContext(ctx, updatePriority, p.Text, p.Urgent, p.Important, p.Done, p.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getWallet = `SELECT balance_minor, profile_name, profile_email, currency, theme, passcode_enabled
FROM wallet WHERE id = 1`

func (q *Queries) GetWallet(ctx context.Context) (Wallet, error) {
	var w Wallet
	err := q.db.QueryRowContext(ctx, getWallet).Scan(&w.BalanceMinor, &w.ProfileName, &w.ProfileEmail, &w.Currency, &w.Theme, &w.PasscodeEnabled)
	return w, err
}

const setBalance = `UPDATE wallet SET balance_minor = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`

func (q *Queries) SetBalance(ctx context.Context, minor int64) error {
	_, err := q.db.ExecContext(ctx, setBalance, minor)
	return err
}

const saveSettings = `UPDATE wallet
SET profile_name = ?, profile_email = ?, currency = ?, theme = ?, passcode_enabled = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = 1`

func (q *Queries) SaveSettings(ctx context.Context, w Wallet) error {
	_, err := q.db.ExecContext(ctx, saveSettings, w.ProfileName, w.ProfileEmail, w.Currency, w.Theme, w.PasscodeEnabled)
	return err
}

const countRows = `SELECT
    (SELECT COUNT(*) FROM transactions) +
    (SELECT COUNT(*) FROM goals) +
    (SELECT COUNT(*) FROM reminders) +
    (SELECT COUNT(*) FROM priorities)`

// CountRows totals the entity rows; zero means a fresh database.
func (q *Queries) CountRows(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countRows).Scan(&n)
	return n, err
}
