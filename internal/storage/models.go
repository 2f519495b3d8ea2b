package storage

import "database/sql"

type Transaction struct {
	ID           int64
	AmountMinor  int64
	Category     string
	Note         string
	Date         string
	Recurring    int64
	IsRepayment  int64
	SyncStatus   string
	SyncAttempts int64
}

type Goal struct {
	ID           int64
	Title        string
	TargetMinor  int64
	CurrentMinor int64
	Notes        string
	Locked       int64
	PiggyMode    int64
}

type Reminder struct {
	ID                  int64
	Title               string
	AmountMinor         int64
	DueDate             string
	Category            string
	Recurring           int64
	NotificationEnabled int64
}

type Priority struct {
	ID        int64
	Text      string
	Urgent    int64
	Important int64
	Done      int64
}

type Wallet struct {
	BalanceMinor    int64
	ProfileName     string
	ProfileEmail    string
	Currency        string
	Theme           string
	PasscodeEnabled int64
}

type SyncStats struct {
	Pending sql.NullInt64
	Synced  sql.NullInt64
	Failed  sql.NullInt64
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
