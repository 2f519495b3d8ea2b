package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"walletwhisper/internal/core"
)

// Kind tells the worker what an envelope carries.
type Kind string

const (
	KindTransactionSync Kind = "transaction.sync"
	KindLedgerExport    Kind = "ledger.export"
	KindReminderAlert   Kind = "reminder.alert"
)

// TransactionPayload is a ledger entry on the wire.
type TransactionPayload struct {
	ID          int64  `json:"id"`
	AmountMinor int64  `json:"amount_minor"`
	Category    string `json:"category"`
	Note        string `json:"note,omitempty"`
	Date        string `json:"date"`
	Recurring   bool   `json:"recurring,omitempty"`
	IsRepayment bool   `json:"is_repayment,omitempty"`
}

// AlertLevel grades how pressing a reminder alert is.
type AlertLevel string

const (
	AlertOverdue  AlertLevel = "overdue"
	AlertDueToday AlertLevel = "due_today"
	AlertDueSoon  AlertLevel = "due_soon"
)

// ReminderAlert asks the worker to deliver a payment reminder.
type ReminderAlert struct {
	ReminderID  int64      `json:"reminder_id"`
	Title       string     `json:"title"`
	AmountMinor int64      `json:"amount_minor"`
	DueDate     string     `json:"due_date"`
	Category    string     `json:"category"`
	Level       AlertLevel `json:"level"`
	Label       string     `json:"label"`
}

// Envelope is the single message type on the wallet queue.
type Envelope struct {
	ID           string               `json:"id"`
	Kind         Kind                 `json:"kind"`
	Timestamp    time.Time            `json:"timestamp"`
	Transaction  *TransactionPayload  `json:"transaction,omitempty"`
	Transactions []TransactionPayload `json:"transactions,omitempty"`
	Alert        *ReminderAlert       `json:"alert,omitempty"`
}

func newEnvelope(kind Kind) *Envelope {
	return &Envelope{ID: uuid.NewString(), Kind: kind, Timestamp: time.Now().UTC()}
}

// NewTransactionSync wraps one freshly recorded transaction.
func NewTransactionSync(tx core.Transaction) *Envelope {
	env := newEnvelope(KindTransactionSync)
	p := PayloadFrom(tx)
	env.Transaction = &p
	return env
}

// NewLedgerExport wraps a full ledger snapshot.
func NewLedgerExport(list []core.Transaction) *Envelope {
	env := newEnvelope(KindLedgerExport)
	env.Transactions = make([]TransactionPayload, 0, len(list))
	for _, tx := range list {
		env.Transactions = append(env.Transactions, PayloadFrom(tx))
	}
	return env
}

// NewReminderAlert wraps an alert for r.
func NewReminderAlert(r core.Reminder, level AlertLevel, label string) *Envelope {
	env := newEnvelope(KindReminderAlert)
	env.Alert = &ReminderAlert{
		ReminderID:  r.ID,
		Title:       r.Title,
		AmountMinor: r.Amount.Minor,
		DueDate:     r.DueDate.String(),
		Category:    string(r.Category),
		Level:       level,
		Label:       label,
	}
	return env
}

func PayloadFrom(tx core.Transaction) TransactionPayload {
	return TransactionPayload{
		ID:          tx.ID,
		AmountMinor: tx.Amount.Minor,
		Category:    string(tx.Category),
		Note:        tx.Note,
		Date:        tx.Date.String(),
		Recurring:   tx.Recurring,
		IsRepayment: tx.IsRepayment,
	}
}

// ToCore validates the payload back into a ledger entry.
func (p TransactionPayload) ToCore() (core.Transaction, error) {
	category, err := core.ParseCategory(p.Category)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", p.ID, err)
	}
	date, err := core.ParseDate(p.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", p.ID, err)
	}
	amount := core.Money{Minor: p.AmountMinor}
	if err := amount.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", p.ID, err)
	}
	return core.Transaction{
		ID:          p.ID,
		Amount:      amount,
		Category:    category,
		Note:        p.Note,
		Date:        date,
		Recurring:   p.Recurring,
		IsRepayment: p.IsRepayment,
	}, nil
}

func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EnvelopeFromJSON decodes and sanity-checks a message body.
func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case KindTransactionSync:
		if env.Transaction == nil {
			return nil, fmt.Errorf("%s message without transaction", env.Kind)
		}
	case KindReminderAlert:
		if env.Alert == nil {
			return nil, fmt.Errorf("%s message without alert", env.Kind)
		}
	case KindLedgerExport:
	default:
		return nil, fmt.Errorf("unknown message kind %q", env.Kind)
	}
	return &env, nil
}
