package services

import (
	"context"
	"fmt"

	"walletwhisper/internal/amqp"
	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
	"walletwhisper/internal/store"
)

const entityTransaction = "transaction"

// TransactionService owns the ledger page.
type TransactionService struct {
	*base
}

// List returns the ledger newest-first, narrowed by a free-text search on
// note or category and by a category ("all" or empty matches everything).
func (s *TransactionService) List(ctx context.Context, search, category string) ([]core.Transaction, error) {
	list, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return core.FilterTransactions(list, search, category), nil
}

// Add records a transaction dated today and publishes it for export.
func (s *TransactionService) Add(ctx context.Context, draft core.TransactionDraft) (core.Transaction, core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Reject before an id is spent.
	if _, err := draft.Validate(); err != nil {
		n, err := s.fail(ctx, log.ComponentLedger, log.OpCreate, entityTransaction, err)
		return core.Transaction{}, n, err
	}

	list, err := s.store.ListTransactions(ctx)
	if err != nil {
		n, err := s.fail(ctx, log.ComponentLedger, log.OpCreate, entityTransaction, fmt.Errorf("list transactions: %w", err))
		return core.Transaction{}, n, err
	}
	id, err := s.store.NextID(ctx, store.KindTransaction)
	if err != nil {
		n, err := s.fail(ctx, log.ComponentLedger, log.OpCreate, entityTransaction, fmt.Errorf("next transaction id: %w", err))
		return core.Transaction{}, n, err
	}

	_, tx, err := core.AddTransaction(list, draft, id, s.today())
	if err != nil {
		n, err := s.fail(ctx, log.ComponentLedger, log.OpCreate, entityTransaction, err)
		return core.Transaction{}, n, err
	}
	if err := s.store.InsertTransaction(ctx, tx); err != nil {
		n, err := s.fail(ctx, log.ComponentLedger, log.OpCreate, entityTransaction, fmt.Errorf("save transaction: %w", err))
		return core.Transaction{}, n, err
	}

	n := core.Notify("Transaction Added",
		fmt.Sprintf("%s for %s", core.FormatMoney(tx.Amount, s.currency(ctx)), tx.Category))
	s.doneWith(ctx, log.ComponentLedger, log.OpCreate, entityTransaction, tx.ID, n,
		log.NewFields().WithAmount(tx.Amount.Minor, string(tx.Category)))
	s.publish(ctx, log.ComponentLedger, amqp.NewTransactionSync(tx))
	return tx, n, nil
}
