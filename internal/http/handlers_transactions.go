package http

import (
	"context"
	"net/http"

	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
)

type transactionsPage struct {
	chrome
	Transactions []core.Transaction
	Search       string
	Category     string
	Total        core.Money
}

func (s *Server) transactionsPage(ctx context.Context, search, category string) (transactionsPage, error) {
	list, err := s.wallet.Transactions.List(ctx, search, category)
	if err != nil {
		return transactionsPage{}, err
	}
	if category == "" {
		category = core.AllCategories
	}
	return transactionsPage{
		chrome:       s.chrome(ctx, "Transactions", "transactions"),
		Transactions: list,
		Search:       search,
		Category:     category,
		Total:        core.LedgerTotal(list),
	}, nil
}

// handleTransactions lists the ledger; q and category filter it.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := s.transactionsPage(r.Context(), sanitizeInput(q.Get("q")), sanitizeInput(q.Get("category")))
	if err != nil {
		s.loadFailed(w, r, log.ComponentLedger, err)
		return
	}
	// The search box only replaces the list.
	if r.Header.Get("HX-Target") == "transaction-list" {
		s.renderTemplate(w, r, "transaction_list", page)
		return
	}
	s.renderPage(w, r, "transactions", page)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p, ok := s.body(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	draft := core.TransactionDraft{
		Amount:      p.Get("amount"),
		Category:    p.Get("category"),
		Note:        p.Get("note"),
		Recurring:   p.Bool("recurring"),
		IsRepayment: p.Bool("is_repayment"),
	}
	_, n, err := s.wallet.Transactions.Add(ctx, draft)
	if err != nil {
		s.fail(w, n, err)
		return
	}

	page, err := s.transactionsPage(ctx, "", "")
	if err != nil {
		s.loadFailed(w, r, log.ComponentLedger, err)
		return
	}
	s.succeed(w, r, n, "transactions", page)
}
