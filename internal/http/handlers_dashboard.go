package http

import (
	"context"
	"net/http"

	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
	"walletwhisper/internal/services"
)

type dashboardPage struct {
	chrome
	View services.Dashboard
	Edit core.BalanceEdit
}

type balanceCard struct {
	Edit     core.BalanceEdit
	Currency core.Currency
}

func (p dashboardPage) BalanceCard() balanceCard {
	return balanceCard{Edit: p.Edit, Currency: p.Currency}
}

func (s *Server) dashboardPage(ctx context.Context) (dashboardPage, error) {
	view, err := s.wallet.Dashboard.Overview(ctx)
	if err != nil {
		return dashboardPage{}, err
	}
	c := s.chrome(ctx, "Dashboard", "dashboard")
	return dashboardPage{chrome: c, View: view, Edit: core.BalanceEdit{Balance: view.Balance}}, nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	page, err := s.dashboardPage(r.Context())
	if err != nil {
		s.loadFailed(w, r, log.ComponentDashboard, err)
		return
	}
	s.renderPage(w, r, "dashboard", page)
}

// handleEditBalance swaps the balance card into edit mode.
func (s *Server) handleEditBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	edit, err := s.wallet.Dashboard.EditBalance(ctx)
	if err != nil {
		s.loadFailed(w, r, log.ComponentDashboard, err)
		return
	}
	s.renderTemplate(w, r, "balance_card", balanceCard{Edit: edit, Currency: s.chrome(ctx, "", "").Currency})
}

func (s *Server) handleCommitBalance(w http.ResponseWriter, r *http.Request) {
	p, ok := s.body(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	_, n, err := s.wallet.Dashboard.CommitBalance(ctx, p.Get("balance"))
	if err != nil {
		s.fail(w, n, err)
		return
	}
	s.afterDashboardChange(w, r, n)
}

func (s *Server) handleTogglePriority(w http.ResponseWriter, r *http.Request) {
	id, ok := s.id(w, r)
	if !ok {
		return
	}
	_, n, err := s.wallet.Dashboard.TogglePriority(r.Context(), id)
	if err != nil {
		s.fail(w, n, err)
		return
	}
	s.afterDashboardChange(w, r, n)
}

func (s *Server) afterDashboardChange(w http.ResponseWriter, r *http.Request, n core.Notification) {
	page, err := s.dashboardPage(r.Context())
	if err != nil {
		s.loadFailed(w, r, log.ComponentDashboard, err)
		return
	}
	s.succeed(w, r, n, "dashboard", page)
}
