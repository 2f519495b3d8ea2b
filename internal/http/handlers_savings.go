package http

import (
	"context"
	"net/http"

	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
	"walletwhisper/internal/services"
)

type savingsPage struct {
	chrome
	View services.SavingsOverview
}

func (s *Server) savingsPage(ctx context.Context) (savingsPage, error) {
	view, err := s.wallet.Savings.Overview(ctx)
	if err != nil {
		return savingsPage{}, err
	}
	return savingsPage{chrome: s.chrome(ctx, "Savings", "savings"), View: view}, nil
}

func (s *Server) handleSavings(w http.ResponseWriter, r *http.Request) {
	page, err := s.savingsPage(r.Context())
	if err != nil {
		s.loadFailed(w, r, log.ComponentSavings, err)
		return
	}
	s.renderPage(w, r, "savings", page)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	p, ok := s.body(w, r)
	if !ok {
		return
	}
	draft := core.GoalDraft{
		Title:     p.Get("title"),
		Target:    p.Get("target"),
		Notes:     p.Get("notes"),
		Locked:    p.Bool("locked"),
		PiggyMode: p.Bool("piggy_mode"),
	}
	_, n, err := s.wallet.Savings.Create(r.Context(), draft)
	s.afterSavingsChange(w, r, n, err)
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	id, ok := s.id(w, r)
	if !ok {
		return
	}
	p, ok := s.body(w, r)
	if !ok {
		return
	}
	_, n, err := s.wallet.Savings.Contribute(r.Context(), id, p.Get("amount"))
	s.afterSavingsChange(w, r, n, err)
}

func (s *Server) handleToggleLock(w http.ResponseWriter, r *http.Request) {
	id, ok := s.id(w, r)
	if !ok {
		return
	}
	_, n, err := s.wallet.Savings.ToggleLock(r.Context(), id)
	s.afterSavingsChange(w, r, n, err)
}

func (s *Server) afterSavingsChange(w http.ResponseWriter, r *http.Request, n core.Notification, err error) {
	if err != nil {
		s.fail(w, n, err)
		return
	}
	page, err := s.savingsPage(r.Context())
	if err != nil {
		s.loadFailed(w, r, log.ComponentSavings, err)
		return
	}
	s.succeed(w, r, n, "savings", page)
}
