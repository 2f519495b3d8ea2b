package http

import (
	"context"
	"net/http"

	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
	"walletwhisper/internal/services"
)

type remindersPage struct {
	chrome
	View services.ReminderOverview
}

func (s *Server) remindersPage(ctx context.Context) (remindersPage, error) {
	view, err := s.wallet.Reminders.Overview(ctx)
	if err != nil {
		return remindersPage{}, err
	}
	return remindersPage{chrome: s.chrome(ctx, "Reminders", "reminders"), View: view}, nil
}

func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	page, err := s.remindersPage(r.Context())
	if err != nil {
		s.loadFailed(w, r, log.ComponentReminders, err)
		return
	}
	s.renderPage(w, r, "reminders", page)
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	p, ok := s.body(w, r)
	if !ok {
		return
	}
	draft := core.ReminderDraft{
		Title:               p.Get("title"),
		Amount:              p.Get("amount"),
		DueDate:             p.Get("due_date"),
		Category:            p.Get("category"),
		Recurring:           p.Bool("recurring"),
		NotificationEnabled: p.Bool("notification_enabled"),
	}
	_, n, err := s.wallet.Reminders.Create(r.Context(), draft)
	s.afterRemindersChange(w, r, n, err)
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := s.id(w, r)
	if !ok {
		return
	}
	n, err := s.wallet.Reminders.MarkPaid(r.Context(), id)
	s.afterRemindersChange(w, r, n, err)
}

func (s *Server) handleToggleNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := s.id(w, r)
	if !ok {
		return
	}
	_, n, err := s.wallet.Reminders.ToggleNotification(r.Context(), id)
	s.afterRemindersChange(w, r, n, err)
}

func (s *Server) afterRemindersChange(w http.ResponseWriter, r *http.Request, n core.Notification, err error) {
	if err != nil {
		s.fail(w, n, err)
		return
	}
	page, err := s.remindersPage(r.Context())
	if err != nil {
		s.loadFailed(w, r, log.ComponentReminders, err)
		return
	}
	s.succeed(w, r, n, "reminders", page)
}
