package services

import (
	"context"
	"fmt"
	"time"

	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
	"walletwhisper/internal/store"
)

const entityReminder = "reminder"

// ReminderService owns the reminders page.
type ReminderService struct {
	*base
}

// ReminderView is a reminder as of the moment it was read.
type ReminderView struct {
	core.Reminder
	Overdue  bool
	DueLabel string
}

type ReminderOverview struct {
	Overdue  []ReminderView
	Upcoming []ReminderView
	TotalDue core.Money
	Currency core.Currency
}

// Overview splits reminders into overdue and upcoming using the clock at
// call time, so a reminder crosses over as soon as its due date passes.
func (s *ReminderService) Overview(ctx context.Context) (ReminderOverview, error) {
	list, err := s.store.ListReminders(ctx)
	if err != nil {
		return ReminderOverview{}, fmt.Errorf("list reminders: %w", err)
	}
	now := s.clock.Now()
	overdue, upcoming := core.SplitReminders(list, now)
	return ReminderOverview{
		Overdue:  views(overdue, now),
		Upcoming: views(upcoming, now),
		TotalDue: core.TotalDue(list),
		Currency: s.currency(ctx),
	}, nil
}

func views(list []core.Reminder, now time.Time) []ReminderView {
	out := make([]ReminderView, 0, len(list))
	for _, r := range list {
		out = append(out, ReminderView{
			Reminder: r,
			Overdue:  r.IsOverdue(now),
			DueLabel: core.FormatDueLabel(r.DueDate, now),
		})
	}
	return out
}

func (s *ReminderService) Create(ctx context.Context, draft core.ReminderDraft) (core.Reminder, core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := draft.Validate(); err != nil {
		n, err := s.fail(ctx, log.ComponentReminders, log.OpCreate, entityReminder, err)
		return core.Reminder{}, n, err
	}
	list, err := s.store.ListReminders(ctx)
	if err != nil {
		n, err := s.fail(ctx, log.ComponentReminders, log.OpCreate, entityReminder, fmt.Errorf("list reminders: %w", err))
		return core.Reminder{}, n, err
	}
	id, err := s.store.NextID(ctx, store.KindReminder)
	if err != nil {
		n, err := s.fail(ctx, log.ComponentReminders, log.OpCreate, entityReminder, fmt.Errorf("next reminder id: %w", err))
		return core.Reminder{}, n, err
	}
	_, r, err := core.AddReminder(list, draft, id)
	if err != nil {
		n, err := s.fail(ctx, log.ComponentReminders, log.OpCreate, entityReminder, err)
		return core.Reminder{}, n, err
	}
	if err := s.store.InsertReminder(ctx, r); err != nil {
		n, err := s.fail(ctx, log.ComponentReminders, log.OpCreate, entityReminder, fmt.Errorf("save reminder: %w", err))
		return core.Reminder{}, n, err
	}

	n := core.Notify("Reminder Created", "Reminder set for "+r.Title)
	return r, s.done(ctx, log.ComponentReminders, log.OpCreate, entityReminder, r.ID, n), nil
}

// MarkPaid removes a reminder. A second call for the same id changes nothing
// and reports ErrReminderNotFound.
func (s *ReminderService) MarkPaid(ctx context.Context, id int64) (core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.store.ListReminders(ctx)
	if err != nil {
		return s.fail(ctx, log.ComponentReminders, log.OpDelete, entityReminder, fmt.Errorf("list reminders: %w", err))
	}
	if _, removed := core.MarkPaid(list, id); !removed {
		return s.fail(ctx, log.ComponentReminders, log.OpDelete, entityReminder, core.ErrReminderNotFound)
	}
	if err := s.store.DeleteReminder(ctx, id); err != nil {
		return s.fail(ctx, log.ComponentReminders, log.OpDelete, entityReminder, fmt.Errorf("delete reminder: %w", err))
	}

	n := core.Notify("Marked as Paid", "Reminder removed from list")
	return s.done(ctx, log.ComponentReminders, log.OpDelete, entityReminder, id, n), nil
}

func (s *ReminderService) ToggleNotification(ctx context.Context, id int64) (core.Reminder, core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.store.ListReminders(ctx)
	if err != nil {
		n, err := s.fail(ctx, log.ComponentReminders, log.OpToggle, entityReminder, fmt.Errorf("list reminders: %w", err))
		return core.Reminder{}, n, err
	}
	_, r, err := core.ToggleNotification(list, id)
	if err != nil {
		n, err := s.fail(ctx, log.ComponentReminders, log.OpToggle, entityReminder, err)
		return core.Reminder{}, n, err
	}
	if err := s.store.UpdateReminder(ctx, r); err != nil {
		n, err := s.fail(ctx, log.ComponentReminders, log.OpToggle, entityReminder, fmt.Errorf("save reminder: %w", err))
		return core.Reminder{}, n, err
	}

	n := core.Notify("Notifications Off", "No more alerts for "+r.Title)
	if r.NotificationEnabled {
		n = core.Notify("Notifications On", "You'll be reminded about "+r.Title)
	}
	return r, s.done(ctx, log.ComponentReminders, log.OpToggle, entityReminder, r.ID, n), nil
}
