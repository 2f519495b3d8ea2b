package core

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
	"time"
)

type ReminderCategory string

const (
	ReminderBills         ReminderCategory = "Bills"
	ReminderDebts         ReminderCategory = "Debts"
	ReminderSchool        ReminderCategory = "School"
	ReminderTransport     ReminderCategory = "Transport"
	ReminderSubscriptions ReminderCategory = "Subscriptions"
	ReminderOther         ReminderCategory = "Other"
)

var ReminderCategories = []ReminderCategory{
	ReminderBills, ReminderDebts, ReminderSchool,
	ReminderTransport, ReminderSubscriptions, ReminderOther,
}

// ParseReminderCategory maps s onto a category. Empty input means Other.
func ParseReminderCategory(s string) (ReminderCategory, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ReminderOther, nil
	}
	for _, c := range ReminderCategories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// Reminder is an upcoming payment. Whether it is overdue is not stored;
// ask IsOverdue with the current time.
type Reminder struct {
	ID                  int64
	Title               string
	Amount              Money
	DueDate             Date
	Category            ReminderCategory
	Recurring           bool
	NotificationEnabled bool
}

type ReminderDraft struct {
	Title               string
	Amount              string
	DueDate             string
	Category            string
	Recurring           bool
	NotificationEnabled bool
}

func (d ReminderDraft) Validate() (Reminder, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" || strings.TrimSpace(d.Amount) == "" || strings.TrimSpace(d.DueDate) == "" {
		return Reminder{}, NewValidationError("Please fill in all required fields", ErrMissingField)
	}
	if utf8.RuneCountInString(title) > MaxTextLength {
		return Reminder{}, NewValidationError("Title is too long (max 200 characters)", ErrTextTooLong)
	}
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return Reminder{}, NewValidationError("Please enter a valid amount", err)
	}
	due, err := ParseDate(d.DueDate)
	if err != nil {
		return Reminder{}, NewValidationError("Please enter a valid due date", err)
	}
	category, err := ParseReminderCategory(d.Category)
	if err != nil {
		return Reminder{}, NewValidationError("Please choose a valid category", err)
	}
	return Reminder{
		Title:               title,
		Amount:              amount,
		DueDate:             due,
		Category:            category,
		Recurring:           d.Recurring,
		NotificationEnabled: d.NotificationEnabled,
	}, nil
}

// AddReminder appends a validated reminder.
func AddReminder(list []Reminder, draft ReminderDraft, id int64) ([]Reminder, Reminder, error) {
	r, err := draft.Validate()
	if err != nil {
		return list, Reminder{}, err
	}
	r.ID = id
	out := make([]Reminder, 0, len(list)+1)
	out = append(out, list...)
	out = append(out, r)
	return out, r, nil
}

// MarkPaid removes the reminder with the given id. The bool reports whether
// anything was removed; a second call with the same id is a no-op.
func MarkPaid(list []Reminder, id int64) ([]Reminder, bool) {
	out := make([]Reminder, 0, len(list))
	removed := false
	for _, r := range list {
		if r.ID == id {
			removed = true
			continue
		}
		out = append(out, r)
	}
	if !removed {
		return list, false
	}
	return out, true
}

// ToggleNotification flips the alert flag of the reminder with the given id.
func ToggleNotification(list []Reminder, id int64) ([]Reminder, Reminder, error) {
	for i := range list {
		if list[i].ID == id {
			out := append([]Reminder(nil), list...)
			out[i].NotificationEnabled = !out[i].NotificationEnabled
			return out, out[i], nil
		}
	}
	return list, Reminder{}, ErrReminderNotFound
}

// IsOverdue reports whether the due date (midnight UTC) lies before now.
func (r Reminder) IsOverdue(now time.Time) bool {
	return r.DueDate.Before(now)
}

// DaysUntil is the day difference used for labels, rounded up like the
// calendar the user sees: anything later today counts as zero.
func DaysUntil(due Date, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

// FormatDueLabel buckets the distance between due and now.
//
//	0 -> "Today", 1 -> "Tomorrow", -1 -> "Yesterday",
//	-n -> "n days overdue", 2..7 -> "In n days", otherwise M/D/YYYY.
func FormatDueLabel(due Date, now time.Time) string {
	diff := DaysUntil(due, now)
	switch {
	case diff == 0:
		return "Today"
	case diff == 1:
		return "Tomorrow"
	case diff == -1:
		return "Yesterday"
	case diff < 0:
		return fmt.Sprintf("%d days overdue", -diff)
	case diff <= 7:
		return fmt.Sprintf("In %d days", diff)
	default:
		return due.ShortLabel()
	}
}

// SplitReminders partitions list into overdue and upcoming reminders as of
// now, keeping the original order within each group.
func SplitReminders(list []Reminder, now time.Time) (overdue, upcoming []Reminder) {
	for _, r := range list {
		if r.IsOverdue(now) {
			overdue = append(overdue, r)
		} else {
			upcoming = append(upcoming, r)
		}
	}
	return overdue, upcoming
}

// TotalDue sums the amounts of list.
func TotalDue(list []Reminder) Money {
	var total Money
	for _, r := range list {
		total = total.Add(r.Amount)
	}
	return total
}
