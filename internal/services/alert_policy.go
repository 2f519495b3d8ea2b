package services

import (
	"time"

	"walletwhisper/internal/amqp"
	"walletwhisper/internal/core"
)

// AlertRule is one strategy for deciding whether a reminder deserves an
// alert of its level. An AlertPolicy asks its rules in order.
type AlertRule interface {
	Level() amqp.AlertLevel
	Matches(due core.Date, now time.Time) bool
}

// OverdueRule matches reminders whose due date has passed.
type OverdueRule struct{}

func (OverdueRule) Level() amqp.AlertLevel { return amqp.AlertOverdue }

func (OverdueRule) Matches(due core.Date, now time.Time) bool {
	return core.DaysUntil(due, now) < 0
}

// DueTodayRule matches reminders due on the current day.
type DueTodayRule struct{}

func (DueTodayRule) Level() amqp.AlertLevel { return amqp.AlertDueToday }

func (DueTodayRule) Matches(due core.Date, now time.Time) bool {
	return core.DaysUntil(due, now) == 0
}

// DueSoonRule matches reminders due within the next Days days.
type DueSoonRule struct {
	Days int
}

func (DueSoonRule) Level() amqp.AlertLevel { return amqp.AlertDueSoon }

func (r DueSoonRule) Matches(due core.Date, now time.Time) bool {
	d := core.DaysUntil(due, now)
	return d > 0 && d <= r.Days
}

// AlertPolicy classifies a reminder with the first matching rule.
type AlertPolicy struct {
	rules []AlertRule
}

// DefaultLeadDays is how far ahead a reminder counts as due soon.
const DefaultLeadDays = 3

func NewAlertPolicy(rules ...AlertRule) AlertPolicy {
	return AlertPolicy{rules: rules}
}

// DefaultAlertPolicy alerts on overdue, due today and due within leadDays.
func DefaultAlertPolicy(leadDays int) AlertPolicy {
	if leadDays <= 0 {
		leadDays = DefaultLeadDays
	}
	return NewAlertPolicy(OverdueRule{}, DueTodayRule{}, DueSoonRule{Days: leadDays})
}

// Classify returns the alert level for r, or false when no rule matches.
// Reminders with notifications off never alert.
func (p AlertPolicy) Classify(r core.Reminder, now time.Time) (amqp.AlertLevel, bool) {
	if !r.NotificationEnabled {
		return "", false
	}
	for _, rule := range p.rules {
		if rule.Matches(r.DueDate, now) {
			return rule.Level(), true
		}
	}
	return "", false
}

// Register appends a rule, consulted after the existing ones.
func (p *AlertPolicy) Register(rule AlertRule) {
	p.rules = append(p.rules, rule)
}
