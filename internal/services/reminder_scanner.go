package services

import (
	"context"
	"fmt"
	"time"

	"walletwhisper/internal/amqp"
	"walletwhisper/internal/cache"
	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
	"walletwhisper/internal/metrics"
	"walletwhisper/internal/store"
)

// ReminderScanner raises alerts for reminders that are overdue or coming
// due. Each reminder alerts at most once per day.
type ReminderScanner struct {
	reminders store.ReminderStore
	policy    AlertPolicy
	publisher EventPublisher
	metrics   metrics.Recorder
	sent      cache.Cache[bool]
}

// sentTTL outlives the day a key is stamped with.
const sentTTL = 48 * time.Hour

func NewReminderScanner(reminders store.ReminderStore, policy AlertPolicy, publisher EventPublisher, recorder metrics.Recorder) *ReminderScanner {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &ReminderScanner{
		reminders: reminders,
		policy:    policy,
		publisher: publisher,
		metrics:   recorder,
		sent:      cache.NewLRUCache[bool](1024, sentTTL),
	}
}

// Sent exposes the dedup cache so it can be registered for cleanup.
func (s *ReminderScanner) Sent() cache.Cache[bool] {
	return s.sent
}

// Scan checks every reminder against the policy as of now and publishes the
// alerts not yet sent today. It returns how many alerts went out.
func (s *ReminderScanner) Scan(ctx context.Context, now time.Time) (int, error) {
	if s.reminders == nil {
		return 0, fmt.Errorf("scanner not properly initialized")
	}

	list, err := s.reminders.ListReminders(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list reminders: %w", err)
	}

	logger := scannerLogger(ctx)
	day := core.DateOf(now).String()
	sent := 0
	for _, r := range list {
		level, ok := s.policy.Classify(r, now)
		if !ok {
			continue
		}
		key := fmt.Sprintf("%d:%s", r.ID, day)
		if _, done := s.sent.Get(key); done {
			continue
		}

		env := amqp.NewReminderAlert(r, level, core.FormatDueLabel(r.DueDate, now))
		if err := s.publisher.Publish(ctx, env); err != nil {
			s.metrics.RecordEvent(string(env.Kind), false)
			logger.ErrorContext(ctx, "Failed to publish reminder alert",
				log.FieldEntityID, r.ID,
				"level", level,
				log.FieldError, err)
			continue
		}
		s.metrics.RecordEvent(string(env.Kind), true)
		s.metrics.RecordAlert(string(level))
		s.sent.Set(key, true)
		sent++

		logger.InfoContext(ctx, "Raised reminder alert",
			log.FieldEntityID, r.ID,
			"title", r.Title,
			"level", level,
			"due", env.Alert.Label)
	}

	logger.DebugContext(ctx, "Reminder scan complete",
		log.FieldOperation, log.OpScan,
		"checked", len(list),
		"alerts", sent,
		"scan_date", day)
	return sent, nil
}

func scannerLogger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx, nil).WithComponent(log.ComponentScanner)
}

// Run scans once immediately and then every interval until ctx is done.
func (s *ReminderScanner) Run(ctx context.Context, interval time.Duration, clock core.Clock) error {
	if clock == nil {
		clock = core.SystemClock{}
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Scan(ctx, clock.Now()); err != nil {
			scannerLogger(ctx).ErrorContext(ctx, "Reminder scan failed",
				log.FieldOperation, log.OpScan,
				log.FieldError, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
