package services

import (
	"context"
	"log/slog"

	"walletwhisper/internal/amqp"
)

// EventPublisher delivers wallet events. *amqp.Client implements it.
type EventPublisher interface {
	Publish(ctx context.Context, env *amqp.Envelope) error
}

var _ EventPublisher = (*amqp.Client)(nil)

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *amqp.Envelope) error { return nil }

// LogPublisher writes events to the log instead of a broker. The worker uses
// it to deliver reminder alerts when AMQP is not configured.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p LogPublisher) Publish(ctx context.Context, env *amqp.Envelope) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	args := []any{"kind", env.Kind, "message_id", env.ID}
	if env.Alert != nil {
		args = append(args,
			"reminder_id", env.Alert.ReminderID,
			"title", env.Alert.Title,
			"level", env.Alert.Level,
			"due", env.Alert.Label)
	}
	logger.InfoContext(ctx, "Wallet event", args...)
	return nil
}
