package log

import (
	"context"
	"log/slog"
	"net/http"
)

// StructuredLogger provides structured logging methods with context awareness.
// Records go to the request-scoped logger carried by ctx when there is one.
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// emit writes one record. The component field, when set, replaces the
// logger's own so it appears once.
func (sl *StructuredLogger) emit(ctx context.Context, level slog.Level, msg string, fields LogFields) {
	l := FromContext(ctx, sl.logger)
	if component, ok := fields[FieldComponent].(string); ok {
		l = l.WithComponent(component)
		delete(fields, FieldComponent)
	}
	l.Logger.Log(ctx, level, msg, l.prepend(fields.ToSlice())...)
}

// LogHTTPStart logs the start of an HTTP request
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.emit(ctx, slog.LevelInfo, "HTTP request started", fields)
}

// LogHTTPEnd logs the completion of an HTTP request
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.emit(ctx, level, "HTTP request completed", fields)
}

// LogMutation records a successful change to a wallet entity together with
// the notification the user was shown. extra may be nil.
func (sl *StructuredLogger) LogMutation(ctx context.Context, component, operation, entity string, id int64, notice string, extra LogFields) {
	fields := NewFields()
	for k, v := range extra {
		fields[k] = v
	}
	fields.
		WithEntity(entity, id).
		WithOperation(operation).
		WithComponent(component)
	fields[FieldNotice] = notice

	sl.emit(ctx, slog.LevelInfo, "Wallet updated", fields)
}

// LogRejected records a draft that failed validation. Nothing was changed.
func (sl *StructuredLogger) LogRejected(ctx context.Context, component, entity string, err error) {
	fields := NewFields().
		WithEntity(entity, 0).
		WithOperation(OpValidate).
		WithError(err).
		WithComponent(component)
	fields["error_type"] = ErrorTypeValidation

	sl.emit(ctx, slog.LevelWarn, "Draft rejected", fields)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.emit(ctx, slog.LevelError, msg, allFields)
}
