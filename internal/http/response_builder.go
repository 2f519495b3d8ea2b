// Package http serves the wallet's pages and htmx partials.
//
// This file implements the builder for htmx responses: HX-Trigger events,
// status code and body assembled through one fluent API.
package http

import (
	"encoding/json"
	"net/http"

	"walletwhisper/internal/core"
)

// Client-side events raised through HX-Trigger.
const (
	EventShowNotification = "show-notification"
	EventWalletChanged    = "wallet:changed"
	EventFormReset        = "form:reset"
)

// HTMXResponseBuilder provides a fluent API for building htmx responses.
type HTMXResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named event with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// notificationPayload is what the toast script in app.js reads.
type notificationPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
	Duration    int    `json:"duration"`
}

// TriggerNotification shows n as a toast. Error toasts stay up longer.
func (b *HTMXResponseBuilder) TriggerNotification(n core.Notification) *HTMXResponseBuilder {
	duration := 3000
	if n.IsError() {
		duration = 5000
	}
	return b.Trigger(EventShowNotification, notificationPayload{
		Title:       n.Title,
		Description: n.Description,
		Variant:     string(n.Variant),
		Duration:    duration,
	})
}

// TriggerWalletChanged tells other open widgets to reload.
func (b *HTMXResponseBuilder) TriggerWalletChanged() *HTMXResponseBuilder {
	return b.Trigger(EventWalletChanged, struct{}{})
}

// TriggerFormReset clears the submitting form.
func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger(EventFormReset, struct{}{})
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *HTMXResponseBuilder) BodyHTML(html []byte) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = html
	return b
}

// Write sends the built response to w.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		if triggerJSON, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse answers a failed action with a single error toast and no
// body, so htmx leaves the page as it was.
func ErrorResponse(statusCode int, n core.Notification) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		TriggerNotification(n)
}

// BadRequestError is a 400 with msg as the toast text.
func BadRequestError(msg string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, core.NotifyError(msg))
}
