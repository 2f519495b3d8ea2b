package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
)

// chrome is the part of every page outside its content block.
type chrome struct {
	Title    string
	Active   string
	Dark     bool
	Currency core.Currency
}

func (s *Server) chrome(ctx context.Context, title, active string) chrome {
	c := chrome{Title: title, Active: active, Currency: core.CurrencyNGN}
	if settings, err := s.wallet.Settings.Get(ctx); err == nil {
		c.Dark = settings.DarkMode()
		c.Currency = settings.Currency
	}
	return c
}

// isPartial reports whether htmx asked for the content block only.
func isPartial(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" && r.Header.Get("HX-Boosted") != "true"
}

func (s *Server) execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// requestLogger returns the logger the trace middleware scoped to r, so
// records carry its request_id.
func (s *Server) requestLogger(r *http.Request, component string) *log.Logger {
	return log.FromContext(r.Context(), s.logger).WithComponent(component)
}

// renderPage writes the full page, or only its content block for htmx
// navigation.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, page string, data any) {
	name := page + ".html"
	if isPartial(r) {
		name = page + "_content"
	}
	s.renderTemplate(w, r, name, data)
}

func (s *Server) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	body, err := s.execute(name, data)
	if err != nil {
		s.requestLogger(r, log.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err,
			"template", name)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Vary", "HX-Request")
	_, _ = w.Write(body)
}

// succeed answers a mutation with its notification and the refreshed
// content block of page.
func (s *Server) succeed(w http.ResponseWriter, r *http.Request, n core.Notification, page string, data any) {
	body, err := s.execute(page+"_content", data)
	if err != nil {
		// The change is saved; the client reloads the page on wallet:changed.
		s.requestLogger(r, log.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed after mutation",
			log.FieldError, err,
			"template", page+"_content")
		NewHTMXResponse().
			TriggerNotification(n).
			TriggerWalletChanged().
			Header("HX-Reswap", "none").
			Write(w)
		return
	}
	NewHTMXResponse().
		TriggerNotification(n).
		TriggerWalletChanged().
		TriggerFormReset().
		BodyHTML(body).
		Write(w)
}

// fail answers a rejected mutation with one error toast.
func (s *Server) fail(w http.ResponseWriter, n core.Notification, err error) {
	if !n.IsError() {
		n = core.NotificationFor(err)
	}
	ErrorResponse(statusFor(err), n).Write(w)
}

// statusFor maps service errors onto response codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrGoalNotFound),
		errors.Is(err, core.ErrReminderNotFound),
		errors.Is(err, core.ErrPriorityNotFound),
		errors.Is(err, errBadID):
		return http.StatusNotFound
	case errors.Is(err, core.ErrGoalLocked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// loadFailed reports a page that could not be assembled.
func (s *Server) loadFailed(w http.ResponseWriter, r *http.Request, component string, err error) {
	s.requestLogger(r, component).ErrorContext(r.Context(), "Failed to load page",
		log.FieldError, err,
		log.FieldPath, r.URL.Path)
	http.Error(w, "failed to load page", http.StatusInternalServerError)
}

// body parses the submission or answers 400 itself.
func (s *Server) body(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p, err := ParseRequestBody(r)
	if err != nil {
		s.requestLogger(r, log.ComponentHTTP).WarnContext(r.Context(), "Malformed request body",
			log.FieldError, err,
			log.FieldPath, r.URL.Path)
		BadRequestError("Invalid request").Write(w)
		return nil, false
	}
	return p, true
}

func (s *Server) id(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, core.Notification{}, err)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks the store and the rate limiter state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := map[string]any{}

	if s.store == nil {
		checks["store"] = "not_configured"
	} else if err := s.store.Ping(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
		"rejected":       s.limiter.Rejected(),
	}
	checks["security"] = map[string]any{
		"blocked": s.detector.Blocked(),
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}
