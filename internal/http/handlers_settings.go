package http

import (
	"context"
	"net/http"

	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
)

type settingsPage struct {
	chrome
	Settings core.Settings
}

func (s *Server) settingsPage(ctx context.Context) (settingsPage, error) {
	settings, err := s.wallet.Settings.Get(ctx)
	if err != nil {
		return settingsPage{}, err
	}
	return settingsPage{chrome: s.chrome(ctx, "Settings", "settings"), Settings: settings}, nil
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	page, err := s.settingsPage(r.Context())
	if err != nil {
		s.loadFailed(w, r, log.ComponentSettings, err)
		return
	}
	s.renderPage(w, r, "settings", page)
}

// settingsAction adapts a settings operation that needs no form input.
func (s *Server) settingsAction(op func(context.Context) (core.Notification, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := op(r.Context())
		s.afterSettingsChange(w, r, n, err)
	}
}

// settingsForm adapts a settings operation fed from the submitted form.
func (s *Server) settingsForm(op func(context.Context, *RequestBodyParser) (core.Notification, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := s.body(w, r)
		if !ok {
			return
		}
		n, err := op(r.Context(), p)
		s.afterSettingsChange(w, r, n, err)
	}
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	s.settingsForm(func(ctx context.Context, p *RequestBodyParser) (core.Notification, error) {
		return s.wallet.Settings.UpdateProfile(ctx, core.Profile{Name: p.Get("name"), Email: p.Get("email")})
	})(w, r)
}

func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	s.settingsForm(func(ctx context.Context, p *RequestBodyParser) (core.Notification, error) {
		return s.wallet.Settings.SetCurrency(ctx, p.Get("currency"))
	})(w, r)
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	s.settingsForm(func(ctx context.Context, p *RequestBodyParser) (core.Notification, error) {
		return s.wallet.Settings.SetDarkMode(ctx, p.Bool("dark_mode"))
	})(w, r)
}

func (s *Server) handleSetPasscode(w http.ResponseWriter, r *http.Request) {
	s.settingsForm(func(ctx context.Context, p *RequestBodyParser) (core.Notification, error) {
		return s.wallet.Settings.SetPasscode(ctx, p.Bool("passcode_enabled"))
	})(w, r)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.settingsAction(s.wallet.Settings.Export)(w, r)
}

func (s *Server) handleResetBalance(w http.ResponseWriter, r *http.Request) {
	s.settingsAction(s.wallet.Settings.ResetBalance)(w, r)
}

func (s *Server) handleClearTransactions(w http.ResponseWriter, r *http.Request) {
	s.settingsAction(s.wallet.Settings.ClearTransactions)(w, r)
}

func (s *Server) afterSettingsChange(w http.ResponseWriter, r *http.Request, n core.Notification, err error) {
	if err != nil {
		s.fail(w, n, err)
		return
	}
	page, err := s.settingsPage(r.Context())
	if err != nil {
		s.loadFailed(w, r, log.ComponentSettings, err)
		return
	}
	s.succeed(w, r, n, "settings", page)
}
